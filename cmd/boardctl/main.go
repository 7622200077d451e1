// Command boardctl shows and edits the appointment board from a terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"massage-board-backend/config"
	"massage-board-backend/internal/board"
	"massage-board-backend/internal/client"
	"massage-board-backend/internal/model"
	"massage-board-backend/internal/parse"
)

const usage = `usage: boardctl [flags] <command> [args]

commands:
  show                         print the day grid
  watch                        print the grid and redraw it every minute
  add <worker> <HH:MM> <type> <phone> [preference] [specific-worker]
  status <id> <booked|checked-in|finished>
  move <id> <worker> <HH:MM>
  delete <id>
  reorder <from> <to>          move a worker column (0-based positions)

flags:
`

func main() {
	log.SetFlags(0)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to read .env: %v", err)
	}

	fs := flag.NewFlagSet("boardctl", flag.ExitOnError)
	apiURL := fs.String("api", envOr("BOARD_API_URL", "http://localhost:8080/api"), "board API base URL")
	tz := fs.String("tz", envOr("BOARD_TIMEZONE", "America/Chicago"), "board timezone")
	date := fs.String("date", "", "day to show, YYYY-MM-DD (default today)")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[1:])

	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *apiURL, *tz, *date, fs.Args(), os.Stdout); err != nil {
		log.Fatalf("boardctl: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func run(ctx context.Context, apiURL, tz, rawDate string, args []string, out io.Writer) error {
	boardCfg := config.Default().Board
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("unknown timezone %q: %w", tz, err)
	}
	boardCfg.Location = loc
	layout := board.NewLayout(boardCfg)

	day := time.Now().In(loc)
	if rawDate != "" {
		if day, err = parse.Date(rawDate, loc); err != nil {
			return err
		}
	}

	c := client.New(apiURL, loc)
	workers, err := c.Workers(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch workers: %w", err)
	}
	ctrl := board.NewController(c, layout, workers).WithRoster(c)
	if err := ctrl.Load(ctx, day); err != nil {
		return err
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "show":
		render(out, ctrl.Grid())
		return nil

	case "watch":
		render(out, ctrl.Grid())
		ctrl.RunClock(ctx, time.Minute, func(*board.NowIndicator) {
			if err := ctrl.Load(ctx, ctrl.Day()); err != nil {
				log.Printf("refresh failed: %v", err)
				return
			}
			fmt.Fprint(out, "\033[H\033[2J")
			render(out, ctrl.Grid())
		})
		return nil

	case "add":
		if len(rest) < 4 {
			return errors.New("add needs <worker> <HH:MM> <type> <phone>")
		}
		slot, err := slotArg(rest[1])
		if err != nil {
			return err
		}
		d := ctrl.Open(rest[0], slot)
		if d.ID != "" {
			return fmt.Errorf("%s is already booked at %s", rest[0], slot)
		}
		d.MassageType, d.Phone = rest[2], rest[3]
		if len(rest) > 4 {
			d.Preference = model.Preference(rest[4])
		}
		if len(rest) > 5 {
			d.SpecificWorker = rest[5]
		}
		created, err := ctrl.Create(ctx, d)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "created %s\n", created.ID)

	case "status":
		if len(rest) != 2 {
			return errors.New("status needs <id> <status>")
		}
		if err := ctrl.SetStatus(ctx, rest[0], model.Status(rest[1])); err != nil {
			return err
		}

	case "move":
		if len(rest) != 3 {
			return errors.New("move needs <id> <worker> <HH:MM>")
		}
		slot, err := slotArg(rest[2])
		if err != nil {
			return err
		}
		if err := ctrl.MoveToSlot(ctx, rest[0], rest[1], slot); err != nil {
			return err
		}

	case "delete":
		if len(rest) != 1 {
			return errors.New("delete needs <id>")
		}
		if err := ctrl.Delete(ctx, rest[0]); err != nil {
			return err
		}

	case "reorder":
		if len(rest) != 2 {
			return errors.New("reorder needs <from> <to>")
		}
		from, err1 := strconv.Atoi(rest[0])
		to, err2 := strconv.Atoi(rest[1])
		if err := errors.Join(err1, err2); err != nil {
			return fmt.Errorf("invalid position: %w", err)
		}
		if err := ctrl.ReorderWorker(ctx, from, to); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	render(out, ctrl.Grid())
	return nil
}

func slotArg(raw string) (board.Slot, error) {
	h, m, err := parse.Clock(raw)
	if err != nil {
		return board.Slot{}, err
	}
	return board.Slot{Hour: h, Minute: m}, nil
}

const cellWidth = 14

// render prints the grid as text: a block's first row shows its type and status,
// the rows it continues into show a bar.
func render(out io.Writer, g board.Grid) {
	fmt.Fprintf(out, "Board for %s\n", g.Date)

	var b strings.Builder
	b.WriteString("       ")
	for _, col := range g.Columns {
		b.WriteString(pad(col.Worker))
	}
	fmt.Fprintln(out, b.String())

	for i, s := range g.Slots {
		b.Reset()
		marker := " "
		if g.Now != nil && nowSlot(g, i) {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s%-6s", marker, s.Label)
		for _, col := range g.Columns {
			b.WriteString(pad(cellText(col.Cells[i])))
		}
		fmt.Fprintln(out, strings.TrimRight(b.String(), " "))
	}

	for _, a := range g.Unassigned {
		fmt.Fprintf(out, "unassigned: %s %s %s-%s (%s)\n", a.Customer, a.MassageType,
			a.Start.Format("15:04"), a.End.Format("15:04"), a.Status)
	}
}

// nowSlot reports whether the current time falls in row i.
func nowSlot(g board.Grid, i int) bool {
	step := 15
	if len(g.Slots) > 1 {
		step = g.Slots[1].Minutes() - g.Slots[0].Minutes()
	}
	m := g.Now.Time.Hour()*60 + g.Now.Time.Minute()
	start := g.Slots[i].Minutes()
	return m >= start && m < start+step
}

func cellText(c board.Cell) string {
	if len(c.Blocks) > 0 {
		a := c.Blocks[0].Appointment
		return fmt.Sprintf("%s %s", abbreviate(a.MassageType, 8), statusMark(a.Status))
	}
	if len(c.Busy) > 0 {
		return "|"
	}
	return "."
}

func statusMark(s model.Status) string {
	switch s {
	case model.StatusCheckedIn:
		return "[in]"
	case model.StatusFinished:
		return "[out]"
	default:
		return "[b]"
	}
}

func abbreviate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func pad(s string) string {
	if len([]rune(s)) >= cellWidth {
		return abbreviate(s, cellWidth-1) + " "
	}
	return s + strings.Repeat(" ", cellWidth-len([]rune(s)))
}
