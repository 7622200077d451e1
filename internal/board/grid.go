package board

import (
	"time"

	"massage-board-backend/internal/model"
	"massage-board-backend/internal/parse"
)

// Block is the visible rendering of an appointment within its anchor cell.
type Block struct {
	Appointment model.Appointment `json:"appointment"`
	TopPx       float64           `json:"top"`
	HeightPx    float64           `json:"height"`
}

// Cell is one worker × slot position.
type Cell struct {
	Slot   Slot      `json:"slot"`
	Start  time.Time `json:"start"`
	Busy   []string  `json:"busy,omitempty"`
	Blocks []Block   `json:"blocks,omitempty"`
}

// Column holds every cell of one worker.
type Column struct {
	Worker string `json:"worker"`
	Cells  []Cell `json:"cells"`
}

// Grid is the rendered day.
type Grid struct {
	Date       string              `json:"date"`
	Slots      []Slot              `json:"slots"`
	SlotHeight float64             `json:"slotHeight"`
	Columns    []Column            `json:"columns"`
	Unassigned []model.Appointment `json:"unassigned,omitempty"`
	Now        *NowIndicator       `json:"now,omitempty"`
}

// Build lays appointments out on the day grid. An appointment is listed as busy in
// every cell it overlaps and drawn once, in the cell containing its start. One that
// begins before opening is drawn from the first slot, and one that ends at or before
// its start gets the minimum height. Appointments for workers not on the roster are
// returned as unassigned.
func (l Layout) Build(day time.Time, workers []string, appts []model.Appointment, now time.Time) Grid {
	slots := l.Slots()
	g := Grid{
		Date:       day.In(l.Location).Format(parse.DateLayout),
		Slots:      slots,
		SlotHeight: l.SlotHeight(),
		Columns:    make([]Column, 0, len(workers)),
		Now:        l.Now(day, now),
	}

	byWorker := make(map[string][]model.Appointment, len(workers))
	onRoster := make(map[string]bool, len(workers))
	for _, w := range workers {
		onRoster[w] = true
	}
	for _, a := range appts {
		if !onRoster[a.Customer] {
			g.Unassigned = append(g.Unassigned, a)
			continue
		}
		byWorker[a.Customer] = append(byWorker[a.Customer], a)
	}

	for _, w := range workers {
		col := Column{Worker: w, Cells: make([]Cell, len(slots))}
		for i, s := range slots {
			col.Cells[i] = Cell{Slot: s, Start: l.SlotStart(day, s)}
		}
		for _, a := range byWorker[w] {
			l.place(day, slots, col.Cells, a)
		}
		g.Columns = append(g.Columns, col)
	}
	return g
}

func (l Layout) place(day time.Time, slots []Slot, cells []Cell, a model.Appointment) {
	if !a.End.After(a.Start) {
		l.placeEmpty(day, slots, cells, a)
		return
	}

	anchored := false
	for i, s := range slots {
		start, end := l.SlotStart(day, s), l.SlotEnd(day, s)
		if !Overlaps(start, end, a.Start, a.End) {
			continue
		}
		cells[i].Busy = append(cells[i].Busy, a.ID)
		if anchored {
			continue
		}
		anchored = true

		from := a.Start
		if from.Before(start) {
			from = start
		}
		cells[i].Blocks = append(cells[i].Blocks, Block{
			Appointment: a,
			TopPx:       l.BlockTop(from, start),
			HeightPx:    l.BlockHeight(a.End.Sub(from)),
		})
	}
}

// placeEmpty draws an appointment whose end is not after its start at the minimum
// height in the slot containing its start. It overlaps no slot, so nothing else
// would show it.
func (l Layout) placeEmpty(day time.Time, slots []Slot, cells []Cell, a model.Appointment) {
	for i, s := range slots {
		start, end := l.SlotStart(day, s), l.SlotEnd(day, s)
		if a.Start.Before(start) || !a.Start.Before(end) {
			continue
		}
		cells[i].Busy = append(cells[i].Busy, a.ID)
		cells[i].Blocks = append(cells[i].Blocks, Block{
			Appointment: a,
			TopPx:       l.BlockTop(a.Start, start),
			HeightPx:    l.MinBlockHeight,
		})
		return
	}
}
