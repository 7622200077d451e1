package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"massage-board-backend/config"
	"massage-board-backend/internal/board"
	"massage-board-backend/internal/model"
)

func fakeAPI(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/workers":
			io.WriteString(w, `[{"name":"Alice","position":0},{"name":"Bob","position":1}]`)
		case "/api/appointments":
			assert.Equal(t, "2025-06-12", r.URL.Query().Get("date"))
			io.WriteString(w, `[{"id":"a1","massageType":"Swedish","phone":"555-0100","customer":"Bob",
				"start":"2025-06-12T10:00:00Z","end":"2025-06-12T11:00:00Z","status":"checked-in","preference":"female"}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestRun_Show(t *testing.T) {
	server := fakeAPI(t)
	defer server.Close()

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), server.URL+"/api", "UTC", "2025-06-12", []string{"show"}, &out))

	lines := strings.Split(out.String(), "\n")
	assert.Equal(t, "Board for 2025-06-12", lines[0])
	assert.Contains(t, lines[1], "Alice")
	assert.Contains(t, lines[1], "Bob")

	var tenOClock string
	for _, l := range lines {
		if strings.Contains(l, "10:00") {
			tenOClock = l
		}
	}
	assert.Contains(t, tenOClock, "Swedish [in]")
}

func TestRun_Errors(t *testing.T) {
	server := fakeAPI(t)
	defer server.Close()
	ctx := context.Background()

	assert.ErrorContains(t, run(ctx, server.URL+"/api", "UTC", "2025-06-12", []string{"fly"}, io.Discard), "unknown command")
	assert.Error(t, run(ctx, server.URL+"/api", "Mars/Olympus", "", []string{"show"}, io.Discard))
	assert.Error(t, run(ctx, server.URL+"/api", "UTC", "2025-06-12", []string{"move", "a1", "Alice", "25:00"}, io.Discard))
	assert.Error(t, run(ctx, server.URL+"/api", "UTC", "2025-06-12", []string{"status", "missing", "finished"}, io.Discard))
}

func TestRender_NowMarkerAndUnassigned(t *testing.T) {
	cfg := config.Default().Board
	cfg.Location = time.UTC
	layout := board.NewLayout(cfg)
	day := time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)
	orphan := model.Appointment{
		ID: "x", Customer: "Zed", MassageType: "Thai", Status: model.StatusBooked,
		Start: day.Add(12 * time.Hour), End: day.Add(13 * time.Hour),
	}

	g := layout.Build(day, []string{"Alice"}, []model.Appointment{orphan}, day.Add(9*time.Hour+20*time.Minute))

	var out bytes.Buffer
	render(&out, g)
	// 09:20 falls in the unlabelled 09:15 row.
	assert.Contains(t, out.String(), "\n>"+strings.Repeat(" ", 6)+".\n")
	assert.Contains(t, out.String(), "unassigned: Zed Thai 12:00-13:00 (booked)")
}
