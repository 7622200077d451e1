package board

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"massage-board-backend/internal/model"
	"massage-board-backend/internal/store"
)

// fakeAPI keeps appointments in memory and counts list calls.
type fakeAPI struct {
	mu      sync.Mutex
	appts   map[string]model.Appointment
	lists   int
	nextID  int
	updated []model.Appointment
	failOn  string
}

func newFakeAPI(appts ...model.Appointment) *fakeAPI {
	f := &fakeAPI{appts: map[string]model.Appointment{}}
	for _, a := range appts {
		f.appts[a.ID] = a
	}
	return f
}

func (f *fakeAPI) List(_ context.Context, day time.Time) ([]model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.failOn == "list" {
		return nil, errors.New("list failed")
	}
	var out []model.Appointment
	y, m, d := day.Date()
	for _, a := range f.appts {
		ay, am, ad := a.Start.In(day.Location()).Date()
		if ay == y && am == m && ad == d {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAPI) Create(_ context.Context, a model.Appointment) (model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	a.ID = fmt.Sprintf("id-%d", f.nextID)
	f.appts[a.ID] = a
	return a, nil
}

func (f *fakeAPI) Update(_ context.Context, a model.Appointment) (model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.appts[a.ID]; !ok {
		return model.Appointment{}, store.ErrNotFound
	}
	f.appts[a.ID] = a
	f.updated = append(f.updated, a)
	return a, nil
}

func (f *fakeAPI) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.appts[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.appts, id)
	return nil
}

type fakeRoster struct {
	names []string
}

func (r *fakeRoster) ReorderWorkers(_ context.Context, move store.Move) ([]string, error) {
	r.names = store.Reorder(r.names, move.From, move.To)
	return r.names, nil
}

func newTestController(t *testing.T, api *fakeAPI) *Controller {
	t.Helper()
	c := NewController(api, testLayout(), []string{"Alice", "Bob", "Carol"})
	c.clock = func() time.Time { return at(10, 30) }
	require.NoError(t, c.Load(context.Background(), at(0, 0)))
	return c
}

func TestController_LoadAndGrid(t *testing.T) {
	api := newFakeAPI(
		appt("a", "Alice", at(10, 0), at(11, 0)),
		appt("other-day", "Alice", at(10, 0).AddDate(0, 0, 1), at(11, 0).AddDate(0, 0, 1)),
	)
	c := newTestController(t, api)

	require.Len(t, c.Appointments(), 1)
	g := c.Grid()
	require.NotNil(t, g.Now)
	assert.Equal(t, 229.0, g.Now.TopPx)
	assert.Equal(t, "2025-06-12", g.Date)
}

func TestController_CreateRefetches(t *testing.T) {
	api := newFakeAPI()
	c := newTestController(t, api)
	ctx := context.Background()

	_, err := c.Create(ctx, QuickAdd("Bob", at(13, 0)))
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.Equal(t, 1, api.lists)

	d := QuickAdd("Bob", at(13, 0))
	d.MassageType = "Swedish"
	d.Phone = "555-0100"
	created, err := c.Create(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, "id-1", created.ID)
	assert.Equal(t, 2, api.lists)
	require.Len(t, c.Appointments(), 1)
	assert.Equal(t, at(14, 0), c.Appointments()[0].End)
}

func TestController_SetStatusAndMove(t *testing.T) {
	api := newFakeAPI(appt("a", "Alice", at(10, 0), at(11, 0)))
	c := newTestController(t, api)
	ctx := context.Background()

	require.NoError(t, c.SetStatus(ctx, "a", model.StatusCheckedIn))
	assert.Equal(t, model.StatusCheckedIn, c.Appointments()[0].Status)
	assert.Equal(t, 2, api.lists)

	require.NoError(t, c.MoveToSlot(ctx, "a", "Carol", Slot{Hour: 15, Minute: 45}))
	moved := c.Appointments()[0]
	assert.Equal(t, "Carol", moved.Customer)
	assert.Equal(t, at(15, 45), moved.Start)
	assert.Equal(t, at(16, 45), moved.End)
	assert.Equal(t, model.StatusCheckedIn, moved.Status)
	assert.Equal(t, 3, api.lists)

	assert.ErrorIs(t, c.SetStatus(ctx, "missing", model.StatusFinished), store.ErrNotFound)
	assert.Error(t, c.SetStatus(ctx, "a", model.Status("cancelled")))
}

func TestController_UpdateFromEditForm(t *testing.T) {
	api := newFakeAPI(appt("a", "Alice", at(10, 0), at(11, 0)))
	c := newTestController(t, api)

	d := c.Open("Alice", Slot{Hour: 10, Minute: 30})
	assert.Equal(t, "a", d.ID)
	d.Notes = "prefers firm pressure"
	require.NoError(t, c.Update(context.Background(), d))

	got := c.Appointments()[0]
	require.NotNil(t, got.Notes)
	assert.Equal(t, "prefers firm pressure", *got.Notes)
}

func TestController_OpenEmptyCell(t *testing.T) {
	c := newTestController(t, newFakeAPI(appt("a", "Alice", at(10, 0), at(11, 0))))

	d := c.Open("Alice", Slot{Hour: 11, Minute: 0})
	assert.Empty(t, d.ID)
	assert.Equal(t, "Alice", d.Customer)
	assert.Equal(t, at(11, 0), d.Start)
	assert.Equal(t, at(12, 0), d.End)
}

func TestController_DeleteFiltersLocally(t *testing.T) {
	api := newFakeAPI(
		appt("a", "Alice", at(10, 0), at(11, 0)),
		appt("b", "Bob", at(12, 0), at(13, 0)),
	)
	c := newTestController(t, api)
	ctx := context.Background()

	require.NoError(t, c.Delete(ctx, "a"))
	assert.Equal(t, 1, api.lists)
	require.Len(t, c.Appointments(), 1)
	assert.Equal(t, "b", c.Appointments()[0].ID)

	assert.ErrorIs(t, c.Delete(ctx, "a"), store.ErrNotFound)
	assert.Len(t, c.Appointments(), 1)
}

func TestController_ReorderWorker(t *testing.T) {
	ctx := context.Background()

	c := newTestController(t, newFakeAPI())
	require.NoError(t, c.ReorderWorker(ctx, 2, 0))
	assert.Equal(t, []string{"Carol", "Alice", "Bob"}, c.Workers())
	assert.ErrorIs(t, c.ReorderWorker(ctx, 0, 3), store.ErrInvalidRoster)

	roster := &fakeRoster{names: []string{"Alice", "Bob", "Carol"}}
	c = newTestController(t, newFakeAPI()).WithRoster(roster)
	require.NoError(t, c.ReorderWorker(ctx, 0, 1))
	assert.Equal(t, []string{"Bob", "Alice", "Carol"}, c.Workers())
	assert.Equal(t, roster.names, c.Workers())
}

func TestController_LoadError(t *testing.T) {
	api := newFakeAPI()
	api.failOn = "list"
	c := NewController(api, testLayout(), nil)

	assert.Error(t, c.Load(context.Background(), at(0, 0)))
}

func TestController_RunClock(t *testing.T) {
	c := newTestController(t, newFakeAPI())

	var mu sync.Mutex
	now := at(9, 0)
	c.clock = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	ticks := make(chan *NowIndicator, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.RunClock(ctx, 10*time.Millisecond, func(n *NowIndicator) {
		select {
		case ticks <- n:
		default:
		}
	})

	select {
	case n := <-ticks:
		require.NotNil(t, n)
		assert.Equal(t, 49.0, n.TopPx)
	case <-time.After(time.Second):
		t.Fatal("clock did not tick")
	}

	mu.Lock()
	now = at(23, 0)
	mu.Unlock()

	deadline := time.After(time.Second)
	for {
		select {
		case n := <-ticks:
			if n == nil {
				assert.Nil(t, c.Grid().Now)
				return
			}
		case <-deadline:
			t.Fatal("now indicator never cleared")
		}
	}
}
