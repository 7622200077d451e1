package board

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"massage-board-backend/internal/model"
	"massage-board-backend/internal/store"
)

// API is the appointment service the board talks to.
type API interface {
	List(ctx context.Context, day time.Time) ([]model.Appointment, error)
	Create(ctx context.Context, appt model.Appointment) (model.Appointment, error)
	Update(ctx context.Context, appt model.Appointment) (model.Appointment, error)
	Delete(ctx context.Context, id string) error
}

// Roster persists the worker order. Optional.
type Roster interface {
	ReorderWorkers(ctx context.Context, move store.Move) ([]string, error)
}

// Controller owns the state of one board view. All changes go through its actions.
type Controller struct {
	mu      sync.Mutex
	api     API
	roster  Roster
	layout  Layout
	day     time.Time
	workers []string
	appts   []model.Appointment
	now     *NowIndicator
	clock   func() time.Time
}

// NewController creates a controller showing today.
func NewController(api API, layout Layout, workers []string) *Controller {
	c := &Controller{
		api:     api,
		layout:  layout,
		workers: append([]string(nil), workers...),
		clock:   time.Now,
	}
	c.day = c.clock().In(layout.Location)
	c.now = layout.Now(c.day, c.day)
	return c
}

// WithRoster persists worker reordering through r.
func (c *Controller) WithRoster(r Roster) *Controller {
	c.roster = r
	return c
}

// Load switches the board to day and fetches its appointments.
func (c *Controller) Load(ctx context.Context, day time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.day = day.In(c.layout.Location)
	return c.refresh(ctx)
}

// refresh re-fetches the current day. Callers hold c.mu.
func (c *Controller) refresh(ctx context.Context) error {
	appts, err := c.api.List(ctx, c.day)
	if err != nil {
		return fmt.Errorf("failed to load appointments: %w", err)
	}
	c.appts = appts
	c.now = c.layout.Now(c.day, c.clock())
	return nil
}

// Create submits a new appointment from the add form.
func (c *Controller) Create(ctx context.Context, d Draft) (model.Appointment, error) {
	if err := d.Validate(); err != nil {
		return model.Appointment{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	d.ID = ""
	created, err := c.api.Create(ctx, d.Appointment())
	if err != nil {
		return model.Appointment{}, fmt.Errorf("failed to create appointment: %w", err)
	}
	return created, c.refresh(ctx)
}

// Update submits the edit form.
func (c *Controller) Update(ctx context.Context, d Draft) error {
	if err := d.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.replace(ctx, d.Appointment())
}

// SetStatus changes only the status of an appointment on the board.
func (c *Controller) SetStatus(ctx context.Context, id string, status model.Status) error {
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", status)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	a, ok := c.find(id)
	if !ok {
		return fmt.Errorf("appointment %s: %w", id, store.ErrNotFound)
	}
	a.Status = status
	return c.replace(ctx, a)
}

// Move drops an appointment on another cell, keeping its duration.
func (c *Controller) Move(ctx context.Context, id, worker string, start time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	a, ok := c.find(id)
	if !ok {
		return fmt.Errorf("appointment %s: %w", id, store.ErrNotFound)
	}
	return c.replace(ctx, Reschedule(a, worker, start))
}

// MoveToSlot resolves a drop target on the current day.
func (c *Controller) MoveToSlot(ctx context.Context, id, worker string, s Slot) error {
	c.mu.Lock()
	start := c.layout.SlotStart(c.day, s)
	c.mu.Unlock()
	return c.Move(ctx, id, worker, start)
}

func (c *Controller) replace(ctx context.Context, a model.Appointment) error {
	if _, err := c.api.Update(ctx, a); err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return c.refresh(ctx)
}

// Delete removes an appointment and drops it from the local state without re-fetching.
func (c *Controller) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.api.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	kept := c.appts[:0:0]
	for _, a := range c.appts {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	c.appts = kept
	return nil
}

// ReorderWorker moves a worker column from one position to another.
func (c *Controller) ReorderWorker(ctx context.Context, from, to int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if from < 0 || from >= len(c.workers) || to < 0 || to >= len(c.workers) {
		return fmt.Errorf("move %d -> %d: %w", from, to, store.ErrInvalidRoster)
	}
	if c.roster == nil {
		c.workers = store.Reorder(c.workers, from, to)
		return nil
	}
	workers, err := c.roster.ReorderWorkers(ctx, store.Move{From: from, To: to})
	if err != nil {
		return fmt.Errorf("failed to reorder workers: %w", err)
	}
	c.workers = workers
	return nil
}

// Open returns the form a click on the given cell opens: an edit form when an
// appointment occupies the cell, otherwise a quick-add form.
func (c *Controller) Open(worker string, s Slot) Draft {
	c.mu.Lock()
	defer c.mu.Unlock()

	start, end := c.layout.SlotStart(c.day, s), c.layout.SlotEnd(c.day, s)
	for _, a := range c.appts {
		if a.Customer == worker && Overlaps(start, end, a.Start, a.End) {
			return EditDraft(a)
		}
	}
	return QuickAdd(worker, start)
}

func (c *Controller) find(id string) (model.Appointment, bool) {
	for _, a := range c.appts {
		if a.ID == id {
			return a, true
		}
	}
	return model.Appointment{}, false
}

// Appointments returns a copy of the appointments on the board.
func (c *Controller) Appointments() []model.Appointment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Appointment(nil), c.appts...)
}

// Workers returns the current column order.
func (c *Controller) Workers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.workers...)
}

// Day returns the day being shown.
func (c *Controller) Day() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.day
}

// Grid renders the current state.
func (c *Controller) Grid() Grid {
	c.mu.Lock()
	defer c.mu.Unlock()
	g := c.layout.Build(c.day, c.workers, c.appts, c.clock())
	g.Now = c.now
	return g
}

// Tick recomputes the now indicator.
func (c *Controller) Tick() *NowIndicator {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.layout.Now(c.day, c.clock())
	return c.now
}

// RunClock recomputes the now indicator every interval until ctx is done,
// calling onTick after each update.
func (c *Controller) RunClock(ctx context.Context, interval time.Duration, onTick func(*NowIndicator)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Board clock stopped.")
			return
		case <-ticker.C:
			now := c.Tick()
			if onTick != nil {
				onTick(now)
			}
		}
	}
}
