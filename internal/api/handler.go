package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"massage-board-backend/internal/board"
	"massage-board-backend/internal/events"
	"massage-board-backend/internal/model"
	"massage-board-backend/internal/notification"
	"massage-board-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	layout   board.Layout
	webpush  *webpush.Options
	events   events.Publisher
	notifier notification.Dispatcher
	now      func() time.Time
}

// NewHandler creates a new API handler. Events and notifications are off until
// WithEvents and WithNotifier are called.
func NewHandler(s store.Store, layout board.Layout, webpushOptions *webpush.Options) *Handler {
	if layout.Location == nil {
		layout.Location = time.UTC
	}
	return &Handler{
		store:   s,
		layout:  layout,
		webpush: webpushOptions,
		events:  events.NopPublisher{},
		now:     time.Now,
	}
}

// WithEvents publishes appointment changes through p.
func (h *Handler) WithEvents(p events.Publisher) *Handler {
	if p != nil {
		h.events = p
	}
	return h
}

// WithNotifier pushes appointment changes to staff following a worker.
func (h *Handler) WithNotifier(d notification.Dispatcher) *Handler {
	h.notifier = d
	return h
}

// present renders the appointment times in the board timezone.
func (h *Handler) present(a model.Appointment) model.Appointment {
	a.Start = a.Start.In(h.layout.Location)
	a.End = a.End.In(h.layout.Location)
	return a
}

func (h *Handler) publish(ev events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.events.Publish(ctx, ev); err != nil {
		log.Printf("Failed to publish %s for %s: %v", ev.Type, ev.AppointmentID, err)
	}
}

func (h *Handler) notify(worker, message string) {
	if h.notifier == nil || worker == "" {
		return
	}
	h.notifier.Dispatch(notification.Job{Worker: worker, Message: message})
}

func badRequest(c *gin.Context, message string, err error) {
	body := gin.H{"message": message}
	if err != nil {
		body["error"] = err.Error()
	}
	c.JSON(http.StatusBadRequest, body)
}

func notFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, gin.H{"message": message})
}

// internalError reports err to the error middleware and returns its detail.
func internalError(c *gin.Context, message string, err error) {
	c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": message, "error": err.Error()})
}

// Healthz reports whether the service can reach its database.
func (h *Handler) Healthz(c *gin.Context) {
	if _, err := h.store.ListWorkers(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
