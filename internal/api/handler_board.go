package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"massage-board-backend/internal/model"
	"massage-board-backend/internal/parse"
)

// GetBoard renders the day grid for ?date=YYYY-MM-DD, today by default.
func (h *Handler) GetBoard(c *gin.Context) {
	loc := h.layout.Location
	now := h.now().In(loc)

	date := now
	if raw := c.Query("date"); raw != "" {
		d, err := parse.Date(raw, loc)
		if err != nil {
			badRequest(c, "Invalid date", err)
			return
		}
		date = d
	}
	day := parse.DayOf(date, loc)

	ctx := c.Request.Context()
	workers, err := h.store.ListWorkers(ctx)
	if err != nil {
		internalError(c, "Error fetching workers", err)
		return
	}
	appts, err := h.store.ListAppointments(ctx, &day)
	if err != nil {
		internalError(c, "Error fetching appointments", err)
		return
	}

	names := make([]string, len(workers))
	for i, w := range workers {
		names[i] = w.Name
	}
	local := make([]model.Appointment, len(appts))
	for i, a := range appts {
		local[i] = h.present(a)
	}

	c.JSON(http.StatusOK, h.layout.Build(day.From, names, local, now))
}
