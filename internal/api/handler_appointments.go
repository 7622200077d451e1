package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"massage-board-backend/internal/events"
	"massage-board-backend/internal/model"
	"massage-board-backend/internal/monitoring"
	"massage-board-backend/internal/parse"
	"massage-board-backend/internal/store"
)

type appointmentRequest struct {
	ID             string  `json:"id"`
	MassageType    string  `json:"massageType" binding:"required"`
	Phone          string  `json:"phone" binding:"required"`
	Customer       string  `json:"customer" binding:"required"`
	Start          string  `json:"start" binding:"required"`
	End            string  `json:"end" binding:"required"`
	Status         string  `json:"status"`
	Notes          *string `json:"notes"`
	Preference     string  `json:"preference" binding:"required"`
	SpecificWorker *string `json:"specificWorker"`
}

type deleteAppointmentRequest struct {
	ID string `json:"id"`
}

// toModel validates the request and converts it to a record. Naive timestamps are
// read in loc.
func (r appointmentRequest) toModel(loc *time.Location, defaultStatus model.Status) (model.Appointment, error) {
	start, err := parse.Timestamp(r.Start, loc)
	if err != nil {
		return model.Appointment{}, fmt.Errorf("invalid start: %w", err)
	}
	end, err := parse.Timestamp(r.End, loc)
	if err != nil {
		return model.Appointment{}, fmt.Errorf("invalid end: %w", err)
	}

	status := model.Status(r.Status)
	if status == "" {
		status = defaultStatus
	}
	if !status.Valid() {
		return model.Appointment{}, fmt.Errorf("invalid status %q", r.Status)
	}

	pref := model.Preference(r.Preference)
	if !pref.Valid() {
		return model.Appointment{}, fmt.Errorf("invalid preference %q", r.Preference)
	}

	appt := model.Appointment{
		ID:          r.ID,
		MassageType: r.MassageType,
		Phone:       r.Phone,
		Customer:    r.Customer,
		Start:       start,
		End:         end,
		Status:      status,
		Notes:       nonEmpty(r.Notes),
		Preference:  pref,
	}
	if pref == model.PreferenceSpecific {
		appt.SpecificWorker = nonEmpty(r.SpecificWorker)
		if appt.SpecificWorker == nil {
			return model.Appointment{}, errors.New("specificWorker is required when preference is specific")
		}
	}
	return appt, nil
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := *s
	return &v
}

// GetAppointments lists appointments, optionally only those starting on ?date=YYYY-MM-DD.
func (h *Handler) GetAppointments(c *gin.Context) {
	var day *parse.Day
	if raw := c.Query("date"); raw != "" {
		date, err := parse.Date(raw, h.layout.Location)
		if err != nil {
			badRequest(c, "Invalid date", err)
			return
		}
		d := parse.DayOf(date, h.layout.Location)
		day = &d
	}

	appts, err := h.store.ListAppointments(c.Request.Context(), day)
	if err != nil {
		internalError(c, "Error fetching appointments", err)
		return
	}

	out := make([]model.Appointment, len(appts))
	for i, a := range appts {
		out[i] = h.present(a)
	}
	c.JSON(http.StatusOK, out)
}

// CreateAppointment stores a new appointment and returns it with its id.
func (h *Handler) CreateAppointment(c *gin.Context) {
	var req appointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid appointment", err)
		return
	}
	req.ID = ""

	appt, err := req.toModel(h.layout.Location, model.StatusBooked)
	if err != nil {
		badRequest(c, "Invalid appointment", err)
		return
	}

	if err := h.store.CreateAppointment(c.Request.Context(), &appt); err != nil {
		internalError(c, "Error creating appointment", err)
		return
	}

	monitoring.AppointmentMutations.WithLabelValues("create").Inc()
	h.publish(events.ForAppointment(events.TypeCreated, &appt, h.now()))
	h.notify(appt.Customer, fmt.Sprintf("New appointment: %s at %s",
		appt.MassageType, appt.Start.In(h.layout.Location).Format("15:04")))

	c.JSON(http.StatusCreated, h.present(appt))
}

// UpdateAppointment replaces every field of the appointment with the given id.
func (h *Handler) UpdateAppointment(c *gin.Context) {
	var req appointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid appointment", err)
		return
	}
	if req.ID == "" {
		badRequest(c, "Appointment ID is required", nil)
		return
	}

	appt, err := req.toModel(h.layout.Location, "")
	if err != nil {
		badRequest(c, "Invalid appointment", err)
		return
	}

	if err := h.store.UpdateAppointment(c.Request.Context(), &appt); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			notFound(c, "Appointment not found")
		case errors.Is(err, store.ErrMissingID):
			badRequest(c, "Appointment ID is required", nil)
		default:
			internalError(c, "Error updating appointment", err)
		}
		return
	}

	monitoring.AppointmentMutations.WithLabelValues("update").Inc()
	h.publish(events.ForAppointment(events.TypeUpdated, &appt, h.now()))
	h.notify(appt.Customer, fmt.Sprintf("Appointment updated: %s at %s (%s)",
		appt.MassageType, appt.Start.In(h.layout.Location).Format("15:04"), appt.Status))

	c.JSON(http.StatusOK, h.present(appt))
}

// DeleteAppointment removes the appointment whose id is in the body.
func (h *Handler) DeleteAppointment(c *gin.Context) {
	var req deleteAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}
	if req.ID == "" {
		badRequest(c, "Appointment ID is required", nil)
		return
	}

	if err := h.store.DeleteAppointment(c.Request.Context(), req.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(c, "Appointment not found")
			return
		}
		internalError(c, "Error deleting appointment", err)
		return
	}

	monitoring.AppointmentMutations.WithLabelValues("delete").Inc()
	h.publish(events.Deleted(req.ID, h.now()))

	c.JSON(http.StatusOK, gin.H{"message": "Appointment deleted successfully"})
}
