package board

import (
	"errors"
	"time"

	"massage-board-backend/internal/model"
)

// MenuItem is one entry of the status context menu.
type MenuItem struct {
	Label  string       `json:"label"`
	Status model.Status `json:"status"`
}

var statusLabels = map[model.Status]string{
	model.StatusCheckedIn: "Check In",
	model.StatusFinished:  "Check Out",
	model.StatusBooked:    "Mark as Booked",
}

// Transitions lists every status other than the current one. No order is enforced.
func Transitions(current model.Status) []MenuItem {
	items := make([]MenuItem, 0, len(model.Statuses)-1)
	for _, s := range []model.Status{model.StatusCheckedIn, model.StatusFinished, model.StatusBooked} {
		if s == current {
			continue
		}
		items = append(items, MenuItem{Label: statusLabels[s], Status: s})
	}
	return items
}

// Reschedule moves an appointment to another worker and start, keeping its duration.
func Reschedule(a model.Appointment, worker string, start time.Time) model.Appointment {
	d := a.Duration()
	a.Customer = worker
	a.Start = start
	a.End = start.Add(d)
	return a
}

var (
	ErrIncomplete     = errors.New("Please fill in all fields")
	ErrSpecificWorker = errors.New("Please select a specific worker")
)

// Draft is the content of the add or edit form.
type Draft struct {
	ID             string
	MassageType    string
	Phone          string
	Customer       string
	Start          time.Time
	End            time.Time
	Status         model.Status
	Notes          string
	Preference     model.Preference
	SpecificWorker string
}

// QuickAdd seeds a form from a click on an empty cell.
func QuickAdd(worker string, start time.Time) Draft {
	return Draft{
		Customer:   worker,
		Start:      start,
		End:        start.Add(time.Hour),
		Status:     model.StatusBooked,
		Preference: model.PreferenceFemale,
	}
}

// EditDraft seeds a form from an existing appointment.
func EditDraft(a model.Appointment) Draft {
	d := Draft{
		ID:          a.ID,
		MassageType: a.MassageType,
		Phone:       a.Phone,
		Customer:    a.Customer,
		Start:       a.Start,
		End:         a.End,
		Status:      a.Status,
		Preference:  a.Preference,
	}
	if a.Notes != nil {
		d.Notes = *a.Notes
	}
	if a.SpecificWorker != nil {
		d.SpecificWorker = *a.SpecificWorker
	}
	return d
}

// Validate checks the form the same way the board does before submitting.
func (d Draft) Validate() error {
	if d.MassageType == "" || d.Phone == "" || d.Customer == "" || d.Start.IsZero() || d.End.IsZero() {
		return ErrIncomplete
	}
	if d.Preference == model.PreferenceSpecific && d.SpecificWorker == "" {
		return ErrSpecificWorker
	}
	return nil
}

// Appointment converts the form into a record. Empty optional fields become null.
func (d Draft) Appointment() model.Appointment {
	a := model.Appointment{
		ID:          d.ID,
		MassageType: d.MassageType,
		Phone:       d.Phone,
		Customer:    d.Customer,
		Start:       d.Start,
		End:         d.End,
		Status:      d.Status,
		Preference:  d.Preference,
	}
	if a.Status == "" {
		a.Status = model.StatusBooked
	}
	if d.Notes != "" {
		notes := d.Notes
		a.Notes = &notes
	}
	if d.Preference == model.PreferenceSpecific && d.SpecificWorker != "" {
		w := d.SpecificWorker
		a.SpecificWorker = &w
	}
	return a
}
