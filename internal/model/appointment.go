package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status is the lifecycle state of an appointment. Any state may follow any other.
type Status string

const (
	StatusBooked    Status = "booked"
	StatusCheckedIn Status = "checked-in"
	StatusFinished  Status = "finished"
)

// Statuses lists every status in menu order.
var Statuses = []Status{StatusBooked, StatusCheckedIn, StatusFinished}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusBooked, StatusCheckedIn, StatusFinished:
		return true
	}
	return false
}

// Preference is the client's requested attribute of the assigned worker.
type Preference string

const (
	PreferenceMale     Preference = "male"
	PreferenceFemale   Preference = "female"
	PreferenceSpecific Preference = "specific"
)

// Valid reports whether p is a known preference.
func (p Preference) Valid() bool {
	switch p {
	case PreferenceMale, PreferenceFemale, PreferenceSpecific:
		return true
	}
	return false
}

// Appointment is a booked service on the board.
// Customer holds the name of the assigned worker, not the client.
type Appointment struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	MassageType    string     `gorm:"size:128;not null" json:"massageType"`
	Phone          string     `gorm:"size:64;not null" json:"phone"`
	Customer       string     `gorm:"size:128;not null;index" json:"customer"`
	Start          time.Time  `gorm:"column:start;not null;index" json:"start"`
	End            time.Time  `gorm:"column:end;not null" json:"end"`
	Status         Status     `gorm:"size:16;not null" json:"status"`
	Notes          *string    `json:"notes,omitempty"`
	Preference     Preference `gorm:"size:16;not null" json:"preference"`
	SpecificWorker *string    `gorm:"size:128" json:"specificWorker,omitempty"`
	CreatedAt      time.Time  `json:"-"`
	UpdatedAt      time.Time  `json:"-"`
}

// BeforeCreate assigns a server-side identifier.
func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Duration returns the length of the appointment.
func (a Appointment) Duration() time.Duration {
	return a.End.Sub(a.Start)
}
