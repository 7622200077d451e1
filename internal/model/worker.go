package model

import "time"

// Worker is a column on the board. Appointments reference workers by name only.
type Worker struct {
	ID        int64     `gorm:"primaryKey" json:"-"`
	Name      string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Position  int       `gorm:"not null" json:"position"`
	CreatedAt time.Time `gorm:"not null" json:"-"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`
}
