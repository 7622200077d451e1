package board

import (
	"fmt"
	"math"
	"time"

	"massage-board-backend/config"
)

// Layout holds the time axis and pixel geometry of the day grid.
type Layout struct {
	Location       *time.Location
	OpenHour       int
	CloseHour      int
	SlotMinutes    int
	PixelsPerHour  float64
	MinBlockHeight float64
	HeaderOffset   float64
}

// NewLayout builds a layout from validated board configuration.
func NewLayout(cfg config.BoardConfig) Layout {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return Layout{
		Location:       loc,
		OpenHour:       cfg.OpenHour,
		CloseHour:      cfg.CloseHour,
		SlotMinutes:    cfg.SlotMinutes,
		PixelsPerHour:  cfg.PixelsPerHour,
		MinBlockHeight: cfg.MinBlockHeight,
		HeaderOffset:   cfg.HeaderOffset,
	}
}

// Slot is one row of the time axis.
type Slot struct {
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
	Label  string `json:"label,omitempty"`
}

// Minutes returns the slot start as minutes after midnight.
func (s Slot) Minutes() int {
	return s.Hour*60 + s.Minute
}

func (s Slot) String() string {
	return fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)
}

// Slots returns every slot from opening time up to, but not including, closing time.
// Only slots on the hour and half hour carry a label.
func (l Layout) Slots() []Slot {
	var slots []Slot
	for m := l.OpenHour * 60; m < l.CloseHour*60; m += l.SlotMinutes {
		s := Slot{Hour: m / 60, Minute: m % 60}
		if s.Minute%30 == 0 {
			s.Label = s.String()
		}
		slots = append(slots, s)
	}
	return slots
}

// SlotHeight is the pixel height of one slot row.
func (l Layout) SlotHeight() float64 {
	return l.PixelsPerHour * float64(l.SlotMinutes) / 60
}

// SlotStart returns the wall-clock start of slot s on the given day.
func (l Layout) SlotStart(day time.Time, s Slot) time.Time {
	d := day.In(l.Location)
	return time.Date(d.Year(), d.Month(), d.Day(), s.Hour, s.Minute, 0, 0, l.Location)
}

// SlotEnd returns the wall-clock end of slot s on the given day.
func (l Layout) SlotEnd(day time.Time, s Slot) time.Time {
	return l.SlotStart(day, s).Add(time.Duration(l.SlotMinutes) * time.Minute)
}

// SlotAt returns the slot containing t, if t falls on the axis.
func (l Layout) SlotAt(t time.Time) (Slot, bool) {
	t = t.In(l.Location)
	m := t.Hour()*60 + t.Minute()
	if m < l.OpenHour*60 || m >= l.CloseHour*60 {
		return Slot{}, false
	}
	m -= (m - l.OpenHour*60) % l.SlotMinutes
	return Slot{Hour: m / 60, Minute: m % 60}, true
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// BlockHeight is proportional to duration with a floor for very short appointments.
func (l Layout) BlockHeight(d time.Duration) float64 {
	return math.Max(d.Hours()*l.PixelsPerHour, l.MinBlockHeight)
}

// BlockTop is the offset of start within the slot beginning at slotStart.
func (l Layout) BlockTop(start, slotStart time.Time) float64 {
	return start.Sub(slotStart).Hours() * l.PixelsPerHour
}
