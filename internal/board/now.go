package board

import "time"

// NowIndicator positions the current-time line on the grid.
type NowIndicator struct {
	Time  time.Time `json:"time"`
	TopPx float64   `json:"top"`
}

// Now returns the indicator for the day being shown, or nil when the day is not
// today or now is outside opening hours. The closing minute itself still shows.
func (l Layout) Now(day, now time.Time) *NowIndicator {
	day = day.In(l.Location)
	now = now.In(l.Location)

	dy, dm, dd := day.Date()
	ny, nm, nd := now.Date()
	if dy != ny || dm != nm || dd != nd {
		return nil
	}

	minutes := now.Hour()*60 + now.Minute()
	open, closing := l.OpenHour*60, l.CloseHour*60
	if minutes < open || minutes > closing {
		return nil
	}

	return &NowIndicator{
		Time:  now,
		TopPx: float64(minutes-open)*l.PixelsPerHour/60 + l.HeaderOffset,
	}
}
