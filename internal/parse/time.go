package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var clockRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// localLayouts are accepted timestamp forms without a zone offset.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Timestamp parses an appointment timestamp. Values carrying an offset keep it;
// values without one are read as wall time in loc.
func Timestamp(raw string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp: %q", raw)
}

// Date parses a YYYY-MM-DD calendar day and returns its midnight in loc.
func Date(raw string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date: %q", raw)
	}
	return t, nil
}

// Clock parses an HH:MM wall-clock time.
func Clock(raw string) (hour, minute int, err error) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, 0, fmt.Errorf("unable to parse time of day: %q", raw)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("time of day out of range: %q", raw)
	}
	return hour, minute, nil
}

// Day is a half-open [From, To) interval covering one calendar day.
type Day struct {
	From time.Time
	To   time.Time
}

// DayOf returns the calendar day containing t, as observed in loc.
func DayOf(t time.Time, loc *time.Location) Day {
	local := t.In(loc)
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	// AddDate keeps DST days at their real length.
	return Day{From: from, To: from.AddDate(0, 0, 1)}
}

// Contains reports whether t falls within the day.
func (d Day) Contains(t time.Time) bool {
	return !t.Before(d.From) && t.Before(d.To)
}

// String formats the day as YYYY-MM-DD.
func (d Day) String() string {
	return d.From.Format(DateLayout)
}
