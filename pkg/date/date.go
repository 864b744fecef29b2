package date

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

func Format(t time.Time) string {
	return t.Format("2006-01-02")
}

func Parse(s string) (*time.Time, error) {
	if strings.Contains(s, "T") {
		s = s[:strings.Index(s, "T")]
	}

	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid date: %s", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid year: %s", parts[0])
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid month: %s", parts[1])
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil, fmt.Errorf("invalid day: %s", parts[2])
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)

	return &t, nil
}

// Window is a half-open [Start, End) range of calendar days.
type Window struct {
	Start time.Time
	End   time.Time
}

func NewWindow(start time.Time, days int) Window {
	return Window{Start: start, End: start.AddDate(0, 0, days)}
}

// Days returns every day in the window in ascending order.
func (w Window) Days() []time.Time {
	var days []time.Time
	for cur := w.Start; cur.Before(w.End); cur = cur.AddDate(0, 0, 1) {
		days = append(days, cur)
	}
	return days
}

// Last reports whether the day after t falls outside the window.
func (w Window) Last(t time.Time) bool {
	return !w.End.After(t.AddDate(0, 0, 1))
}
