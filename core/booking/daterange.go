package booking

import (
	"fmt"
	"time"
)

// DateLayout is the wire layout used for stay dates by every channel.
const DateLayout = "2006-01-02"

// DateRange is an inclusive window of stay dates.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// NewDateRange builds a range starting at from and spanning days days.
func NewDateRange(from time.Time, days int) DateRange {
	start := truncateDay(from)
	return DateRange{From: start, To: start.AddDate(0, 0, days)}
}

// ParseDateRange parses two YYYY-MM-DD values.
func ParseDateRange(from, to string) (DateRange, error) {
	f, err := time.Parse(DateLayout, from)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid from date %q: %w", from, err)
	}
	t, err := time.Parse(DateLayout, to)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid to date %q: %w", to, err)
	}
	r := DateRange{From: f, To: t}
	return r, r.Validate()
}

// Validate rejects empty and inverted windows.
func (r DateRange) Validate() error {
	if r.From.IsZero() || r.To.IsZero() {
		return fmt.Errorf("date range requires both from and to")
	}
	if r.To.Before(r.From) {
		return fmt.Errorf("date range end %s is before start %s", r.To.Format(DateLayout), r.From.Format(DateLayout))
	}
	return nil
}

// FromString returns the start date in wire layout.
func (r DateRange) FromString() string {
	return r.From.Format(DateLayout)
}

// ToString returns the end date in wire layout.
func (r DateRange) ToString() string {
	return r.To.Format(DateLayout)
}

// ParseDate parses a wire date, tolerating full RFC3339 timestamps.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return truncateDay(t.UTC()), nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
