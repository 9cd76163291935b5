package dag

import (
	"fmt"
	"time"
)

// Schedule is a preset interval between DAG runs.
type Schedule string

// Supported presets. Weekly periods start on Sunday, like the cron
// expression "0 0 * * 0" the preset stands for.
const (
	Daily   Schedule = "@daily"
	Weekly  Schedule = "@weekly"
	Monthly Schedule = "@monthly"
	Yearly  Schedule = "@yearly"
)

// ParseSchedule validates s.
func ParseSchedule(s string) (Schedule, error) {
	switch sc := Schedule(s); sc {
	case Daily, Weekly, Monthly, Yearly:
		return sc, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSchedule, s)
}

// ParseDS parses a YYYY-MM-DD date stamp.
func ParseDS(ds string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, ds)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDS, ds)
	}
	return t, nil
}

// FormatDS formats t as a date stamp.
func FormatDS(t time.Time) string {
	return t.Format(time.DateOnly)
}

// Align returns the first period start on or after t.
func (s Schedule) Align(t time.Time) (time.Time, error) {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch s {
	case Daily:
		return t, nil
	case Weekly:
		offset := (7 - int(t.Weekday())) % 7
		return t.AddDate(0, 0, offset), nil
	case Monthly:
		if t.Day() == 1 {
			return t, nil
		}
		return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC), nil
	case Yearly:
		if t.Month() == time.January && t.Day() == 1 {
			return t, nil
		}
		return time.Date(t.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownSchedule, string(s))
}

// Next returns the first period start after t. For an aligned t this is
// the start of the following period.
func (s Schedule) Next(t time.Time) (time.Time, error) {
	return s.Align(t.AddDate(0, 0, 1))
}

// NextDS returns next_ds for the period starting at ds.
func (s Schedule) NextDS(ds string) (string, error) {
	t, err := ParseDS(ds)
	if err != nil {
		return "", err
	}
	next, err := s.Next(t)
	if err != nil {
		return "", err
	}
	return FormatDS(next), nil
}

// Periods returns the start of every period beginning between from and
// until, both inclusive.
func (s Schedule) Periods(from, until string) ([]string, error) {
	start, err := ParseDS(from)
	if err != nil {
		return nil, err
	}
	end, err := ParseDS(until)
	if err != nil {
		return nil, err
	}

	t, err := s.Align(start)
	if err != nil {
		return nil, err
	}

	var out []string
	for !t.After(end) {
		out = append(out, FormatDS(t))
		if t, err = s.Next(t); err != nil {
			return nil, err
		}
	}
	return out, nil
}
