package calendar

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the storage and wire format of calendar dates
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned when a caller supplies an unparsable date
var ErrInvalidDate = errors.New("invalid date")

// ParseDate parses a "2006-01-02" string into UTC midnight
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, s, err)
	}
	return t, nil
}

// FormatDate formats t as "2006-01-02"
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Day normalizes t to midnight UTC of the same calendar day
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfYear returns January 1 of year
func StartOfYear(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// EndOfYear returns December 31 of year
func EndOfYear(year int) time.Time {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole number of days from a to b (negative if b is before a)
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// DaysInMonth returns every date of the month in order
func DaysInMonth(year int, month time.Month) []time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := make([]time.Time, 0, 31)
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Range is an inclusive span of calendar days
type Range struct {
	Start time.Time
	End   time.Time
}

// ParseRange builds a range from two stored dates.
// It returns false when either bound is missing or unparsable, or when end precedes start.
func ParseRange(start, end string) (Range, bool) {
	if start == "" || end == "" {
		return Range{}, false
	}
	s, err := ParseDate(start)
	if err != nil {
		return Range{}, false
	}
	e, err := ParseDate(end)
	if err != nil {
		return Range{}, false
	}
	if e.Before(s) {
		return Range{}, false
	}
	return Range{Start: s, End: e}, true
}

// OpenRange builds a range whose missing end is replaced by openEnd.
// It returns false when start is missing or any present date is unparsable.
func OpenRange(start, end string, openEnd time.Time) (Range, bool) {
	if end == "" {
		s, err := ParseDate(start)
		if err != nil {
			return Range{}, false
		}
		return Range{Start: s, End: Day(openEnd)}, true
	}
	return ParseRange(start, end)
}

// Contains reports whether t falls on a day within [Start, End]
func (r Range) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Overlaps reports whether the range shares at least one day with other
func (r Range) Overlaps(other Range) bool {
	return !r.End.Before(other.Start) && !other.End.Before(r.Start)
}
