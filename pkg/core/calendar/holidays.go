package calendar

import (
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"
)

// Holiday is a named non-working date
type Holiday struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// HolidayOracle answers exact date membership against a year-keyed set.
// Years with no entries have no holidays.
type HolidayOracle struct {
	years map[int]map[string]string
}

// NewHolidayOracle creates an oracle seeded with the given holidays
func NewHolidayOracle(holidays ...Holiday) (*HolidayOracle, error) {
	o := &HolidayOracle{years: make(map[int]map[string]string)}
	for _, h := range holidays {
		if err := o.Add(h.Date, h.Name); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Add registers a holiday date
func (o *HolidayOracle) Add(date, name string) error {
	t, err := ParseDate(date)
	if err != nil {
		return fmt.Errorf("failed to add holiday: %w", err)
	}
	o.set(t, name)
	return nil
}

func (o *HolidayOracle) set(t time.Time, name string) {
	year := t.Year()
	if o.years[year] == nil {
		o.years[year] = make(map[string]string)
	}
	o.years[year][FormatDate(t)] = name
}

// AddRule expands a recurrence rule (e.g. "FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25")
// over the years [fromYear, toYear] and registers every occurrence
func (o *HolidayOracle) AddRule(name, rule string, fromYear, toYear int) error {
	opt, err := rrule.StrToROption(rule)
	if err != nil {
		return fmt.Errorf("invalid rrule for %q: %w", name, err)
	}
	if opt.Dtstart.IsZero() {
		opt.Dtstart = StartOfYear(fromYear)
	}

	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return fmt.Errorf("invalid rrule for %q: %w", name, err)
	}

	for _, occurrence := range r.Between(StartOfYear(fromYear), EndOfYear(toYear), true) {
		o.set(Day(occurrence), name)
	}
	return nil
}

// IsHoliday reports whether t is a registered holiday
func (o *HolidayOracle) IsHoliday(t time.Time) bool {
	if o == nil {
		return false
	}
	dates, ok := o.years[t.Year()]
	if !ok {
		return false
	}
	_, ok = dates[FormatDate(t)]
	return ok
}

// Name returns the holiday name for t, or "" when t is not a holiday
func (o *HolidayOracle) Name(t time.Time) string {
	if o == nil {
		return ""
	}
	return o.years[t.Year()][FormatDate(t)]
}

// Holidays returns the year's holidays sorted by date
func (o *HolidayOracle) Holidays(year int) []Holiday {
	if o == nil {
		return nil
	}
	dates := o.years[year]
	holidays := make([]Holiday, 0, len(dates))
	for date, name := range dates {
		holidays = append(holidays, Holiday{Date: date, Name: name})
	}
	sort.Slice(holidays, func(i, j int) bool {
		return holidays[i].Date < holidays[j].Date
	})
	return holidays
}
