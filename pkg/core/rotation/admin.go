package rotation

import (
	"time"

	"github.com/bpamb/escala/pkg/core/calendar"
	"github.com/bpamb/escala/pkg/core/model"
)

// DefaultAdminTeams is the administrative (expediente) rotation
var DefaultAdminTeams = []string{"ALFA", "BRAVO", "CHARLIE"}

// AdminRotation assigns administrative teams over business days only
type AdminRotation struct {
	Teams    []string
	Holidays *calendar.HolidayOracle
	Optional *calendar.HolidayOracle // pontos facultativos

	// Epoch is the day the rotation counts from. Zero means January 1 of the date's year.
	Epoch time.Time
}

// WorksOnDay reports whether date is a weekday that is neither a holiday nor a ponto facultativo
func (a *AdminRotation) WorksOnDay(date time.Time) bool {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !a.Holidays.IsHoliday(date) && !a.Optional.IsHoliday(date)
}

// RotateTeams returns the administrative team for date, or false on non-working days
func (a *AdminRotation) RotateTeams(date time.Time) (string, bool) {
	if len(a.Teams) == 0 || !a.WorksOnDay(date) {
		return "", false
	}

	epoch := a.Epoch
	if epoch.IsZero() {
		epoch = calendar.StartOfYear(date.Year())
	}
	epoch = calendar.Day(epoch)
	target := calendar.Day(date)

	// Working days strictly between epoch and date
	count := 0
	for d := epoch.AddDate(0, 0, 1); d.Before(target); d = d.AddDate(0, 0, 1) {
		if a.WorksOnDay(d) {
			count++
		}
	}

	return a.Teams[count%len(a.Teams)], true
}

// Resolve applies a per-date override before the rotation. overrides is keyed by "2006-01-02".
func (a *AdminRotation) Resolve(date time.Time, overrides map[string]string) model.AdminAssignment {
	day := calendar.FormatDate(date)
	works := a.WorksOnDay(date)

	if team, ok := overrides[day]; ok && team != "" {
		return model.AdminAssignment{Date: day, WorksOnDay: works, Team: team, Overridden: true}
	}

	team, _ := a.RotateTeams(date)
	return model.AdminAssignment{Date: day, WorksOnDay: works, Team: team}
}
