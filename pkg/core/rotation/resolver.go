package rotation

import (
	"strings"
	"time"

	"github.com/bpamb/escala/pkg/core/calendar"
	"github.com/bpamb/escala/pkg/core/model"
	"github.com/bpamb/escala/pkg/db"
)

// Assignment is the team on duty for a unit on a date
type Assignment struct {
	Unit       string
	Team       string
	Overridden bool
	Reason     string
}

type unitDay struct {
	unit string
	date string
}

type unitYear struct {
	unit string
	year int
}

// TeamResolver resolves the on-duty team of a unit for a date. It is built
// from one snapshot of overrides and rotation starts and never mutates them.
type TeamResolver struct {
	table     *Table
	overrides map[unitDay]db.TeamOverride
	starts    map[unitYear]string
}

// NewTeamResolver indexes overrides and rotation starts. When two records share a
// key the later one wins, so callers pass overrides in write order.
func NewTeamResolver(table *Table, overrides []db.TeamOverride, starts []db.RotationStart) *TeamResolver {
	r := &TeamResolver{
		table:     table,
		overrides: make(map[unitDay]db.TeamOverride, len(overrides)),
		starts:    make(map[unitYear]string, len(starts)),
	}
	for _, o := range overrides {
		r.overrides[unitDay{unit: strings.ToUpper(o.Unit), date: o.Date}] = o
	}
	for _, s := range starts {
		r.starts[unitYear{unit: strings.ToUpper(s.Unit), year: s.Year}] = s.TeamID
	}
	return r
}

// ResolveTeam returns the team on duty for unit on date
func (r *TeamResolver) ResolveTeam(date time.Time, unit string) (string, error) {
	a, err := r.Resolve(date, unit)
	if err != nil {
		return "", err
	}
	return a.Team, nil
}

// Resolve applies a manual override when one exists, otherwise the cyclic formula
func (r *TeamResolver) Resolve(date time.Time, unit string) (Assignment, error) {
	cfg, err := r.table.Lookup(unit)
	if err != nil {
		return Assignment{}, err
	}

	key := unitDay{unit: strings.ToUpper(cfg.Name), date: calendar.FormatDate(date)}
	if o, ok := r.overrides[key]; ok {
		return Assignment{
			Unit:       cfg.Name,
			Team:       o.TeamID,
			Overridden: true,
			Reason:     o.Reason,
		}, nil
	}

	return Assignment{
		Unit: cfg.Name,
		Team: CyclicTeam(cfg, r.StartTeam(cfg, date.Year()), date),
	}, nil
}

// StartTeam returns the team active on January 1 of year for the unit.
// A configured start team that is not one of the unit's teams is ignored.
func (r *TeamResolver) StartTeam(cfg model.UnitConfig, year int) string {
	if team, ok := r.starts[unitYear{unit: strings.ToUpper(cfg.Name), year: year}]; ok {
		if cfg.TeamIndex(team) >= 0 {
			return team
		}
	}
	return cfg.DefaultStartTeam
}

// CyclicTeam computes the team for date from the unit's cycle, using January 1
// of the date's own year as epoch. The cycle position is taken modulo the cycle
// length and the team index modulo the team count, so units whose cycle length
// differs from their team count repeat teams within one cycle.
func CyclicTeam(cfg model.UnitConfig, startTeam string, date time.Time) string {
	daysSinceEpoch := calendar.DaysBetween(calendar.StartOfYear(date.Year()), date)
	cycleLength := cfg.CycleLengthDays
	cyclePosition := ((daysSinceEpoch % cycleLength) + cycleLength) % cycleLength

	startIndex := cfg.TeamIndex(startTeam)
	if startIndex < 0 {
		startIndex = cfg.TeamIndex(cfg.DefaultStartTeam)
	}

	return cfg.Teams[(startIndex+cyclePosition)%len(cfg.Teams)]
}
