package roster

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bpamb/escala/pkg/core/availability"
	"github.com/bpamb/escala/pkg/core/calendar"
	"github.com/bpamb/escala/pkg/core/model"
	"github.com/bpamb/escala/pkg/core/rotation"
	"github.com/bpamb/escala/pkg/db"
)

// Deps are the resolved inputs an Assembler works from
type Deps struct {
	Table      *rotation.Table
	Teams      *rotation.TeamResolver
	Statuses   *availability.Resolver
	Holidays   *calendar.HolidayOracle
	People     []db.Person
	Members    []db.TeamMember
	Volunteers VolunteerStore
}

// Assembler builds daily rosters for every configured unit
type Assembler struct {
	table      *rotation.Table
	teams      *rotation.TeamResolver
	statuses   *availability.Resolver
	holidays   *calendar.HolidayOracle
	people     map[string]db.Person
	members    []db.TeamMember
	volunteers VolunteerStore
}

func NewAssembler(deps Deps) *Assembler {
	people := make(map[string]db.Person, len(deps.People))
	for _, p := range deps.People {
		people[p.ID] = p
	}
	return &Assembler{
		table:      deps.Table,
		teams:      deps.Teams,
		statuses:   deps.Statuses,
		holidays:   deps.Holidays,
		people:     people,
		members:    deps.Members,
		volunteers: deps.Volunteers,
	}
}

// AssembleDay resolves every unit's team, members and statuses for date
func (a *Assembler) AssembleDay(ctx context.Context, date time.Time) (model.DayRoster, error) {
	day := calendar.FormatDate(date)

	var volunteers []db.VolunteerEntry
	if a.volunteers != nil {
		var err error
		volunteers, err = a.volunteers.ListVolunteers(ctx, day)
		if err != nil {
			return model.DayRoster{}, fmt.Errorf("failed to list volunteers for %s: %w", day, err)
		}
	}

	result := model.DayRoster{
		Date:    day,
		Holiday: a.holidays.IsHoliday(date),
		Totals:  model.NewStatusCounts(),
	}

	for _, unit := range a.table.Units() {
		ur, err := a.assembleUnit(unit, date, volunteers)
		if err != nil {
			return model.DayRoster{}, err
		}
		result.Totals.Add(ur.Counts)
		result.Units = append(result.Units, ur)
	}

	return result, nil
}

// AssembleMonth returns one DayRoster per day of the month
func (a *Assembler) AssembleMonth(ctx context.Context, year int, month time.Month) ([]model.DayRoster, error) {
	days := calendar.DaysInMonth(year, month)
	out := make([]model.DayRoster, 0, len(days))
	for _, d := range days {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dr, err := a.AssembleDay(ctx, d)
		if err != nil {
			return nil, err
		}
		out = append(out, dr)
	}
	return out, nil
}

func (a *Assembler) assembleUnit(unit model.UnitConfig, date time.Time, volunteers []db.VolunteerEntry) (model.UnitRoster, error) {
	assignment, err := a.teams.Resolve(date, unit.Name)
	if err != nil {
		return model.UnitRoster{}, fmt.Errorf("failed to resolve team for %s: %w", unit.Name, err)
	}

	ur := model.UnitRoster{
		Unit:       unit.Name,
		Team:       assignment.Team,
		Overridden: assignment.Overridden,
		Reason:     assignment.Reason,
		Members:    []model.RosterMember{},
		Counts:     model.NewStatusCounts(),
	}

	present := make(map[string]bool)
	for _, m := range TeamMembers(a.members, unit.Grouping, assignment.Team) {
		if present[m.PersonID] {
			continue
		}
		present[m.PersonID] = true

		member := a.member(m.PersonID)
		member.Role = m.Role
		member.Status = a.statuses.Resolve(m.PersonID, date, volunteers)
		ur.Members = append(ur.Members, member)
	}

	for _, v := range volunteers {
		if !volunteerForUnit(v, unit) || present[v.PersonID] {
			continue
		}
		present[v.PersonID] = true

		member := a.member(v.PersonID)
		member.Status = model.Status{Kind: model.StatusVoluntario, Reason: availability.ReasonVolunteer}
		member.IsVolunteer = true
		member.Team = v.Team
		member.Observation = v.Observation
		ur.Members = append(ur.Members, member)
	}

	for _, m := range ur.Members {
		ur.Counts[m.Status.Kind]++
	}

	return ur, nil
}

func (a *Assembler) member(personID string) model.RosterMember {
	p, ok := a.people[personID]
	if !ok {
		return model.RosterMember{PersonID: personID, FullName: personID}
	}
	return model.RosterMember{
		PersonID:     p.ID,
		FullName:     p.FullName,
		ShortName:    p.ShortName,
		Rank:         p.Rank,
		Registration: p.Registration,
	}
}

// TeamMembers returns the members registered for team within grouping. Names
// match case-insensitively; when nothing matches exactly, any team name in the
// same grouping that contains team is accepted ("Equipe Alfa" for "Alfa").
func TeamMembers(members []db.TeamMember, grouping, team string) []db.TeamMember {
	team = strings.TrimSpace(team)
	if team == "" {
		return nil
	}

	var exact, partial []db.TeamMember
	upperTeam := strings.ToUpper(team)
	for _, m := range members {
		if !strings.EqualFold(strings.TrimSpace(m.Grouping), grouping) {
			continue
		}
		name := strings.TrimSpace(m.TeamName)
		if strings.EqualFold(name, team) {
			exact = append(exact, m)
		} else if strings.Contains(strings.ToUpper(name), upperTeam) {
			partial = append(partial, m)
		}
	}

	if len(exact) > 0 {
		return exact
	}
	return partial
}

func volunteerForUnit(v db.VolunteerEntry, unit model.UnitConfig) bool {
	u := strings.TrimSpace(v.Unit)
	return strings.EqualFold(u, unit.Name) || strings.EqualFold(u, unit.Grouping)
}
