package rotation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpamb/escala/pkg/core/calendar"
	"github.com/bpamb/escala/pkg/core/model"
	"github.com/bpamb/escala/pkg/db"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := calendar.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestResolveTeam_GuardaDefaultStart(t *testing.T) {
	r := NewTeamResolver(MustDefaultTable(), nil, nil)

	team, err := r.ResolveTeam(mustDate(t, "2026-01-01"), "Guarda")
	require.NoError(t, err)
	assert.Equal(t, "Bravo", team)

	team, err = r.ResolveTeam(mustDate(t, "2026-01-02"), "Guarda")
	require.NoError(t, err)
	assert.Equal(t, "Charlie", team)

	team, err = r.ResolveTeam(mustDate(t, "2026-01-03"), "Guarda")
	require.NoError(t, err)
	assert.Equal(t, "Delta", team)

	team, err = r.ResolveTeam(mustDate(t, "2026-01-04"), "Guarda")
	require.NoError(t, err)
	assert.Equal(t, "Alfa", team)
}

func TestResolveTeam_CaseInsensitiveUnit(t *testing.T) {
	r := NewTeamResolver(MustDefaultTable(), nil, nil)

	team, err := r.ResolveTeam(mustDate(t, "2026-01-01"), "guarda")
	require.NoError(t, err)
	assert.Equal(t, "Bravo", team)
}

func TestResolveTeam_Deterministic(t *testing.T) {
	r := NewTeamResolver(MustDefaultTable(), nil, nil)
	d := mustDate(t, "2026-07-19")

	first, err := r.ResolveTeam(d, UnitGTA)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := r.ResolveTeam(d, UnitGTA)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestResolveTeam_CyclePeriodicity(t *testing.T) {
	r := NewTeamResolver(MustDefaultTable(), nil, nil)

	for _, unit := range MustDefaultTable().Units() {
		start := mustDate(t, "2026-01-01")
		for offset := 0; offset < 40; offset++ {
			base := start.AddDate(0, 0, offset)
			want, err := r.ResolveTeam(base, unit.Name)
			require.NoError(t, err)

			for k := 1; k <= 5; k++ {
				shifted := base.AddDate(0, 0, unit.CycleLengthDays*k)
				if shifted.Year() != base.Year() {
					break
				}
				got, err := r.ResolveTeam(shifted, unit.Name)
				require.NoError(t, err)
				assert.Equal(t, want, got, "%s %s +%d cycles", unit.Name, calendar.FormatDate(base), k)
			}
		}
	}
}

func TestCyclicTeam_CycleLongerThanTeamList(t *testing.T) {
	gta := model.UnitConfig{
		Name:             "GTA",
		Teams:            []string{"Alfa", "Bravo", "Charlie"},
		CycleLengthDays:  6,
		DefaultStartTeam: "Alfa",
	}

	got := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		got = append(got, CyclicTeam(gta, "Alfa", mustDate(t, "2026-01-01").AddDate(0, 0, i)))
	}

	// Position runs 0..5 then restarts, while the team index wraps every 3
	assert.Equal(t, []string{"Alfa", "Bravo", "Charlie", "Alfa", "Bravo", "Charlie", "Alfa", "Bravo"}, got)
}

func TestCyclicTeam_RestartsEachYear(t *testing.T) {
	guarda, err := MustDefaultTable().Lookup(UnitGuarda)
	require.NoError(t, err)

	assert.Equal(t, "Bravo", CyclicTeam(guarda, "Bravo", mustDate(t, "2025-01-01")))
	assert.Equal(t, "Bravo", CyclicTeam(guarda, "Bravo", mustDate(t, "2026-01-01")))
}

func TestResolveTeam_OverrideWins(t *testing.T) {
	overrides := []db.TeamOverride{
		{Date: "2026-01-01", Unit: "Guarda", TeamID: "Delta", Reason: "Troca de serviço"},
	}
	r := NewTeamResolver(MustDefaultTable(), overrides, nil)

	a, err := r.Resolve(mustDate(t, "2026-01-01"), "Guarda")
	require.NoError(t, err)
	assert.Equal(t, "Delta", a.Team)
	assert.True(t, a.Overridden)
	assert.Equal(t, "Troca de serviço", a.Reason)

	// Neighbouring days and other units keep the cyclic team
	team, err := r.ResolveTeam(mustDate(t, "2026-01-02"), "Guarda")
	require.NoError(t, err)
	assert.Equal(t, "Charlie", team)

	team, err = r.ResolveTeam(mustDate(t, "2026-01-01"), UnitArmaria)
	require.NoError(t, err)
	assert.Equal(t, "Bravo", team)
}

func TestResolveTeam_OverrideOnHoliday(t *testing.T) {
	overrides := []db.TeamOverride{
		{Date: "2026-12-25", Unit: "GTA", TeamID: "Charlie"},
	}
	r := NewTeamResolver(MustDefaultTable(), overrides, nil)

	team, err := r.ResolveTeam(mustDate(t, "2026-12-25"), UnitGTA)
	require.NoError(t, err)
	assert.Equal(t, "Charlie", team)
}

func TestResolveTeam_LastOverrideWins(t *testing.T) {
	overrides := []db.TeamOverride{
		{Date: "2026-03-01", Unit: "Guarda", TeamID: "Alfa"},
		{Date: "2026-03-01", Unit: "GUARDA", TeamID: "Delta"},
	}
	r := NewTeamResolver(MustDefaultTable(), overrides, nil)

	team, err := r.ResolveTeam(mustDate(t, "2026-03-01"), "Guarda")
	require.NoError(t, err)
	assert.Equal(t, "Delta", team)
}

func TestResolveTeam_RotationStartConfig(t *testing.T) {
	starts := []db.RotationStart{{Unit: "Guarda", Year: 2026, TeamID: "Alfa"}}
	r := NewTeamResolver(MustDefaultTable(), nil, starts)

	team, err := r.ResolveTeam(mustDate(t, "2026-01-01"), "Guarda")
	require.NoError(t, err)
	assert.Equal(t, "Alfa", team)

	// Other years fall back to the default start team
	team, err = r.ResolveTeam(mustDate(t, "2025-01-01"), "Guarda")
	require.NoError(t, err)
	assert.Equal(t, "Bravo", team)
}

func TestResolveTeam_InvalidRotationStartIgnored(t *testing.T) {
	starts := []db.RotationStart{{Unit: "GTA", Year: 2026, TeamID: "Delta"}}
	r := NewTeamResolver(MustDefaultTable(), nil, starts)

	team, err := r.ResolveTeam(mustDate(t, "2026-01-01"), UnitGTA)
	require.NoError(t, err)
	assert.Equal(t, "Alfa", team)
}

func TestResolveTeam_UnknownUnit(t *testing.T) {
	r := NewTeamResolver(MustDefaultTable(), nil, nil)

	_, err := r.ResolveTeam(mustDate(t, "2026-01-01"), "Cavalaria")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownUnit)
}

func TestNewTable_Validation(t *testing.T) {
	_, err := NewTable(model.UnitConfig{Name: "Vazia", CycleLengthDays: 4})
	assert.Error(t, err)

	_, err = NewTable(model.UnitConfig{Name: "X", Teams: []string{"A"}, CycleLengthDays: 0, DefaultStartTeam: "A"})
	assert.Error(t, err)

	_, err = NewTable(model.UnitConfig{Name: "X", Teams: []string{"A", "a"}, CycleLengthDays: 2, DefaultStartTeam: "A"})
	assert.Error(t, err)

	_, err = NewTable(model.UnitConfig{Name: "X", Teams: []string{"A"}, CycleLengthDays: 2, DefaultStartTeam: "B"})
	assert.Error(t, err)

	unit := model.UnitConfig{Name: "X", Teams: []string{"A"}, CycleLengthDays: 1, DefaultStartTeam: "A"}
	_, err = NewTable(unit, unit)
	assert.Error(t, err)
}

func TestTable_UnitsKeepsOrder(t *testing.T) {
	units := MustDefaultTable().Units()
	require.Len(t, units, 4)
	assert.Equal(t, UnitGuarda, units[0].Name)
	assert.Equal(t, UnitGTA, units[3].Name)
}

func newAdmin(t *testing.T) *AdminRotation {
	t.Helper()
	return &AdminRotation{
		Teams:    DefaultAdminTeams,
		Holidays: calendar.DefaultHolidays(),
		Optional: calendar.DefaultOptionalDays(),
	}
}

func TestWorksOnDay(t *testing.T) {
	a := newAdmin(t)

	assert.True(t, a.WorksOnDay(mustDate(t, "2026-01-02")), "Friday")
	assert.False(t, a.WorksOnDay(mustDate(t, "2026-01-03")), "Saturday")
	assert.False(t, a.WorksOnDay(mustDate(t, "2026-01-04")), "Sunday")
	assert.False(t, a.WorksOnDay(mustDate(t, "2026-01-01")), "holiday")
	assert.False(t, a.WorksOnDay(mustDate(t, "2026-02-16")), "ponto facultativo")
	assert.True(t, a.WorksOnDay(mustDate(t, "2026-02-19")))
}

func TestWorksOnDay_WeekendsAcrossYear(t *testing.T) {
	a := newAdmin(t)
	for _, d := range calendar.DaysInMonth(2026, time.August) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			assert.False(t, a.WorksOnDay(d), calendar.FormatDate(d))
		}
	}
}

func TestRotateTeams(t *testing.T) {
	a := newAdmin(t)

	cases := []struct {
		date string
		team string
	}{
		{"2026-01-02", "ALFA"},    // no working days strictly between Jan 1 and Jan 2
		{"2026-01-05", "BRAVO"},   // Jan 2
		{"2026-01-06", "CHARLIE"}, // Jan 2, Jan 5
		{"2026-01-07", "ALFA"},
	}
	for _, tc := range cases {
		team, ok := a.RotateTeams(mustDate(t, tc.date))
		require.True(t, ok, tc.date)
		assert.Equal(t, tc.team, team, tc.date)
	}
}

func TestRotateTeams_NonWorkingDay(t *testing.T) {
	a := newAdmin(t)

	for _, d := range []string{"2026-01-03", "2026-01-04", "2026-12-25", "2026-02-17"} {
		team, ok := a.RotateTeams(mustDate(t, d))
		assert.False(t, ok, d)
		assert.Empty(t, team, d)
	}
}

func TestRotateTeams_SkipsHolidaysInCount(t *testing.T) {
	a := newAdmin(t)

	// 2026-04-03 (Good Friday) is skipped; Apr 6 follows Apr 2 in the rotation
	before, ok := a.RotateTeams(mustDate(t, "2026-04-02"))
	require.True(t, ok)
	after, ok := a.RotateTeams(mustDate(t, "2026-04-06"))
	require.True(t, ok)

	idx := func(team string) int {
		for i, tm := range DefaultAdminTeams {
			if tm == team {
				return i
			}
		}
		return -1
	}
	assert.Equal(t, (idx(before)+1)%len(DefaultAdminTeams), idx(after))
}

func TestAdminResolve_OverrideWins(t *testing.T) {
	a := newAdmin(t)
	overrides := map[string]string{"2026-01-05": "CHARLIE"}

	got := a.Resolve(mustDate(t, "2026-01-05"), overrides)
	assert.Equal(t, "CHARLIE", got.Team)
	assert.True(t, got.Overridden)
	assert.True(t, got.WorksOnDay)

	got = a.Resolve(mustDate(t, "2026-01-06"), overrides)
	assert.Equal(t, "CHARLIE", got.Team)
	assert.False(t, got.Overridden)

	got = a.Resolve(mustDate(t, "2026-01-03"), overrides)
	assert.Empty(t, got.Team)
	assert.False(t, got.WorksOnDay)
}
