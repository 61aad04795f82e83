package roster

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpamb/escala/pkg/core/availability"
	"github.com/bpamb/escala/pkg/core/calendar"
	"github.com/bpamb/escala/pkg/core/model"
	"github.com/bpamb/escala/pkg/core/rotation"
	"github.com/bpamb/escala/pkg/db"
)

var testNow = time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := calendar.ParseDate(s)
	require.NoError(t, err)
	return d
}

func testPeople() []db.Person {
	return []db.Person{
		{ID: "p1", FullName: "João da Silva", ShortName: "Silva", Rank: "Sd", Registration: "7301"},
		{ID: "p2", FullName: "Maria Souza", ShortName: "Souza", Rank: "Cb", Registration: "7302"},
		{ID: "p3", FullName: "Pedro Lima", ShortName: "Lima", Rank: "3º Sgt", Registration: "7303"},
		{ID: "p4", FullName: "Ana Costa", ShortName: "Costa", Rank: "Sd", Registration: "7304"},
	}
}

func testMembers() []db.TeamMember {
	return []db.TeamMember{
		{PersonID: "p1", Grouping: "GUARDA", TeamName: "Bravo", Role: "Comandante"},
		{PersonID: "p2", Grouping: "guarda", TeamName: "BRAVO"},
		{PersonID: "p3", Grouping: "GUARDA", TeamName: "Charlie"},
		{PersonID: "p4", Grouping: "GTA", TeamName: "Equipe Alfa"},
	}
}

func newAssembler(t *testing.T, records availability.Records, overrides []db.TeamOverride, store VolunteerStore) *Assembler {
	t.Helper()
	table := rotation.MustDefaultTable()
	return NewAssembler(Deps{
		Table:      table,
		Teams:      rotation.NewTeamResolver(table, overrides, nil),
		Statuses:   availability.NewResolver(records, testNow, nil),
		Holidays:   calendar.DefaultHolidays(),
		People:     testPeople(),
		Members:    testMembers(),
		Volunteers: store,
	})
}

func unitByName(t *testing.T, dr model.DayRoster, name string) model.UnitRoster {
	t.Helper()
	for _, u := range dr.Units {
		if u.Unit == name {
			return u
		}
	}
	t.Fatalf("unit %s not in roster", name)
	return model.UnitRoster{}
}

func TestAssembleDay_MembersAndStatuses(t *testing.T) {
	records := availability.Records{
		MedicalLeaves: []db.MedicalLeave{{PersonID: "p2", StartDate: "2026-01-01", EndDate: "2026-01-05"}},
	}
	a := newAssembler(t, records, nil, NewMemoryVolunteerStore())

	dr, err := a.AssembleDay(context.Background(), day(t, "2026-01-01"))
	require.NoError(t, err)

	assert.Equal(t, "2026-01-01", dr.Date)
	assert.True(t, dr.Holiday)
	require.Len(t, dr.Units, 4)
	assert.Equal(t, rotation.UnitGuarda, dr.Units[0].Unit)

	guarda := unitByName(t, dr, rotation.UnitGuarda)
	assert.Equal(t, "Bravo", guarda.Team)
	require.Len(t, guarda.Members, 2)
	assert.Equal(t, "p1", guarda.Members[0].PersonID)
	assert.Equal(t, "Comandante", guarda.Members[0].Role)
	assert.Equal(t, "Silva", guarda.Members[0].ShortName)
	assert.Equal(t, model.StatusApto, guarda.Members[0].Status.Kind)
	assert.Equal(t, model.StatusAtestado, guarda.Members[1].Status.Kind)

	assert.Equal(t, 1, guarda.Counts[model.StatusApto])
	assert.Equal(t, 1, guarda.Counts[model.StatusAtestado])
	assert.Equal(t, 0, guarda.Counts[model.StatusImpedido])
}

func TestAssembleDay_SubstringTeamFallback(t *testing.T) {
	a := newAssembler(t, availability.Records{}, nil, nil)

	dr, err := a.AssembleDay(context.Background(), day(t, "2026-01-01"))
	require.NoError(t, err)

	gta := unitByName(t, dr, rotation.UnitGTA)
	assert.Equal(t, "Alfa", gta.Team)
	require.Len(t, gta.Members, 1)
	assert.Equal(t, "p4", gta.Members[0].PersonID)
}

func TestAssembleDay_OverrideChangesMembers(t *testing.T) {
	overrides := []db.TeamOverride{{Date: "2026-01-01", Unit: "Guarda", TeamID: "Charlie", Reason: "Permuta"}}
	a := newAssembler(t, availability.Records{}, overrides, nil)

	dr, err := a.AssembleDay(context.Background(), day(t, "2026-01-01"))
	require.NoError(t, err)

	guarda := unitByName(t, dr, rotation.UnitGuarda)
	assert.Equal(t, "Charlie", guarda.Team)
	assert.True(t, guarda.Overridden)
	assert.Equal(t, "Permuta", guarda.Reason)
	require.Len(t, guarda.Members, 1)
	assert.Equal(t, "p3", guarda.Members[0].PersonID)
}

func TestAssembleDay_AppendsVolunteers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryVolunteerStore()
	require.NoError(t, store.AddVolunteer(ctx, db.VolunteerEntry{Date: "2026-01-01", PersonID: "p3", Unit: "Guarda", Team: "Delta", Observation: "Cobertura"}))
	// Already on the team; only the status changes
	require.NoError(t, store.AddVolunteer(ctx, db.VolunteerEntry{Date: "2026-01-01", PersonID: "p1", Unit: "Guarda"}))
	// Different unit, person not in the registry
	require.NoError(t, store.AddVolunteer(ctx, db.VolunteerEntry{Date: "2026-01-01", PersonID: "p9", Unit: "Armaria"}))

	a := newAssembler(t, availability.Records{}, nil, store)

	dr, err := a.AssembleDay(ctx, day(t, "2026-01-01"))
	require.NoError(t, err)

	guarda := unitByName(t, dr, rotation.UnitGuarda)
	require.Len(t, guarda.Members, 3)
	assert.Equal(t, model.StatusVoluntario, guarda.Members[0].Status.Kind)
	assert.False(t, guarda.Members[0].IsVolunteer)

	added := guarda.Members[2]
	assert.Equal(t, "p3", added.PersonID)
	assert.True(t, added.IsVolunteer)
	assert.Equal(t, "Cobertura", added.Observation)
	assert.Equal(t, "Delta", added.Team)
	assert.Equal(t, model.StatusVoluntario, added.Status.Kind)
	assert.Equal(t, "Extra remunerado", added.Status.Reason)

	armaria := unitByName(t, dr, rotation.UnitArmaria)
	require.Len(t, armaria.Members, 1)
	assert.True(t, armaria.Members[0].IsVolunteer)
	assert.Equal(t, "p9", armaria.Members[0].FullName)
	assert.Empty(t, armaria.Members[0].Team)

	// p1, p3 and p9 volunteer; p2 (Guarda) and p4 (GTA) are apto
	assert.Equal(t, 3, dr.Totals[model.StatusVoluntario])
	assert.Equal(t, 2, dr.Totals[model.StatusApto])
	assert.Equal(t, 5, dr.Totals.Total())
}

func TestAssembleDay_TotalsSumUnits(t *testing.T) {
	a := newAssembler(t, availability.Records{}, nil, nil)

	dr, err := a.AssembleDay(context.Background(), day(t, "2026-01-01"))
	require.NoError(t, err)

	sum := 0
	for _, u := range dr.Units {
		sum += u.Counts.Total()
	}
	assert.Equal(t, sum, dr.Totals.Total())
}

type failingStore struct{ MemoryVolunteerStore }

func (f *failingStore) ListVolunteers(context.Context, string) ([]db.VolunteerEntry, error) {
	return nil, errors.New("connection refused")
}

func TestAssembleDay_VolunteerStoreError(t *testing.T) {
	a := newAssembler(t, availability.Records{}, nil, &failingStore{})

	_, err := a.AssembleDay(context.Background(), day(t, "2026-01-01"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list volunteers")
}

func TestAssembleMonth(t *testing.T) {
	a := newAssembler(t, availability.Records{}, nil, nil)

	days, err := a.AssembleMonth(context.Background(), 2026, time.February)
	require.NoError(t, err)
	require.Len(t, days, 28)
	assert.Equal(t, "2026-02-01", days[0].Date)
	assert.Equal(t, "2026-02-28", days[27].Date)
}

func TestTeamMembers_ExactPreferredOverSubstring(t *testing.T) {
	members := []db.TeamMember{
		{PersonID: "a", Grouping: "GUARDA", TeamName: "Alfa"},
		{PersonID: "b", Grouping: "GUARDA", TeamName: "Alfa 2"},
		{PersonID: "c", Grouping: "ARMARIA", TeamName: "Alfa"},
	}

	got := TeamMembers(members, "GUARDA", "alfa")
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].PersonID)

	got = TeamMembers(members[1:], "GUARDA", "Alfa")
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].PersonID)

	assert.Empty(t, TeamMembers(members, "GUARDA", ""))
	assert.Empty(t, TeamMembers(members, "GTA", "Alfa"))
}

func TestMemoryVolunteerStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryVolunteerStore()

	require.NoError(t, s.AddVolunteer(ctx, db.VolunteerEntry{Date: "2026-01-01", PersonID: "p2", Unit: "Guarda"}))
	require.NoError(t, s.AddVolunteer(ctx, db.VolunteerEntry{Date: "2026-01-01", PersonID: "p1", Unit: "Guarda"}))
	require.NoError(t, s.AddVolunteer(ctx, db.VolunteerEntry{Date: "2026-01-01", PersonID: "p1", Unit: "GTA"}))

	got, err := s.ListVolunteers(ctx, "2026-01-01")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p1", got[0].PersonID)
	assert.Equal(t, "GTA", got[0].Unit)

	require.NoError(t, s.RemoveVolunteer(ctx, "2026-01-01", "p1"))
	got, err = s.ListVolunteers(ctx, "2026-01-01")
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, s.RemoveVolunteer(ctx, "2026-01-02", "nobody"))
	got, err = s.ListVolunteers(ctx, "2026-01-02")
	require.NoError(t, err)
	assert.Empty(t, got)
}
