package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpamb/escala/pkg/core/calendar"
	"github.com/bpamb/escala/pkg/core/model"
	"github.com/bpamb/escala/pkg/db"
)

const personID = "p-1"

var now = time.Date(2026, time.May, 10, 14, 30, 0, 0, time.UTC)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := calendar.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestResolve_NoRecordsIsApto(t *testing.T) {
	r := NewResolver(Records{}, now, nil)

	status := r.Resolve(personID, day(t, "2026-03-15"), nil)
	assert.Equal(t, model.Status{Kind: model.StatusApto}, status)
}

func TestResolve_ConfirmedLeaveSegment(t *testing.T) {
	r := NewResolver(Records{
		LeaveSegments: []db.LeaveSegment{
			{ID: "s1", PersonID: personID, Year: 2026, Days: 11, StartDate: "2026-03-10", EndDate: "2026-03-20"},
		},
	}, now, nil)

	status := r.Resolve(personID, day(t, "2026-03-15"), nil)
	assert.Equal(t, model.StatusImpedido, status.Kind)
	assert.Equal(t, "Férias", status.Reason)
	assert.Equal(t, "2026-03-20", status.ReturnDate)
	assert.False(t, status.IsForecast())

	status = r.Resolve(personID, day(t, "2026-03-21"), nil)
	assert.Equal(t, model.StatusApto, status.Kind)
}

func TestResolve_OtherPersonUnaffected(t *testing.T) {
	r := NewResolver(Records{
		LeaveSegments: []db.LeaveSegment{
			{PersonID: personID, Year: 2026, StartDate: "2026-03-10", EndDate: "2026-03-20"},
		},
	}, now, nil)

	assert.Equal(t, model.StatusApto, r.Resolve("p-2", day(t, "2026-03-15"), nil).Kind)
}

func TestResolve_ConfirmedLeaveBeatsMedicalLeave(t *testing.T) {
	// Insertion order must not matter
	records := Records{
		MedicalLeaves: []db.MedicalLeave{
			{PersonID: personID, StartDate: "2026-03-01", EndDate: "2026-03-31", Type: "Cirurgia"},
		},
		LeaveSegments: []db.LeaveSegment{
			{PersonID: personID, Year: 2026, StartDate: "2026-03-10", EndDate: "2026-03-20"},
		},
	}
	r := NewResolver(records, now, nil)

	status, rule := r.Explain(personID, day(t, "2026-03-15"), nil)
	assert.Equal(t, model.StatusImpedido, status.Kind)
	assert.Equal(t, "Férias", status.Reason)
	assert.Equal(t, "ConfirmedLeave", rule)

	status = r.Resolve(personID, day(t, "2026-03-25"), nil)
	assert.Equal(t, model.StatusAtestado, status.Kind)
	assert.Equal(t, "Cirurgia", status.Reason)
}

func TestResolve_MedicalLeaveDefaultReason(t *testing.T) {
	r := NewResolver(Records{
		MedicalLeaves: []db.MedicalLeave{
			{PersonID: personID, StartDate: "2026-02-01", EndDate: "2026-02-05"},
		},
	}, now, nil)

	status := r.Resolve(personID, day(t, "2026-02-03"), nil)
	assert.Equal(t, model.StatusAtestado, status.Kind)
	assert.Equal(t, "Licença Médica", status.Reason)
}

func TestResolve_OpenEndedMedicalLeaveRunsThroughNow(t *testing.T) {
	r := NewResolver(Records{
		MedicalLeaves: []db.MedicalLeave{
			{PersonID: personID, StartDate: "2026-05-01"},
		},
	}, now, nil)

	assert.Equal(t, model.StatusAtestado, r.Resolve(personID, day(t, "2026-05-10"), nil).Kind)
	assert.Equal(t, model.StatusApto, r.Resolve(personID, day(t, "2026-05-11"), nil).Kind)
}

func TestResolve_Restriction(t *testing.T) {
	r := NewResolver(Records{
		Restrictions: []db.MedicalRestriction{
			{PersonID: personID, StartDate: "2026-04-01", EndDate: "2026-04-30", RestrictionType: "Sem porte de arma"},
			{PersonID: personID, StartDate: "2026-05-01"},
		},
	}, now, nil)

	status := r.Resolve(personID, day(t, "2026-04-15"), nil)
	assert.Equal(t, model.StatusRestricao, status.Kind)
	assert.Equal(t, "Sem porte de arma", status.Reason)

	status = r.Resolve(personID, day(t, "2026-05-05"), nil)
	assert.Equal(t, model.StatusRestricao, status.Kind)
	assert.Equal(t, "Restrição", status.Reason)
}

func TestResolve_MedicalLeaveBeatsRestriction(t *testing.T) {
	r := NewResolver(Records{
		Restrictions: []db.MedicalRestriction{
			{PersonID: personID, StartDate: "2026-04-01", EndDate: "2026-04-30"},
		},
		MedicalLeaves: []db.MedicalLeave{
			{PersonID: personID, StartDate: "2026-04-10", EndDate: "2026-04-12"},
		},
	}, now, nil)

	assert.Equal(t, model.StatusAtestado, r.Resolve(personID, day(t, "2026-04-11"), nil).Kind)
	assert.Equal(t, model.StatusRestricao, r.Resolve(personID, day(t, "2026-04-13"), nil).Kind)
}

func TestResolve_Volunteer(t *testing.T) {
	r := NewResolver(Records{}, now, nil)
	volunteers := []db.VolunteerEntry{
		{Date: "2026-06-06", PersonID: personID, Unit: "Guarda"},
	}

	status := r.Resolve(personID, day(t, "2026-06-06"), volunteers)
	assert.Equal(t, model.StatusVoluntario, status.Kind)
	assert.Equal(t, "Extra remunerado", status.Reason)

	// Entries for another date do not apply
	assert.Equal(t, model.StatusApto, r.Resolve(personID, day(t, "2026-06-07"), volunteers).Kind)
}

func TestResolve_RestrictionBeatsVolunteer(t *testing.T) {
	r := NewResolver(Records{
		Restrictions: []db.MedicalRestriction{
			{PersonID: personID, StartDate: "2026-06-01", EndDate: "2026-06-30"},
		},
	}, now, nil)
	volunteers := []db.VolunteerEntry{{Date: "2026-06-06", PersonID: personID}}

	assert.Equal(t, model.StatusRestricao, r.Resolve(personID, day(t, "2026-06-06"), volunteers).Kind)
}

func TestResolve_LeaveForecast(t *testing.T) {
	r := NewResolver(Records{
		LeaveRequests: []db.LeaveRequest{
			{ID: "r1", PersonID: personID, Year: 2026, StartMonth: "JUL", EndMonth: "AGO"},
		},
		LeaveSegments: []db.LeaveSegment{
			{PersonID: personID, LeaveRequestID: "r1", Year: 2026, Month: "JUL", Days: 30},
		},
	}, now, nil)

	status := r.Resolve(personID, day(t, "2026-08-20"), nil)
	assert.Equal(t, model.StatusPrevisao, status.Kind)
	assert.Equal(t, "Férias (previsão)", status.Reason)
	assert.Equal(t, "AGO", status.ReturnDate)
	assert.Equal(t, model.ForecastLeave, status.Forecast)
	assert.True(t, status.IsForecast())

	assert.Equal(t, model.StatusApto, r.Resolve(personID, day(t, "2026-09-01"), nil).Kind)
	assert.Equal(t, model.StatusApto, r.Resolve(personID, day(t, "2027-07-15"), nil).Kind)
}

func TestResolve_LeaveForecastSingleMonth(t *testing.T) {
	r := NewResolver(Records{
		LeaveRequests: []db.LeaveRequest{
			{ID: "r1", PersonID: personID, Year: 2026, StartMonth: "Junho"},
		},
	}, now, nil)

	status := r.Resolve(personID, day(t, "2026-06-01"), nil)
	assert.Equal(t, model.StatusPrevisao, status.Kind)
	assert.Equal(t, "JUN", status.ReturnDate)
	assert.Equal(t, model.StatusApto, r.Resolve(personID, day(t, "2026-07-01"), nil).Kind)
}

func TestResolve_LeaveForecastAcrossYearEnd(t *testing.T) {
	r := NewResolver(Records{
		LeaveRequests: []db.LeaveRequest{
			{ID: "r1", PersonID: personID, Year: 2026, StartMonth: "NOV", EndMonth: "JAN"},
		},
	}, now, nil)

	status := r.Resolve(personID, day(t, "2026-12-10"), nil)
	assert.Equal(t, model.StatusPrevisao, status.Kind)
	assert.Equal(t, "JAN", status.ReturnDate)
	assert.Equal(t, model.StatusPrevisao, r.Resolve(personID, day(t, "2026-11-01"), nil).Kind)

	assert.Equal(t, model.StatusApto, r.Resolve(personID, day(t, "2026-10-31"), nil).Kind)
	assert.Equal(t, model.StatusApto, r.Resolve(personID, day(t, "2026-01-15"), nil).Kind)
}

func TestResolve_DatedSegmentSuppressesForecast(t *testing.T) {
	r := NewResolver(Records{
		LeaveRequests: []db.LeaveRequest{
			{ID: "r1", PersonID: personID, Year: 2026, StartMonth: "MAR"},
		},
		LeaveSegments: []db.LeaveSegment{
			{PersonID: personID, LeaveRequestID: "r1", Year: 2026, Month: "MAR", Days: 11, StartDate: "2026-03-10", EndDate: "2026-03-20"},
			{PersonID: personID, LeaveRequestID: "r1", Year: 2026, Month: "MAR", Days: 5},
		},
	}, now, nil)

	for _, d := range calendar.DaysInMonth(2026, time.March) {
		status := r.Resolve(personID, d, nil)
		assert.NotEqual(t, model.StatusPrevisao, status.Kind, calendar.FormatDate(d))
		if d.Day() >= 10 && d.Day() <= 20 {
			assert.Equal(t, model.StatusImpedido, status.Kind, calendar.FormatDate(d))
		} else {
			assert.Equal(t, model.StatusApto, status.Kind, calendar.FormatDate(d))
		}
	}
}

func TestResolve_SuppressedForecastFallsThroughToAllowance(t *testing.T) {
	r := NewResolver(Records{
		LeaveRequests: []db.LeaveRequest{
			{ID: "r1", PersonID: personID, Year: 2026, StartMonth: "MAR"},
		},
		LeaveSegments: []db.LeaveSegment{
			{PersonID: personID, LeaveRequestID: "r1", Year: 2026, StartDate: "2026-03-10", EndDate: "2026-03-20"},
		},
		Allowances: []db.Allowance{
			{PersonID: personID, Month: 3, Year: 2026},
		},
	}, now, nil)

	status := r.Resolve(personID, day(t, "2026-03-25"), nil)
	assert.Equal(t, model.StatusPrevisao, status.Kind)
	assert.Equal(t, model.ForecastAllowance, status.Forecast)
}

func TestResolve_AllowanceWithoutDatesIsForecast(t *testing.T) {
	r := NewResolver(Records{
		Allowances: []db.Allowance{
			{PersonID: personID, Month: 6, Year: 2026},
		},
	}, now, nil)

	for _, d := range calendar.DaysInMonth(2026, time.June) {
		status := r.Resolve(personID, d, nil)
		assert.Equal(t, model.StatusPrevisao, status.Kind)
		assert.Equal(t, "Abono (previsão)", status.Reason)
		assert.Equal(t, model.ForecastAllowance, status.Forecast)
	}
	assert.Equal(t, model.StatusApto, r.Resolve(personID, day(t, "2026-07-01"), nil).Kind)
}

func TestResolve_AllowanceParcels(t *testing.T) {
	r := NewResolver(Records{
		Allowances: []db.Allowance{
			{
				PersonID: personID,
				Month:    6,
				Year:     2026,
				Parcels: []db.AllowanceParcel{
					{StartDate: "2026-06-03", EndDate: "2026-06-04", Days: 2},
					{StartDate: "2026-06-20", EndDate: "2026-06-20", Days: 1},
					{Days: 2},
				},
			},
		},
	}, now, nil)

	status := r.Resolve(personID, day(t, "2026-06-04"), nil)
	assert.Equal(t, model.StatusImpedido, status.Kind)
	assert.Equal(t, "Abono", status.Reason)
	assert.Equal(t, "2026-06-04", status.ReturnDate)

	assert.Equal(t, model.StatusImpedido, r.Resolve(personID, day(t, "2026-06-20"), nil).Kind)
	// Dated ranges exist, so other days are apto rather than a forecast
	assert.Equal(t, model.StatusApto, r.Resolve(personID, day(t, "2026-06-10"), nil).Kind)
}

func TestResolve_AllowanceLegacyRange(t *testing.T) {
	r := NewResolver(Records{
		Allowances: []db.Allowance{
			{PersonID: personID, Month: 9, Year: 2026, StartDate: "2026-09-14", EndDate: "2026-09-15"},
		},
	}, now, nil)

	assert.Equal(t, model.StatusImpedido, r.Resolve(personID, day(t, "2026-09-15"), nil).Kind)
	assert.Equal(t, model.StatusApto, r.Resolve(personID, day(t, "2026-09-16"), nil).Kind)
}

func TestResolve_MalformedDatesDoNotMatch(t *testing.T) {
	r := NewResolver(Records{
		LeaveSegments: []db.LeaveSegment{
			{PersonID: personID, Year: 2026, StartDate: "10/03/2026", EndDate: "2026-03-20"},
		},
		MedicalLeaves: []db.MedicalLeave{
			{PersonID: personID, StartDate: "ontem", EndDate: "amanhã"},
		},
		Restrictions: []db.MedicalRestriction{
			{PersonID: personID, StartDate: ""},
		},
		Allowances: []db.Allowance{
			{PersonID: personID, Month: 3, Year: 2026, Parcels: []db.AllowanceParcel{{StartDate: "x", EndDate: "y"}}},
		},
	}, now, nil)

	var status model.Status
	assert.NotPanics(t, func() {
		status = r.Resolve(personID, day(t, "2026-03-15"), nil)
	})
	assert.Equal(t, model.StatusApto, status.Kind)
}

func TestResolve_MalformedSegmentFallsToNextRule(t *testing.T) {
	r := NewResolver(Records{
		LeaveSegments: []db.LeaveSegment{
			{PersonID: personID, Year: 2026, StartDate: "2026-03-20", EndDate: "2026-03-10"},
		},
		MedicalLeaves: []db.MedicalLeave{
			{PersonID: personID, StartDate: "2026-03-01", EndDate: "2026-03-31"},
		},
	}, now, nil)

	assert.Equal(t, model.StatusAtestado, r.Resolve(personID, day(t, "2026-03-15"), nil).Kind)
}

type stubRule struct {
	name   string
	status model.Status
	match  bool
}

func (s stubRule) Name() string { return s.name }

func (s stubRule) Apply(*Facts) (model.Status, bool) { return s.status, s.match }

func TestResolve_FirstMatchingRuleWins(t *testing.T) {
	rules := []Rule{
		stubRule{name: "skip", match: false, status: model.Status{Kind: model.StatusImpedido}},
		stubRule{name: "first", match: true, status: model.Status{Kind: model.StatusRestricao}},
		stubRule{name: "second", match: true, status: model.Status{Kind: model.StatusAtestado}},
	}
	r := NewResolver(Records{}, now, rules)

	status, rule := r.Explain(personID, day(t, "2026-01-01"), nil)
	assert.Equal(t, model.StatusRestricao, status.Kind)
	assert.Equal(t, "first", rule)
}

func TestDefaultRules_Order(t *testing.T) {
	names := make([]string, 0, 6)
	for _, r := range DefaultRules() {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{"ConfirmedLeave", "MedicalLeave", "Restriction", "Volunteer", "LeaveForecast", "Allowance"}, names)
}
