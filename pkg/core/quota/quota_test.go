package quota

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bpamb/escala/pkg/db"
)

func TestCalculate_JuneSegments(t *testing.T) {
	requests := []db.LeaveRequest{
		{ID: "r1", PersonID: "p1", Year: 2026, StartMonth: "JUN"},
		{ID: "r2", PersonID: "p2", Year: 2026, StartMonth: "JUN", EndMonth: "JUL"},
		{ID: "r3", PersonID: "p3", Year: 2025, StartMonth: "JUN"},
	}
	segments := []db.LeaveSegment{
		{LeaveRequestID: "r1", Month: "JUN", Days: 15, StartDate: "2026-06-01", EndDate: "2026-06-15"},
		{LeaveRequestID: "r1", Month: "JUN", Days: 15},
		{LeaveRequestID: "r2", Month: "Junho", Days: 10},
		{LeaveRequestID: "r2", Month: "JUL", Days: 20},
		{LeaveRequestID: "r3", Month: "JUN", Days: 30},
	}

	q := Calculate(2026, time.June, 60, requests, segments)

	assert.Equal(t, 40, q.Previsto)
	assert.Equal(t, 15, q.Marked)
	assert.Equal(t, 20, q.Saldo)
	assert.False(t, q.IsOverLimit)
	assert.Equal(t, 2026, q.Year)
	assert.Equal(t, time.June, q.Month)
}

func TestCalculate_MarkedNotSubtracted(t *testing.T) {
	requests := []db.LeaveRequest{{ID: "r1", Year: 2026}}
	segments := []db.LeaveSegment{
		{LeaveRequestID: "r1", Month: "MAR", Days: 30, StartDate: "2026-03-01", EndDate: "2026-03-30"},
	}

	q := Calculate(2026, time.March, 60, requests, segments)
	assert.Equal(t, 30, q.Marked)
	assert.Equal(t, 30, q.Saldo)
}

func TestCalculate_OverLimit(t *testing.T) {
	requests := []db.LeaveRequest{{ID: "r1", Year: 2026}}
	segments := []db.LeaveSegment{
		{LeaveRequestID: "r1", Month: "DEZ", Days: 45},
		{LeaveRequestID: "r1", Month: "DEZ", Days: 20},
	}

	q := Calculate(2026, time.December, 60, requests, segments)
	assert.Equal(t, 65, q.Previsto)
	assert.Equal(t, -5, q.Saldo)
	assert.True(t, q.IsOverLimit)

	q = Calculate(2026, time.December, 65, requests, segments)
	assert.False(t, q.IsOverLimit, "previsto equal to the limit is not over")
}

func TestCalculate_OrphanSegmentUsesOwnYear(t *testing.T) {
	segments := []db.LeaveSegment{
		{LeaveRequestID: "missing", Year: 2026, Month: "ABR", Days: 5},
		{LeaveRequestID: "missing", Year: 2025, Month: "ABR", Days: 7},
	}

	q := Calculate(2026, time.April, DefaultMonthlyLimit, nil, segments)
	assert.Equal(t, 5, q.Previsto)
	assert.Equal(t, 55, q.Saldo)
}

func TestCalculate_Empty(t *testing.T) {
	q := Calculate(2026, time.January, DefaultMonthlyLimit, nil, nil)
	assert.Equal(t, 0, q.Previsto)
	assert.Equal(t, DefaultMonthlyLimit, q.Saldo)
	assert.False(t, q.IsOverLimit)
}
