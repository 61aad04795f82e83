package availability

import (
	"time"

	"github.com/bpamb/escala/pkg/core/calendar"
	"github.com/bpamb/escala/pkg/core/model"
	"github.com/bpamb/escala/pkg/db"
)

// Reasons shown to users
const (
	ReasonLeave             = "Férias"
	ReasonMedicalLeave      = "Licença Médica"
	ReasonRestriction       = "Restrição"
	ReasonVolunteer         = "Extra remunerado"
	ReasonLeaveForecast     = "Férias (previsão)"
	ReasonAllowance         = "Abono"
	ReasonAllowanceForecast = "Abono (previsão)"
)

// Facts are the records of one person that may affect their status on Date
type Facts struct {
	PersonID string
	Date     time.Time
	// Now closes open-ended medical leaves and restrictions
	Now time.Time

	LeaveRequests []db.LeaveRequest
	LeaveSegments []db.LeaveSegment
	MedicalLeaves []db.MedicalLeave
	Restrictions  []db.MedicalRestriction
	Allowances    []db.Allowance
	Volunteers    []db.VolunteerEntry
}

// Rule is one tier of the status priority chain
type Rule interface {
	// Name returns a human-readable identifier for this rule
	Name() string

	// Apply returns the status this rule assigns and true, or false when the
	// rule does not match and the next tier should be tried
	Apply(f *Facts) (model.Status, bool)
}

// DefaultRules returns the status rules from highest to lowest priority
func DefaultRules() []Rule {
	return []Rule{
		ConfirmedLeaveRule{},
		MedicalLeaveRule{},
		RestrictionRule{},
		VolunteerRule{},
		LeaveForecastRule{},
		AllowanceRule{},
	}
}

// ConfirmedLeaveRule matches a leave segment with both dates covering the date
type ConfirmedLeaveRule struct{}

func (ConfirmedLeaveRule) Name() string { return "ConfirmedLeave" }

func (ConfirmedLeaveRule) Apply(f *Facts) (model.Status, bool) {
	for _, seg := range f.LeaveSegments {
		if !seg.Confirmed() {
			continue
		}
		if seg.Year != 0 && seg.Year != f.Date.Year() {
			continue
		}
		r, ok := calendar.ParseRange(seg.StartDate, seg.EndDate)
		if !ok || !r.Contains(f.Date) {
			continue
		}
		return model.Status{
			Kind:       model.StatusImpedido,
			Reason:     ReasonLeave,
			ReturnDate: seg.EndDate,
		}, true
	}
	return model.Status{}, false
}

// MedicalLeaveRule matches an active medical leave. Open-ended leaves run through Now.
type MedicalLeaveRule struct{}

func (MedicalLeaveRule) Name() string { return "MedicalLeave" }

func (MedicalLeaveRule) Apply(f *Facts) (model.Status, bool) {
	for _, leave := range f.MedicalLeaves {
		r, ok := calendar.OpenRange(leave.StartDate, leave.EndDate, f.Now)
		if !ok || !r.Contains(f.Date) {
			continue
		}
		reason := leave.Type
		if reason == "" {
			reason = ReasonMedicalLeave
		}
		return model.Status{
			Kind:       model.StatusAtestado,
			Reason:     reason,
			ReturnDate: leave.EndDate,
		}, true
	}
	return model.Status{}, false
}

// RestrictionRule matches an active medical restriction. Open-ended restrictions run through Now.
type RestrictionRule struct{}

func (RestrictionRule) Name() string { return "Restriction" }

func (RestrictionRule) Apply(f *Facts) (model.Status, bool) {
	for _, res := range f.Restrictions {
		r, ok := calendar.OpenRange(res.StartDate, res.EndDate, f.Now)
		if !ok || !r.Contains(f.Date) {
			continue
		}
		reason := res.RestrictionType
		if reason == "" {
			reason = ReasonRestriction
		}
		return model.Status{
			Kind:       model.StatusRestricao,
			Reason:     reason,
			ReturnDate: res.EndDate,
		}, true
	}
	return model.Status{}, false
}

// VolunteerRule matches a paid extra shift registered for exactly the date
type VolunteerRule struct{}

func (VolunteerRule) Name() string { return "Volunteer" }

func (VolunteerRule) Apply(f *Facts) (model.Status, bool) {
	day := calendar.FormatDate(f.Date)
	for _, v := range f.Volunteers {
		if v.Date == day && v.PersonID == f.PersonID {
			return model.Status{Kind: model.StatusVoluntario, Reason: ReasonVolunteer}, true
		}
	}
	return model.Status{}, false
}

// LeaveForecastRule matches a leave request approved for the date's month whose
// segments carry no dates yet. A request with any dated segment never forecasts.
type LeaveForecastRule struct{}

func (LeaveForecastRule) Name() string { return "LeaveForecast" }

func (LeaveForecastRule) Apply(f *Facts) (model.Status, bool) {
	month := f.Date.Month()
	for _, req := range f.LeaveRequests {
		if req.Year != f.Date.Year() {
			continue
		}
		start, ok := calendar.ParseMonth(req.StartMonth)
		if !ok {
			continue
		}
		end := start
		if req.EndMonth != "" {
			if end, ok = calendar.ParseMonth(req.EndMonth); !ok {
				continue
			}
		}
		inRange := month >= start && month <= end
		if end < start {
			// DEZ..JAN crosses into next year: the request's year runs to December
			inRange = month >= start
		}
		if !inRange {
			continue
		}
		if hasConfirmedSegment(f.LeaveSegments, req.ID) {
			continue
		}
		return model.Status{
			Kind:       model.StatusPrevisao,
			Reason:     ReasonLeaveForecast,
			ReturnDate: calendar.MonthLabel(end),
			Forecast:   model.ForecastLeave,
		}, true
	}
	return model.Status{}, false
}

func hasConfirmedSegment(segments []db.LeaveSegment, requestID string) bool {
	for _, seg := range segments {
		if seg.LeaveRequestID == requestID && seg.Confirmed() {
			return true
		}
	}
	return false
}

// AllowanceRule matches an abono for the date's month. Dated parcels block only the
// days they cover; a record without any dated range is a forecast for the whole month.
type AllowanceRule struct{}

func (AllowanceRule) Name() string { return "Allowance" }

func (AllowanceRule) Apply(f *Facts) (model.Status, bool) {
	for _, a := range f.Allowances {
		if a.Year != f.Date.Year() || a.Month != int(f.Date.Month()) {
			continue
		}

		dated := false
		for _, p := range a.Ranges() {
			if !p.Dated() {
				continue
			}
			dated = true
			r, ok := calendar.ParseRange(p.StartDate, p.EndDate)
			if ok && r.Contains(f.Date) {
				return model.Status{
					Kind:       model.StatusImpedido,
					Reason:     ReasonAllowance,
					ReturnDate: p.EndDate,
				}, true
			}
		}

		if !dated {
			return model.Status{
				Kind:     model.StatusPrevisao,
				Reason:   ReasonAllowanceForecast,
				Forecast: model.ForecastAllowance,
			}, true
		}
	}
	return model.Status{}, false
}
