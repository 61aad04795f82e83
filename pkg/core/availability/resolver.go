package availability

import (
	"time"

	"github.com/bpamb/escala/pkg/core/model"
	"github.com/bpamb/escala/pkg/db"
)

// Records is the raw input the resolver indexes by person
type Records struct {
	LeaveRequests []db.LeaveRequest
	LeaveSegments []db.LeaveSegment
	MedicalLeaves []db.MedicalLeave
	Restrictions  []db.MedicalRestriction
	Allowances    []db.Allowance
}

type personRecords struct {
	leaveRequests []db.LeaveRequest
	leaveSegments []db.LeaveSegment
	medicalLeaves []db.MedicalLeave
	restrictions  []db.MedicalRestriction
	allowances    []db.Allowance
}

// Resolver computes member statuses against one snapshot of records
type Resolver struct {
	rules    []Rule
	now      time.Time
	byPerson map[string]*personRecords
}

// NewResolver indexes records by person. now closes open-ended medical leaves
// and restrictions; rules default to DefaultRules when nil.
func NewResolver(records Records, now time.Time, rules []Rule) *Resolver {
	if rules == nil {
		rules = DefaultRules()
	}
	r := &Resolver{
		rules:    rules,
		now:      now,
		byPerson: make(map[string]*personRecords),
	}

	for _, x := range records.LeaveRequests {
		p := r.person(x.PersonID)
		p.leaveRequests = append(p.leaveRequests, x)
	}
	for _, x := range records.LeaveSegments {
		p := r.person(x.PersonID)
		p.leaveSegments = append(p.leaveSegments, x)
	}
	for _, x := range records.MedicalLeaves {
		p := r.person(x.PersonID)
		p.medicalLeaves = append(p.medicalLeaves, x)
	}
	for _, x := range records.Restrictions {
		p := r.person(x.PersonID)
		p.restrictions = append(p.restrictions, x)
	}
	for _, x := range records.Allowances {
		p := r.person(x.PersonID)
		p.allowances = append(p.allowances, x)
	}

	return r
}

func (r *Resolver) person(id string) *personRecords {
	p, ok := r.byPerson[id]
	if !ok {
		p = &personRecords{}
		r.byPerson[id] = p
	}
	return p
}

// Facts collects the records that concern personID on date
func (r *Resolver) Facts(personID string, date time.Time, volunteers []db.VolunteerEntry) *Facts {
	f := &Facts{
		PersonID:   personID,
		Date:       date,
		Now:        r.now,
		Volunteers: volunteers,
	}
	if p, ok := r.byPerson[personID]; ok {
		f.LeaveRequests = p.leaveRequests
		f.LeaveSegments = p.leaveSegments
		f.MedicalLeaves = p.medicalLeaves
		f.Restrictions = p.restrictions
		f.Allowances = p.allowances
	}
	return f
}

// Resolve returns the status of the first matching rule, or apto when none match.
// volunteers are the entries registered for date.
func (r *Resolver) Resolve(personID string, date time.Time, volunteers []db.VolunteerEntry) model.Status {
	status, _ := r.Explain(personID, date, volunteers)
	return status
}

// Explain is Resolve that also names the matching rule ("" for the default)
func (r *Resolver) Explain(personID string, date time.Time, volunteers []db.VolunteerEntry) (model.Status, string) {
	f := r.Facts(personID, date, volunteers)
	for _, rule := range r.rules {
		if status, ok := rule.Apply(f); ok {
			return status, rule.Name()
		}
	}
	return model.Status{Kind: model.StatusApto}, ""
}
