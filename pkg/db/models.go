package db

import "time"

// Dates are stored as "2006-01-02" strings. An empty string means the column is null.

// Person represents a member of the battalion's personnel registry (efetivo)
type Person struct {
	ID           string
	FullName     string
	ShortName    string // nome de guerra
	Rank         string
	Registration string // matrícula
}

// TeamMember associates a person with a named team inside a unit grouping
type TeamMember struct {
	PersonID string
	Grouping string
	TeamName string
	Role     string
}

// LeaveRequest represents a vacation request approved at month granularity (férias)
type LeaveRequest struct {
	ID         string
	PersonID   string
	Year       int
	StartMonth string // month label, e.g. "MAR"
	EndMonth   string // nullable, defaults to StartMonth
}

// LeaveSegment represents one parcel of a leave request (férias parcela).
// Both StartDate and EndDate set means the segment is confirmed.
type LeaveSegment struct {
	ID             string
	PersonID       string
	LeaveRequestID string
	Year           int
	Month          string // quota bucket label
	Days           int
	StartDate      string // nullable
	EndDate        string // nullable
}

// Confirmed reports whether both segment dates are present
func (s LeaveSegment) Confirmed() bool {
	return s.StartDate != "" && s.EndDate != ""
}

// MedicalLeave represents a medical leave (licença). An empty EndDate means ongoing.
type MedicalLeave struct {
	ID        string
	PersonID  string
	StartDate string
	EndDate   string // nullable
	Type      string
}

// MedicalRestriction represents a duty limitation. An empty EndDate means ongoing.
type MedicalRestriction struct {
	ID              string
	PersonID        string
	StartDate       string
	EndDate         string // nullable
	RestrictionType string
}

// AllowanceParcel is one dated range of an allowance
type AllowanceParcel struct {
	StartDate string // nullable
	EndDate   string // nullable
	Days      int
}

// Dated reports whether both parcel dates are present
func (p AllowanceParcel) Dated() bool {
	return p.StartDate != "" && p.EndDate != ""
}

// Allowance represents an abono record for a person and month
type Allowance struct {
	ID          string
	PersonID    string
	Month       int
	Year        int
	Parcels     []AllowanceParcel // up to three
	StartDate   string            // legacy single range, nullable
	EndDate     string            // legacy single range, nullable
	Observation string
}

// Ranges returns every parcel plus the legacy range when it carries any date
func (a Allowance) Ranges() []AllowanceParcel {
	ranges := make([]AllowanceParcel, 0, len(a.Parcels)+1)
	ranges = append(ranges, a.Parcels...)
	if a.StartDate != "" || a.EndDate != "" {
		ranges = append(ranges, AllowanceParcel{StartDate: a.StartDate, EndDate: a.EndDate})
	}
	return ranges
}

// TeamOverride is a manual team assignment for a (date, unit) pair
type TeamOverride struct {
	ID        string
	Date      string
	Unit      string
	TeamID    string
	Reason    string // nullable
	UpdatedAt time.Time
}

// RotationStart records which team is on duty on January 1 of a year for a unit
type RotationStart struct {
	Unit   string
	Year   int
	TeamID string
}

// VolunteerEntry is an ad-hoc paid extra shift registration for one date
type VolunteerEntry struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	PersonID    string `json:"personId"`
	Unit        string `json:"unit"`
	Team        string `json:"team,omitempty"`
	Observation string `json:"observation,omitempty"`
}
