package model

import (
	"strings"
	"time"
)

// StatusKind is the availability of a person on a given date
type StatusKind string

const (
	StatusApto       StatusKind = "apto"
	StatusImpedido   StatusKind = "impedido"
	StatusRestricao  StatusKind = "restricao"
	StatusAtestado   StatusKind = "atestado"
	StatusVoluntario StatusKind = "voluntario"
	StatusPrevisao   StatusKind = "previsao"
)

// StatusKinds lists every status in display order
var StatusKinds = []StatusKind{
	StatusApto,
	StatusImpedido,
	StatusRestricao,
	StatusAtestado,
	StatusVoluntario,
	StatusPrevisao,
}

func (k StatusKind) IsValid() bool {
	for _, kind := range StatusKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// ForecastKind distinguishes the two sources of a previsao status
type ForecastKind string

const (
	ForecastNone      ForecastKind = ""
	ForecastLeave     ForecastKind = "ferias"
	ForecastAllowance ForecastKind = "abono"
)

// Status is the resolved availability of one person on one date. Never persisted.
type Status struct {
	Kind       StatusKind   `json:"status"`
	Reason     string       `json:"reason,omitempty"`
	ReturnDate string       `json:"returnDate,omitempty"` // a date or, for forecasts, a month label
	Forecast   ForecastKind `json:"forecast,omitempty"`
}

// IsForecast reports whether the status only reflects planned, undated absences
func (s Status) IsForecast() bool {
	return s.Kind == StatusPrevisao && s.Forecast != ForecastNone
}

// UnitConfig is the static rotation configuration of an organizational unit
type UnitConfig struct {
	Name             string   `json:"name"`
	Grouping         string   `json:"grouping"` // team-membership grouping label
	Teams            []string `json:"teams"`
	CycleLengthDays  int      `json:"cycleLengthDays"`
	DefaultStartTeam string   `json:"defaultStartTeam"`
}

// TeamIndex returns the position of team in the unit's rotation, or -1
func (u UnitConfig) TeamIndex(team string) int {
	for i, t := range u.Teams {
		if strings.EqualFold(t, team) {
			return i
		}
	}
	return -1
}

// RosterMember is one person on a unit's roster for a date
type RosterMember struct {
	PersonID     string `json:"personId"`
	FullName     string `json:"fullName"`
	ShortName    string `json:"shortName"`
	Rank         string `json:"rank"`
	Registration string `json:"registration"`
	Role         string `json:"role,omitempty"`
	Status       Status `json:"status"`
	IsVolunteer  bool   `json:"isVolunteer"`
	// Team is the team a volunteer signed up to reinforce, if any
	Team         string `json:"team,omitempty"`
	Observation  string `json:"observation,omitempty"`
}

// StatusCounts tallies roster members per status
type StatusCounts map[StatusKind]int

// NewStatusCounts returns counts with every status present at zero
func NewStatusCounts() StatusCounts {
	counts := make(StatusCounts, len(StatusKinds))
	for _, kind := range StatusKinds {
		counts[kind] = 0
	}
	return counts
}

// Add accumulates other into c
func (c StatusCounts) Add(other StatusCounts) {
	for kind, n := range other {
		c[kind] += n
	}
}

// Total returns the number of people counted
func (c StatusCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// UnitRoster is the resolved duty team of one unit on one date
type UnitRoster struct {
	Unit       string         `json:"unit"`
	Team       string         `json:"team"`
	Overridden bool           `json:"overridden"`
	Reason     string         `json:"reason,omitempty"`
	Members    []RosterMember `json:"members"`
	Counts     StatusCounts   `json:"counts"`
}

// DayRoster aggregates every unit's roster for a date
type DayRoster struct {
	Date    string       `json:"date"`
	Holiday bool         `json:"holiday"`
	Units   []UnitRoster `json:"units"`
	Totals  StatusCounts `json:"totals"`
}

// Quota is the monthly leave-day balance
type Quota struct {
	Year        int        `json:"year"`
	Month       time.Month `json:"month"`
	Limit       int        `json:"limit"`
	Previsto    int        `json:"previsto"`
	Marked      int        `json:"marked"`
	Saldo       int        `json:"saldo"`
	IsOverLimit bool       `json:"isOverLimit"`
}

// AdminAssignment is the administrative team on duty for a date
type AdminAssignment struct {
	Date       string `json:"date"`
	WorksOnDay bool   `json:"worksOnDay"`
	Team       string `json:"team,omitempty"` // empty when nobody is assigned
	Overridden bool   `json:"overridden"`
}
