package rotation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bpamb/escala/pkg/core/model"
)

// ErrUnknownUnit is returned when a unit name has no rotation configuration
var ErrUnknownUnit = errors.New("unknown unit")

// Unit names
const (
	UnitGuarda       = "Guarda"
	UnitArmaria      = "Armaria"
	UnitPatrulha     = "Patrulhamento Ambiental"
	UnitGTA          = "GTA"
	defaultTeamAlfa  = "Alfa"
	defaultTeamBravo = "Bravo"
)

// DefaultUnits returns the battalion's field units in display order.
// 24h on / 72h off units rotate four teams over a 4-day cycle; the GTA works
// 12h on / 60h off with three teams over a 6-day cycle.
func DefaultUnits() []model.UnitConfig {
	fourTeams := []string{"Alfa", "Bravo", "Charlie", "Delta"}
	return []model.UnitConfig{
		{
			Name:             UnitGuarda,
			Grouping:         "GUARDA",
			Teams:            fourTeams,
			CycleLengthDays:  4,
			DefaultStartTeam: defaultTeamBravo,
		},
		{
			Name:             UnitArmaria,
			Grouping:         "ARMARIA",
			Teams:            fourTeams,
			CycleLengthDays:  4,
			DefaultStartTeam: defaultTeamBravo,
		},
		{
			Name:             UnitPatrulha,
			Grouping:         "RP AMBIENTAL",
			Teams:            fourTeams,
			CycleLengthDays:  4,
			DefaultStartTeam: defaultTeamAlfa,
		},
		{
			Name:             UnitGTA,
			Grouping:         "GTA",
			Teams:            []string{"Alfa", "Bravo", "Charlie"},
			CycleLengthDays:  6,
			DefaultStartTeam: defaultTeamAlfa,
		},
	}
}

// Table is the unit rotation table. Lookup by name is case-insensitive.
type Table struct {
	units  []model.UnitConfig
	byName map[string]int
}

// NewTable validates the unit configurations and builds a table
func NewTable(units ...model.UnitConfig) (*Table, error) {
	t := &Table{
		units:  make([]model.UnitConfig, 0, len(units)),
		byName: make(map[string]int, len(units)),
	}

	for _, u := range units {
		if err := validateUnit(u); err != nil {
			return nil, err
		}
		key := strings.ToUpper(u.Name)
		if _, exists := t.byName[key]; exists {
			return nil, fmt.Errorf("duplicate unit %q", u.Name)
		}
		t.byName[key] = len(t.units)
		t.units = append(t.units, u)
	}

	return t, nil
}

// MustDefaultTable returns the table of DefaultUnits
func MustDefaultTable() *Table {
	t, err := NewTable(DefaultUnits()...)
	if err != nil {
		panic(err)
	}
	return t
}

func validateUnit(u model.UnitConfig) error {
	if u.Name == "" {
		return fmt.Errorf("unit name is required")
	}
	if len(u.Teams) == 0 {
		return fmt.Errorf("unit %q has no teams", u.Name)
	}
	if u.CycleLengthDays <= 0 {
		return fmt.Errorf("unit %q cycle length must be positive, got %d", u.Name, u.CycleLengthDays)
	}
	seen := make(map[string]bool, len(u.Teams))
	for _, team := range u.Teams {
		key := strings.ToUpper(team)
		if seen[key] {
			return fmt.Errorf("unit %q lists team %q twice", u.Name, team)
		}
		seen[key] = true
	}
	if u.TeamIndex(u.DefaultStartTeam) < 0 {
		return fmt.Errorf("unit %q default start team %q is not one of its teams", u.Name, u.DefaultStartTeam)
	}
	return nil
}

// Lookup returns the configuration for unit
func (t *Table) Lookup(unit string) (model.UnitConfig, error) {
	idx, ok := t.byName[strings.ToUpper(strings.TrimSpace(unit))]
	if !ok {
		return model.UnitConfig{}, fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
	return t.units[idx], nil
}

// Units returns every configured unit in enumeration order
func (t *Table) Units() []model.UnitConfig {
	out := make([]model.UnitConfig, len(t.units))
	copy(out, t.units)
	return out
}
