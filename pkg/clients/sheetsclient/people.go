package sheetsclient

import (
	"fmt"
	"strings"

	"github.com/bpamb/escala/pkg/db"
)

// Registry is the personnel sheet (efetivo) parsed into records
type Registry struct {
	People  []db.Person
	Members []db.TeamMember
}

// Column names of the personnel sheet. Optional columns may be absent.
const (
	fieldID           = "ID"
	fieldRegistration = "Matrícula"
	fieldFullName     = "Nome completo"
	fieldShortName    = "Nome de guerra"
	fieldRank         = "Posto/Graduação"
	fieldGrouping     = "Agrupamento"
	fieldTeam         = "Equipe"
	fieldRole         = "Função"
)

var requiredPeopleFields = []string{fieldRegistration, fieldFullName}

var optionalPeopleFields = []string{fieldID, fieldShortName, fieldRank, fieldGrouping, fieldTeam, fieldRole}

// ListPeople reads and parses the personnel sheet
func (c *Client) ListPeople(spreadsheetID, tab string) (*Registry, error) {
	values, err := c.GetValues(spreadsheetID, tab)
	if err != nil {
		return nil, fmt.Errorf("failed to get personnel data: %w", err)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("spreadsheet is empty")
	}

	registry, err := ParseRegistry(values)
	if err != nil {
		return nil, fmt.Errorf("failed to parse personnel: %w", err)
	}

	return registry, nil
}

// ParseRegistry converts raw sheet rows into people and team memberships.
// A person without an ID column value is keyed by registration. Rows without a
// full name are skipped; rows without a grouping or team yield no membership.
func ParseRegistry(raw [][]interface{}) (*Registry, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("no header row found")
	}

	fieldIndexes := make(map[string]int)
	headerRow := raw[0]
	for _, field := range append(append([]string{}, requiredPeopleFields...), optionalPeopleFields...) {
		fieldIndexes[field] = findColumnIndex(headerRow, field)
	}
	for _, field := range requiredPeopleFields {
		if fieldIndexes[field] == -1 {
			return nil, fmt.Errorf("missing required field in header: %s", field)
		}
	}

	getField := func(field string, row []interface{}) string {
		return strings.TrimSpace(cell(row, fieldIndexes[field]))
	}

	registry := &Registry{}
	seen := make(map[string]int)
	for i := 1; i < len(raw); i++ {
		row := raw[i]

		fullName := getField(fieldFullName, row)
		if fullName == "" {
			continue
		}

		registration := getField(fieldRegistration, row)
		id := getField(fieldID, row)
		if id == "" {
			id = registration
		}
		if id == "" {
			return nil, fmt.Errorf("row %d has neither ID nor registration", i+1)
		}
		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("row %d repeats person %s from row %d", i+1, id, prev)
		}
		seen[id] = i + 1

		registry.People = append(registry.People, db.Person{
			ID:           id,
			FullName:     fullName,
			ShortName:    getField(fieldShortName, row),
			Rank:         getField(fieldRank, row),
			Registration: registration,
		})

		grouping := getField(fieldGrouping, row)
		team := getField(fieldTeam, row)
		if grouping != "" && team != "" {
			registry.Members = append(registry.Members, db.TeamMember{
				PersonID: id,
				Grouping: strings.ToUpper(grouping),
				TeamName: team,
				Role:     getField(fieldRole, row),
			})
		}
	}

	ComputeShortNames(registry.People)
	return registry, nil
}

// ComputeShortNames fills missing nomes de guerra from the full name:
// - the first name when no one else shares it
// - "First L." when that is unique
// - otherwise the full name
func ComputeShortNames(people []db.Person) {
	firstNameCounts := make(map[string]int)
	initialCounts := make(map[string]int)
	for _, p := range people {
		first, last := splitName(p.FullName)
		firstNameCounts[first]++
		if last != "" {
			initialCounts[first+" "+initial(last)]++
		}
	}

	for i := range people {
		p := &people[i]
		if p.ShortName != "" {
			continue
		}

		first, last := splitName(p.FullName)
		if firstNameCounts[first] == 1 {
			p.ShortName = first
			continue
		}
		if last != "" {
			key := first + " " + initial(last)
			if initialCounts[key] == 1 {
				p.ShortName = key
				continue
			}
		}
		p.ShortName = p.FullName
	}
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], parts[len(parts)-1]
	}
}

func initial(name string) string {
	r := []rune(name)
	return string(r[0]) + "."
}
