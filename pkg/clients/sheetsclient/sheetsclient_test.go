package sheetsclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpamb/escala/pkg/db"
)

func TestTabTitle(t *testing.T) {
	p := &PublishedRoster{Year: 2026, Month: time.March}
	assert.Equal(t, "Escala 2026-03", p.TabTitle())
}

func TestRosterSheetValues_NewTab(t *testing.T) {
	published := &PublishedRoster{
		Year:  2026,
		Month: time.January,
		Rows: []PublishedRosterRow{
			{Date: "01/01 (qui) *", Unit: "Guarda", Team: "Bravo", Members: []string{"Sd Silva", "Cb Souza"}, Unavailable: []string{"Sd Lima (Férias)"}},
			{Date: "01/01 (qui) *", Unit: "GTA", Team: "Alfa", Members: []string{"Sd Costa"}},
		},
	}

	values := RosterSheetValues(published, nil)
	require.Len(t, values, 5)

	assert.Equal(t, "Escala de serviço 01/2026", values[0][0])
	assert.Empty(t, values[1])
	assert.Equal(t, []interface{}{"Data", "Unidade", "Equipe", "Militar 1", "Militar 2", "Afastados", "Observações"}, values[2])
	assert.Equal(t, []interface{}{"01/01 (qui) *", "Guarda", "Bravo", "Sd Silva", "Cb Souza", "Sd Lima (Férias)", ""}, values[3])
	assert.Equal(t, []interface{}{"01/01 (qui) *", "GTA", "Alfa", "Sd Costa", "", "", ""}, values[4])
}

func TestRosterSheetValues_KeepsNotesAndExtraColumns(t *testing.T) {
	existing := [][]interface{}{
		{"Escala de serviço 01/2026"},
		{},
		{"Data", "Unidade", "Equipe", "Militar 1", "Afastados", "Observações", "Viatura"},
		{"02/01 (sex)", "Guarda", "Charlie", "Sd Lima", "", "Rendição às 8h", "VTR 12"},
		{"02/01 (sex)", "GTA", "Bravo", "", "", ""},
	}
	published := &PublishedRoster{
		Year:  2026,
		Month: time.January,
		Rows: []PublishedRosterRow{
			{Date: "02/01 (sex)", Unit: "Guarda", Team: "Charlie", Members: []string{"Sd Lima", "Sd Silva"}},
			{Date: "02/01 (sex)", Unit: "Armaria", Team: "Charlie"},
		},
	}

	values := RosterSheetValues(published, existing)
	require.Len(t, values, 5)
	assert.Equal(t, []interface{}{"Data", "Unidade", "Equipe", "Militar 1", "Militar 2", "Afastados", "Observações", "Viatura"}, values[2])
	assert.Equal(t, []interface{}{"02/01 (sex)", "Guarda", "Charlie", "Sd Lima", "Sd Silva", "", "Rendição às 8h", "VTR 12"}, values[3])
	assert.Equal(t, []interface{}{"02/01 (sex)", "Armaria", "Charlie", "", "", "", ""}, values[4])
}

func TestParseRegistry(t *testing.T) {
	raw := [][]interface{}{
		{"Matrícula", "Nome completo", "Nome de guerra", "Posto/Graduação", "Agrupamento", "Equipe", "Função"},
		{"7301", "João da Silva", "Silva", "Sd", "Guarda", "Bravo", "Comandante"},
		{"7302", "Maria Souza", "", "Cb", "gta", "Alfa"},
		{"7303", "", "", "", "", ""},
		{"7304", "Pedro Lima", "Lima", "3º Sgt"},
	}

	registry, err := ParseRegistry(raw)
	require.NoError(t, err)
	require.Len(t, registry.People, 3)

	assert.Equal(t, db.Person{ID: "7301", FullName: "João da Silva", ShortName: "Silva", Rank: "Sd", Registration: "7301"}, registry.People[0])
	assert.Equal(t, "Maria", registry.People[1].ShortName)

	require.Len(t, registry.Members, 2)
	assert.Equal(t, db.TeamMember{PersonID: "7301", Grouping: "GUARDA", TeamName: "Bravo", Role: "Comandante"}, registry.Members[0])
	assert.Equal(t, "GTA", registry.Members[1].Grouping)
}

func TestParseRegistry_MissingHeader(t *testing.T) {
	_, err := ParseRegistry([][]interface{}{{"Nome completo", "Equipe"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Matrícula")
}

func TestParseRegistry_DuplicatePerson(t *testing.T) {
	raw := [][]interface{}{
		{"Matrícula", "Nome completo"},
		{"7301", "João da Silva"},
		{"7301", "João Silva"},
	}

	_, err := ParseRegistry(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repeats person 7301")
}

func TestComputeShortNames(t *testing.T) {
	people := []db.Person{
		{FullName: "Ana Costa"},
		{FullName: "Carlos Pereira"},
		{FullName: "Carlos Moura"},
		{FullName: "Paulo Reis"},
		{FullName: "Paulo Rocha"},
		{FullName: "Bruno Alves", ShortName: "Alves"},
	}

	ComputeShortNames(people)

	assert.Equal(t, "Ana", people[0].ShortName)
	assert.Equal(t, "Carlos P.", people[1].ShortName)
	assert.Equal(t, "Carlos M.", people[2].ShortName)
	assert.Equal(t, "Paulo Reis", people[3].ShortName)
	assert.Equal(t, "Paulo Rocha", people[4].ShortName)
	assert.Equal(t, "Alves", people[5].ShortName)
}
