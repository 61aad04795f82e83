package sheetsclient

import (
	"fmt"
	"strings"
	"time"
)

// Fixed column headers of a roster tab
const (
	colDate        = "Data"
	colUnit        = "Unidade"
	colTeam        = "Equipe"
	colUnavailable = "Afastados"
	colNotes       = "Observações"
	memberPrefix   = "Militar "
	headerRowIndex = 2 // rows 1 and 2 are left for a title
)

// PublishedRosterRow is one unit on one day
type PublishedRosterRow struct {
	Date        string   // e.g. "05/01 (seg)"
	Unit        string
	Team        string
	Members     []string // available members, "Sd Silva"
	Unavailable []string // "Cb Souza (Licença Médica)"
}

// PublishedRoster is a month of roster rows
type PublishedRoster struct {
	Year  int
	Month time.Month
	Rows  []PublishedRosterRow
}

// TabTitle returns the tab name of the month, "Escala 2026-01"
func (p *PublishedRoster) TabTitle() string {
	return fmt.Sprintf("Escala %04d-%02d", p.Year, int(p.Month))
}

// PublishRoster writes the month to its own tab. An existing tab is rewritten,
// keeping whatever was typed in the Observações column and in any column after it.
func (c *Client) PublishRoster(spreadsheetID string, published *PublishedRoster) error {
	tabTitle := published.TabTitle()

	exists, err := c.SheetExists(spreadsheetID, tabTitle)
	if err != nil {
		return err
	}

	var existing [][]interface{}
	if exists {
		existing, err = c.GetValues(spreadsheetID, fmt.Sprintf("%s!A1:ZZ", tabTitle))
		if err != nil {
			return fmt.Errorf("failed to read existing tab data: %w", err)
		}
		if err := c.ClearValues(spreadsheetID, fmt.Sprintf("%s!A1:ZZ", tabTitle)); err != nil {
			return fmt.Errorf("failed to clear existing tab: %w", err)
		}
	} else {
		if _, err := c.CreateSheet(spreadsheetID, tabTitle); err != nil {
			return fmt.Errorf("failed to create tab: %w", err)
		}
	}

	values := RosterSheetValues(published, existing)
	if err := c.UpdateValues(spreadsheetID, fmt.Sprintf("%s!A1", tabTitle), values); err != nil {
		return fmt.Errorf("failed to write roster tab: %w", err)
	}

	return nil
}

// RosterSheetValues lays out the tab: a title row, a blank row, the header and
// one row per (day, unit). Notes from existing are carried over by matching
// the Data and Unidade cells.
func RosterSheetValues(published *PublishedRoster, existing [][]interface{}) [][]interface{} {
	maxMembers := 0
	for _, row := range published.Rows {
		if len(row.Members) > maxMembers {
			maxMembers = len(row.Members)
		}
	}

	// Columns the user added after Observações survive republishing
	var extraHeaders []interface{}
	notes := make(map[string][]interface{})
	if len(existing) > headerRowIndex {
		header := existing[headerRowIndex]
		dateCol := findColumnIndex(header, colDate)
		unitCol := findColumnIndex(header, colUnit)
		notesCol := findColumnIndex(header, colNotes)

		if notesCol != -1 {
			extraHeaders = append(extraHeaders, header[notesCol+1:]...)
			if dateCol != -1 && unitCol != -1 {
				for _, row := range existing[headerRowIndex+1:] {
					key := rowKey(cell(row, dateCol), cell(row, unitCol))
					if notesCol < len(row) {
						notes[key] = row[notesCol:]
					}
				}
			}
		}
	}

	header := []interface{}{colDate, colUnit, colTeam}
	for i := 0; i < maxMembers; i++ {
		header = append(header, fmt.Sprintf("%s%d", memberPrefix, i+1))
	}
	header = append(header, colUnavailable, colNotes)
	header = append(header, extraHeaders...)

	values := [][]interface{}{
		{fmt.Sprintf("Escala de serviço %02d/%04d", int(published.Month), published.Year)},
		{},
		header,
	}

	for _, row := range published.Rows {
		sheetRow := []interface{}{row.Date, row.Unit, row.Team}
		for i := 0; i < maxMembers; i++ {
			if i < len(row.Members) {
				sheetRow = append(sheetRow, row.Members[i])
			} else {
				sheetRow = append(sheetRow, "")
			}
		}
		sheetRow = append(sheetRow, strings.Join(row.Unavailable, "; "))

		if kept, ok := notes[rowKey(row.Date, row.Unit)]; ok {
			sheetRow = append(sheetRow, kept...)
		} else {
			sheetRow = append(sheetRow, "")
		}

		values = append(values, sheetRow)
	}

	return values
}

func rowKey(date, unit string) string {
	return strings.TrimSpace(date) + "|" + strings.ToUpper(strings.TrimSpace(unit))
}

func cell(row []interface{}, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	if s, ok := row[idx].(string); ok {
		return s
	}
	return fmt.Sprint(row[idx])
}

// findColumnIndex finds the index of a column by its header name
func findColumnIndex(header []interface{}, columnName string) int {
	for i, c := range header {
		if str, ok := c.(string); ok && strings.EqualFold(strings.TrimSpace(str), columnName) {
			return i
		}
	}
	return -1
}
