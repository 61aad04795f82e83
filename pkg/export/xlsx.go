// Package export renders assembled rosters as spreadsheets for download
package export

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/bpamb/escala/pkg/core/calendar"
	"github.com/bpamb/escala/pkg/core/model"
)

var ErrNoDays = errors.New("no days to export")

const (
	rosterSheet  = "Escala"
	summarySheet = "Resumo"
)

var statusLabels = map[model.StatusKind]string{
	model.StatusApto:       "Apto",
	model.StatusImpedido:   "Impedido",
	model.StatusRestricao:  "Restrição",
	model.StatusAtestado:   "Atestado",
	model.StatusVoluntario: "Voluntário",
	model.StatusPrevisao:   "Previsão",
}

// StatusLabel returns the display name of a status
func StatusLabel(kind model.StatusKind) string {
	if label, ok := statusLabels[kind]; ok {
		return label
	}
	return string(kind)
}

// FileName suggests a download name, "escala_2026-01.xlsx"
func FileName(year int, month time.Month) string {
	return fmt.Sprintf("escala_%04d-%02d.xlsx", year, int(month))
}

var rosterHeader = []interface{}{"Data", "Unidade", "Equipe", "Troca", "Posto/Graduação", "Nome de guerra", "Matrícula", "Função", "Situação", "Motivo", "Retorno", "Observação"}

// WriteMonth writes one row per rostered member on the first sheet and the
// per-day status totals on a second sheet
func WriteMonth(w io.Writer, year int, month time.Month, days []model.DayRoster) error {
	if len(days) == 0 {
		return ErrNoDays
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(rosterSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to delete default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#2E7D32"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeRoster(f, year, month, days, headerStyle); err != nil {
		return err
	}
	if err := writeSummary(f, days, headerStyle); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRoster(f *excelize.File, year int, month time.Month, days []model.DayRoster, headerStyle int) error {
	title := fmt.Sprintf("Escala de serviço %02d/%04d", int(month), year)
	if err := f.SetCellValue(rosterSheet, "A1", title); err != nil {
		return fmt.Errorf("failed to write title: %w", err)
	}
	if err := f.MergeCell(rosterSheet, "A1", cellName(len(rosterHeader), 1)); err != nil {
		return fmt.Errorf("failed to merge title: %w", err)
	}

	if err := f.SetSheetRow(rosterSheet, "A2", &rosterHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(rosterSheet, "A2", cellName(len(rosterHeader), 2), headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	row := 3
	for _, day := range days {
		date := day.Date
		if t, err := calendar.ParseDate(day.Date); err == nil {
			date = t.Format("02/01/2006")
		}

		for _, unit := range day.Units {
			troca := ""
			if unit.Overridden {
				troca = "Sim"
			}

			for _, m := range unit.Members {
				values := []interface{}{
					date,
					unit.Unit,
					unit.Team,
					troca,
					m.Rank,
					m.ShortName,
					m.Registration,
					m.Role,
					StatusLabel(m.Status.Kind),
					m.Status.Reason,
					m.Status.ReturnDate,
					memberNote(m),
				}
				if err := f.SetSheetRow(rosterSheet, cellName(1, row), &values); err != nil {
					return fmt.Errorf("failed to write row %d: %w", row, err)
				}
				row++
			}
		}
	}

	widths := []float64{12, 12, 10, 7, 16, 18, 12, 14, 12, 20, 12, 24}
	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(rosterSheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	return nil
}

func writeSummary(f *excelize.File, days []model.DayRoster, headerStyle int) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	header := []interface{}{"Data", "Feriado"}
	for _, kind := range model.StatusKinds {
		header = append(header, StatusLabel(kind))
	}
	header = append(header, "Total")

	if err := f.SetSheetRow(summarySheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}
	if err := f.SetCellStyle(summarySheet, "A1", cellName(len(header), 1), headerStyle); err != nil {
		return fmt.Errorf("failed to style summary header: %w", err)
	}

	for i, day := range days {
		holiday := ""
		if day.Holiday {
			holiday = "Sim"
		}
		values := []interface{}{day.Date, holiday}
		for _, kind := range model.StatusKinds {
			values = append(values, day.Totals[kind])
		}
		values = append(values, day.Totals.Total())

		if err := f.SetSheetRow(summarySheet, cellName(1, i+2), &values); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	return nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// memberNote is the observation column: a volunteer's team followed by the observation
func memberNote(m model.RosterMember) string {
	if m.Team == "" {
		return m.Observation
	}
	if m.Observation == "" {
		return "Equipe " + m.Team
	}
	return "Equipe " + m.Team + "; " + m.Observation
}
