package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bpamb/escala/pkg/core/calendar"
	"github.com/bpamb/escala/pkg/core/model"
	"github.com/bpamb/escala/pkg/export"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorDim    = "\033[2m"
)

// dateArg parses args[idx] as a date, defaulting to today
func dateArg(args []string, idx int, now time.Time) (time.Time, error) {
	if len(args) <= idx || args[idx] == "" || args[idx] == "hoje" {
		return calendar.Day(now), nil
	}
	return calendar.ParseDate(args[idx])
}

// parseYearMonth parses "2026-02"
func parseYearMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("month must be YYYY-MM, got %q", s)
	}
	return t.Year(), t.Month(), nil
}

func statusColor(kind model.StatusKind) string {
	switch kind {
	case model.StatusApto:
		return colorGreen
	case model.StatusVoluntario:
		return colorCyan
	case model.StatusPrevisao, model.StatusRestricao:
		return colorYellow
	default:
		return colorRed
	}
}

// describeStatus renders a status as "Atestado (LTS) até 2026-01-10"
func describeStatus(s model.Status) string {
	var b strings.Builder
	b.WriteString(export.StatusLabel(s.Kind))
	if s.Reason != "" {
		fmt.Fprintf(&b, " (%s)", s.Reason)
	}
	if s.ReturnDate != "" {
		fmt.Fprintf(&b, " até %s", s.ReturnDate)
	}
	return b.String()
}

func memberName(m model.RosterMember) string {
	name := m.ShortName
	if name == "" {
		name = m.FullName
	}
	if m.Rank != "" {
		name = m.Rank + " " + name
	}
	return name
}

// printDay writes every unit's roster for a day
func printDay(w io.Writer, day model.DayRoster) {
	header := day.Date
	if day.Holiday {
		header += " (feriado)"
	}
	fmt.Fprintf(w, "\n%s\n%s\n", header, strings.Repeat("=", len(header)))

	for _, unit := range day.Units {
		overridden := ""
		if unit.Overridden {
			overridden = colorYellow + " [troca"
			if unit.Reason != "" {
				overridden += ": " + unit.Reason
			}
			overridden += "]" + colorReset
		}
		fmt.Fprintf(w, "\n%s - Equipe %s%s\n", unit.Unit, unit.Team, overridden)

		if len(unit.Members) == 0 {
			fmt.Fprintf(w, "  %s(sem integrantes)%s\n", colorDim, colorReset)
			continue
		}
		for _, m := range unit.Members {
			fmt.Fprintf(w, "  %-30s %s%s%s\n", memberName(m), statusColor(m.Status.Kind), describeStatus(m.Status), colorReset)
		}
	}

	fmt.Fprintf(w, "\n%s\n", formatCounts(day.Totals))
}

// formatCounts lists the non-zero counts in display order
func formatCounts(counts model.StatusCounts) string {
	parts := make([]string, 0, len(model.StatusKinds)+1)
	for _, kind := range model.StatusKinds {
		if n := counts[kind]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", export.StatusLabel(kind), n))
		}
	}
	parts = append(parts, fmt.Sprintf("Total: %d", counts.Total()))
	return strings.Join(parts, " | ")
}

// printMonthSummary writes one line per day with the teams of every unit
func printMonthSummary(w io.Writer, days []model.DayRoster) {
	if len(days) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%-12s", "Data")
	for _, unit := range days[0].Units {
		fmt.Fprintf(w, "%-26s", unit.Unit)
	}
	fmt.Fprintf(w, "%s\n", "Aptos")

	for _, day := range days {
		date := day.Date
		if day.Holiday {
			date += "*"
		}
		fmt.Fprintf(w, "%-12s", date)
		for _, unit := range day.Units {
			team := unit.Team
			if unit.Overridden {
				team += " (troca)"
			}
			fmt.Fprintf(w, "%-26s", team)
		}
		fmt.Fprintf(w, "%d/%d\n", day.Totals[model.StatusApto]+day.Totals[model.StatusVoluntario], day.Totals.Total())
	}
	fmt.Fprintln(w, "\n* feriado")
}
