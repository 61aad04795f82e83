package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bpamb/escala/pkg/clients/sheetsclient"
	"github.com/bpamb/escala/pkg/core/calendar"
	"github.com/bpamb/escala/pkg/core/model"
)

// RosterPublisher writes a month's roster to a spreadsheet
type RosterPublisher interface {
	PublishRoster(spreadsheetID string, published *sheetsclient.PublishedRoster) error
}

var weekdayLabels = [...]string{"dom", "seg", "ter", "qua", "qui", "sex", "sáb"}

// PublishRoster assembles the month and publishes it to the spreadsheet
func PublishRoster(
	ctx context.Context,
	engine *Engine,
	publisher RosterPublisher,
	logger *zap.Logger,
	spreadsheetID string,
	year int,
	month time.Month,
) (*sheetsclient.PublishedRoster, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("no spreadsheet configured for publishing")
	}

	logger.Debug("Starting publishRoster", zap.Int("year", year), zap.Int("month", int(month)))

	days, err := engine.AssembleMonth(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble month: %w", err)
	}

	published := BuildPublishedRoster(year, month, days)
	logger.Debug("Built published roster", zap.Int("rows", len(published.Rows)))

	if err := publisher.PublishRoster(spreadsheetID, published); err != nil {
		return nil, fmt.Errorf("failed to publish roster: %w", err)
	}

	logger.Info("Roster published",
		zap.String("tab", published.TabTitle()),
		zap.Int("rows", len(published.Rows)))
	return published, nil
}

// BuildPublishedRoster flattens day rosters into one row per day and unit.
// Available members (apto or voluntario) are listed by name; everybody else
// goes to the unavailable column with their reason.
func BuildPublishedRoster(year int, month time.Month, days []model.DayRoster) *sheetsclient.PublishedRoster {
	published := &sheetsclient.PublishedRoster{
		Year:  year,
		Month: month,
		Rows:  make([]sheetsclient.PublishedRosterRow, 0, len(days)*4),
	}

	for _, day := range days {
		date, err := calendar.ParseDate(day.Date)
		if err != nil {
			continue
		}
		label := fmt.Sprintf("%s (%s)", date.Format("02/01"), weekdayLabels[date.Weekday()])
		if day.Holiday {
			label += " *"
		}

		for _, unit := range day.Units {
			row := sheetsclient.PublishedRosterRow{
				Date:        label,
				Unit:        unit.Unit,
				Team:        unit.Team,
				Members:     []string{},
				Unavailable: []string{},
			}
			if unit.Overridden {
				row.Team += " (troca)"
			}

			for _, m := range unit.Members {
				name := memberLabel(m)
				switch m.Status.Kind {
				case model.StatusApto, model.StatusVoluntario:
					if m.IsVolunteer {
						name += " (extra)"
					}
					row.Members = append(row.Members, name)
				default:
					reason := m.Status.Reason
					if reason == "" {
						reason = string(m.Status.Kind)
					}
					row.Unavailable = append(row.Unavailable, fmt.Sprintf("%s (%s)", name, reason))
				}
			}

			published.Rows = append(published.Rows, row)
		}
	}

	return published
}

func memberLabel(m model.RosterMember) string {
	name := m.ShortName
	if name == "" {
		name = m.FullName
	}
	return strings.TrimSpace(m.Rank + " " + name)
}
