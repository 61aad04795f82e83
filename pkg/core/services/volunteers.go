package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bpamb/escala/pkg/core/calendar"
	"github.com/bpamb/escala/pkg/db"
)

// VolunteerInput registers a person for a paid extra shift
type VolunteerInput struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	PersonID    string `json:"personId" validate:"required"`
	Unit        string `json:"unit" validate:"required"`
	Team        string `json:"team,omitempty"`
	Observation string `json:"observation,omitempty"`
}

// AddVolunteer registers a volunteer. Registering the same person twice on a date replaces the entry.
func (e *Engine) AddVolunteer(ctx context.Context, in VolunteerInput) (*db.VolunteerEntry, error) {
	date, err := calendar.ParseDate(in.Date)
	if err != nil {
		return nil, err
	}

	personID := strings.TrimSpace(in.PersonID)
	if personID == "" {
		return nil, fmt.Errorf("person id is required")
	}

	unit, err := e.table.Lookup(in.Unit)
	if err != nil {
		return nil, err
	}

	team := strings.TrimSpace(in.Team)
	if team != "" {
		idx := unit.TeamIndex(team)
		if idx < 0 {
			return nil, fmt.Errorf("%w: unit %s has no team %q", ErrInvalidOverride, unit.Name, in.Team)
		}
		team = unit.Teams[idx]
	}

	entry := &db.VolunteerEntry{
		ID:          uuid.New().String(),
		Date:        calendar.FormatDate(date),
		PersonID:    personID,
		Unit:        unit.Name,
		Team:        team,
		Observation: strings.TrimSpace(in.Observation),
	}

	if err := e.volunteers.AddVolunteer(ctx, *entry); err != nil {
		return nil, fmt.Errorf("failed to add volunteer: %w", err)
	}
	e.cache.Notify()

	e.logger.Info("Volunteer registered",
		zap.String("date", entry.Date),
		zap.String("person_id", entry.PersonID),
		zap.String("unit", entry.Unit))
	return entry, nil
}

// RemoveVolunteer deletes the registration of personID on date
func (e *Engine) RemoveVolunteer(ctx context.Context, date, personID string) error {
	d, err := calendar.ParseDate(date)
	if err != nil {
		return err
	}

	if err := e.volunteers.RemoveVolunteer(ctx, calendar.FormatDate(d), personID); err != nil {
		return fmt.Errorf("failed to remove volunteer: %w", err)
	}
	e.cache.Notify()

	e.logger.Info("Volunteer removed", zap.String("date", date), zap.String("person_id", personID))
	return nil
}

// ListVolunteers returns the registrations for date
func (e *Engine) ListVolunteers(ctx context.Context, date string) ([]db.VolunteerEntry, error) {
	d, err := calendar.ParseDate(date)
	if err != nil {
		return nil, err
	}

	entries, err := e.volunteers.ListVolunteers(ctx, calendar.FormatDate(d))
	if err != nil {
		return nil, fmt.Errorf("failed to list volunteers: %w", err)
	}
	return entries, nil
}
