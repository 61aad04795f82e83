package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bpamb/escala/pkg/core/calendar"
	"github.com/bpamb/escala/pkg/db"
)

// TeamOverrideInput is a manual team assignment request
type TeamOverrideInput struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Unit   string `json:"unit" validate:"required"`
	Team   string `json:"team" validate:"required"`
	Reason string `json:"reason,omitempty"`
}

// SaveTeamOverride upserts a manual assignment for (date, unit) and refetches
// the snapshot of that year. Nothing is applied locally: when the write fails
// the loaded snapshot is untouched.
func (e *Engine) SaveTeamOverride(ctx context.Context, in TeamOverrideInput) (*db.TeamOverride, error) {
	date, err := calendar.ParseDate(in.Date)
	if err != nil {
		return nil, err
	}

	unit, err := e.table.Lookup(in.Unit)
	if err != nil {
		return nil, err
	}

	idx := unit.TeamIndex(strings.TrimSpace(in.Team))
	if idx < 0 {
		return nil, fmt.Errorf("%w: unit %s has no team %q", ErrInvalidOverride, unit.Name, in.Team)
	}

	override := &db.TeamOverride{
		ID:        uuid.New().String(),
		Date:      calendar.FormatDate(date),
		Unit:      unit.Name,
		TeamID:    unit.Teams[idx],
		Reason:    strings.TrimSpace(in.Reason),
		UpdatedAt: e.now().UTC(),
	}

	e.logger.Debug("Saving team override",
		zap.String("date", override.Date),
		zap.String("unit", override.Unit),
		zap.String("team", override.TeamID))

	if err := e.writer.UpsertTeamOverride(ctx, override); err != nil {
		return nil, fmt.Errorf("failed to save team override: %w", err)
	}

	if _, err := e.cache.Reload(ctx, date.Year()); err != nil {
		return override, fmt.Errorf("team override saved but snapshot refresh failed: %w", err)
	}

	e.logger.Info("Team override saved",
		zap.String("date", override.Date),
		zap.String("unit", override.Unit),
		zap.String("team", override.TeamID))
	return override, nil
}

// SaveRotationStart sets the team on duty on January 1 of year for unit
func (e *Engine) SaveRotationStart(ctx context.Context, unitName string, year int, team string) (*db.RotationStart, error) {
	if year < 1 {
		return nil, fmt.Errorf("year must be positive, got %d", year)
	}

	unit, err := e.table.Lookup(unitName)
	if err != nil {
		return nil, err
	}

	idx := unit.TeamIndex(strings.TrimSpace(team))
	if idx < 0 {
		return nil, fmt.Errorf("%w: unit %s has no team %q", ErrInvalidOverride, unit.Name, team)
	}

	start := &db.RotationStart{Unit: unit.Name, Year: year, TeamID: unit.Teams[idx]}
	if err := e.writer.UpsertRotationStart(ctx, start); err != nil {
		return nil, fmt.Errorf("failed to save rotation start: %w", err)
	}

	if _, err := e.cache.Reload(ctx, year); err != nil {
		return start, fmt.Errorf("rotation start saved but snapshot refresh failed: %w", err)
	}

	e.logger.Info("Rotation start saved",
		zap.String("unit", start.Unit),
		zap.Int("year", start.Year),
		zap.String("team", start.TeamID))
	return start, nil
}

// AdminOverrideStore holds per-date administrative team overrides keyed by "2006-01-02"
type AdminOverrideStore interface {
	ListAdminOverrides(ctx context.Context) (map[string]string, error)
	SetAdminOverride(ctx context.Context, date, team string) error
	ClearAdminOverride(ctx context.Context, date string) error
}

// SetAdminOverride assigns team to date, or clears the override when team is empty
func (e *Engine) SetAdminOverride(ctx context.Context, date, team string) error {
	d, err := calendar.ParseDate(date)
	if err != nil {
		return err
	}
	day := calendar.FormatDate(d)

	team = strings.TrimSpace(team)
	if team == "" {
		if err := e.adminOverrides.ClearAdminOverride(ctx, day); err != nil {
			return fmt.Errorf("failed to clear admin override: %w", err)
		}
		e.cache.Notify()
		e.logger.Info("Admin override cleared", zap.String("date", day))
		return nil
	}

	canonical := ""
	for _, t := range e.admin.Teams {
		if strings.EqualFold(t, team) {
			canonical = t
			break
		}
	}
	if canonical == "" {
		return fmt.Errorf("%w: no administrative team %q", ErrInvalidOverride, team)
	}

	if err := e.adminOverrides.SetAdminOverride(ctx, day, canonical); err != nil {
		return fmt.Errorf("failed to save admin override: %w", err)
	}
	e.cache.Notify()
	e.logger.Info("Admin override saved", zap.String("date", day), zap.String("team", canonical))
	return nil
}

// MemoryAdminOverrideStore is an in-process AdminOverrideStore
type MemoryAdminOverrideStore struct {
	mu        sync.RWMutex
	overrides map[string]string
}

func NewMemoryAdminOverrideStore() *MemoryAdminOverrideStore {
	return &MemoryAdminOverrideStore{overrides: make(map[string]string)}
}

func (s *MemoryAdminOverrideStore) ListAdminOverrides(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.overrides))
	for k, v := range s.overrides {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryAdminOverrideStore) SetAdminOverride(ctx context.Context, date, team string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[date] = team
	return nil
}

func (s *MemoryAdminOverrideStore) ClearAdminOverride(ctx context.Context, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides, date)
	return nil
}
