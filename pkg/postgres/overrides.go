package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bpamb/escala/pkg/db"
)

// GetTeamOverrides retrieves the manual team assignments dated in year
func (d *DB) GetTeamOverrides(ctx context.Context, year int) ([]db.TeamOverride, error) {
	first, last := yearBounds(year)
	rows, err := d.pool.Query(ctx, `
		SELECT id, duty_date, unit, team_id, reason, updated_at
		FROM team_overrides
		WHERE duty_date BETWEEN $1 AND $2
		ORDER BY duty_date, unit
	`, first, last)
	if err != nil {
		return nil, fmt.Errorf("failed to query team overrides: %w", err)
	}
	defer rows.Close()

	var overrides []db.TeamOverride
	for rows.Next() {
		var o db.TeamOverride
		var date time.Time
		var reason *string
		if err := rows.Scan(&o.ID, &date, &o.Unit, &o.TeamID, &reason, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team override: %w", err)
		}
		o.Date = formatDate(&date)
		o.Reason = stringValue(reason)
		overrides = append(overrides, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team overrides: %w", err)
	}

	return overrides, nil
}

// GetRotationStarts retrieves the January 1 teams configured for year
func (d *DB) GetRotationStarts(ctx context.Context, year int) ([]db.RotationStart, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT unit, year, team_id
		FROM rotation_starts
		WHERE year = $1
	`, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query rotation starts: %w", err)
	}
	defer rows.Close()

	var starts []db.RotationStart
	for rows.Next() {
		var s db.RotationStart
		if err := rows.Scan(&s.Unit, &s.Year, &s.TeamID); err != nil {
			return nil, fmt.Errorf("failed to scan rotation start: %w", err)
		}
		starts = append(starts, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rotation starts: %w", err)
	}

	return starts, nil
}

// UpsertTeamOverride inserts the assignment or replaces the one already on (date, unit).
// The stored id is written back to override.
func (d *DB) UpsertTeamOverride(ctx context.Context, override *db.TeamOverride) error {
	date, err := dateParam(override.Date)
	if err != nil {
		return fmt.Errorf("failed to upsert team override: %w", err)
	}
	if date == nil {
		return fmt.Errorf("failed to upsert team override: date is required")
	}

	updatedAt := override.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	err = d.pool.QueryRow(ctx, `
		INSERT INTO team_overrides (id, duty_date, unit, team_id, reason, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (duty_date, unit) DO UPDATE SET
			team_id = EXCLUDED.team_id,
			reason = EXCLUDED.reason,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`, override.ID, date, override.Unit, override.TeamID, nullString(override.Reason), updatedAt).Scan(&override.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert team override: %w", err)
	}
	return nil
}

// UpsertRotationStart sets the January 1 team of (unit, year)
func (d *DB) UpsertRotationStart(ctx context.Context, start *db.RotationStart) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO rotation_starts (unit, year, team_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (unit, year) DO UPDATE SET team_id = EXCLUDED.team_id
	`, start.Unit, start.Year, start.TeamID)
	if err != nil {
		return fmt.Errorf("failed to upsert rotation start: %w", err)
	}
	return nil
}
