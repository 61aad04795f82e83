package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bpamb/escala/pkg/db"
)

// GetPeople retrieves the personnel registry
func (d *DB) GetPeople(ctx context.Context) ([]db.Person, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, full_name, short_name, rank, registration
		FROM people
		ORDER BY full_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query people: %w", err)
	}
	defer rows.Close()

	var people []db.Person
	for rows.Next() {
		var p db.Person
		if err := rows.Scan(&p.ID, &p.FullName, &p.ShortName, &p.Rank, &p.Registration); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating people: %w", err)
	}

	return people, nil
}

// GetTeamMembers retrieves every team membership
func (d *DB) GetTeamMembers(ctx context.Context) ([]db.TeamMember, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT person_id, unit_grouping, team_name, role
		FROM team_members
		ORDER BY unit_grouping, team_name, person_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query team members: %w", err)
	}
	defer rows.Close()

	var members []db.TeamMember
	for rows.Next() {
		var m db.TeamMember
		if err := rows.Scan(&m.PersonID, &m.Grouping, &m.TeamName, &m.Role); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team members: %w", err)
	}

	return members, nil
}

// UpsertPeople inserts or updates people by id in one transaction
func (d *DB) UpsertPeople(ctx context.Context, people []db.Person) error {
	if len(people) == 0 {
		return nil
	}

	return pgx.BeginFunc(ctx, d.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, p := range people {
			batch.Queue(`
				INSERT INTO people (id, full_name, short_name, rank, registration, updated_at)
				VALUES ($1, $2, $3, $4, $5, NOW())
				ON CONFLICT (id) DO UPDATE SET
					full_name = EXCLUDED.full_name,
					short_name = EXCLUDED.short_name,
					rank = EXCLUDED.rank,
					registration = EXCLUDED.registration,
					updated_at = NOW()
			`, p.ID, p.FullName, p.ShortName, p.Rank, p.Registration)
		}

		results := tx.SendBatch(ctx, batch)
		for _, p := range people {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("failed to upsert person %s: %w", p.ID, err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("failed to upsert people: %w", err)
		}
		return nil
	})
}

// ReplaceTeamMembers swaps the whole membership table in one transaction
func (d *DB) ReplaceTeamMembers(ctx context.Context, members []db.TeamMember) error {
	type key struct{ person, grouping, team string }
	seen := make(map[key]bool, len(members))
	unique := make([]db.TeamMember, 0, len(members))
	for _, m := range members {
		k := key{m.PersonID, m.Grouping, m.TeamName}
		if seen[k] {
			continue
		}
		seen[k] = true
		unique = append(unique, m)
	}

	return pgx.BeginFunc(ctx, d.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM team_members`); err != nil {
			return fmt.Errorf("failed to clear team members: %w", err)
		}

		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"team_members"},
			[]string{"person_id", "unit_grouping", "team_name", "role"},
			pgx.CopyFromSlice(len(unique), func(i int) ([]any, error) {
				m := unique[i]
				return []any{m.PersonID, m.Grouping, m.TeamName, m.Role}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("failed to insert team members: %w", err)
		}
		return nil
	})
}
