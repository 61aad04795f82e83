package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bpamb/escala/pkg/db"
)

// GetLeaveRequests retrieves the vacation requests of year
func (d *DB) GetLeaveRequests(ctx context.Context, year int) ([]db.LeaveRequest, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, person_id, year, start_month, end_month
		FROM leave_requests
		WHERE year = $1
	`, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave requests: %w", err)
	}
	defer rows.Close()

	var requests []db.LeaveRequest
	for rows.Next() {
		var r db.LeaveRequest
		var endMonth *string
		if err := rows.Scan(&r.ID, &r.PersonID, &r.Year, &r.StartMonth, &endMonth); err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		r.EndMonth = stringValue(endMonth)
		requests = append(requests, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leave requests: %w", err)
	}

	return requests, nil
}

// GetLeaveSegments retrieves the parcels belonging to year. A parcel's year is
// its request's year when it has one.
func (d *DB) GetLeaveSegments(ctx context.Context, year int) ([]db.LeaveSegment, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT s.id, s.person_id, COALESCE(s.leave_request_id, ''), COALESCE(r.year, s.year),
			s.month, s.days, s.start_date, s.end_date
		FROM leave_segments s
		LEFT JOIN leave_requests r ON r.id = s.leave_request_id
		WHERE COALESCE(r.year, s.year) = $1
	`, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave segments: %w", err)
	}
	defer rows.Close()

	var segments []db.LeaveSegment
	for rows.Next() {
		var s db.LeaveSegment
		var start, end *time.Time
		if err := rows.Scan(&s.ID, &s.PersonID, &s.LeaveRequestID, &s.Year, &s.Month, &s.Days, &start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan leave segment: %w", err)
		}
		s.StartDate = formatDate(start)
		s.EndDate = formatDate(end)
		segments = append(segments, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leave segments: %w", err)
	}

	return segments, nil
}

// GetMedicalLeaves retrieves leaves overlapping year, open-ended ones included
func (d *DB) GetMedicalLeaves(ctx context.Context, year int) ([]db.MedicalLeave, error) {
	first, last := yearBounds(year)
	rows, err := d.pool.Query(ctx, `
		SELECT id, person_id, start_date, end_date, type
		FROM medical_leaves
		WHERE start_date <= $2 AND (end_date IS NULL OR end_date >= $1)
	`, first, last)
	if err != nil {
		return nil, fmt.Errorf("failed to query medical leaves: %w", err)
	}
	defer rows.Close()

	var leaves []db.MedicalLeave
	for rows.Next() {
		var l db.MedicalLeave
		var start time.Time
		var end *time.Time
		if err := rows.Scan(&l.ID, &l.PersonID, &start, &end, &l.Type); err != nil {
			return nil, fmt.Errorf("failed to scan medical leave: %w", err)
		}
		l.StartDate = formatDate(&start)
		l.EndDate = formatDate(end)
		leaves = append(leaves, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating medical leaves: %w", err)
	}

	return leaves, nil
}

// GetMedicalRestrictions retrieves restrictions overlapping year, open-ended ones included
func (d *DB) GetMedicalRestrictions(ctx context.Context, year int) ([]db.MedicalRestriction, error) {
	first, last := yearBounds(year)
	rows, err := d.pool.Query(ctx, `
		SELECT id, person_id, start_date, end_date, restriction_type
		FROM medical_restrictions
		WHERE start_date <= $2 AND (end_date IS NULL OR end_date >= $1)
	`, first, last)
	if err != nil {
		return nil, fmt.Errorf("failed to query medical restrictions: %w", err)
	}
	defer rows.Close()

	var restrictions []db.MedicalRestriction
	for rows.Next() {
		var r db.MedicalRestriction
		var start time.Time
		var end *time.Time
		if err := rows.Scan(&r.ID, &r.PersonID, &start, &end, &r.RestrictionType); err != nil {
			return nil, fmt.Errorf("failed to scan medical restriction: %w", err)
		}
		r.StartDate = formatDate(&start)
		r.EndDate = formatDate(end)
		restrictions = append(restrictions, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating medical restrictions: %w", err)
	}

	return restrictions, nil
}

// GetAllowances retrieves the abonos of year. Parcels with neither date nor days are dropped.
func (d *DB) GetAllowances(ctx context.Context, year int) ([]db.Allowance, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, person_id, month, year,
			parcel1_start, parcel1_end, parcel1_days,
			parcel2_start, parcel2_end, parcel2_days,
			parcel3_start, parcel3_end, parcel3_days,
			start_date, end_date, observation
		FROM allowances
		WHERE year = $1
	`, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query allowances: %w", err)
	}
	defer rows.Close()

	var allowances []db.Allowance
	for rows.Next() {
		var a db.Allowance
		var starts, ends [3]*time.Time
		var days [3]int
		var legacyStart, legacyEnd *time.Time
		if err := rows.Scan(&a.ID, &a.PersonID, &a.Month, &a.Year,
			&starts[0], &ends[0], &days[0],
			&starts[1], &ends[1], &days[1],
			&starts[2], &ends[2], &days[2],
			&legacyStart, &legacyEnd, &a.Observation,
		); err != nil {
			return nil, fmt.Errorf("failed to scan allowance: %w", err)
		}

		for i := range starts {
			if starts[i] == nil && ends[i] == nil && days[i] == 0 {
				continue
			}
			a.Parcels = append(a.Parcels, db.AllowanceParcel{
				StartDate: formatDate(starts[i]),
				EndDate:   formatDate(ends[i]),
				Days:      days[i],
			})
		}
		a.StartDate = formatDate(legacyStart)
		a.EndDate = formatDate(legacyEnd)
		allowances = append(allowances, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating allowances: %w", err)
	}

	return allowances, nil
}
