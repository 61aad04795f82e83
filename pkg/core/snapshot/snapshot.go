package snapshot

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bpamb/escala/pkg/core/availability"
	"github.com/bpamb/escala/pkg/db"
)

// Snapshot is one internally consistent read of every record set for a year
type Snapshot struct {
	Year     int
	LoadedAt time.Time
	Version  uint64
	// seq orders gathers by start so an older read never replaces a newer one
	seq uint64

	People         []db.Person
	TeamMembers    []db.TeamMember
	LeaveRequests  []db.LeaveRequest
	LeaveSegments  []db.LeaveSegment
	MedicalLeaves  []db.MedicalLeave
	Restrictions   []db.MedicalRestriction
	Allowances     []db.Allowance
	TeamOverrides  []db.TeamOverride
	RotationStarts []db.RotationStart
}

// Records returns the inputs of the member status resolver
func (s *Snapshot) Records() availability.Records {
	return availability.Records{
		LeaveRequests: s.LeaveRequests,
		LeaveSegments: s.LeaveSegments,
		MedicalLeaves: s.MedicalLeaves,
		Restrictions:  s.Restrictions,
		Allowances:    s.Allowances,
	}
}

// GatherError names the record set whose fetch aborted a gather
type GatherError struct {
	Set string
	Err error
}

func (e *GatherError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Set, e.Err)
}

func (e *GatherError) Unwrap() error {
	return e.Err
}

// fetch runs one getter and tags its failure with the record set name
func fetch[T any](ctx context.Context, set string, get func(context.Context) ([]T, error), dst *[]T) func() error {
	return func() error {
		records, err := get(ctx)
		if err != nil {
			return &GatherError{Set: set, Err: err}
		}
		*dst = records
		return nil
	}
}

// Gather fetches every record set for year concurrently and waits for all of them.
// The first failure cancels the remaining fetches and no snapshot is returned.
func Gather(ctx context.Context, reader db.SnapshotReader, year int) (*Snapshot, error) {
	s := &Snapshot{Year: year}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(fetch(gctx, "people", reader.GetPeople, &s.People))
	g.Go(fetch(gctx, "team members", reader.GetTeamMembers, &s.TeamMembers))
	g.Go(fetch(gctx, "leave requests", yearScoped(reader.GetLeaveRequests, year), &s.LeaveRequests))
	g.Go(fetch(gctx, "leave segments", yearScoped(reader.GetLeaveSegments, year), &s.LeaveSegments))
	g.Go(fetch(gctx, "medical leaves", yearScoped(reader.GetMedicalLeaves, year), &s.MedicalLeaves))
	g.Go(fetch(gctx, "medical restrictions", yearScoped(reader.GetMedicalRestrictions, year), &s.Restrictions))
	g.Go(fetch(gctx, "allowances", yearScoped(reader.GetAllowances, year), &s.Allowances))
	g.Go(fetch(gctx, "team overrides", yearScoped(reader.GetTeamOverrides, year), &s.TeamOverrides))
	g.Go(fetch(gctx, "rotation starts", yearScoped(reader.GetRotationStarts, year), &s.RotationStarts))

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return s, nil
}

func yearScoped[T any](get func(context.Context, int) ([]T, error), year int) func(context.Context) ([]T, error) {
	return func(ctx context.Context) ([]T, error) {
		return get(ctx, year)
	}
}
