package db

import "context"

// SnapshotReader defines read access to every record set the roster engine consumes.
// Year-scoped getters return the records relevant to that calendar year.
type SnapshotReader interface {
	GetPeople(ctx context.Context) ([]Person, error)
	GetTeamMembers(ctx context.Context) ([]TeamMember, error)
	GetLeaveRequests(ctx context.Context, year int) ([]LeaveRequest, error)
	GetLeaveSegments(ctx context.Context, year int) ([]LeaveSegment, error)
	GetMedicalLeaves(ctx context.Context, year int) ([]MedicalLeave, error)
	GetMedicalRestrictions(ctx context.Context, year int) ([]MedicalRestriction, error)
	GetAllowances(ctx context.Context, year int) ([]Allowance, error)
	GetTeamOverrides(ctx context.Context, year int) ([]TeamOverride, error)
	GetRotationStarts(ctx context.Context, year int) ([]RotationStart, error)
}

// OverrideWriter defines the upsert operations used by administrative saves
type OverrideWriter interface {
	UpsertTeamOverride(ctx context.Context, override *TeamOverride) error
	UpsertRotationStart(ctx context.Context, start *RotationStart) error
}

// RegistryWriter replaces the personnel registry imported from the personnel sheet
type RegistryWriter interface {
	UpsertPeople(ctx context.Context, people []Person) error
	// ReplaceTeamMembers swaps every membership for members in one transaction
	ReplaceTeamMembers(ctx context.Context, members []TeamMember) error
}

// Change describes a write on one of the watched tables
type Change struct {
	Table     string `json:"table"`
	Operation string `json:"op"`
}

// ChangeSource delivers change notifications until ctx is cancelled.
// The returned channel is closed when the subscription ends.
type ChangeSource interface {
	Changes(ctx context.Context) (<-chan Change, error)
}

// Database defines the interface for all database operations.
// postgres.DB implements this interface.
type Database interface {
	SnapshotReader
	OverrideWriter
	RegistryWriter
	ChangeSource
}
