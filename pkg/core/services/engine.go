package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bpamb/escala/pkg/core/availability"
	"github.com/bpamb/escala/pkg/core/calendar"
	"github.com/bpamb/escala/pkg/core/model"
	"github.com/bpamb/escala/pkg/core/quota"
	"github.com/bpamb/escala/pkg/core/roster"
	"github.com/bpamb/escala/pkg/core/rotation"
	"github.com/bpamb/escala/pkg/core/snapshot"
	"github.com/bpamb/escala/pkg/db"
)

// ErrInvalidOverride is returned when a manual assignment names a team the unit does not have
var ErrInvalidOverride = errors.New("invalid override")

// Deps holds the collaborators of an Engine
type Deps struct {
	Table          *rotation.Table
	Cache          *snapshot.Cache
	Writer         db.OverrideWriter
	Volunteers     roster.VolunteerStore
	AdminOverrides AdminOverrideStore
	Admin          *rotation.AdminRotation
	Holidays       *calendar.HolidayOracle
	// QuotaLimit defaults to quota.DefaultMonthlyLimit
	QuotaLimit int
	// FallbackStarts apply when the database has no rotation start for a unit and year
	FallbackStarts []db.RotationStart
	Logger         *zap.Logger
	// Now defaults to time.Now
	Now func() time.Time
}

// Engine answers roster questions against the cached snapshots
type Engine struct {
	table          *rotation.Table
	cache          *snapshot.Cache
	writer         db.OverrideWriter
	volunteers     roster.VolunteerStore
	adminOverrides AdminOverrideStore
	admin          *rotation.AdminRotation
	holidays       *calendar.HolidayOracle
	quotaLimit     int
	fallbackStarts []db.RotationStart
	logger         *zap.Logger
	now            func() time.Time
}

func NewEngine(deps Deps) *Engine {
	e := &Engine{
		table:          deps.Table,
		cache:          deps.Cache,
		writer:         deps.Writer,
		volunteers:     deps.Volunteers,
		adminOverrides: deps.AdminOverrides,
		admin:          deps.Admin,
		holidays:       deps.Holidays,
		quotaLimit:     deps.QuotaLimit,
		fallbackStarts: deps.FallbackStarts,
		logger:         deps.Logger,
		now:            deps.Now,
	}
	if e.table == nil {
		e.table = rotation.MustDefaultTable()
	}
	if e.volunteers == nil {
		e.volunteers = roster.NewMemoryVolunteerStore()
	}
	if e.adminOverrides == nil {
		e.adminOverrides = NewMemoryAdminOverrideStore()
	}
	if e.admin == nil {
		e.admin = &rotation.AdminRotation{Teams: rotation.DefaultAdminTeams, Holidays: e.holidays}
	}
	if e.quotaLimit <= 0 {
		e.quotaLimit = quota.DefaultMonthlyLimit
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Units returns the rotation table in display order
func (e *Engine) Units() []model.UnitConfig {
	return e.table.Units()
}

// Table returns the unit rotation table
func (e *Engine) Table() *rotation.Table {
	return e.table
}

// SnapshotInfo describes the loaded snapshots
func (e *Engine) SnapshotInfo() []snapshot.Info {
	return e.cache.Info()
}

// SnapshotVersion is bumped after every stored load or refresh and after volunteer or admin override writes
func (e *Engine) SnapshotVersion() uint64 {
	return e.cache.Version()
}

// SubscribeSnapshots notifies the new version after each load, refresh, volunteer or admin override write
func (e *Engine) SubscribeSnapshots() (<-chan uint64, func()) {
	return e.cache.Subscribe()
}

// Refresh regathers every loaded snapshot, loading the current year when nothing is loaded yet
func (e *Engine) Refresh(ctx context.Context) error {
	if len(e.cache.Years()) == 0 {
		_, err := e.cache.Reload(ctx, e.now().Year())
		return err
	}
	return e.cache.Refresh(ctx)
}

func (e *Engine) teamResolver(s *snapshot.Snapshot) *rotation.TeamResolver {
	// Database rows come last so they win over configured fallbacks
	starts := make([]db.RotationStart, 0, len(e.fallbackStarts)+len(s.RotationStarts))
	starts = append(starts, e.fallbackStarts...)
	starts = append(starts, s.RotationStarts...)
	return rotation.NewTeamResolver(e.table, s.TeamOverrides, starts)
}

func (e *Engine) assembler(s *snapshot.Snapshot) *roster.Assembler {
	return roster.NewAssembler(roster.Deps{
		Table:      e.table,
		Teams:      e.teamResolver(s),
		Statuses:   availability.NewResolver(s.Records(), e.now(), nil),
		Holidays:   e.holidays,
		People:     s.People,
		Members:    s.TeamMembers,
		Volunteers: e.volunteers,
	})
}

// ResolveTeam returns the team on duty for unit on date
func (e *Engine) ResolveTeam(ctx context.Context, date time.Time, unit string) (rotation.Assignment, error) {
	if _, err := e.table.Lookup(unit); err != nil {
		return rotation.Assignment{}, err
	}

	s, err := e.cache.Get(ctx, date.Year())
	if err != nil {
		return rotation.Assignment{}, err
	}

	a, err := e.teamResolver(s).Resolve(date, unit)
	if err != nil {
		return rotation.Assignment{}, err
	}

	e.logger.Debug("Resolved team",
		zap.String("unit", a.Unit),
		zap.String("date", calendar.FormatDate(date)),
		zap.String("team", a.Team),
		zap.Bool("overridden", a.Overridden))
	return a, nil
}

// ResolveStatus returns the availability of a person on date
func (e *Engine) ResolveStatus(ctx context.Context, personID string, date time.Time) (model.Status, error) {
	s, err := e.cache.Get(ctx, date.Year())
	if err != nil {
		return model.Status{}, err
	}

	volunteers, err := e.volunteers.ListVolunteers(ctx, calendar.FormatDate(date))
	if err != nil {
		return model.Status{}, fmt.Errorf("failed to list volunteers: %w", err)
	}

	status, rule := availability.NewResolver(s.Records(), e.now(), nil).Explain(personID, date, volunteers)
	e.logger.Debug("Resolved status",
		zap.String("person_id", personID),
		zap.String("date", calendar.FormatDate(date)),
		zap.String("status", string(status.Kind)),
		zap.String("rule", rule))
	return status, nil
}

// AssembleDay builds every unit's roster for date
func (e *Engine) AssembleDay(ctx context.Context, date time.Time) (model.DayRoster, error) {
	s, err := e.cache.Get(ctx, date.Year())
	if err != nil {
		return model.DayRoster{}, err
	}
	return e.assembler(s).AssembleDay(ctx, date)
}

// AssembleMonth builds the roster of every day of the month
func (e *Engine) AssembleMonth(ctx context.Context, year int, month time.Month) ([]model.DayRoster, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month %d", calendar.ErrInvalidDate, month)
	}

	s, err := e.cache.Get(ctx, year)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("Assembling month", zap.Int("year", year), zap.Int("month", int(month)))
	return e.assembler(s).AssembleMonth(ctx, year, month)
}

// QuotaFor returns the leave-day balance of a month
func (e *Engine) QuotaFor(ctx context.Context, year int, month time.Month) (model.Quota, error) {
	if month < time.January || month > time.December {
		return model.Quota{}, fmt.Errorf("%w: month %d", calendar.ErrInvalidDate, month)
	}

	s, err := e.cache.Get(ctx, year)
	if err != nil {
		return model.Quota{}, err
	}

	q := quota.Calculate(year, month, e.quotaLimit, s.LeaveRequests, s.LeaveSegments)
	if q.IsOverLimit {
		e.logger.Warn("Monthly leave quota exceeded",
			zap.Int("year", year),
			zap.Int("month", int(month)),
			zap.Int("previsto", q.Previsto),
			zap.Int("limit", q.Limit))
	}
	return q, nil
}

// AdminDay returns the administrative team for date
func (e *Engine) AdminDay(ctx context.Context, date time.Time) (model.AdminAssignment, error) {
	overrides, err := e.adminOverrides.ListAdminOverrides(ctx)
	if err != nil {
		return model.AdminAssignment{}, fmt.Errorf("failed to list admin overrides: %w", err)
	}
	return e.admin.Resolve(date, overrides), nil
}
