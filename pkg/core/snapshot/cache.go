package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/bpamb/escala/pkg/db"
)

// ErrNotLoaded is returned when no snapshot has been gathered for a year
var ErrNotLoaded = errors.New("snapshot not loaded")

// DefaultTimeout bounds one gather when the caller does not configure it
const DefaultTimeout = 15 * time.Second

// Info describes a loaded snapshot without its records
type Info struct {
	Year     int       `json:"year"`
	LoadedAt time.Time `json:"loadedAt"`
	Version  uint64    `json:"version"`
}

// Cache keeps the latest successful snapshot per year. A failed refresh leaves
// the previous snapshot in place. Snapshots are replaced, never mutated.
type Cache struct {
	reader  db.SnapshotReader
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time

	loads singleflight.Group
	// started numbers gathers in the order they begin
	started atomic.Uint64

	mu        sync.RWMutex
	snapshots map[int]*Snapshot
	version   uint64

	subsMu sync.Mutex
	subs   map[chan uint64]struct{}
}

func NewCache(reader db.SnapshotReader, logger *zap.Logger, timeout time.Duration) *Cache {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Cache{
		reader:    reader,
		logger:    logger,
		timeout:   timeout,
		now:       time.Now,
		snapshots: make(map[int]*Snapshot),
		subs:      make(map[chan uint64]struct{}),
	}
}

// Current returns the loaded snapshot for year without fetching
func (c *Cache) Current(year int) (*Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.snapshots[year]
	if !ok {
		return nil, fmt.Errorf("%w for %d", ErrNotLoaded, year)
	}
	return s, nil
}

// Get returns the snapshot for year, gathering it on first use
func (c *Cache) Get(ctx context.Context, year int) (*Snapshot, error) {
	if s, err := c.Current(year); err == nil {
		return s, nil
	}
	return c.Load(ctx, year)
}

// Load gathers year and replaces its snapshot. Concurrent loads of the same year
// share one gather, so a Load may return data read before the call. Use Reload
// after a write.
func (c *Cache) Load(ctx context.Context, year int) (*Snapshot, error) {
	_, err, _ := c.loads.Do(strconv.Itoa(year), func() (interface{}, error) {
		s, err := c.gather(ctx, year)
		if err != nil {
			return nil, err
		}
		c.store(s)
		return nil, nil
	})
	if err != nil {
		c.logger.Warn("Snapshot load failed", zap.Int("year", year), zap.Error(err))
		return nil, fmt.Errorf("failed to load snapshot for %d: %w", year, err)
	}
	return c.Current(year)
}

// Reload gathers year with a gather that starts after the call, never joining
// one already in flight. The returned snapshot reflects every write that
// completed before Reload was called.
func (c *Cache) Reload(ctx context.Context, year int) (*Snapshot, error) {
	s, err := c.gather(ctx, year)
	if err != nil {
		c.logger.Warn("Snapshot reload failed", zap.Int("year", year), zap.Error(err))
		return nil, fmt.Errorf("failed to reload snapshot for %d: %w", year, err)
	}
	c.store(s)
	return c.Current(year)
}

// Refresh regathers every loaded year. Either all years are replaced or, on any
// failure, none are and the error is returned.
func (c *Cache) Refresh(ctx context.Context) error {
	years := c.Years()
	if len(years) == 0 {
		return nil
	}

	fresh := make([]*Snapshot, 0, len(years))
	for _, year := range years {
		s, err := c.gather(ctx, year)
		if err != nil {
			c.logger.Warn("Snapshot refresh failed, keeping previous snapshot",
				zap.Int("year", year),
				zap.Error(err))
			return fmt.Errorf("failed to refresh snapshot for %d: %w", year, err)
		}
		fresh = append(fresh, s)
	}

	c.store(fresh...)
	return nil
}

// Years returns the loaded years in ascending order
func (c *Cache) Years() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	years := make([]int, 0, len(c.snapshots))
	for y := range c.snapshots {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Info describes every loaded snapshot
func (c *Cache) Info() []Info {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Info, 0, len(c.snapshots))
	for _, s := range c.snapshots {
		out = append(out, Info{Year: s.Year, LoadedAt: s.LoadedAt, Version: s.Version})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// Version is incremented on every stored load or refresh and on Notify
func (c *Cache) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Subscribe returns a channel that receives the new version after each
// stored load or refresh and each Notify. Slow subscribers only see the latest version.
// Call the returned func to unsubscribe.
func (c *Cache) Subscribe() (<-chan uint64, func()) {
	ch := make(chan uint64, 1)

	c.subsMu.Lock()
	c.subs[ch] = struct{}{}
	c.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.subsMu.Lock()
			delete(c.subs, ch)
			c.subsMu.Unlock()
			close(ch)
		})
	}
}

// Watch refreshes the cache whenever source reports a change, until ctx is
// cancelled or the source closes. Refresh failures are logged and the previous
// snapshots stay in use.
func (c *Cache) Watch(ctx context.Context, source db.ChangeSource) error {
	changes, err := source.Changes(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to changes: %w", err)
	}

	c.logger.Info("Watching for record changes")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case change, ok := <-changes:
			if !ok {
				c.logger.Info("Change source closed")
				return nil
			}
			// A burst of writes needs only one refetch
			pending := drain(changes)
			c.logger.Debug("Record change received",
				zap.String("table", change.Table),
				zap.String("op", change.Operation),
				zap.Int("coalesced", pending))

			if err := c.Refresh(ctx); err != nil {
				c.logger.Error("Failed to refresh after change", zap.Error(err))
			}
		}
	}
}

// Notify bumps the version and tells subscribers that state outside the
// snapshots changed, such as volunteers or administrative overrides
func (c *Cache) Notify() uint64 {
	c.mu.Lock()
	c.version++
	version := c.version
	c.mu.Unlock()

	c.publish(version)
	return version
}

func drain(changes <-chan db.Change) int {
	n := 0
	for {
		select {
		case _, ok := <-changes:
			if !ok {
				return n
			}
			n++
		default:
			return n
		}
	}
}

func (c *Cache) gather(ctx context.Context, year int) (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	seq := c.started.Add(1)
	start := c.now()
	s, err := Gather(ctx, c.reader, year)
	if err != nil {
		return nil, err
	}
	s.LoadedAt = c.now()
	s.seq = seq

	c.logger.Debug("Snapshot gathered",
		zap.Int("year", year),
		zap.Duration("elapsed", s.LoadedAt.Sub(start)),
		zap.Int("people", len(s.People)),
		zap.Int("overrides", len(s.TeamOverrides)))
	return s, nil
}

// store replaces each year's snapshot unless the loaded one comes from a gather
// that started later
func (c *Cache) store(snapshots ...*Snapshot) {
	c.mu.Lock()
	fresh := make([]*Snapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if cur, ok := c.snapshots[s.Year]; ok && cur.seq > s.seq {
			c.logger.Debug("Dropping stale snapshot",
				zap.Int("year", s.Year),
				zap.Uint64("gather", s.seq),
				zap.Uint64("loaded_gather", cur.seq))
			continue
		}
		fresh = append(fresh, s)
	}
	if len(fresh) == 0 {
		c.mu.Unlock()
		return
	}
	c.version++
	version := c.version
	for _, s := range fresh {
		s.Version = version
		c.snapshots[s.Year] = s
	}
	c.mu.Unlock()

	c.publish(version)
}

func (c *Cache) publish(version uint64) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for ch := range c.subs {
		select {
		case ch <- version:
		default:
			// Replace the stale pending version
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- version:
			default:
			}
		}
	}
}
