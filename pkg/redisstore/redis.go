package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bpamb/escala/pkg/core/roster"
	"github.com/bpamb/escala/pkg/core/services"
	"github.com/bpamb/escala/pkg/db"
)

const (
	volunteersPrefix  = "escala:voluntarios:"
	adminOverridesKey = "escala:expediente:overrides"
	pingTimeout       = 5 * time.Second
)

var (
	_ roster.VolunteerStore       = (*Client)(nil)
	_ services.AdminOverrideStore = (*Client)(nil)
)

// Options holds the connection settings
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Client keeps volunteer registrations and administrative overrides in Redis.
// Volunteers live in one hash per date keyed by person id; overrides share a single hash keyed by date.
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient connects and pings the server
func NewClient(opts Options, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	logger.Info("Connected to redis", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return &Client{rdb: rdb, logger: logger}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

func volunteersKey(date string) string {
	return volunteersPrefix + date
}

// ListVolunteers returns the registrations of date ordered by person id
func (c *Client) ListVolunteers(ctx context.Context, date string) ([]db.VolunteerEntry, error) {
	values, err := c.rdb.HGetAll(ctx, volunteersKey(date)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read volunteers for %s: %w", date, err)
	}

	entries := make([]db.VolunteerEntry, 0, len(values))
	for personID, raw := range values {
		var entry db.VolunteerEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			c.logger.Warn("Skipping unreadable volunteer entry",
				zap.String("date", date),
				zap.String("person_id", personID),
				zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].PersonID < entries[j].PersonID })
	return entries, nil
}

// AddVolunteer stores entry, replacing the person's previous entry on the same date
func (c *Client) AddVolunteer(ctx context.Context, entry db.VolunteerEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode volunteer entry: %w", err)
	}

	if err := c.rdb.HSet(ctx, volunteersKey(entry.Date), entry.PersonID, raw).Err(); err != nil {
		return fmt.Errorf("failed to store volunteer entry: %w", err)
	}
	return nil
}

func (c *Client) RemoveVolunteer(ctx context.Context, date, personID string) error {
	if err := c.rdb.HDel(ctx, volunteersKey(date), personID).Err(); err != nil {
		return fmt.Errorf("failed to remove volunteer entry: %w", err)
	}
	return nil
}

// ListAdminOverrides returns every administrative override keyed by date
func (c *Client) ListAdminOverrides(ctx context.Context) (map[string]string, error) {
	overrides, err := c.rdb.HGetAll(ctx, adminOverridesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read admin overrides: %w", err)
	}
	return overrides, nil
}

func (c *Client) SetAdminOverride(ctx context.Context, date, team string) error {
	if err := c.rdb.HSet(ctx, adminOverridesKey, date, team).Err(); err != nil {
		return fmt.Errorf("failed to store admin override: %w", err)
	}
	return nil
}

func (c *Client) ClearAdminOverride(ctx context.Context, date string) error {
	if err := c.rdb.HDel(ctx, adminOverridesKey, date).Err(); err != nil {
		return fmt.Errorf("failed to clear admin override: %w", err)
	}
	return nil
}
