package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/bpamb/escala/pkg/db"
)

// ChangesChannel is the LISTEN channel fed by the table triggers
const ChangesChannel = "escala_changes"

// Changes holds one pooled connection listening on ChangesChannel and forwards
// each notification until ctx is cancelled or the connection fails. The channel
// is closed when listening stops.
func (d *DB) Changes(ctx context.Context) (<-chan db.Change, error) {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire listen connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+ChangesChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to listen on %s: %w", ChangesChannel, err)
	}

	changes := make(chan db.Change, 16)
	go func() {
		defer close(changes)
		defer func() {
			// Stop listening before the connection goes back to the pool
			if !conn.Conn().IsClosed() {
				_, _ = conn.Exec(context.Background(), "UNLISTEN "+ChangesChannel)
			}
			conn.Release()
		}()

		for {
			notification, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					d.logger.Warn("Change notifications stopped", zap.Error(err))
				}
				return
			}

			change := parseChange(notification.Payload)
			select {
			case changes <- change:
			case <-ctx.Done():
				return
			}
		}
	}()

	return changes, nil
}

// parseChange decodes a trigger payload. Anything unreadable still signals a change.
func parseChange(payload string) db.Change {
	var change db.Change
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		return db.Change{Table: payload}
	}
	return change
}
