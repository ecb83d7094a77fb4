// Package postgres implements the message-level idempotency store.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultTTL is how long a processed marker keeps suppressing redelivery.
const DefaultTTL = 24 * time.Hour

// ProcessedStore records which notification hashes were already handled, so
// redelivery or redrive of the same queue message after a crash does not
// re-run side effects. Markers expire after the TTL; the domain-level
// betrokkene guard covers anything older.
type ProcessedStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// New creates a ProcessedStore with the default 24h TTL.
func New(pool *pgxpool.Pool) *ProcessedStore {
	return &ProcessedStore{pool: pool, ttl: DefaultTTL}
}

// AlreadyHandled reports whether the hash was processed within the TTL window.
func (s *ProcessedStore) AlreadyHandled(ctx context.Context, hash string) (bool, error) {
	var handled bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM processed_notificaties
			WHERE hash = $1 AND processed_at > $2
		)
	`, hash, time.Now().Add(-s.ttl)).Scan(&handled)
	if err != nil {
		return false, fmt.Errorf("check processed notificatie: %w", err)
	}
	return handled, nil
}

// MarkHandled records the hash as processed. Re-marking an existing hash
// refreshes its timestamp.
func (s *ProcessedStore) MarkHandled(ctx context.Context, hash string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO processed_notificaties (hash, processed_at)
		VALUES ($1, $2)
		ON CONFLICT (hash) DO UPDATE SET processed_at = EXCLUDED.processed_at
	`, hash, time.Now())
	if err != nil {
		return fmt.Errorf("mark notificatie processed: %w", err)
	}
	return nil
}

// PurgeExpired deletes markers older than the TTL. Called from the
// background purge job.
func (s *ProcessedStore) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM processed_notificaties WHERE processed_at < $1`,
		time.Now().Add(-s.ttl))
	if err != nil {
		return 0, fmt.Errorf("purge processed notificaties: %w", err)
	}
	return tag.RowsAffected(), nil
}
