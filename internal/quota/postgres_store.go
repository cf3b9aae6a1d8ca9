package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps the usage log in the usage_logs table. Range counts
// are served by the (user_id, created_at_utc) index.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// CountInRange counts entries inside [start, end).
func (s *PostgresStore) CountInRange(ctx context.Context, userID string, start, end time.Time) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM usage_logs
		 WHERE user_id = $1 AND created_at_utc >= $2 AND created_at_utc < $3`,
		userID, start.UTC(), end.UTC(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting usage logs: %w", err)
	}
	return n, nil
}

// Append inserts a single usage log row.
func (s *PostgresStore) Append(ctx context.Context, entry UsageLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO usage_logs (id, user_id, payload, created_at_utc) VALUES ($1, $2, $3, $4)`,
		entry.ID, entry.UserID, entry.Payload, entry.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting usage log: %w", err)
	}
	return nil
}
