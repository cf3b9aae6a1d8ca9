package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Store is the durable append-only usage log.
type Store interface {
	// CountInRange counts the user's entries with start <= created_at < end.
	CountInRange(ctx context.Context, userID string, start, end time.Time) (int, error)

	// Append writes one entry.
	Append(ctx context.Context, entry UsageLogEntry) error
}

// Store backend names accepted by NewStore.
const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// StoreConfig selects and tunes the usage log backend.
type StoreConfig struct {
	Type      string
	Retention time.Duration
}

// NewStore builds the configured backend. The unused client may be nil.
func NewStore(cfg StoreConfig, pool *pgxpool.Pool, rdb redis.Cmdable) (Store, error) {
	switch cfg.Type {
	case StorePostgres, "":
		if pool == nil {
			return nil, fmt.Errorf("postgres usage store requires a connection pool")
		}
		return NewPostgresStore(pool), nil
	case StoreRedis:
		if rdb == nil {
			return nil, fmt.Errorf("redis usage store requires a redis client")
		}
		return NewRedisStore(rdb, cfg.Retention), nil
	default:
		return nil, fmt.Errorf("unsupported usage store type: %q", cfg.Type)
	}
}
