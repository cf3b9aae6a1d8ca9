package quota

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const usageKeyPrefix = "quota:usage:"

// MinRetention is the longest local month (31 days plus a DST hour). Trimming
// anything younger would hide entries from the month count.
const MinRetention = 745 * time.Hour

// RedisStore keeps each user's usage log in a sorted set scored by the
// creation time in Unix milliseconds.
type RedisStore struct {
	rdb       redis.Cmdable
	retention time.Duration
}

// NewRedisStore creates a Redis-backed usage log. Entries older than
// retention (relative to the newest append) are trimmed; zero keeps everything.
// A positive retention below MinRetention is raised to MinRetention.
func NewRedisStore(rdb redis.Cmdable, retention time.Duration) *RedisStore {
	if retention > 0 && retention < MinRetention {
		slog.Warn("quota: redis retention shorter than a month, raising it",
			"retention", retention, "min", MinRetention)
		retention = MinRetention
	}
	return &RedisStore{rdb: rdb, retention: retention}
}

type redisMember struct {
	ID        string `json:"id"`
	Payload   string `json:"payload"`
	CreatedAt string `json:"created_at_utc"`
}

func usageKey(userID string) string {
	return usageKeyPrefix + userID
}

func millis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// CountInRange counts entries inside [start, end). The "(" prefix makes the
// upper bound exclusive.
func (s *RedisStore) CountInRange(ctx context.Context, userID string, start, end time.Time) (int, error) {
	n, err := s.rdb.ZCount(ctx, usageKey(userID), millis(start), "("+millis(end)).Result()
	if err != nil {
		return 0, fmt.Errorf("counting usage entries: %w", err)
	}
	return int(n), nil
}

// Append adds the entry and trims the set to the retention period in one transaction.
func (s *RedisStore) Append(ctx context.Context, entry UsageLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	member, err := json.Marshal(redisMember{
		ID:        entry.ID.String(),
		Payload:   entry.Payload,
		CreatedAt: entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshaling usage entry: %w", err)
	}

	key := usageKey(entry.UserID)
	pipe := s.rdb.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(entry.CreatedAt.UnixMilli()), Member: string(member)})
	if s.retention > 0 {
		cutoff := entry.CreatedAt.Add(-s.retention)
		pipe.ZRemRangeByScore(ctx, key, "-inf", "("+millis(cutoff))
		pipe.Expire(ctx, key, s.retention)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("appending usage entry: %w", err)
	}
	return nil
}
