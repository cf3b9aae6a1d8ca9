package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dailyquota/dailyquota/internal/quota"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	// JWT secrets
	if len(c.JWT.AccessSecret) < 32 {
		errs = append(errs, "JWT_ACCESS_SECRET must be at least 32 characters")
	}
	if len(c.JWT.RefreshSecret) < 32 {
		errs = append(errs, "JWT_REFRESH_SECRET must be at least 32 characters")
	}
	if c.JWT.AccessSecret != "" && c.JWT.RefreshSecret != "" && c.JWT.AccessSecret == c.JWT.RefreshSecret {
		errs = append(errs, "JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}

	// DB password
	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1-65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1-65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1-65535, got %d", c.Redis.Port))
	}

	// Quota policy
	if c.Quota.DailyLimit < 1 {
		errs = append(errs, fmt.Sprintf("QUOTA_DAILY_LIMIT must be positive, got %d", c.Quota.DailyLimit))
	}
	if c.Quota.MonthlyLimit < 1 {
		errs = append(errs, fmt.Sprintf("QUOTA_MONTHLY_LIMIT must be positive, got %d", c.Quota.MonthlyLimit))
	}
	switch c.Quota.Store {
	case "postgres", "redis":
	default:
		errs = append(errs, fmt.Sprintf("QUOTA_STORE must be postgres or redis, got %q", c.Quota.Store))
	}
	switch c.Quota.Locale {
	case "tr", "en":
	default:
		errs = append(errs, fmt.Sprintf("QUOTA_LOCALE must be tr or en, got %q", c.Quota.Locale))
	}
	if c.Quota.Timezone == "" {
		errs = append(errs, "QUOTA_TIMEZONE_NAME is required")
	}
	if c.Quota.Retention < 0 {
		errs = append(errs, "QUOTA_RETENTION must not be negative")
	}
	if c.Quota.Store == "redis" && c.Quota.Retention > 0 && c.Quota.Retention < quota.MinRetention {
		errs = append(errs, fmt.Sprintf("QUOTA_RETENTION must be 0 or at least %s with the redis store, got %s",
			quota.MinRetention, c.Quota.Retention))
	}
	if c.Quota.Serialize && (c.Quota.LockTTL <= 0 || c.Quota.LockWait <= 0) {
		errs = append(errs, "QUOTA_LOCK_TTL and QUOTA_LOCK_WAIT must be positive when QUOTA_SERIALIZE is set")
	}

	if c.Auth.RateLimitMax < 1 || c.Auth.RateLimitWindow < 1 {
		errs = append(errs, "AUTH_RATE_LIMIT_MAX and AUTH_RATE_LIMIT_WINDOW must be positive")
	}

	// Warn only: the daily limit can never be reached in full.
	if c.Quota.MonthlyLimit > 0 && c.Quota.MonthlyLimit < c.Quota.DailyLimit {
		slog.Warn("QUOTA_MONTHLY_LIMIT is below QUOTA_DAILY_LIMIT",
			"daily", c.Quota.DailyLimit, "monthly", c.Quota.MonthlyLimit)
	}
	if c.NATS.URL == "" {
		slog.Warn("NATS_URL is empty, usage events will not be published")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
