package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		DB: DBConfig{
			Host: "localhost", Port: 5432, User: "dailyquota",
			Password: "secret", Name: "dailyquota", SSLMode: "disable", MaxConns: 25,
		},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		JWT: JWTConfig{
			AccessSecret:  "access-secret-that-is-at-least-32-chars!",
			RefreshSecret: "refresh-secret-that-is-at-least-32-chr!",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
		},
		Quota: QuotaConfig{
			DailyLimit:       5,
			MonthlyLimit:     20,
			Timezone:         "Europe/Istanbul",
			TimezoneFallback: "Turkey",
			Store:            "postgres",
			Retention:        1488 * time.Hour,
			LockTTL:          5 * time.Second,
			LockWait:         2 * time.Second,
			Locale:           "tr",
		},
		NATS: NATSConfig{URL: "nats://localhost:4222"},
		Auth: AuthConfig{RateLimitMax: 10, RateLimitWindow: 60},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidate_JWTAccessSecretTooShort(t *testing.T) {
	cfg := validConfig()
	cfg.JWT.AccessSecret = "short"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "JWT_ACCESS_SECRET") {
		t.Fatalf("expected JWT_ACCESS_SECRET error, got: %v", err)
	}
}

func TestValidate_JWTSecretsMustDiffer(t *testing.T) {
	cfg := validConfig()
	cfg.JWT.AccessSecret = "the-same-secret-that-is-at-least-32-chars!"
	cfg.JWT.RefreshSecret = "the-same-secret-that-is-at-least-32-chars!"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "must differ") {
		t.Fatalf("expected 'must differ' error, got: %v", err)
	}
}

func TestValidate_DBPasswordRequired(t *testing.T) {
	cfg := validConfig()
	cfg.DB.Password = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "DB_PASSWORD") {
		t.Fatalf("expected DB_PASSWORD error, got: %v", err)
	}
}

func TestValidate_QuotaPolicy(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero daily", func(c *Config) { c.Quota.DailyLimit = 0 }, "QUOTA_DAILY_LIMIT"},
		{"negative monthly", func(c *Config) { c.Quota.MonthlyLimit = -1 }, "QUOTA_MONTHLY_LIMIT"},
		{"unknown store", func(c *Config) { c.Quota.Store = "mongo" }, "QUOTA_STORE"},
		{"unknown locale", func(c *Config) { c.Quota.Locale = "de" }, "QUOTA_LOCALE"},
		{"empty timezone", func(c *Config) { c.Quota.Timezone = "" }, "QUOTA_TIMEZONE_NAME"},
		{"serialize without ttl", func(c *Config) {
			c.Quota.Serialize = true
			c.Quota.LockTTL = 0
		}, "QUOTA_LOCK_TTL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %s error, got: %v", tt.want, err)
			}
		})
	}
}

func TestValidate_RedisRetention(t *testing.T) {
	tests := []struct {
		name      string
		store     string
		retention time.Duration
		wantErr   bool
	}{
		{"redis one day", "redis", 24 * time.Hour, true},
		{"redis thirty days", "redis", 720 * time.Hour, true},
		{"redis longest month", "redis", 745 * time.Hour, false},
		{"redis keep everything", "redis", 0, false},
		{"postgres ignores retention", "postgres", 24 * time.Hour, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Quota.Store = tt.store
			cfg.Quota.Retention = tt.retention
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil || !strings.Contains(err.Error(), "QUOTA_RETENTION") {
					t.Fatalf("expected QUOTA_RETENTION error, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
		})
	}
}

func TestValidate_MonthlyBelowDailyOnlyWarns(t *testing.T) {
	cfg := validConfig()
	cfg.Quota.DailyLimit = 10
	cfg.Quota.MonthlyLimit = 3
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: 0},
		DB:     DBConfig{Port: 5432},
		Redis:  RedisConfig{Port: 6379},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected multiple validation errors")
	}
	errStr := err.Error()
	for _, substr := range []string{"JWT_ACCESS_SECRET", "JWT_REFRESH_SECRET", "DB_PASSWORD", "SERVER_PORT", "QUOTA_DAILY_LIMIT", "QUOTA_STORE"} {
		if !strings.Contains(errStr, substr) {
			t.Errorf("expected %q in error: %s", substr, errStr)
		}
	}
}
