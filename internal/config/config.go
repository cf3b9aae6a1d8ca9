package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	JWT    JWTConfig
	Quota  QuotaConfig
	NATS   NATSConfig
	Auth   AuthConfig
	CORS   CORSConfig
	Log    LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// QuotaConfig holds the single daily/monthly policy and where usage is kept.
type QuotaConfig struct {
	DailyLimit       int
	MonthlyLimit     int
	Timezone         string
	TimezoneFallback string
	Store            string
	Retention        time.Duration
	Serialize        bool
	LockTTL          time.Duration
	LockWait         time.Duration
	Locale           string
}

type NATSConfig struct {
	URL string
}

type AuthConfig struct {
	RateLimitMax    int
	RateLimitWindow int // seconds
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: k.String("server.host"),
			Port: k.Int("server.port"),
		},
		DB: DBConfig{
			Host:     k.String("db.host"),
			Port:     k.Int("db.port"),
			User:     k.String("db.user"),
			Password: k.String("db.password"),
			Name:     k.String("db.name"),
			SSLMode:  k.String("db.sslmode"),
			MaxConns: int32(k.Int("db.max.conns")),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		JWT: JWTConfig{
			AccessSecret:  k.String("jwt.access.secret"),
			RefreshSecret: k.String("jwt.refresh.secret"),
		},
		Quota: QuotaConfig{
			DailyLimit:       k.Int("quota.daily.limit"),
			MonthlyLimit:     k.Int("quota.monthly.limit"),
			Timezone:         k.String("quota.timezone.name"),
			TimezoneFallback: k.String("quota.timezone.fallback"),
			Store:            strings.ToLower(k.String("quota.store")),
			Serialize:        k.Bool("quota.serialize"),
			Locale:           strings.ToLower(k.String("quota.locale")),
		},
		NATS: NATSConfig{
			URL: k.String("nats.url"),
		},
		Auth: AuthConfig{
			RateLimitMax:    k.Int("auth.rate.limit.max"),
			RateLimitWindow: k.Int("auth.rate.limit.window"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(k.String("cors.allowed.origins")),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "dailyquota"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "dailyquota"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 25
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Quota.DailyLimit == 0 {
		cfg.Quota.DailyLimit = 5
	}
	if cfg.Quota.MonthlyLimit == 0 {
		cfg.Quota.MonthlyLimit = 20
	}
	if cfg.Quota.Timezone == "" {
		cfg.Quota.Timezone = "Europe/Istanbul"
	}
	if cfg.Quota.TimezoneFallback == "" {
		cfg.Quota.TimezoneFallback = "Turkey"
	}
	if cfg.Quota.Store == "" {
		cfg.Quota.Store = "postgres"
	}
	if cfg.Quota.Locale == "" {
		cfg.Quota.Locale = "tr"
	}
	if cfg.Auth.RateLimitMax == 0 {
		cfg.Auth.RateLimitMax = 10
	}
	if cfg.Auth.RateLimitWindow == 0 {
		cfg.Auth.RateLimitWindow = 60
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "debug"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	// Parse durations
	durations := []struct {
		key  string
		def  string
		dest *time.Duration
	}{
		{"jwt.access.expiry", "15m", &cfg.JWT.AccessExpiry},
		{"jwt.refresh.expiry", "168h", &cfg.JWT.RefreshExpiry},
		{"quota.lock.ttl", "5s", &cfg.Quota.LockTTL},
		{"quota.lock.wait", "2s", &cfg.Quota.LockWait},
		{"quota.retention", "1488h", &cfg.Quota.Retention},
	}
	for _, d := range durations {
		raw := k.String(d.key)
		if raw == "" {
			raw = d.def
		}
		*d.dest, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", d.key, err)
		}
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
