package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/dailyquota/dailyquota/internal/api"
	"github.com/dailyquota/dailyquota/internal/auth"
	"github.com/dailyquota/dailyquota/internal/config"
	"github.com/dailyquota/dailyquota/internal/database"
	mw "github.com/dailyquota/dailyquota/internal/middleware"
	inats "github.com/dailyquota/dailyquota/internal/nats"
	"github.com/dailyquota/dailyquota/internal/quota"
	iredis "github.com/dailyquota/dailyquota/internal/redis"
	"github.com/dailyquota/dailyquota/internal/search"
	"github.com/dailyquota/dailyquota/internal/server"
	"github.com/dailyquota/dailyquota/internal/users"
)

const natsConnectTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Quota calendar. An unresolvable zone is fatal.
	loc, err := quota.LoadLocation(cfg.Quota.Timezone, cfg.Quota.TimezoneFallback)
	if err != nil {
		return err
	}
	calendar := quota.NewCalendar(loc)
	slog.Info("quota calendar ready", "timezone", calendar.Location().String(),
		"daily_limit", cfg.Quota.DailyLimit, "monthly_limit", cfg.Quota.MonthlyLimit)

	// PostgreSQL
	if err := database.RunMigrations(cfg.DB.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer pool.Close()

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer redisClient.Close()

	// NATS is optional; usage events are best-effort.
	var natsClient *inats.Client
	if cfg.NATS.URL != "" {
		natsCtx, cancel := context.WithTimeout(ctx, natsConnectTimeout)
		natsClient, err = inats.NewClient(natsCtx, cfg.NATS)
		cancel()
		if err != nil {
			slog.Warn("NATS unavailable, usage events disabled", "error", err)
			natsClient = nil
		} else {
			defer natsClient.Close()
		}
	}

	// Quota
	store, err := quota.NewStore(quota.StoreConfig{
		Type:      cfg.Quota.Store,
		Retention: cfg.Quota.Retention,
	}, pool, redisClient)
	if err != nil {
		return fmt.Errorf("creating usage store: %w", err)
	}
	reader := quota.NewReader(store, calendar, quota.Limits{
		Daily:   cfg.Quota.DailyLimit,
		Monthly: cfg.Quota.MonthlyLimit,
	})

	var opts []quota.Option
	if cfg.Quota.Serialize {
		opts = append(opts, quota.WithLocker(quota.NewRedisLocker(redisClient, cfg.Quota.LockTTL, cfg.Quota.LockWait)))
	}
	if natsClient != nil {
		opts = append(opts, quota.WithPublisher(inats.NewPublisher(natsClient.JetStream())))
	}
	enforcer := quota.NewEnforcer(reader, opts...)
	slog.Info("quota enforcer ready", "store", cfg.Quota.Store, "serialized", cfg.Quota.Serialize)

	searchHandler := search.NewHandler(search.NewService(enforcer, reader), search.NewMessages(cfg.Quota.Locale))

	// Auth
	jwtManager := auth.NewJWTManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)
	authSvc := auth.NewService(jwtManager, redisClient)
	userSvc := users.NewService(users.NewRepository(pool))
	authHandler := auth.NewHandler(authSvc, userSvc)

	readiness := map[string]api.ReadinessCheck{
		"database": func(ctx context.Context) error { return database.HealthCheck(ctx, pool) },
		"redis":    iredis.HealthCheck(redisClient),
		"nats":     nil,
	}
	if natsClient != nil {
		readiness["nats"] = natsClient.Check
	}

	// Router
	router := api.NewRouter(api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		AuthRateLimiter:    mw.NewRateLimiter(redisClient, cfg.Auth.RateLimitMax, cfg.Auth.RateLimitWindow).Middleware,
		Readiness:          readiness,
	}, api.HandlerSet{
		Register: authHandler.Register,
		Login:    authHandler.Login,
		Refresh:  authHandler.Refresh,
		Logout:   authHandler.Logout,

		Search: searchHandler.Search,
		Usage:  searchHandler.Usage,

		AuthMiddleware: auth.Middleware(authSvc),
	})

	return server.New(cfg.Server, router).Start(ctx)
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
