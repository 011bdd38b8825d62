// Package main is the entry point of the GSC portal API server.
//
// The server composes the weekly timetable on demand, serves the notice
// board, and accepts administrative schedule changes. Architecture follows
// Clean Architecture / DDD layering:
//   - Domain: the composition engine and entities, no external dependencies
//   - Application: commands and queries orchestrating the domain
//   - Infrastructure: PostgreSQL, Redis, the in-process event bus
//   - Interface: the REST API
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/config"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/application/command"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/application/eventhandler"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/application/query"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/notification"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/shared"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/infrastructure/messaging"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/infrastructure/notify"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/infrastructure/persistence/postgres"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/infrastructure/persistence/redis"
	httpserver "github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/interface/http"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. Configuration and logging
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg)
	log.Info("starting GSC portal server",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.Bool("debug", cfg.App.Debug),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. PostgreSQL
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database")
	dbConn, err := connectDatabase(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 3. Redis (optional, degrades to uncached composition)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	var timetableCache *redis.TimetableCache
	var resultCache query.ResultCache
	var versionBumper command.VersionBumper

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis")
		redisCache, err = redis.NewCache(redisConfig(cfg))
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", logger.Err(err))
		} else {
			defer redisCache.Close()
			timetableCache = redis.NewTimetableCache(redisCache, log)
			resultCache = timetableCache
			versionBumper = timetableCache
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. Repositories
	// ─────────────────────────────────────────────────────────────────────────
	scheduleRepo := postgres.NewScheduleRepository(dbConn)
	noticeRepo := postgres.NewNoticeRepository(dbConn)
	directoryRepo := postgres.NewDirectoryRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 5. Event bus and notification fan-out
	// ─────────────────────────────────────────────────────────────────────────
	eventBus := messaging.NewEventBus(messaging.DefaultConfig(), log)
	defer func() {
		log.Info("closing event bus")
		_ = eventBus.Close()
	}()

	dispatcher := notification.NewDispatcher(directoryRepo, notify.NewConsoleSender(log), directoryRepo, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. Application layer
	// ─────────────────────────────────────────────────────────────────────────
	weeklyTimetable := query.NewGetWeeklyTimetableHandler(scheduleRepo, resultCache, log)
	listNotices := query.NewListNoticesHandler(noticeRepo, log)
	notices := command.NewNoticeHandler(noticeRepo, eventBus, log)
	scheduleChanges := command.NewReportScheduleChangeHandler(scheduleRepo, versionBumper, eventBus, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. Event handlers
	// ─────────────────────────────────────────────────────────────────────────
	onScheduleChanged := eventhandler.NewOnScheduleChangedHandler(dispatcher, log)
	if err := eventBus.Subscribe(shared.EventScheduleChanged, onScheduleChanged.Handle); err != nil {
		return fmt.Errorf("failed to subscribe schedule handler: %w", err)
	}
	onNoticePublished := eventhandler.NewOnNoticePublishedHandler(dispatcher, log)
	if err := eventBus.Subscribe(shared.EventNoticePublished, onNoticePublished.Handle); err != nil {
		return fmt.Errorf("failed to subscribe notice handler: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. HTTP server
	// ─────────────────────────────────────────────────────────────────────────
	serverCfg := httpserver.DefaultConfig()
	serverCfg.Host = cfg.HTTP.Host
	serverCfg.Port = cfg.HTTP.Port
	serverCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	serverCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	serverCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	serverCfg.EnableCORS = cfg.HTTP.EnableCORS
	serverCfg.AllowedOrigins = cfg.HTTP.AllowedOrigins
	serverCfg.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute

	server := httpserver.NewServer(serverCfg, httpserver.Dependencies{
		WeeklyTimetable: weeklyTimetable,
		ListNotices:     listNotices,
		Notices:         notices,
		ScheduleChanges: scheduleChanges,
		Logger:          log,
		HealthChecker:   &healthChecker{db: dbConn, cache: redisCache},
	})

	errCh := server.StartAsync()

	// ─────────────────────────────────────────────────────────────────────────
	// 9. Wait for shutdown
	// ─────────────────────────────────────────────────────────────────────────
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown failed: %w", err)
	}

	log.Info("server stopped")
	return nil
}

func setupLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.App.LogLevel)
	if cfg.App.Debug {
		opts.Level = logger.LevelDebug
	}
	return logger.New(opts)
}

func connectDatabase(ctx context.Context, cfg *config.Config) (*postgres.Connection, error) {
	if cfg.Database.URL != "" {
		return postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	}

	pgCfg := postgres.DefaultConfig()
	pgCfg.Host = cfg.Database.Host
	pgCfg.Port = cfg.Database.Port
	pgCfg.Database = cfg.Database.Name
	pgCfg.User = cfg.Database.User
	pgCfg.Password = cfg.Database.Password
	pgCfg.SSLMode = cfg.Database.SSLMode
	pgCfg.MaxConns = int32(cfg.Database.MaxConns)
	pgCfg.MinConns = int32(cfg.Database.MinConns)
	pgCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	pgCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime
	return postgres.NewConnection(ctx, pgCfg)
}

func redisConfig(cfg *config.Config) redis.Config {
	rc := redis.DefaultConfig()
	rc.Host = cfg.Redis.Host
	rc.Port = cfg.Redis.Port
	rc.Password = cfg.Redis.Password
	rc.DB = cfg.Redis.DB
	rc.PoolSize = cfg.Redis.PoolSize
	rc.MinIdleConns = cfg.Redis.MinIdleConns
	rc.DialTimeout = cfg.Redis.DialTimeout
	rc.ReadTimeout = cfg.Redis.ReadTimeout
	rc.WriteTimeout = cfg.Redis.WriteTimeout
	return rc
}

// healthChecker probes PostgreSQL and, when configured, Redis. Redis being
// down leaves the service degraded but serving.
type healthChecker struct {
	db    *postgres.Connection
	cache *redis.Cache
}

func (h *healthChecker) Check(ctx context.Context) httpserver.HealthStatus {
	status := httpserver.HealthStatus{Components: make(map[string]string)}

	dbHealth, err := h.db.Health(ctx)
	switch {
	case err != nil:
		status.Components["postgres"] = err.Error()
	case !dbHealth.Healthy:
		status.Components["postgres"] = dbHealth.Error
	default:
		status.Components["postgres"] = "ok"
		status.Healthy = true
		status.Ready = true
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			status.Components["redis"] = err.Error()
			status.Message = "cache degraded"
		} else {
			status.Components["redis"] = "ok"
		}
	}

	if !status.Healthy {
		status.Message = "database unavailable"
	}
	return status
}
