// Package main is the entry point of the GSC portal background worker. It
// runs the scheduled jobs, currently the Sunday-evening weekly digest that
// mails every grade its composed timetable for the coming week.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Theunkillabledemonking/GSC-Portal-sub000/config"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/application/query"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/domain/notification"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/infrastructure/notify"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/infrastructure/persistence/postgres"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/infrastructure/persistence/redis"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/infrastructure/scheduler"
	"github.com/Theunkillabledemonking/GSC-Portal-sub000/internal/infrastructure/scheduler/jobs"
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
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.Scheduler.Enabled {
		return fmt.Errorf("scheduler is disabled, nothing to run")
	}

	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.App.LogLevel)
	log := logger.New(opts)
	log.Info("starting GSC portal worker",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("digest_spec", cfg.Scheduler.WeeklyDigestSpec),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// Backing services
	// ─────────────────────────────────────────────────────────────────────────
	dbConn, err := connectDatabase(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	var resultCache query.ResultCache
	if !cfg.Redis.Disabled {
		redisCache, err := redis.NewCache(redisConfig(cfg))
		if err != nil {
			log.Warn("failed to connect to Redis, composing uncached", logger.Err(err))
		} else {
			defer redisCache.Close()
			resultCache = redis.NewTimetableCache(redisCache, log)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Jobs
	// ─────────────────────────────────────────────────────────────────────────
	scheduleRepo := postgres.NewScheduleRepository(dbConn)
	directoryRepo := postgres.NewDirectoryRepository(dbConn)

	composer := query.NewGetWeeklyTimetableHandler(scheduleRepo, resultCache, log)
	dispatcher := notification.NewDispatcher(directoryRepo, notify.NewConsoleSender(log), directoryRepo, log)

	sched := scheduler.New(scheduler.Config{JobTimeout: cfg.Scheduler.JobTimeout}, log)
	digest := jobs.NewWeeklyDigestJob(composer, dispatcher, log)
	if err := sched.Register(cfg.Scheduler.WeeklyDigestSpec, digest); err != nil {
		return fmt.Errorf("failed to register weekly digest: %w", err)
	}

	sched.Start()
	log.Info("worker running")

	<-ctx.Done()
	log.Info("shutdown signal received")
	sched.Stop()
	log.Info("worker stopped")
	return nil
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
