// Package app assembles the streak engine from its configuration. Both the
// API server and the streakctl CLI build on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/kanso-streak-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/adapters/notify"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/config"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/live"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/services"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/workers"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/logger"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/metrics"
)

const (
	tokenIssuer   = "kanso-streak-engine"
	tokenDuration = 24 * time.Hour
)

// OpenStore connects the store selected by DB_DRIVER and applies pending
// migrations.
func OpenStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (domain.Store, error) {
	switch cfg.DBDriver {
	case config.DriverMemory:
		return repository.NewInMemoryStore(), nil
	case config.DriverSQLite:
		return repository.OpenSQLStore(ctx, config.DriverSQLite, cfg.SQLitePath, log)
	case config.DriverPgx, config.DriverPostgres:
		return repository.OpenSQLStore(ctx, cfg.DBDriver, cfg.PostgresDSN(), log)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}

type App struct {
	Config  *config.Config
	Log     *zap.Logger
	Clock   domain.Clock
	Metrics *metrics.Recorder

	Store domain.Store
	Redis *redis.Client

	queues []*workers.WriteQueue

	Habits    *services.HabitService
	Trackings *services.TrackingService
	Dashboard *services.DashboardService
	Stats     *services.StatsService
	Tokens    *services.TokenService

	Notifier  notify.Notifier
	Scheduler *workers.Scheduler
	Rollover  *workers.RolloverJob
	Reminders *workers.ReminderScheduler
}

// New builds every component. The write queues run until ctx is cancelled
// or Close is called; the scheduler is not started yet.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	log = logger.OrNop(log)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a := &App{
		Config:  cfg,
		Log:     log,
		Clock:   domain.SystemClock{Location: loc},
		Metrics: metrics.NewRecorder(registry),
	}

	store, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.Store = store

	if cfg.RedisEnabled() {
		rdb, err := cache.NewRedisClient(ctx, cache.Options{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Warn("redis_unavailable", zap.String("host", cfg.RedisHost), zap.Error(err))
		} else {
			a.Redis = rdb
			store = repository.NewCachedHabitStore(store, rdb, log)
			log.Info("redis_connected", zap.String("host", cfg.RedisHost))
		}
	}

	habitQueue := workers.NewWriteQueue("habits", cfg.WriteQueueSize, log, a.Metrics)
	trackingQueue := habitQueue
	if !cfg.WriteQueueShared {
		trackingQueue = workers.NewWriteQueue("trackings", cfg.WriteQueueSize, log, a.Metrics)
	}
	a.queues = []*workers.WriteQueue{habitQueue}
	if trackingQueue != habitQueue {
		a.queues = append(a.queues, trackingQueue)
	}
	for _, q := range a.queues {
		q.Start(ctx)
	}

	changes := live.NewBroadcaster()
	a.Habits = services.NewHabitService(store, habitQueue, a.Clock, changes, log)
	a.Trackings = services.NewTrackingService(store, trackingQueue, changes, log)
	a.Dashboard = services.NewDashboardService(a.Habits, a.Trackings, a.Clock, a.Metrics, log)
	a.Stats = services.NewStatsService(store, a.Clock, changes)

	if cfg.JWTSecret != "" {
		a.Tokens = services.NewTokenService(cfg.JWTSecret, tokenIssuer, tokenDuration)
	}

	if cfg.NATSURL != "" {
		n, err := notify.NewNATSNotifier(cfg.NATSURL, cfg.NATSSubject, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Notifier = n
	} else {
		a.Notifier = notify.NewLogNotifier(log)
	}

	scheduler, err := workers.NewScheduler(loc, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Scheduler = scheduler

	policy := workers.NewRetryPolicy(0, 0, cfg.RolloverMaxRetries)
	a.Rollover = workers.NewRolloverJob(a.Trackings, a.Habits, store, a.Clock, policy, a.Notifier, a.Metrics, log)
	a.Reminders = workers.NewReminderScheduler(scheduler, a.Notifier, a.Trackings, a.Clock, a.Metrics, log)

	return a, nil
}

// StartBackground catches up a missed rollover, schedules the daily jobs and
// starts the scheduler.
func (a *App) StartBackground(ctx context.Context) error {
	if _, err := a.Rollover.CatchUp(ctx); err != nil {
		a.Log.Error("rollover_catch_up_failed", zap.Error(err))
	}
	if _, err := a.Rollover.Register(a.Scheduler); err != nil {
		return err
	}
	if err := a.Reminders.Start(a.Config.ReminderMorning, a.Config.ReminderEvening); err != nil {
		return err
	}
	a.Scheduler.Start()
	return nil
}

func (a *App) Router(startTime time.Time) *gin.Engine {
	deps := adapterHTTP.RouterDependencies{
		HabitHandler:    adapterHTTP.NewHabitHandler(a.Dashboard, a.Habits, a.Trackings, a.Stats),
		TrackingHandler: adapterHTTP.NewTrackingHandler(a.Trackings, a.Clock),
		StatsHandler:    adapterHTTP.NewStatsHandler(a.Stats),
		AdminHandler:    adapterHTTP.NewAdminHandler(a.Rollover, a.Reminders, a.Clock),
		Store:           a.Store,
		Redis:           a.Redis,
		Metrics:         a.Metrics,
		Logger:          a.Log,
		RateLimit:       a.Config.RateLimit,
		StartTime:       startTime,
	}
	if a.Tokens != nil {
		deps.TokenService = a.Tokens
		deps.AuthHandler = adapterHTTP.NewAuthHandler(services.NewAuthService(a.Config.OwnerPasswordHash, a.Tokens))
	}
	return adapterHTTP.NewRouter(deps)
}

// Close stops the scheduler, drains the write queues and releases the
// connections, in that order.
func (a *App) Close() error {
	var errs []error

	if a.Scheduler != nil {
		if err := a.Scheduler.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("scheduler: %w", err))
		}
	}
	for _, q := range a.queues {
		q.Close()
	}
	if a.Notifier != nil {
		if err := a.Notifier.Close(); err != nil {
			errs = append(errs, fmt.Errorf("notifier: %w", err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}

	return errors.Join(errs...)
}
