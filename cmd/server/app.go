package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/vocab-drill/internal/api"
	"github.com/phrazzld/vocab-drill/internal/config"
	"github.com/phrazzld/vocab-drill/internal/domain/gamemode"
	"github.com/phrazzld/vocab-drill/internal/events"
	"github.com/phrazzld/vocab-drill/internal/platform/memory"
	"github.com/phrazzld/vocab-drill/internal/platform/postgres"
	"github.com/phrazzld/vocab-drill/internal/service"
	"github.com/phrazzld/vocab-drill/internal/session"
	"github.com/phrazzld/vocab-drill/internal/store"
	"github.com/phrazzld/vocab-drill/internal/task"
	"github.com/phrazzld/vocab-drill/internal/vocab"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	// db is nil when statistics are kept in memory.
	db *sql.DB

	statsStore   store.WordStatsStore
	statsService service.StatsService
	catalog      *vocab.Catalog

	// Outcome pipeline: engine -> emitter -> queue -> worker pool -> stats service.
	eventEmitter *events.InMemoryEventEmitter
	taskQueue    *task.TaskQueue
	workerPool   *task.WorkerPool

	registry *session.Registry
}

// newApplication creates a new application instance with all dependencies initialized.
// db may be nil, in which case word statistics live in memory.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.catalog, err = vocab.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary catalog: %w", err)
	}
	logger.Info("vocabulary catalog loaded", slog.Int("topics", len(app.catalog.Topics())))

	var statsOpts []service.StatsServiceOption
	if db != nil {
		app.statsStore = postgres.NewPostgresWordStatsStore(db, logger)
		statsOpts = append(statsOpts, service.WithDB(db))
		logger.Info("word statistics stored in postgres")
	} else {
		app.statsStore = memory.NewWordStatsStore(logger)
		logger.Warn("no database configured, word statistics are kept in memory")
	}
	app.statsService = service.NewStatsService(app.statsStore, logger, statsOpts...)

	app.taskQueue = task.NewTaskQueue(cfg.Stats.QueueSize, logger)
	app.workerPool = task.NewWorkerPool(app.taskQueue, task.WorkerPoolConfig{
		WorkerCount: cfg.Stats.WorkerCount,
	}, logger)
	app.workerPool.SetErrorHandler(func(t task.Task, err error) {
		logger.Error("failed to record outcome",
			slog.String("task_id", t.ID().String()),
			slog.String("error", err.Error()))
	})

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(task.NewOutcomeEventHandler(app.taskQueue, app.statsService, logger))

	app.registry = session.NewRegistry(session.Config{
		MaxActive:   cfg.Session.MaxActive,
		IdleTimeout: cfg.Session.IdleTimeout,
	}, app.eventEmitter, logger)

	logger.Info("application initialized successfully")
	return app, nil
}

// modeDefaults is the failure policy applied to every game mode unless a
// request overrides it.
func (app *application) modeDefaults() gamemode.Options {
	return gamemode.Options{
		Strategy:          gamemode.FailureStrategy(app.config.Session.FailureStrategy),
		Offset:            app.config.Session.RequeueOffset,
		RequiredSuccesses: app.config.Session.RequiredSuccesses,
	}
}

// setupRouter creates the HTTP handler from the application dependencies.
func (app *application) setupRouter() http.Handler {
	return api.NewRouter(api.RouterDeps{
		Registry:       app.registry,
		Catalog:        app.catalog,
		StatsService:   app.statsService,
		ModeDefaults:   app.modeDefaults(),
		AllowedOrigins: app.config.CORS.AllowedOrigins,
		OutcomeQueue:   app.taskQueue,
		Logger:         app.logger,
	})
}

// Run starts the background workers and serves HTTP until ctx is done.
func (app *application) Run(ctx context.Context) error {
	app.workerPool.Start()
	go app.registry.RunSweeper(ctx, app.config.Session.SweepInterval)

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources. Queued outcomes
// are written before the database is closed.
func (app *application) cleanup(ctx context.Context) {
	app.registry.Close()

	app.taskQueue.Close()
	if err := app.workerPool.Drain(ctx); err != nil {
		app.logger.Error("outcome queue not fully drained",
			slog.Int("dropped", app.taskQueue.Len()),
			slog.Any("queue", app.taskQueue.Stats()),
			slog.String("error", err.Error()))
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("application shutdown completed")
}
