package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/cardlink/internal/api"
	"github.com/phrazzld/cardlink/internal/config"
	"github.com/phrazzld/cardlink/internal/platform/postgres"
	"github.com/phrazzld/cardlink/internal/service"
	"github.com/phrazzld/cardlink/internal/service/auth"
	"github.com/phrazzld/cardlink/internal/store"
	"github.com/phrazzld/cardlink/internal/task"
)

// TaskTypePurgeChallenges removes expired OTP challenges.
const TaskTypePurgeChallenges = "sandbox.purge_expired_challenges"

type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	challengeStore  store.ChallengeStore
	linkedCardStore store.LinkedCardStore
	paymentStore    store.PaymentStore

	tokenService  auth.ClientTokenService
	notifier      *service.LogOTPNotifier
	schemeService service.SchemeService

	taskRunner *task.TaskRunner
}

func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config:   cfg,
		logger:   logger,
		notifier: service.NewLogOTPNotifier(logger),
	}

	if err := app.setupStores(ctx); err != nil {
		return nil, err
	}

	var err error
	app.tokenService, err = auth.NewClientTokenService(cfg.Sandbox)
	if err != nil {
		app.closeDB()
		return nil, fmt.Errorf("failed to initialize client token service: %w", err)
	}
	logger.Info("Client token service initialized",
		"token_ttl", cfg.Sandbox.TokenTTL.String())

	app.schemeService, err = service.NewSchemeService(
		app.challengeStore,
		app.linkedCardStore,
		app.paymentStore,
		auth.NewBcryptOTPHasher(cfg.Sandbox.BcryptCost),
		app.notifier,
		service.SchemeServiceConfig{
			OTPLength:   cfg.Sandbox.OTPLength,
			OTPTTL:      cfg.Sandbox.OTPTTL,
			MaxAttempts: cfg.Sandbox.MaxOTPAttempts,
		},
		logger,
	)
	if err != nil {
		app.closeDB()
		return nil, fmt.Errorf("failed to create scheme service: %w", err)
	}

	app.taskRunner = task.NewTaskRunner(task.TaskRunnerConfig{
		WorkerCount: cfg.Tasks.WorkerCount,
		QueueSize:   cfg.Tasks.QueueSize,
	}, logger)

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupStores uses PostgreSQL when a database URL is configured and the
// in-memory stores otherwise.
func (app *application) setupStores(ctx context.Context) error {
	if app.config.Database.URL == "" {
		app.challengeStore = store.NewMemoryChallengeStore()
		app.linkedCardStore = store.NewMemoryLinkedCardStore()
		app.paymentStore = store.NewMemoryPaymentStore()
		app.logger.Info("Using in-memory stores")
		return nil
	}

	db, err := postgres.Open(ctx, app.config.Database.URL, app.logger)
	if err != nil {
		return fmt.Errorf("failed to setup database: %w", err)
	}
	if err := postgres.Migrate(ctx, db, app.logger); err != nil {
		_ = db.Close()
		return err
	}

	app.db = db
	app.challengeStore = postgres.NewPostgresChallengeStore(db, app.logger)
	app.linkedCardStore = postgres.NewPostgresLinkedCardStore(db, app.logger)
	app.paymentStore = postgres.NewPostgresPaymentStore(db, app.logger)
	app.logger.Info("Using PostgreSQL stores")
	return nil
}

func (app *application) closeDB() {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("Error closing database connection", "error", err)
	}
	app.db = nil
}

func (app *application) setupRouter() http.Handler {
	deps := api.RouterDeps{
		Tokens: app.tokenService,
		Scheme: app.schemeService,
		Logger: app.logger,
	}
	if app.config.Sandbox.ExposeOTPs {
		deps.OTPs = app.notifier
	}
	return api.NewRouter(deps)
}

// Run serves the API until ctx is cancelled or the process is signalled.
func (app *application) Run(ctx context.Context) error {
	app.taskRunner.Start()

	purgeCtx, stopPurge := context.WithCancel(ctx)
	defer stopPurge()
	go app.purgeExpiredChallenges(purgeCtx, app.config.Sandbox.PurgeInterval)

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// purgeExpiredChallenges queues a purge task every interval until ctx ends.
func (app *application) purgeExpiredChallenges(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := app.taskRunner.Go(ctx, TaskTypePurgeChallenges, func(ctx context.Context) error {
				if removed := app.schemeService.PurgeExpiredChallenges(ctx); removed > 0 {
					app.logger.Debug("expired challenges purged", "count", removed)
				}
				return nil
			})
			if err != nil {
				app.logger.Warn("failed to queue challenge purge", "error", err)
			}
		}
	}
}

func (app *application) cleanup(ctx context.Context) {
	if app.taskRunner != nil {
		if err := app.taskRunner.Stop(ctx); err != nil {
			app.logger.Error("Error stopping task runner", "error", err)
		}
	}
	app.closeDB()
	app.logger.Info("Application shutdown completed")
}
