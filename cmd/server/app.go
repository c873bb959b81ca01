package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/karuta-app/karuta-api/internal/cache"
	"github.com/karuta-app/karuta-api/internal/config"
	"github.com/karuta-app/karuta-api/internal/deck"
	"github.com/karuta-app/karuta-api/internal/domain/srs"
	"github.com/karuta-app/karuta-api/internal/identity"
	"github.com/karuta-app/karuta-api/internal/platform/postgres"
	"github.com/karuta-app/karuta-api/internal/service/account"
	"github.com/karuta-app/karuta-api/internal/service/auth"
	"github.com/karuta-app/karuta-api/internal/service/study"
	"github.com/karuta-app/karuta-api/internal/session"
	"github.com/karuta-app/karuta-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore     store.UserStore
	recordStore   store.ReviewRecordStore
	templateStore store.CardTemplateStore
	identityStore store.IdentityStore
	sessionStore  store.SessionStateStore

	// Service interfaces
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	srsService       srs.Service
	studyService     *study.Service
	accountService   *account.Service

	// Scheduler infrastructure
	recordCache *cache.Cache
	sessions    *session.Manager
	resolver    identity.Resolver
}

// newApplication creates a new application instance with all dependencies initialized.
// It accepts core dependencies like configuration, logger, and database connection that
// must be established before application initialization.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize JWT service
	var err error
	app.jwtService, err = auth.NewJWTService(auth.Config{
		Secret:          cfg.Auth.JWTSecret,
		LifetimeMinutes: cfg.Auth.TokenLifetimeMinutes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	// Initialize password verifier
	app.passwordVerifier = auth.NewBcryptVerifier()

	// Initialize stores
	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.recordStore = postgres.NewPostgresReviewRecordStore(db, logger)
	app.templateStore = postgres.NewPostgresCardTemplateStore(db, logger)
	app.identityStore = postgres.NewPostgresIdentityStore(db, logger)
	app.sessionStore = postgres.NewPostgresSessionStateStore(db, logger)

	// Scheduler infrastructure
	app.recordCache = cache.New(cache.Options{
		RecordTTL:    time.Duration(cfg.Scheduler.RecordTTLSeconds) * time.Second,
		AggregateTTL: time.Duration(cfg.Scheduler.AggregateTTLSeconds) * time.Second,
		ProfileTTL:   time.Duration(cfg.Scheduler.ProfileTTLSeconds) * time.Second,
	})
	app.sessions = session.NewManager(session.SystemClock{}, app.sessionStore, logger)
	app.resolver = identity.NewStoreResolver(app.identityStore, logger)

	app.srsService = srs.NewServiceWithParams(srs.NewParams(srs.ParamsConfig{
		MinEaseFactor: cfg.Scheduler.MinEaseFactor,
		MaxEaseFactor: cfg.Scheduler.MaxEaseFactor,
	}))

	app.accountService = account.NewService(db, app.userStore, app.identityStore, logger)

	app.studyService = study.NewService(
		app.recordStore,
		app.templateStore,
		app.recordCache,
		app.sessions,
		app.resolver,
		app.srsService,
		deck.NewRegistryWithLimit(cfg.Scheduler.DailyNewLimit),
		session.SystemClock{},
		logger,
	)
	logger.Info("study scheduler initialized",
		"record_ttl_seconds", cfg.Scheduler.RecordTTLSeconds,
		"forecast_window_days", cfg.Scheduler.ForecastWindowDays)

	return app, nil
}

// cleanup releases resources held by the application.
// The database connection is closed by the caller that opened it.
func (app *application) cleanup() {
	app.logger.Info("application cleanup complete")
}
