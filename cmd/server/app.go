package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	goredis "github.com/go-redis/redis/v8"
	"github.com/phrazzld/booking-api/internal/api"
	"github.com/phrazzld/booking-api/internal/api/middleware"
	"github.com/phrazzld/booking-api/internal/config"
	"github.com/phrazzld/booking-api/internal/platform/metrics"
	"github.com/phrazzld/booking-api/internal/platform/postgres"
	platformredis "github.com/phrazzld/booking-api/internal/platform/redis"
	"github.com/phrazzld/booking-api/internal/service"
	"github.com/phrazzld/booking-api/internal/service/auth"
	"github.com/phrazzld/booking-api/internal/store"
	"github.com/prometheus/client_golang/prometheus"
)

// authService is the part of auth.Service the router drives.
type authService interface {
	api.Authenticator
	middleware.RevocationChecker
}

// application holds the shared dependencies and releases them on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *goredis.Client

	metrics    *metrics.Metrics
	issuer     middleware.TokenVerifier
	auth       authService
	authorizer middleware.PermissionChecker
	users      service.UserService
	roles      service.RoleService
	catalog    service.CatalogService
	pruner     *auth.Pruner
}

// newApplication wires stores, services and background work. The database
// must already be reachable.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		metrics: metrics.NewMetrics(prometheus.NewRegistry()),
	}

	issuer, err := auth.NewTokenIssuer(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}
	app.issuer = issuer
	logger.Info("token issuer initialized",
		"access_token_lifetime", cfg.Auth.AccessTokenLifetime,
		"refresh_token_lifetime", cfg.Auth.RefreshTokenLifetime)

	userStore := postgres.NewPostgresUserStore(db)
	roleStore := postgres.NewPostgresRoleStore(db)
	serviceStore := postgres.NewPostgresServiceStore(db)

	refresh, ledger, err := app.tokenStores(ctx)
	if err != nil {
		return nil, err
	}

	passwords := auth.NewBcrypt(cfg.Auth.BcryptCost)
	app.auth = auth.NewService(userStore, refresh, ledger, issuer, passwords, app.metrics, logger)
	app.authorizer = auth.NewAuthorizer(
		userStore,
		roleStore,
		cfg.Auth.PermissionCacheSize,
		cfg.Auth.PermissionCacheTTL,
		logger,
	)
	app.users = service.NewUserService(userStore, roleStore, passwords, db, logger)
	app.roles = service.NewRoleService(roleStore, logger)
	app.catalog = service.NewCatalogService(serviceStore, logger)
	app.pruner = auth.NewPruner(refresh, ledger, app.metrics, logger)

	logger.Info("application initialized successfully")
	return app, nil
}

// tokenStores returns the refresh token store and revocation ledger for the
// configured backend.
func (app *application) tokenStores(ctx context.Context) (store.RefreshTokenStore, store.RevocationLedger, error) {
	switch app.config.Tokens.Backend {
	case config.TokenBackendRedis:
		client, err := platformredis.NewClient(ctx, app.config.Redis.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.redis = client
		prefix := app.config.Redis.KeyPrefix
		app.logger.Info("using redis token stores", "key_prefix", prefix)
		return platformredis.NewRefreshTokenStore(client, prefix), platformredis.NewRevocationLedger(client, prefix), nil
	default:
		app.logger.Info("using postgres token stores")
		return postgres.NewPostgresRefreshTokenStore(app.db), postgres.NewPostgresRevocationLedger(app.db), nil
	}
}

// Run starts background pruning and serves HTTP until ctx is done.
func (app *application) Run(ctx context.Context) error {
	if err := app.pruner.Start(ctx, app.config.Tokens.PruneSchedule); err != nil {
		return err
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases external connections.
func (app *application) cleanup() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}
	if app.db != nil {
		closeDatabase(app.db, app.logger)
	}
	app.logger.Info("application shutdown completed")
}
