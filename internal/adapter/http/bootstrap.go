package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	postgres "storeapi/internal/adapter/database/postgres"
	sqlite "storeapi/internal/adapter/database/sqlite"
	"storeapi/internal/adapter/http/routes"
	"storeapi/internal/core/domain"
	"storeapi/internal/core/port"
	"storeapi/internal/core/telemetry"
	"storeapi/internal/core/util"
	"storeapi/pkg"
	"storeapi/pkg/config"
)

func StartServer(metrics *telemetry.AppMetrics, logger *config.LokiLogger) {
	StartServerWithConfig(metrics, logger, config.GetDefaultConfig())
}

func StartServerWithConfig(metrics *telemetry.AppMetrics, logger *config.LokiLogger, appConfig *config.AppConfig) {
	container, cleanup, err := buildContainer(logger, metrics, appConfig)

	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		return
	}

	defer cleanup()

	seedAdminUser(container.UserRepo, appConfig)

	router := routes.SetupRouterWithConfig(routes.HandlersConfig{
		AuthHandler:    container.AuthHandler,
		UserHandler:    container.UserHandler,
		AddressHandler: container.AddressHandler,
		Authenticator:  container.Authenticator,
	}, metrics, logger, appConfig)

	port := pkg.GetServerPort()

	slog.Info("Server starting",
		"port", port,
		"environment", appConfig.Environment,
		"rate_limit_enabled", appConfig.RateLimitEnabled,
		"https_enforced", appConfig.EnforceHTTPS)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed to start", "error", err)
	}
}

// buildContainer picks Postgres when DATABASE_URL is set, otherwise the
// embedded sqlite file.
func buildContainer(logger *config.LokiLogger, metrics *telemetry.AppMetrics, appConfig *config.AppConfig) (*Container, func(), error) {
	if appConfig.DatabaseURL != "" {
		db, err := postgres.NewDB()

		if err != nil {
			return nil, nil, err
		}

		return NewPostgresContainer(db, logger, metrics, appConfig), func() { db.Close() }, nil
	}

	db, err := sqlite.NewDB()

	if err != nil {
		return nil, nil, err
	}

	return NewContainer(db, logger, metrics, appConfig), func() { db.Close() }, nil
}

// seedAdminUser creates the configured admin account on first boot. Skipped
// when no admin password is configured or the account already exists.
func seedAdminUser(repo port.UserRepository, appConfig *config.AppConfig) {
	if appConfig.AdminPassword == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := repo.GetByEmail(ctx, appConfig.AdminEmail)

	if err == nil {
		return
	}

	if !errors.Is(err, port.ErrNotFound) {
		slog.Error("Admin seed lookup failed", "error", err)
		return
	}

	hash, err := util.GenerateEncrypt(appConfig.AdminPassword)

	if err != nil {
		slog.Error("Admin seed hash failed", "error", err)
		return
	}

	now := time.Now()

	_, err = repo.Create(ctx, domain.User{
		FirstName:    "Store",
		LastName:     "Admin",
		Email:        appConfig.AdminEmail,
		PasswordHash: hash,
		Role:         domain.Admin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})

	if err != nil {
		slog.Error("Admin seed failed", "error", err)
		return
	}

	slog.Info("Admin user seeded", "email", appConfig.AdminEmail)
}
