package http

import (
	"log/slog"

	postgres "storeapi/internal/adapter/database/postgres"
	pgrepository "storeapi/internal/adapter/database/postgres/repository"
	sqlite "storeapi/internal/adapter/database/sqlite"
	"storeapi/internal/adapter/database/sqlite/repository"
	"storeapi/internal/adapter/email"
	"storeapi/internal/adapter/http/handler"
	"storeapi/internal/adapter/http/middleware"
	"storeapi/internal/core/port"
	"storeapi/internal/core/service"
	"storeapi/internal/core/telemetry"
	"storeapi/pkg/config"
	"storeapi/pkg/token"
)

type Container struct {
	UserRepo    port.UserRepository
	AddressRepo port.AddressRepository

	AuthUseCase    port.AuthService
	UserUseCase    port.UserService
	AddressUseCase port.AddressService

	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	AddressHandler *handler.AddressHandler
	Authenticator  *middleware.Authenticator

	AccessIssuer  *token.AccessIssuer
	RefreshIssuer *token.RefreshIssuer
	ResetIssuer   *token.ResetIssuer
}

func NewContainer(db *sqlite.DB, logger *config.LokiLogger, metrics *telemetry.AppMetrics, appConfig *config.AppConfig) *Container {
	probe := telemetry.NewOTELProbe(slog.Default())

	userRepo := repository.NewUserRepository(db, probe)
	addressRepo := repository.NewAddressRepository(db, probe)

	return assemble(userRepo, addressRepo, logger, metrics, appConfig)
}

func NewPostgresContainer(db *postgres.DB, logger *config.LokiLogger, metrics *telemetry.AppMetrics, appConfig *config.AppConfig) *Container {
	userRepo := pgrepository.NewUserRepository(db)
	addressRepo := pgrepository.NewAddressRepository(db)

	return assemble(userRepo, addressRepo, logger, metrics, appConfig)
}

func assemble(userRepo port.UserRepository, addressRepo port.AddressRepository, logger *config.LokiLogger, metrics *telemetry.AppMetrics, appConfig *config.AppConfig) *Container {
	access := token.NewAccessIssuer(appConfig.JWT)
	refresh := token.NewRefreshIssuer(appConfig.JWT, appConfig.RefreshTokenLifeTime)
	reset := token.NewResetIssuer(appConfig.ResetPassword)

	sender := email.NewSmtpSender(appConfig.Smtp)

	authSvc := service.NewAuthService(userRepo, access, refresh, reset, sender, appConfig.ClientURL)
	userSvc := service.NewUserService(userRepo)
	addressSvc := service.NewAddressService(addressRepo)

	return &Container{
		UserRepo:    userRepo,
		AddressRepo: addressRepo,

		AuthUseCase:    authSvc,
		UserUseCase:    userSvc,
		AddressUseCase: addressSvc,

		AuthHandler:    handler.NewAuthHandler(authSvc, access, refresh),
		UserHandler:    handler.NewUserHandler(userSvc),
		AddressHandler: handler.NewAddressHandler(addressSvc, logger),
		Authenticator:  middleware.NewAuthenticator(access, authSvc, metrics),

		AccessIssuer:  access,
		RefreshIssuer: refresh,
		ResetIssuer:   reset,
	}
}
