package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/tenantly/tenantly-api/internal/config"
	"github.com/tenantly/tenantly-api/internal/handler"
	"github.com/tenantly/tenantly-api/internal/middleware"
	"github.com/tenantly/tenantly-api/internal/repository"
	"github.com/tenantly/tenantly-api/internal/usecase"
	"github.com/tenantly/tenantly-api/pkg/auth"
	"github.com/tenantly/tenantly-api/pkg/discovery"
	"github.com/tenantly/tenantly-api/pkg/mailer"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "tenantly-api").Logger()

	cfg := config.Load(&logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}()

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping MongoDB")
	}

	db := client.Database(cfg.Mongo.Database)

	accountRepo := repository.NewAccountMongoRepository(ctx, &logger, db)
	organizationRepo := repository.NewOrganizationMongoRepository(db)
	roleRepo := repository.NewRoleMongoRepository(ctx, &logger, db)
	projectRepo := repository.NewProjectMongoRepository(db)
	resetRepo := repository.NewPasswordResetMongoRepository(ctx, &logger, db)
	auditRepo := repository.NewAuditLogMongoRepository(db)
	txn := repository.NewMongoTxnManager(client)

	tokens := auth.NewTokenIssuer(cfg.Token.Secret)
	mail := mailer.NewMailer(&logger)

	authUsecase := usecase.NewAuthUsecase(
		accountRepo, organizationRepo, roleRepo, projectRepo, txn, tokens, mail, cfg, &logger,
	)
	passwordUsecase := usecase.NewPasswordUsecase(
		accountRepo, resetRepo, txn, tokens, mail, cfg, &logger,
	)

	guard := middleware.NewAuthGuard(tokens, accountRepo)
	audit := middleware.NewAuditLogger(auditRepo, &logger)

	authHandler := handler.NewAuthHandler(authUsecase, passwordUsecase, &logger)
	healthHandler := handler.NewHealthHandler(client, &logger)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.NewRequestLogger(&logger))

	router.Get("/health", healthHandler.Check)
	authHandler.RegisterRoutes(router, guard, audit)

	var registration *discovery.Registration
	if cfg.Consul.Address != "" {
		registration, err = discovery.Register(
			cfg.Consul.Address,
			cfg.ServiceName,
			cfg.Consul.ServiceAddr,
			cfg.Consul.ServicePort,
			cfg.Consul.CheckInterval,
		)
		if err != nil {
			logger.Error().Err(err).Msg("failed to register with consul")
		} else {
			defer func() {
				if err := registration.Deregister(); err != nil {
					logger.Error().Err(err).Msg("failed to deregister from consul")
				}
			}()
		}
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("starting HTTP server")
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shut down HTTP server")
		}
	}
}
