package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cloudmeet/agent-bot-go/internal/command"
	"github.com/cloudmeet/agent-bot-go/internal/config"
	"github.com/cloudmeet/agent-bot-go/internal/database"
	"github.com/cloudmeet/agent-bot-go/internal/handler"
	"github.com/cloudmeet/agent-bot-go/internal/jobs"
	"github.com/cloudmeet/agent-bot-go/internal/middleware"
	"github.com/cloudmeet/agent-bot-go/internal/redis"
	"github.com/cloudmeet/agent-bot-go/internal/repository"
	"github.com/cloudmeet/agent-bot-go/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	setLogLevel(cfg.LogLevel)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	if err := db.Migrate(context.Background(), cfg.RootTelegramID); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	codeRepo := repository.NewCodeRepository(db.DB)
	userRepo := repository.NewUserRepository(db.DB)

	meetClient := service.NewMeetClient(cfg.MeetAPIBaseURL, cfg.MeetAPITimeout())
	masterClient := service.NewMasterClient(cfg.MasterAPIBaseURL)

	roleService := service.NewRoleService(db, userRepo, cfg.RootTelegramID)
	inventoryService := service.NewInventoryService(codeRepo, cfg.BulkTakeMax)
	reconcileService := service.NewReconcileService(
		codeRepo, meetClient, redisClient, cfg.SnapshotCacheTTL(),
	)
	rateLimiter := service.NewRateLimiter(
		redisClient, config.CommandRateLimit, config.CommandRateWindow,
	)

	seedFixtures(inventoryService, cfg.FixtureCodesPath)
	registerWithMaster(masterClient, cfg)

	dispatcher := command.NewDispatcher(
		roleService, inventoryService, reconcileService, rateLimiter, cfg.CodeListLimit,
	)

	webhookSecretMiddleware := middleware.NewWebhookSecretMiddleware(cfg.WebhookSecret)
	opsAuthMiddleware := middleware.NewOpsAuthMiddleware(cfg.OpsToken)

	webhookHandler := handler.NewWebhookHandler(dispatcher)
	opsHandler := handler.NewOpsHandler(
		inventoryService, reconcileService, roleService, cfg.CodeListLimit,
	)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(middleware.BodyLimit(0))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/telegram", func(r chi.Router) {
		r.Use(webhookSecretMiddleware.Handler)
		r.Post("/webhook", webhookHandler.Webhook)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(opsAuthMiddleware.Handler)
		r.Mount("/", opsHandler.Routes())
	})

	expiryJob := jobs.NewExpiryJob(meetClient, config.ExpiryWatchInterval)
	expiryJob.Start()
	defer expiryJob.Stop()

	server := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     r,
		ReadTimeout: config.ServerReadTimeout,
		IdleTimeout: config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func seedFixtures(inventory *service.InventoryService, path string) {
	fixtures, err := service.ReadFixtureFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("failed to read fixture codes")
	}
	if len(fixtures) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := inventory.LoadFixtures(ctx, fixtures); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("failed to seed fixture codes")
	}
}

func registerWithMaster(master *service.MasterClient, cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err := master.RegisterAgent(ctx, service.RegisterAgentParams{
		OwnerID:     cfg.RootTelegramID,
		DisplayName: fmt.Sprintf("agent-%d", cfg.RootTelegramID),
		Endpoint:    cfg.Addr(),
	})
	if err != nil {
		log.Warn().Err(err).Msg("master registration failed, running standalone")
	}
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
