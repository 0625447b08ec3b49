package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tanushree1025/DESIGN-THEETA/internal/app/registry"
	"github.com/tanushree1025/DESIGN-THEETA/internal/app/server"
	"github.com/tanushree1025/DESIGN-THEETA/internal/app/server/handlers"
	"github.com/tanushree1025/DESIGN-THEETA/internal/config"
	"github.com/tanushree1025/DESIGN-THEETA/internal/core/services"
	"github.com/tanushree1025/DESIGN-THEETA/internal/platform/logger"
	"github.com/tanushree1025/DESIGN-THEETA/internal/platform/telemetry"
	"github.com/tanushree1025/DESIGN-THEETA/internal/plugins/postgres"
	redisPlugin "github.com/tanushree1025/DESIGN-THEETA/internal/plugins/redis"
	"github.com/tanushree1025/DESIGN-THEETA/internal/plugins/smtp"
)

func main() {
	// Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Config
	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	// Logger
	log := logger.NewLogger(cfg)
	log.Info("starting application")

	otelShutdown, err := telemetry.InitTelemetry(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize telemetry", "err", err)
	}
	defer func() {
		if otelShutdown == nil {
			return
		}
		log.Info("flushing telemetry...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Error("telemetry shutdown failed", "err", err)
		}
	}()

	// Infra
	pdb, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		log.Error("postgres connection failed", "err", err)
		return
	}
	defer pdb.Close()
	log.Info("postgres connected")

	rdb, err := redisPlugin.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "url", cfg.Redis.URL, "err", err)
		return
	}
	defer rdb.Close()
	log.Info("redis connected")

	// Adapters
	userRepo := postgres.NewUserRepository(pdb)
	assignRepo := postgres.NewAssignmentRepo(pdb)
	msgRepo := postgres.NewMessageRepo(pdb)
	txRunner := postgres.NewTxRunner(pdb)
	loginLimiter := redisPlugin.NewLoginLimiter(rdb, cfg.Redis.LoginAttempts, cfg.Redis.LoginWindow)
	resetGuard := redisPlugin.NewResetTokenStore(rdb)
	mailer := smtp.NewMailer(cfg.SMTP)

	// Core Services
	hub := registry.NewRegistry()
	tokenSvc := services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.ResetTokenTTL)
	verifier := services.NewCredentialVerifier(log, tokenSvc, userRepo, cfg.Auth.VerifyTimeout)
	router := services.NewRouter(log, hub)
	presenceSvc := services.NewPresenceService(log, hub, assignRepo)
	msgSvc := services.NewMessageService(log, msgRepo, router, cfg.Chat.StoreTimeout, cfg.Chat.HistoryLimit)
	userSvc := services.NewUserService(log, userRepo, tokenSvc, txRunner, mailer, loginLimiter, resetGuard,
		cfg.Service.PublicURL, cfg.Auth.ResetTokenTTL)

	// Handlers
	sessions := func() *services.Session {
		return services.NewSession(log, verifier, hub, presenceSvc, msgSvc, router)
	}
	authHandler := handlers.NewAuthHandler(userSvc)
	uploadHandler, err := handlers.NewUploadHandler(cfg)
	if err != nil {
		log.Error("upload dir setup failed", "dir", cfg.Upload.Dir, "err", err)
		return
	}
	wsHandler := handlers.NewWSHandler(sessions, cfg)

	// Server
	srv := server.NewServer(log, cfg, tokenSvc, authHandler, uploadHandler, wsHandler)
	if err := srv.Start(ctx); err != nil {
		log.Error("server stopped", "err", err)
	}
}
