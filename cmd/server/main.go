// Command server runs the approval bridge: the HTTP API the submission
// form talks to, plus the Telegram webhook that carries admin decisions.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tavoosi/approval-bridge/internal/approval"
	"github.com/tavoosi/approval-bridge/internal/config"
	"github.com/tavoosi/approval-bridge/internal/dedupe"
	httpapi "github.com/tavoosi/approval-bridge/internal/http"
	"github.com/tavoosi/approval-bridge/internal/http/handlers"
	"github.com/tavoosi/approval-bridge/internal/licenses"
	"github.com/tavoosi/approval-bridge/internal/observability"
	"github.com/tavoosi/approval-bridge/internal/store"
	"github.com/tavoosi/approval-bridge/internal/sysutil"
	"github.com/tavoosi/approval-bridge/internal/telegram"
)

// version is set via -ldflags at build time.
var version = "dev"

func main() {
	// Local development convenience; in production the environment is real.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(ctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	kv, err := store.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer kv.Close()
	log.Info().Msg("connected to redis")

	bot, err := telegram.NewClient(cfg.Telegram.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram client init failed")
	}

	requests := store.NewRequestStore(kv, store.TTLs{
		Pending:         cfg.TTL.Pending,
		ProcessedUpdate: cfg.TTL.ProcessedUpdate,
		Callback:        cfg.TTL.Callback,
		Response:        cfg.TTL.Response,
	})
	guard := dedupe.NewGuard(kv, cfg.TTL.ProcessedUpdate)
	registry := licenses.NewRegistry()

	svc := approval.NewService(requests, guard, registry, bot, cfg.Telegram.AdminChatID)
	h := handlers.New(svc, bot, cfg.Telegram.WebhookBaseURL)

	engine := gin.New()
	httpapi.RegisterRoutes(engine, h, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}
