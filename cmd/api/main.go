// cmd/api/main.go
package main

import (
	"card-advisor/internal/app"
	"card-advisor/internal/config"
	"card-advisor/internal/handler"
	"card-advisor/internal/logging"
	"card-advisor/internal/middleware"
	"card-advisor/internal/telegram"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.MustLoad()

	// Настройка логгера
	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, &cfg, logger); err != nil {
		logger.Error("api stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(logger), middleware.CORS(cfg.HTTP.AllowedOrigins))

	handler.New(handler.Deps{
		Recommender: a.Recommender,
		Cards:       a.Catalog,
		Comparer:    a.Comparer,
		Health:      a.Monitor,
		Sender:      a.Sender,
		Logger:      logger,
	}).Register(router)

	// Telegram webhook
	if cfg.Telegram.BotToken != "" && cfg.Telegram.WebhookURL != "" {
		if err := mountWebhook(router, cfg.Telegram, a, logger); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Monitor.Run(gctx) })
	g.Go(func() error {
		logger.Info("server started", "addr", srv.Addr, "mock_mode", cfg.Catalog.ForceMock)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func mountWebhook(router *gin.Engine, cfg config.TelegramConfig, a *app.App, logger *slog.Logger) error {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return err
	}
	api.Debug = cfg.Debug

	url, err := telegram.SetWebhook(api, cfg.WebhookURL)
	if err != nil {
		return err
	}
	bot := telegram.New(api, a.Recommender, logger)
	router.POST(telegram.WebhookPath, bot.Webhook())
	logger.Info("telegram webhook set", "url", url)
	return nil
}
