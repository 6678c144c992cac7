// cmd/bot/main.go
package main

import (
	"card-advisor/internal/app"
	"card-advisor/internal/config"
	"card-advisor/internal/logging"
	"card-advisor/internal/telegram"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.MustLoad()
	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, &cfg, logger); err != nil {
		logger.Error("bot stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.Telegram.BotToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN not set")
	}
	// In webhook mode the api binary receives updates; Telegram refuses
	// getUpdates while a webhook is registered.
	if cfg.Telegram.WebhookURL != "" {
		return errors.New("TELEGRAM_WEBHOOK_URL is set, updates are served by the api")
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		return err
	}
	api.Debug = cfg.Telegram.Debug
	// drop a webhook left over from an earlier deployment
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		logger.Warn("delete webhook failed", "error", err)
	}
	logger.Info("bot started", "username", api.Self.UserName)

	bot := telegram.New(api, a.Recommender, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Monitor.Run(gctx) })
	g.Go(func() error { return bot.Poll(gctx, api) })
	return g.Wait()
}
