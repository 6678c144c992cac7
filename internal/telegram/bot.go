// Package telegram drives intake sessions over the Telegram Bot API, either
// by long polling or through a webhook route.
package telegram

import (
	"card-advisor/internal/domain"
	"card-advisor/internal/intake"
	"card-advisor/internal/notify"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	NoMatches    = "Sorry, I couldn't find any cards that match your profile. Send /restart to try different answers."
	TemporaryErr = "I apologize, but I encountered an error. Please try again."
)

// Sender is the part of *tgbotapi.BotAPI the bot writes through.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// UpdateSource is the part of *tgbotapi.BotAPI used for long polling.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Recommender interface {
	Recommend(ctx context.Context, p domain.UserProfile) ([]domain.ScoredCard, error)
}

type Bot struct {
	api      Sender
	rec      Recommender
	sessions *intake.Sessions
	log      *slog.Logger
	timeout  time.Duration
}

func New(api Sender, rec Recommender, log *slog.Logger) *Bot {
	if log == nil {
		log = slog.Default()
	}
	return &Bot{
		api:      api,
		rec:      rec,
		sessions: intake.NewSessions(),
		log:      log.With("component", "telegram"),
		timeout:  30 * time.Second,
	}
}

// HandleUpdate answers one update. Non-text updates are ignored.
func (b *Bot) HandleUpdate(ctx context.Context, u tgbotapi.Update) {
	if u.Message == nil || u.Message.Chat == nil {
		return
	}
	chatID := u.Message.Chat.ID
	text := intake.Normalize(u.Message.Text)
	if text == "" {
		return
	}
	b.log.Debug("message received", "chat_id", chatID, "text", text)

	reply := b.sessions.Handle(chatID, text)
	b.send(chatID, reply.Text)
	if !reply.Complete {
		return
	}

	b.send(chatID, b.recommend(ctx, reply.Profile))
	// the profile is not kept once answered; the next message starts over
	b.sessions.Forget(chatID)
}

func (b *Bot) recommend(ctx context.Context, p domain.UserProfile) string {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	cards, err := b.rec.Recommend(ctx, p)
	if err != nil {
		b.log.Error("recommend failed", "error", err)
		return TemporaryErr
	}
	text, err := notify.FormatRecommendations(notify.SummariesOf(cards))
	if errors.Is(err, notify.ErrNothingToSend) {
		return NoMatches
	}
	if err != nil {
		b.log.Error("format recommendations failed", "error", err)
		return TemporaryErr
	}
	return text
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Error("telegram send failed", "chat_id", chatID, "error", err)
	}
}

// Poll reads updates until ctx is done.
func (b *Bot) Poll(ctx context.Context, src UpdateSource) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := src.GetUpdatesChan(u)
	defer src.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// WebhookPath is where Telegram posts updates in webhook mode.
const WebhookPath = "/telegram"

// Webhook handles POST /telegram.
func (b *Bot) Webhook() gin.HandlerFunc {
	return func(c *gin.Context) {
		var update tgbotapi.Update
		if err := c.ShouldBindJSON(&update); err != nil {
			b.log.Warn("bad telegram update", "error", err)
			c.Status(http.StatusBadRequest)
			return
		}
		b.HandleUpdate(c.Request.Context(), update)
		c.Status(http.StatusOK)
	}
}

// Requester is the part of *tgbotapi.BotAPI used to set the webhook.
type Requester interface {
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// SetWebhook points Telegram at baseURL + WebhookPath.
func SetWebhook(api Requester, baseURL string) (string, error) {
	url := strings.TrimRight(baseURL, "/") + WebhookPath
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return "", fmt.Errorf("build webhook: %w", err)
	}
	if _, err := api.Request(wh); err != nil {
		return "", fmt.Errorf("set webhook: %w", err)
	}
	return url, nil
}
