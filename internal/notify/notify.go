// Package notify delivers recommendation summaries over WhatsApp.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var ErrSendFailed = errors.New("send failed")

// DefaultFrom is the Twilio WhatsApp sandbox number.
const DefaultFrom = "whatsapp:+14155238886"

const whatsappPrefix = "whatsapp:"

// Message is either a template send (TemplateSID, Variables) or free text (Body).
type Message struct {
	To          string
	TemplateSID string
	Variables   map[string]string
	Body        string
}

type Receipt struct {
	SID    string `json:"messageSid"`
	Status string `json:"status"`
}

type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}

type WhatsAppConfig struct {
	From            string
	DefaultTemplate string
}

type messageClient interface {
	SendMessage(ctx context.Context, req MessageRequest) (*MessageResource, error)
}

type WhatsApp struct {
	client messageClient
	cfg    WhatsAppConfig
	log    *slog.Logger
}

var _ Sender = (*WhatsApp)(nil)

func NewWhatsApp(client *Twilio, cfg WhatsAppConfig, log *slog.Logger) *WhatsApp {
	return newWhatsApp(client, cfg, log)
}

func newWhatsApp(client messageClient, cfg WhatsAppConfig, log *slog.Logger) *WhatsApp {
	if strings.TrimSpace(cfg.From) == "" {
		cfg.From = DefaultFrom
	}
	cfg.From = WhatsAppAddress(cfg.From)
	if log == nil {
		log = slog.Default()
	}
	return &WhatsApp{client: client, cfg: cfg, log: log.With("component", "whatsapp")}
}

// WhatsAppAddress prefixes a phone number with "whatsapp:" unless already present.
func WhatsAppAddress(number string) string {
	number = strings.TrimSpace(number)
	if strings.HasPrefix(number, whatsappPrefix) {
		return number
	}
	return whatsappPrefix + number
}

func (w *WhatsApp) Send(ctx context.Context, msg Message) (Receipt, error) {
	req := MessageRequest{
		To:   WhatsAppAddress(msg.To),
		From: w.cfg.From,
		Body: msg.Body,
	}
	if msg.Body == "" {
		req.ContentSID = msg.TemplateSID
		if req.ContentSID == "" {
			req.ContentSID = w.cfg.DefaultTemplate
		}
		if len(msg.Variables) > 0 {
			raw, err := json.Marshal(msg.Variables)
			if err != nil {
				return Receipt{}, fmt.Errorf("%w: encode variables: %v", ErrSendFailed, err)
			}
			req.ContentVariables = string(raw)
		}
	}

	res, err := w.client.SendMessage(ctx, req)
	if err != nil {
		w.log.Error("whatsapp send failed", "to", req.To, "error", err)
		return Receipt{}, fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	w.log.Info("whatsapp message sent", "sid", res.SID, "status", res.Status)
	return Receipt{SID: res.SID, Status: res.Status}, nil
}

// Disabled is used when no Twilio credentials are configured.
type Disabled struct{}

func (Disabled) Send(context.Context, Message) (Receipt, error) {
	return Receipt{}, fmt.Errorf("%w: whatsapp is not configured", ErrSendFailed)
}
