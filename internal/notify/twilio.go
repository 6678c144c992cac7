package notify

import (
	"card-advisor/internal/httpx"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type TwilioConfig struct {
	AccountSID   string
	AuthToken    string
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Configured reports whether credentials are present.
func (c TwilioConfig) Configured() bool {
	return strings.TrimSpace(c.AccountSID) != "" && strings.TrimSpace(c.AuthToken) != ""
}

// Twilio is a minimal client for the Programmable Messaging REST API.
type Twilio struct {
	cfg        TwilioConfig
	httpClient *http.Client
	log        *slog.Logger
}

func NewTwilio(cfg TwilioConfig, log *slog.Logger) (*Twilio, error) {
	cfg.AccountSID = strings.TrimSpace(cfg.AccountSID)
	cfg.AuthToken = strings.TrimSpace(cfg.AuthToken)
	if cfg.AccountSID == "" {
		return nil, errors.New("twilio: missing account sid")
	}
	if cfg.AuthToken == "" {
		return nil, errors.New("twilio: missing auth token")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.twilio.com/2010-04-01"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Twilio{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.With("client", "twilio"),
	}, nil
}

type MessageRequest struct {
	To               string
	From             string
	Body             string
	ContentSID       string
	ContentVariables string
}

type MessageResource struct {
	SID          string  `json:"sid"`
	Status       string  `json:"status"`
	To           string  `json:"to"`
	From         string  `json:"from"`
	ErrorCode    *int    `json:"error_code"`
	ErrorMessage *string `json:"error_message"`
}

func (t *Twilio) SendMessage(ctx context.Context, req MessageRequest) (*MessageResource, error) {
	if strings.TrimSpace(req.To) == "" {
		return nil, errors.New("twilio: To required")
	}
	if strings.TrimSpace(req.From) == "" {
		return nil, errors.New("twilio: From required")
	}
	if req.Body == "" && req.ContentSID == "" {
		return nil, errors.New("twilio: Body or ContentSid required")
	}

	form := url.Values{}
	form.Set("To", req.To)
	form.Set("From", req.From)
	if req.Body != "" {
		form.Set("Body", req.Body)
	}
	if req.ContentSID != "" {
		form.Set("ContentSid", req.ContentSID)
	}
	if req.ContentVariables != "" {
		form.Set("ContentVariables", req.ContentVariables)
	}

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", t.cfg.BaseURL, url.PathEscape(t.cfg.AccountSID))
	return t.doForm(ctx, endpoint, form)
}

type apiError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
}

type HTTPError struct {
	StatusCode int
	Body       string
	APIError   *apiError
}

func (e *HTTPError) Error() string {
	if e.APIError != nil && strings.TrimSpace(e.APIError.Message) != "" {
		if e.APIError.Code != 0 {
			return fmt.Sprintf("twilio http %d: %s (code=%d)", e.StatusCode, e.APIError.Message, e.APIError.Code)
		}
		return fmt.Sprintf("twilio http %d: %s", e.StatusCode, e.APIError.Message)
	}
	return fmt.Sprintf("twilio http %d: %s", e.StatusCode, httpx.Truncate(e.Body, 2000))
}

func (e *HTTPError) HTTPStatusCode() int { return e.StatusCode }

func (t *Twilio) doForm(ctx context.Context, endpoint string, form url.Values) (*MessageResource, error) {
	backoff := t.cfg.RetryBackoff

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, resp, err := t.doFormOnce(ctx, endpoint, form)
		if err == nil {
			return out, nil
		}
		if !httpx.IsRetryableError(err) || attempt >= t.cfg.MaxRetries {
			return nil, err
		}

		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 10*time.Second))
		t.log.Warn("twilio request retrying",
			"attempt", attempt+1,
			"max_retries", t.cfg.MaxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return nil, err
		}
		backoff *= 2
	}
}

func (t *Twilio) doFormOnce(ctx context.Context, endpoint string, form url.Values) (*MessageResource, *http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(t.cfg.AccountSID, t.cfg.AuthToken)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, resp, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		herr := &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
		var ae apiError
		if json.Unmarshal(raw, &ae) == nil && strings.TrimSpace(ae.Message) != "" {
			herr.APIError = &ae
		}
		return nil, resp, herr
	}

	var out MessageResource
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, resp, fmt.Errorf("twilio decode: %w", err)
	}
	return &out, resp, nil
}
