package ranker

import (
	"bytes"
	"card-advisor/internal/domain"
	"card-advisor/internal/httpx"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type Config struct {
	BaseURL      string
	APIKey       string
	Model        string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

var _ Ranker = (*Client)(nil)

// New returns Disabled when no API key is configured.
func New(cfg Config, log *slog.Logger) Ranker {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Disabled{}
	}
	return NewClient(cfg, log)
}

func NewClient(cfg Config, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.deepinfra.com"
	}
	if cfg.Model == "" {
		cfg.Model = "deepinfra/deepseek-llm-67b-chat"
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
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.With("client", "ranker"),
	}
}

func (c *Client) Rerank(ctx context.Context, p domain.UserProfile, cards []domain.ScoredCard) ([]domain.RankScore, error) {
	content, err := c.complete(ctx, rerankSystem, rerankPrompt(p, cards), 500, 0.3)
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}
	return parseScores(content)
}

func (c *Client) Enrich(ctx context.Context, p domain.UserProfile, cards []domain.ScoredCard) ([][]string, error) {
	content, err := c.complete(ctx, enrichSystem, enrichPrompt(p, cards), 800, 0.5)
	if err != nil {
		return nil, fmt.Errorf("enrich: %w", err)
	}
	return parseReasons(content)
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type inferenceRequest struct {
	Input struct {
		Messages []message `json:"messages"`
	} `json:"input"`
	Stream      bool    `json:"stream"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type inferenceResponse struct {
	Output struct {
		Choices []struct {
			Message message `json:"message"`
		} `json:"choices"`
	} `json:"output"`
}

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("inference http %d: %s", e.StatusCode, httpx.Truncate(e.Body, 2000))
}

func (e *HTTPError) HTTPStatusCode() int {
	return e.StatusCode
}

func (c *Client) complete(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	var req inferenceRequest
	req.Input.Messages = []message{{Role: "system", Content: system}, {Role: "user", Content: user}}
	req.MaxTokens = maxTokens
	req.Temperature = temperature

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/v1/inference/%s", c.cfg.BaseURL, c.cfg.Model)

	backoff := c.cfg.RetryBackoff
	for attempt := 0; ; attempt++ {
		out, resp, err := c.doOnce(ctx, endpoint, body)
		if err == nil {
			if len(out.Output.Choices) == 0 {
				return "", nil
			}
			return out.Output.Choices[0].Message.Content, nil
		}
		if ctx.Err() != nil || !httpx.IsRetryableError(err) || attempt >= c.cfg.MaxRetries {
			return "", err
		}

		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 10*time.Second))
		c.log.Warn("inference request retrying",
			"attempt", attempt+1,
			"max_retries", c.cfg.MaxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return "", err
		}
		backoff *= 2
	}
}

func (c *Client) doOnce(ctx context.Context, endpoint string, body []byte) (*inferenceResponse, *http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, resp, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out inferenceResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, resp, fmt.Errorf("decode reply: %w", err)
	}
	return &out, resp, nil
}
