package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Defaults for the OpenRouter chat-completions API
const (
	DefaultBaseURL      = "https://openrouter.ai/api/v1"
	DefaultModel        = "open-r1/olympiccoder-7b:free"
	DefaultMaxRetries   = 4
	DefaultRetryBackoff = 2 * time.Second
	DefaultRateLimit    = 1.0
	DefaultBurst        = 2

	maxBackoff   = 30 * time.Second
	maxErrorBody = 200
)

// ErrMissingAPIKey is returned when no API key is configured
var ErrMissingAPIKey = errors.New("no API key configured")

// Config configures the OpenRouter client
type Config struct {
	BaseURL      string
	Model        string
	APIKey       string `json:"-"`
	Timeout      int    // seconds, 0 means no client timeout
	MaxRetries   int
	RetryBackoff time.Duration
	RateLimit    float64 // requests per second
	Burst        int
}

// OpenRouter implements Generator over any OpenAI-compatible
// chat-completions endpoint
type OpenRouter struct {
	model        string
	apiKey       string
	baseURL      string
	httpClient   *http.Client
	limiter      *rate.Limiter
	maxRetries   int
	retryBackoff time.Duration
	logger       *zap.Logger
}

// NewOpenRouter creates a client. Zero config values fall back to defaults.
func NewOpenRouter(cfg Config, logger *zap.Logger) (*OpenRouter, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = DefaultRetryBackoff
	}
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = DefaultBurst
	}

	client := &http.Client{}
	if cfg.Timeout > 0 {
		client.Timeout = time.Duration(cfg.Timeout) * time.Second
	}

	return &OpenRouter{
		model:        model,
		apiKey:       cfg.APIKey,
		baseURL:      baseURL,
		httpClient:   client,
		limiter:      rate.NewLimiter(rate.Limit(limit), burst),
		maxRetries:   maxRetries,
		retryBackoff: backoff,
		logger:       logger,
	}, nil
}

// Model returns the model name sent with each request
func (o *OpenRouter) Model() string {
	return o.model
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Text    string `json:"text"`
		} `json:"message"`
		Text string `json:"text"`
	} `json:"choices"`
}

type chatError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends prompt as a single user message and returns the reply text
func (o *OpenRouter) Complete(ctx context.Context, prompt string) (string, error) {
	req := chatRequest{
		Model:    o.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}

	var lastErr error
	for attempt := 0; attempt <= o.maxRetries; attempt++ {
		if attempt > 0 {
			wait := o.backoff(attempt)
			o.logger.Debug("retrying text generation",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", wait),
				zap.Error(lastErr),
			)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		if err := o.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter error: %w", err)
		}

		text, err := o.doRequest(ctx, req)
		if err == nil {
			o.logger.Debug("text generation finished",
				zap.String("model", o.model),
				zap.Int("attempt", attempt),
				zap.Int("chars", len(text)),
			)
			return text, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !IsRetryable(err) {
			return "", err
		}
	}

	o.logger.Warn("text generation retries exhausted",
		zap.String("model", o.model),
		zap.Int("attempts", o.maxRetries+1),
		zap.Error(lastErr),
	)
	return "", fmt.Errorf("%w: %w", ErrRetriesExhausted, lastErr)
}

// backoff doubles the base delay per attempt, capped at maxBackoff
func (o *OpenRouter) backoff(attempt int) time.Duration {
	wait := o.retryBackoff
	for i := 1; i < attempt; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return min(wait, maxBackoff)
}

func (o *OpenRouter) doRequest(ctx context.Context, req chatRequest) (string, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return "", &ServiceError{Err: err, Retryable: true}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ServiceError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err), Retryable: true}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		svcErr := &ServiceError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
			Retryable:  resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
		}
		o.logger.Debug("text generation service error",
			zap.Int("status", resp.StatusCode),
			zap.String("message", svcErr.Message),
		)
		return "", svcErr
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", &ServiceError{StatusCode: resp.StatusCode, Message: "invalid response body", Err: err}
	}
	if len(chatResp.Choices) == 0 {
		return "", &ServiceError{StatusCode: resp.StatusCode, Empty: true, Retryable: true}
	}

	choice := chatResp.Choices[0]
	text := choice.Message.Content
	if text == "" {
		text = choice.Message.Text
	}
	if text == "" {
		text = choice.Text
	}
	if strings.TrimSpace(text) == "" {
		return "", &ServiceError{StatusCode: resp.StatusCode, Empty: true, Retryable: true}
	}
	return text, nil
}

// errorMessage pulls error.message out of a provider error body
func errorMessage(body []byte) string {
	var errResp chatError
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	return truncate(strings.TrimSpace(string(body)), maxErrorBody)
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
