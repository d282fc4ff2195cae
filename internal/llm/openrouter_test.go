package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url string) Config {
	return Config{
		BaseURL:      url,
		APIKey:       "test-key",
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
		RateLimit:    1000,
		Burst:        10,
	}
}

func TestNewOpenRouter_RequiresKey(t *testing.T) {
	_, err := NewOpenRouter(Config{}, nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestNewOpenRouter_Defaults(t *testing.T) {
	o, err := NewOpenRouter(Config{APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, o.Model())
	assert.Equal(t, DefaultBaseURL, o.baseURL)
	assert.Equal(t, DefaultRetryBackoff, o.retryBackoff)
	assert.Zero(t, o.httpClient.Timeout)
}

func TestComplete_SendsChatRequest(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hello there"}}]}`))
	}))
	defer srv.Close()

	o, err := NewOpenRouter(testConfig(srv.URL+"/"), nil)
	require.NoError(t, err)

	text, err := o.Complete(context.Background(), "say hi")
	require.NoError(t, err)
	assert.Equal(t, "hello there", text)

	assert.Equal(t, DefaultModel, gotReq.Model)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Equal(t, "say hi", gotReq.Messages[0].Content)
}

func TestComplete_FallsBackToText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"text":"from text"}}]}`))
	}))
	defer srv.Close()

	o, err := NewOpenRouter(testConfig(srv.URL), nil)
	require.NoError(t, err)

	text, err := o.Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "from text", text)
}

func TestComplete_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"No auth credentials found"}}`))
	}))
	defer srv.Close()

	o, err := NewOpenRouter(testConfig(srv.URL), nil)
	require.NoError(t, err)

	_, err = o.Complete(context.Background(), "p")
	require.Error(t, err)

	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, http.StatusUnauthorized, svcErr.StatusCode)
	assert.Equal(t, "No auth credentials found", svcErr.Message)
	assert.False(t, svcErr.Retryable)
	assert.Equal(t, int32(1), calls.Load())
	assert.NotErrorIs(t, err, ErrRetriesExhausted)
}

func TestComplete_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"finally"}}]}`))
	}))
	defer srv.Close()

	o, err := NewOpenRouter(testConfig(srv.URL), nil)
	require.NoError(t, err)

	text, err := o.Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "finally", text)
	assert.Equal(t, int32(3), calls.Load())
}

func TestComplete_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	o, err := NewOpenRouter(testConfig(srv.URL), nil)
	require.NoError(t, err)

	_, err = o.Complete(context.Background(), "p")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetriesExhausted)

	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, http.StatusTooManyRequests, svcErr.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestComplete_EmptyContentIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"   "}}]}`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 0
	o, err := NewOpenRouter(cfg, nil)
	require.NoError(t, err)

	_, err = o.Complete(context.Background(), "p")
	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.True(t, svcErr.Empty)
	assert.True(t, svcErr.Retryable)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
}

func TestComplete_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.RetryBackoff = time.Hour
	o, err := NewOpenRouter(cfg, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = o.Complete(ctx, "p")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBackoffCapped(t *testing.T) {
	o := &OpenRouter{retryBackoff: 2 * time.Second}

	assert.Equal(t, 2*time.Second, o.backoff(1))
	assert.Equal(t, 4*time.Second, o.backoff(2))
	assert.Equal(t, 8*time.Second, o.backoff(3))
	assert.Equal(t, maxBackoff, o.backoff(10))
}

func TestServiceErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  *ServiceError
		want string
	}{
		{name: "empty", err: &ServiceError{Empty: true}, want: "empty response from text generation service"},
		{name: "rate limited", err: &ServiceError{StatusCode: 429}, want: "rate limited (429)"},
		{name: "with message", err: &ServiceError{StatusCode: 400, Message: "bad model"}, want: "API error (400): bad model"},
		{name: "transport", err: &ServiceError{Err: errors.New("dial tcp")}, want: "API request failed: dial tcp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorMessage_TruncatesOnRuneBoundary(t *testing.T) {
	// 199 ASCII bytes then a three-byte rune straddling the limit
	body := strings.Repeat("x", 199) + "€" + strings.Repeat("y", 50)

	msg := errorMessage([]byte(body))

	assert.True(t, utf8.ValidString(msg))
	assert.Equal(t, strings.Repeat("x", 199), msg)
	assert.Equal(t, `{"message":"short"}`, errorMessage([]byte(`{"message":"short"}`)))
	assert.Equal(t, "bad gateway", errorMessage([]byte(`{"error":{"message":"bad gateway"}}`)))
}
