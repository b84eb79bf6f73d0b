package reasoning

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func newTestClient(url string) *HTTPClient {
	cfg := DefaultHTTPClientConfig()
	cfg.Timeout = 2 * time.Second
	cfg.MaxRetries = 5
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 2 * time.Millisecond
	cfg.RateLimit = 1000
	transport := NewRateLimitedHTTPClient(cfg, quietLogger())
	return NewHTTPClientWithTransport(url, "test-key", transport, nil)
}

func completion(content string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{{"message": map[string]string{"role": "assistant", "content": content}}},
	})
	return string(b)
}

func TestCompleteSendsChatRequest(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, completionsPath, r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, completion(`{"ok":true}`))
	}))
	defer server.Close()

	out, err := newTestClient(server.URL).Complete(context.Background(), Request{
		Model: "gpt-test", System: "sys", User: "usr", Temperature: 0.2, MaxTokens: 300,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)

	assert.Equal(t, "gpt-test", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "usr", got.Messages[1].Content)
	assert.Equal(t, 300, got.MaxTokens)
}

func TestCompleteRetryPolicy(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		wantAttempts int32
	}{
		{"service unavailable is retried twice", http.StatusServiceUnavailable, 3},
		{"rate limited is retried", http.StatusTooManyRequests, 3},
		{"bad gateway is retried", http.StatusBadGateway, 3},
		{"bad request is final", http.StatusBadRequest, 1},
		{"unauthorized is final", http.StatusUnauthorized, 1},
		{"not implemented is final", http.StatusNotImplemented, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&attempts, 1)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, "upstream says no")
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).Complete(context.Background(), Request{Model: "m"})
			assert.ErrorIs(t, err, ErrUpstreamStatus)
			assert.Contains(t, err.Error(), "upstream says no")
			assert.Equal(t, tt.wantAttempts, atomic.LoadInt32(&attempts))
		})
	}
}

func TestCompleteRecoversAfterTransientFailure(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, completion("second time lucky"))
	}))
	defer server.Close()

	out, err := newTestClient(server.URL).Complete(context.Background(), Request{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "second time lucky", out)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestCompleteEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"choices":[]}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), Request{Model: "m"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestCompleteTimeout(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(server.URL).Complete(ctx, Request{Model: "m"})
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestRetryPolicyIgnoresCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	retry, err := retryPolicy(ctx, nil, context.Canceled)
	assert.False(t, retry)
	assert.ErrorIs(t, err, context.Canceled)

	retry, _ = retryPolicy(context.Background(), nil, io.ErrUnexpectedEOF)
	assert.True(t, retry)
}
