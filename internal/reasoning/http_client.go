package reasoning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/matchday-consensus/internal/config"
)

// maxRetries caps transient retries regardless of configuration
const maxRetries = 2

const completionsPath = "/v1/chat/completions"

// HTTPClientConfig holds configuration for the transport
type HTTPClientConfig struct {
	Timeout      time.Duration
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	RateLimit    float64 // requests per second
}

// DefaultHTTPClientConfig returns recommended defaults
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:      12 * time.Second,
		MaxRetries:   maxRetries,
		RetryWaitMin: 500 * time.Millisecond,
		RetryWaitMax: 3 * time.Second,
		RateLimit:    5.0,
	}
}

// HTTPClientConfigFrom builds the transport settings from the reasoning section
func HTTPClientConfigFrom(cfg config.ReasoningConfig) HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:      cfg.Timeout(),
		MaxRetries:   cfg.MaxRetries,
		RetryWaitMin: time.Duration(cfg.RetryWaitMinMillis) * time.Millisecond,
		RetryWaitMax: time.Duration(cfg.RetryWaitMaxMillis) * time.Millisecond,
		RateLimit:    cfg.RateLimit,
	}
}

// RateLimitedHTTPClient wraps retryablehttp.Client with rate limiting
type RateLimitedHTTPClient struct {
	client  *retryablehttp.Client
	limiter *rate.Limiter
	logger  *logrus.Logger
}

// NewRateLimitedHTTPClient creates a new rate-limited HTTP client
func NewRateLimitedHTTPClient(cfg HTTPClientConfig, logger *logrus.Logger) *RateLimitedHTTPClient {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = min(cfg.MaxRetries, maxRetries)
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.CheckRetry = retryPolicy
	// hand the last response back so the caller can report its status
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = retryLogger{logger.WithField("component", "reasoning_http")}

	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}

	return &RateLimitedHTTPClient{
		client:  retryClient,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// Post sends a JSON body with rate limiting and transient retries
func (c *RateLimitedHTTPClient) Post(ctx context.Context, url string, header http.Header, body []byte) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	return c.client.Do(req)
}

// Close closes any resources held by the client
func (c *RateLimitedHTTPClient) Close() error {
	c.client.HTTPClient.CloseIdleConnections()
	return nil
}

// retryPolicy retries network errors and 429/5xx gateway statuses. Caller
// cancellation and deadlines are final, as are all other 4xx.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false, err
		}
		return true, nil
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true, nil
	}
	return false, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// retryLogger adapts logrus to retryablehttp.LeveledLogger
type retryLogger struct {
	entry *logrus.Entry
}

func (l retryLogger) fields(keysAndValues []interface{}) *logrus.Entry {
	f := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return l.entry.WithFields(f)
}

func (l retryLogger) Error(msg string, kv ...interface{}) { l.fields(kv).Error(msg) }
func (l retryLogger) Info(msg string, kv ...interface{})  { l.fields(kv).Debug(msg) }
func (l retryLogger) Debug(msg string, kv ...interface{}) { l.fields(kv).Trace(msg) }
func (l retryLogger) Warn(msg string, kv ...interface{})  { l.fields(kv).Warn(msg) }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// HTTPClient speaks the OpenAI-compatible chat completions protocol
type HTTPClient struct {
	http    *RateLimitedHTTPClient
	baseURL string
	apiKey  string
	logger  *logrus.Logger
}

// NewHTTPClient creates a chat completions client for the reasoning provider
func NewHTTPClient(cfg config.ReasoningConfig, logger *logrus.Logger) *HTTPClient {
	return NewHTTPClientWithTransport(cfg.BaseURL, cfg.APIKey, NewRateLimitedHTTPClient(HTTPClientConfigFrom(cfg), logger), logger)
}

// NewHTTPClientWithTransport creates a client over an existing transport
func NewHTTPClientWithTransport(baseURL, apiKey string, transport *RateLimitedHTTPClient, logger *logrus.Logger) *HTTPClient {
	if logger == nil {
		logger = transport.logger
	}
	return &HTTPClient{
		http:    transport,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		logger:  logger,
	}
}

// Complete sends one system+user prompt and returns the first choice
func (c *HTTPClient) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()

	payload, err := json.Marshal(chatRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	header := http.Header{}
	if c.apiKey != "" {
		header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Post(ctx, c.baseURL+completionsPath, header, payload)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrUpstreamStatus, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}

	c.logger.WithFields(logrus.Fields{
		"model":    req.Model,
		"duration": time.Since(start),
	}).Debug("Reasoning completion received")

	return out.Choices[0].Message.Content, nil
}

// Close releases idle connections
func (c *HTTPClient) Close() error {
	return c.http.Close()
}
