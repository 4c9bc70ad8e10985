// Package llm is the client for the Gemini generateContent API, with request
// timeouts, failure classification and bounded fixed-delay retries.
package llm

import (
	"alcyxob/fitplan/internal/metrics"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/tidwall/gjson"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
	DefaultModel   = "gemini-2.5-flash"
	DefaultTimeout = 30 * time.Second

	// maxResponseSize limits the response body read per attempt.
	maxResponseSize = 10 * 1024 * 1024
)

// Fixed generation parameters sent with every request.
const (
	temperature     = 0.7
	topK            = 40
	topP            = 0.95
	maxOutputTokens = 4096
)

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

// Client sends prompts to the generation endpoint.
type Client struct {
	mu     sync.RWMutex
	apiKey string

	baseURL    string
	model      string
	httpClient *http.Client
	retry      RetryConfig
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (the model path is appended to it).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

// WithTimeout sets the per-attempt request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client. Its Timeout is the per-attempt timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRetryConfig sets the retry policy.
func WithRetryConfig(cfg RetryConfig) Option {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records attempts and retries.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a client. An empty apiKey is allowed; Generate then fails
// with ErrMissingCredential until SetAPIKey provides one.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		retry:      DefaultRetryConfig(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetAPIKey replaces the credential used by subsequent calls.
func (c *Client) SetAPIKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiKey = key
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.key() != ""
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

func (c *Client) key() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey
}

// Generate sends prompt to the model and returns the raw text of the first
// candidate. Transient upstream failures are retried with a fixed delay; every
// attempt re-sends the identical body.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	key := c.key()
	if key == "" {
		return "", ErrMissingCredential
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     temperature,
			TopK:            topK,
			TopP:            topP,
			MaxOutputTokens: maxOutputTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode generate request: %w", err)
	}
	endpoint := c.baseURL + "/" + c.model + ":generateContent"

	var (
		text    string
		attempt int
	)
	op := func() error {
		attempt++
		t, err := c.send(ctx, endpoint, key, body)
		if err != nil {
			if Classify(err) == Terminal {
				return backoff.Permanent(err)
			}
			return err
		}
		text = t
		return nil
	}
	notify := func(err error, wait time.Duration) {
		c.metrics.IncModelRetry()
		c.logger.Warn("Transient model API failure, retrying",
			"attempt", attempt, "max_attempts", c.retry.MaxAttempts, "wait", wait, "error", err)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retry.Delay), c.retry.retries()),
		ctx,
	)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		c.logger.Error("Model API call failed", "attempts", attempt, "class", Classify(err).String(), "error", err)
		return "", err
	}
	return text, nil
}

// send performs a single attempt and classifies its failure.
func (c *Client) send(ctx context.Context, endpoint, key string, body []byte) (string, error) {
	start := time.Now()
	text, err := c.doSend(ctx, endpoint, key, body)
	c.metrics.ObserveModelAttempt(outcome(err), time.Since(start))
	return text, err
}

func (c *Client) doSend(ctx context.Context, endpoint, key string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build model request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	return c.candidateText(raw)
}

// candidateText pulls candidates[0].content.parts[0].text out of the envelope.
func (c *Client) candidateText(raw []byte) (string, error) {
	if !gjson.ValidBytes(raw) {
		return "", fmt.Errorf("%w: malformed JSON envelope", ErrInvalidResponse)
	}
	cand := gjson.GetBytes(raw, "candidates.0.content")
	if !cand.Exists() {
		c.logger.Error("Unexpected model response structure", "body", truncate(string(raw), 512))
		return "", fmt.Errorf("%w: missing candidates[0].content", ErrInvalidResponse)
	}
	text := cand.Get("parts.0.text")
	if !text.Exists() {
		return "", fmt.Errorf("%w: missing candidates[0].content.parts[0].text", ErrInvalidResponse)
	}

	c.logger.Debug("Model response received",
		"finish_reason", gjson.GetBytes(raw, "candidates.0.finishReason").String(),
		"chars", len(text.String()))
	return text.String(), nil
}

func transportError(err error) error {
	if isTimeout(err) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrNetwork, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
