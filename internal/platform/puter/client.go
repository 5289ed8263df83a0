package puter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/puterbatch/internal/config"
	"github.com/phrazzld/puterbatch/internal/domain"
	"github.com/phrazzld/puterbatch/internal/generation"
	"github.com/phrazzld/puterbatch/internal/platform/metrics"
)

const (
	signInPath     = "/auth/sign-in"
	driverCallPath = "/drivers/call"

	maxResponseBytes = 32 << 20
	maxErrorBodyLen  = 512
)

// Sleeper waits for d or until ctx is done, returning ctx.Err() in that case.
type Sleeper func(ctx context.Context, d time.Duration) error

// Client talks to the Puter API. It is safe for concurrent use: every field
// is read-only after construction.
type Client struct {
	logger     *slog.Logger
	config     config.LLMConfig
	baseURL    *url.URL
	httpClient *http.Client
	metrics    *metrics.Collector

	sleep  Sleeper
	jitter func() float64
	now    func() time.Time
}

var (
	_ generation.Authenticator = (*Client)(nil)
	_ generation.Completer     = (*Client)(nil)
)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics records request attempts on the collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Client) { c.metrics = m }
}

// WithSleeper replaces the context-aware timer used between retries.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) { c.sleep = s }
}

// WithJitter replaces the source of the uniform [0, 1) jitter factor.
func WithJitter(f func() float64) Option {
	return func(c *Client) { c.jitter = f }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a Client for the configured base URL and model.
func NewClient(logger *slog.Logger, cfg config.LLMConfig, opts ...Option) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.Interface == "" {
		return nil, fmt.Errorf("%w: driver interface cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("%w: max retries cannot be negative", generation.ErrInvalidConfig)
	}

	base, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidConfig, err)
	}

	c := &Client{
		logger:     logger.With("component", "puter_client", "model", cfg.ModelName),
		config:     cfg,
		baseURL:    base,
		httpClient: http.DefaultClient,
		sleep:      sleepContext,
		jitter:     rand.Float64,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Authenticate exchanges credentials for a session token. It makes exactly
// one request; any failure is an *AuthError.
func (c *Client) Authenticate(ctx context.Context, username, password string) (domain.AuthSession, error) {
	if username == "" || password == "" {
		return domain.AuthSession{}, &AuthError{Reason: "username and password are required"}
	}

	body, err := json.Marshal(signInRequest{Username: username, Password: password})
	if err != nil {
		return domain.AuthSession{}, &AuthError{Reason: "encode sign-in request", Err: err}
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, c.endpoint(signInPath), bytes.NewReader(body))
	if err != nil {
		return domain.AuthSession{}, &AuthError{Reason: "create sign-in request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.InfoContext(ctx, "Authenticating with Puter", "username", username)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.AuthSession{}, &AuthError{Reason: "sign-in request", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.AuthSession{}, &AuthError{StatusCode: resp.StatusCode, Reason: "read sign-in response", Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return domain.AuthSession{}, &AuthError{StatusCode: resp.StatusCode, Reason: truncate(string(data))}
	}

	var payload signInResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return domain.AuthSession{}, &AuthError{StatusCode: resp.StatusCode, Reason: "decode sign-in response", Err: err}
	}

	session, err := domain.NewAuthSession(payload.Token, c.now())
	if err != nil {
		return domain.AuthSession{}, &AuthError{StatusCode: resp.StatusCode, Reason: "no token in sign-in response"}
	}
	applyTokenClaims(&session)

	c.logger.InfoContext(ctx, "Authentication successful",
		"issued_at", session.IssuedAt,
		"expires_at", session.ExpiresAt)

	return session, nil
}

// applyTokenClaims fills IssuedAt and ExpiresAt from the token's JWT claims.
// The signature is not verified: the token is opaque to us and only the
// server decides whether it is valid. Non-JWT tokens are left untouched.
func applyTokenClaims(session *domain.AuthSession) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(session.Token, claims); err != nil {
		return
	}

	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		session.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		session.ExpiresAt = exp.Time
	}
}

// Complete sends the task's prompt to the driver endpoint, retrying every
// failure up to MaxRetries times. The returned error wraps
// generation.ErrTransientFailure and the last cause.
func (c *Client) Complete(
	ctx context.Context,
	session domain.AuthSession,
	task domain.Task,
	params domain.SamplingParams,
) (*domain.CompletionResult, error) {
	if session.Token == "" {
		return nil, domain.ErrEmptyToken
	}
	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("invalid task %d: %w", task.ID, err)
	}

	body, err := json.Marshal(driverCallRequest{
		Interface: c.config.Interface,
		Driver:    c.config.ModelName,
		Method:    methodComplete,
		Args: completionArgs{
			Messages:    []chatMessage{{Role: "user", Content: task.Prompt}},
			Temperature: params.Temperature,
			TopP:        params.TopP,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode driver call for task %d: %w", task.ID, err)
	}

	raw, err := c.callWithRetry(ctx, session, task.ID, body)
	if err != nil {
		return nil, err
	}

	return &domain.CompletionResult{
		APILabel:     task.APILabel,
		Prompt:       task.Prompt,
		ResponseText: ExtractContent(raw),
		RawResponse:  raw,
	}, nil
}

// callWithRetry performs the driver call, sleeping base + U[0, jitter)
// between attempts. It makes at most MaxRetries+1 attempts.
func (c *Client) callWithRetry(
	ctx context.Context,
	session domain.AuthSession,
	taskID int,
	body []byte,
) (json.RawMessage, error) {
	maxRetries := c.config.MaxRetries
	logger := c.logger.With("task_id", taskID)

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1 // For logging (1-based)
		logger.DebugContext(ctx, "Making Puter API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		start := c.now()
		raw, err := c.callOnce(ctx, session, body)
		elapsed := c.now().Sub(start)

		if err == nil {
			c.metrics.ObserveRequest(metrics.OutcomeSuccess, elapsed)
			if attempt > 0 {
				logger.InfoContext(ctx, "Puter API call succeeded after retry", "attempt", attemptNum)
			}
			return raw, nil
		}
		c.metrics.ObserveRequest(metrics.OutcomeFailure, elapsed)

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: task %d cancelled: %w", generation.ErrTransientFailure, taskID, ctxErr)
		}

		if attempt >= maxRetries {
			logger.WarnContext(ctx, "Maximum retry attempts reached",
				"attempts", attemptNum,
				"error", err)
			return nil, fmt.Errorf("%w: task %d after %d attempts: %w",
				generation.ErrTransientFailure, taskID, attemptNum, err)
		}

		delay := c.backoff()
		logger.WarnContext(ctx, "Retry",
			"attempt", attemptNum,
			"delay_seconds", delay.Seconds(),
			"error", err)

		if err := c.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("%w: task %d cancelled during backoff: %w",
				generation.ErrTransientFailure, taskID, err)
		}
	}
}

// callOnce performs a single driver call and returns the raw JSON body.
func (c *Client) callOnce(ctx context.Context, session domain.AuthSession, body []byte) (json.RawMessage, error) {
	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, c.endpoint(driverCallPath), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create driver call request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+session.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("driver call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read driver call response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(data))}
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: body is not well-formed JSON", generation.ErrInvalidResponse)
	}

	return json.RawMessage(data), nil
}

// backoff returns base + U[0, jitter).
func (c *Client) backoff() time.Duration {
	return c.config.RetryBaseDelay + time.Duration(c.jitter()*float64(c.config.RetryJitter))
}

// requestContext applies the per-attempt timeout, if any.
func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.config.RequestTimeout <= 0 {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.config.RequestTimeout)
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.JoinPath(path).String()
}

func parseBaseURL(baseURL string) (*url.URL, error) {
	if baseURL == "" {
		return nil, errors.New("api base url is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return nil, errors.New("api base url host is required")
	}
	return parsed, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrorBodyLen {
		return s
	}
	return s[:maxErrorBodyLen] + "..."
}
