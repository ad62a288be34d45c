// Package registration obtains application identifiers from the client
// registry. The HTTP Client retries transient failures, trips a circuit
// breaker on sustained ones, and always falls back to a local identifier so
// evaluation never depends on the registry being up.
package registration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"cartoes/internal/eligibility"
	"cartoes/internal/registration/metrics"
	"cartoes/pkg/platform/circuit"
	"cartoes/pkg/platform/sentinel"
)

const maxResponseBytes = 64 << 10

type Config struct {
	URL              string
	ConnectTimeout   time.Duration
	ReadTimeout      time.Duration
	MaxRetries       int
	InitialBackoff   time.Duration
	BreakerFailures  int
	BreakerSuccesses int
	BreakerCooldown  time.Duration
}

// Client registers applicants with the remote registry over HTTP.
type Client struct {
	endpoint       string
	http           *http.Client
	breaker        *circuit.Breaker
	maxRetries     int
	initialBackoff time.Duration

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	newID   func() uuid.UUID
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("registration URL %q is not absolute", cfg.URL)
	}
	if cfg.MaxRetries < 0 {
		return nil, errors.New("registration max retries must not be negative")
	}

	o := buildOptions(opts)
	if o.breaker == nil {
		o.breaker = circuit.New("registration",
			circuit.WithFailureThreshold(cfg.BreakerFailures),
			circuit.WithSuccessThreshold(cfg.BreakerSuccesses),
			circuit.WithCooldown(cfg.BreakerCooldown),
		)
	}
	if o.httpClient == nil {
		o.httpClient = newHTTPClient(cfg.ConnectTimeout, cfg.ReadTimeout)
	}
	initial := cfg.InitialBackoff
	if initial <= 0 {
		initial = 200 * time.Millisecond
	}

	return &Client{
		endpoint:       u.String(),
		http:           o.httpClient,
		breaker:        o.breaker,
		maxRetries:     cfg.MaxRetries,
		initialBackoff: initial,
		logger:         o.logger,
		metrics:        o.metrics,
		tracer:         o.tracer,
		newID:          o.newID,
	}, nil
}

func newHTTPClient(connectTimeout, readTimeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: connectTimeout, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   connectTimeout,
		ResponseHeaderTimeout: readTimeout,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
	}
	return &http.Client{Transport: transport, Timeout: connectTimeout + readTimeout}
}

// Register returns the registry's identifier, or a local one when the breaker
// is open or the registry keeps failing. It errors only when ctx is done.
func (c *Client) Register(ctx context.Context, profile eligibility.Profile) (uuid.UUID, error) {
	ctx, span := c.tracer.Start(ctx, "registration.Register")
	defer span.End()
	start := time.Now()

	if !c.breaker.Allow() {
		span.SetAttributes(attribute.String("registration.result", metrics.ResultFallback))
		return c.fallback(ctx, start, "circuit_open", nil), nil
	}

	id, err := c.registerWithRetry(ctx, profile)
	if err == nil {
		if _, change := c.breaker.RecordSuccess(); change.Closed {
			c.logger.InfoContext(ctx, "registration circuit closed")
			c.metrics.SetBreakerOpen(false)
		}
		c.metrics.ObserveRegistration(metrics.ResultPrimary, time.Since(start))
		span.SetAttributes(attribute.String("registration.result", metrics.ResultPrimary))
		return id, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		span.SetStatus(codes.Error, "context done")
		return uuid.Nil, ctxErr
	}

	span.RecordError(err)
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "registration circuit opened", "error", err)
		c.metrics.SetBreakerOpen(true)
	}
	span.SetAttributes(attribute.String("registration.result", metrics.ResultFallback))
	return c.fallback(ctx, start, "remote_failure", err), nil
}

func (c *Client) fallback(ctx context.Context, start time.Time, reason string, cause error) uuid.UUID {
	id := c.newID()
	attrs := []any{"reason", reason, "application_id", id}
	if cause != nil {
		attrs = append(attrs, "error", cause)
	}
	c.logger.WarnContext(ctx, "registration fallback identifier issued", attrs...)
	c.metrics.ObserveRegistration(metrics.ResultFallback, time.Since(start))
	return id
}

func (c *Client) registerWithRetry(ctx context.Context, profile eligibility.Profile) (uuid.UUID, error) {
	body, err := json.Marshal(newRegisterRequest(profile))
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode registration request: %w", err)
	}

	var id uuid.UUID
	attempt := 0
	operation := func() error {
		attempt++
		var opErr error
		id, opErr = c.post(ctx, body)
		return opErr
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialBackoff
	policy.MaxElapsedTime = 0
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.maxRetries)), ctx)

	notify := func(err error, wait time.Duration) {
		c.logger.WarnContext(ctx, "registration attempt failed",
			"attempt", attempt,
			"retry_in_ms", wait.Milliseconds(),
			"error", err,
		)
	}
	if err := backoff.RetryNotify(operation, retry, notify); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// post performs one attempt. Client errors and malformed replies are
// permanent; transport errors, 429 and 5xx are retried.
func (c *Client) post(ctx context.Context, body []byte) (uuid.UUID, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return uuid.Nil, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", sentinel.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return uuid.Nil, fmt.Errorf("%w: registry answered %d", sentinel.ErrUnavailable, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return uuid.Nil, backoff.Permanent(fmt.Errorf("%w: registry answered %d", sentinel.ErrRejected, resp.StatusCode))
	}

	var out registerResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return uuid.Nil, backoff.Permanent(fmt.Errorf("%w: %w", sentinel.ErrInvalidResponse, err))
	}
	id, err := uuid.Parse(out.ClientID)
	if err != nil {
		return uuid.Nil, backoff.Permanent(fmt.Errorf("%w: id_cliente %q", sentinel.ErrInvalidResponse, out.ClientID))
	}
	return id, nil
}

func (c *Client) Name() string { return "registration" }

// Health reports the breaker position; an open breaker means fallbacks are
// being served.
func (c *Client) Health(context.Context) error {
	if state := c.BreakerState(); state != circuit.StateClosed {
		return fmt.Errorf("%w: circuit %s is %s", sentinel.ErrUnavailable, c.breaker.Name(), state)
	}
	return nil
}

// BreakerState reports the breaker position.
func (c *Client) BreakerState() circuit.State {
	return c.breaker.State()
}
