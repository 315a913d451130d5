// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	apperrors "label-compliance/internal/common/errors"
	"label-compliance/internal/common/logger"
	"label-compliance/internal/common/metrics"
)

// RetryPolicy controls how PostJSON retries transient upstream failures.
type RetryPolicy struct {
	MaxAttempts   int // total attempts, including the first
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	RetryStatuses []int
}

// DefaultRetryPolicy retries 429 and gateway-style 5xx three times in total.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   3,
		BaseDelay:     time.Second,
		MaxDelay:      10 * time.Second,
		RetryStatuses: []int{429, 500, 502, 503, 504},
	}
}

func (p RetryPolicy) retryable(status int) bool {
	for _, s := range p.RetryStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// backoff returns base * 2^(attempt-1), capped at MaxDelay.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

type Options struct {
	Service   string // name used in errors, logs and metrics
	Timeout   time.Duration
	Retry     RetryPolicy
	UserAgent string
	Logger    logger.Logger
	Transport http.RoundTripper
}

// Client posts JSON to one external agent endpoint. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	opts       Options
	log        logger.Logger
}

func NewClient(opts Options) *Client {
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry.MaxAttempts = 1
	}
	if len(opts.Retry.RetryStatuses) == 0 {
		opts.Retry.RetryStatuses = DefaultRetryPolicy().RetryStatuses
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{
		httpClient: &http.Client{Transport: opts.Transport},
		opts:       opts,
		log:        log.With(map[string]interface{}{"service": opts.Service}),
	}
}

// Response is a completed 2xx exchange.
type Response struct {
	StatusCode int
	Body       []byte
	Attempts   int
}

// Decode unmarshals the response body.
func (r *Response) Decode(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// PostJSON sends payload as JSON and returns the first 2xx response. Upstream
// failures come back as *errors.StandardError: SERVICE_TIMEOUT for deadlines,
// 408 and 504, SERVICE_UNAVAILABLE for everything else.
func (c *Client) PostJSON(ctx context.Context, url string, payload interface{}) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	policy := c.opts.Retry
	for attempt := 1; ; attempt++ {
		status, respBody, err := c.attempt(ctx, url, body)
		if err != nil {
			outcome := "error"
			if apperrors.HasCode(err, apperrors.ErrCodeServiceTimeout) {
				outcome = "timeout"
			}
			metrics.ExternalCalls.WithLabelValues(c.opts.Service, outcome).Inc()
			return nil, err
		}
		metrics.ExternalCalls.WithLabelValues(c.opts.Service, strconv.Itoa(status)).Inc()

		if status >= 200 && status < 300 {
			return &Response{StatusCode: status, Body: respBody, Attempts: attempt}, nil
		}

		if !policy.retryable(status) || attempt >= policy.MaxAttempts {
			return nil, c.statusError(status, respBody)
		}

		delay := policy.backoff(attempt)
		c.log.Warn("Retrying upstream request", map[string]interface{}{
			"attempt":    attempt,
			"statusCode": status,
			"delay":      delay.String(),
		})
		metrics.ExternalRetries.WithLabelValues(c.opts.Service).Inc()

		select {
		case <-ctx.Done():
			return nil, c.contextError(ctx.Err())
		case <-time.After(delay):
		}
	}
}

func (c *Client) attempt(ctx context.Context, url string, body []byte) (int, []byte, error) {
	attemptCtx := ctx
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, c.transportError(attemptCtx, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, c.transportError(attemptCtx, err)
	}
	return resp.StatusCode, respBody, nil
}

// transportError maps a failed exchange. Only deadlines become SERVICE_TIMEOUT;
// a cancelled caller context is reported as a connection failure.
func (c *Client) transportError(attemptCtx context.Context, err error) error {
	if ctxErr := attemptCtx.Err(); ctxErr != nil {
		return c.contextError(ctxErr)
	}
	if isTimeout(err) {
		return apperrors.NewServiceTimeoutError(c.opts.Service, c.opts.Timeout)
	}
	return apperrors.NewServiceConnectionError(c.opts.Service, err)
}

func (c *Client) contextError(ctxErr error) error {
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		return apperrors.NewServiceTimeoutError(c.opts.Service, c.opts.Timeout)
	}
	return apperrors.NewServiceConnectionError(c.opts.Service, ctxErr)
}

func (c *Client) statusError(status int, body []byte) error {
	if status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout {
		return apperrors.NewServiceTimeoutError(c.opts.Service, c.opts.Timeout)
	}

	var envelope struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &envelope)
	return apperrors.NewServiceError(c.opts.Service, status, envelope.Message, string(body))
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
