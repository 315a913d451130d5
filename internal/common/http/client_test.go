package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "label-compliance/internal/common/errors"
	"label-compliance/internal/common/metrics"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func fastPolicy(attempts int) RetryPolicy {
	p := DefaultRetryPolicy()
	p.MaxAttempts = attempts
	p.BaseDelay = time.Millisecond
	p.MaxDelay = 5 * time.Millisecond
	return p
}

func newTestClient(timeout time.Duration, attempts int) *Client {
	return NewClient(Options{
		Service:   "test",
		Timeout:   timeout,
		Retry:     fastPolicy(attempts),
		UserAgent: "label-compliance-test",
	})
}

func TestPostJSON_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "label-compliance-test", r.Header.Get("User-Agent"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "agent-1", body["ai_agent_id"])

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	defer server.Close()

	resp, err := newTestClient(time.Second, 3).PostJSON(context.Background(), server.URL, map[string]string{"ai_agent_id": "agent-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Attempts)

	var out map[string]string
	require.NoError(t, resp.Decode(&out))
	assert.Equal(t, "success", out["status"])
}

func TestPostJSON_RetriesTransientStatuses(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	resp, err := newTestClient(time.Second, 3).PostJSON(context.Background(), server.URL, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Attempts)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPostJSON_StatusErrors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		expectedCalls int32
		expectedCode  apperrors.ErrorCode
		expectedMsg   string
	}{
		{"500 exhausts retries", 500, `{"message":"upstream broke"}`, 3, apperrors.ErrCodeServiceUnavailable, "upstream broke"},
		{"429 exhausts retries", 429, ``, 3, apperrors.ErrCodeServiceUnavailable, "HTTP 429"},
		{"504 maps to timeout", 504, ``, 3, apperrors.ErrCodeServiceTimeout, "timed out"},
		{"400 is not retried", 400, `bad`, 1, apperrors.ErrCodeServiceUnavailable, "HTTP 400"},
		{"408 maps to timeout without retry", 408, ``, 1, apperrors.ErrCodeServiceTimeout, "timed out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(time.Second, 3).PostJSON(context.Background(), server.URL, struct{}{})
			require.Error(t, err)

			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.expectedCode, stdErr.Code)
			assert.Contains(t, stdErr.Message, tt.expectedMsg)
			assert.Equal(t, tt.expectedCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestPostJSON_ServiceErrorCarriesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`no such agent`))
	}))
	defer server.Close()

	_, err := newTestClient(time.Second, 3).PostJSON(context.Background(), server.URL, struct{}{})
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, 404, stdErr.Metadata["status_code"])
	assert.Equal(t, "no such agent", stdErr.Metadata["response_body"])
}

func TestPostJSON_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := NewClient(Options{Service: "slow-agent", Timeout: 50 * time.Millisecond, Retry: fastPolicy(3)})
	timeouts := metrics.ExternalCalls.WithLabelValues("slow-agent", "timeout")
	before := counterValue(t, timeouts)

	_, err := client.PostJSON(context.Background(), server.URL, struct{}{})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeServiceTimeout))
	assert.Equal(t, before+1, counterValue(t, timeouts))
}

func TestPostJSON_ContextEndsDuringBackoff(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	slowRetry := fastPolicy(3)
	slowRetry.BaseDelay = 10 * time.Second
	slowRetry.MaxDelay = 10 * time.Second
	client := NewClient(Options{Service: "test", Timeout: time.Second, Retry: slowRetry})

	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
		code apperrors.ErrorCode
	}{
		{
			name: "deadline exceeded",
			ctx: func() (context.Context, context.CancelFunc) {
				return context.WithTimeout(context.Background(), 50*time.Millisecond)
			},
			code: apperrors.ErrCodeServiceTimeout,
		},
		{
			name: "cancelled by caller",
			ctx: func() (context.Context, context.CancelFunc) {
				ctx, cancel := context.WithCancel(context.Background())
				time.AfterFunc(50*time.Millisecond, cancel)
				return ctx, cancel
			},
			code: apperrors.ErrCodeServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			atomic.StoreInt32(&calls, 0)
			ctx, cancel := tt.ctx()
			defer cancel()

			start := time.Now()
			_, err := client.PostJSON(ctx, server.URL, struct{}{})
			assert.Less(t, time.Since(start), 5*time.Second)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, stdErr.Code)
		})
	}
}

func TestPostJSON_CancelledBeforeSend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(time.Second, 1).PostJSON(ctx, server.URL, struct{}{})
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeServiceUnavailable, stdErr.Code)
	assert.Contains(t, stdErr.Details, context.Canceled.Error())
}

func TestPostJSON_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(time.Second, 3).PostJSON(context.Background(), url, struct{}{})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeServiceUnavailable))
}

func TestRetryPolicy_Backoff(t *testing.T) {
	p := RetryPolicy{BaseDelay: time.Second, MaxDelay: 10 * time.Second}

	assert.Equal(t, 1*time.Second, p.backoff(1))
	assert.Equal(t, 2*time.Second, p.backoff(2))
	assert.Equal(t, 4*time.Second, p.backoff(3))
	assert.Equal(t, 8*time.Second, p.backoff(4))
	assert.Equal(t, 10*time.Second, p.backoff(5))
	assert.Equal(t, 10*time.Second, p.backoff(12))
}
