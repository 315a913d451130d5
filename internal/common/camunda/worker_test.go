package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"label-compliance/internal/common/errors"
	"label-compliance/internal/common/logger"
)

type echoInput struct {
	Question string `json:"question"`
}

type echoOutput struct {
	Answer string `json:"answer"`
}

func TestTaskHandler_Run(t *testing.T) {
	h := NewTaskHandler("echo", time.Second, func(ctx context.Context, in *echoInput) (*echoOutput, error) {
		if in.Question == "" {
			return nil, errors.NewInvalidRequestError("question is required")
		}
		return &echoOutput{Answer: "re: " + in.Question}, nil
	}, logger.NewTestLogger(t))

	out, err := h.Run(context.Background(), `{"question":"beef"}`)
	require.NoError(t, err)
	assert.Equal(t, "re: beef", out.Answer)

	_, err = h.Run(context.Background(), `{}`)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))

	_, err = h.Run(context.Background(), `{not json`)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
}

func TestExecuteWithRetry(t *testing.T) {
	retry := &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	t.Run("retries transient errors", func(t *testing.T) {
		calls := 0
		result, err := executeWithRetry(context.Background(), retry, func(ctx context.Context) (interface{}, error) {
			calls++
			if calls < 3 {
				return nil, stderrors.New("rpc error: code = Unavailable")
			}
			return "ok", nil
		}, "topology")
		require.NoError(t, err)
		assert.Equal(t, "ok", result)
		assert.Equal(t, 3, calls)
	})

	t.Run("maps exhausted connection errors", func(t *testing.T) {
		_, err := executeWithRetry(context.Background(), retry, func(ctx context.Context) (interface{}, error) {
			return nil, stderrors.New("connection refused")
		}, "topology")
		assert.True(t, errors.HasCode(err, errors.ErrCodeServiceUnavailable))
	})

	t.Run("does not retry permanent errors", func(t *testing.T) {
		calls := 0
		_, err := executeWithRetry(context.Background(), retry, func(ctx context.Context) (interface{}, error) {
			calls++
			return nil, stderrors.New("permission denied")
		}, "topology")
		assert.Equal(t, 1, calls)
		assert.True(t, errors.HasCode(err, errors.ErrCodeInternal))
	})

	t.Run("deadline maps to timeout", func(t *testing.T) {
		_, err := executeWithRetry(context.Background(), &RetryConfig{}, func(ctx context.Context) (interface{}, error) {
			return nil, stderrors.New("context deadline exceeded")
		}, "topology")
		assert.True(t, errors.HasCode(err, errors.ErrCodeServiceTimeout))
	})
}
