// internal/workers/compliance/build-validation-query/handler.go
package buildvalidationquery

import (
	"context"

	"label-compliance/internal/common/logger"
)

const (
	TaskType = "build-validation-query"
)

type Handler struct {
	formatter *Formatter
	logger    logger.Logger
}

func NewHandler(log logger.Logger) *Handler {
	return &Handler{
		formatter: NewFormatter(),
		logger:    log.With(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Formatter() *Formatter { return h.formatter }

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query, err := h.formatter.Format(input.ExtractedText, input.Regulations)
	if err != nil {
		h.logger.Error("Validation query rejected", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	h.logger.Debug("Validation query built", map[string]interface{}{"length": len(query)})
	return &Output{ValidationQuery: query}, nil
}
