// internal/workers/compliance/run-pipeline/handler.go
package runpipeline

import (
	"context"

	"label-compliance/internal/common/logger"
	"label-compliance/internal/models"
)

const (
	TaskType = "label-compliance-check"
)

// Handler runs the whole pipeline as one job.
type Handler struct {
	config       *Config
	orchestrator *Orchestrator
	logger       logger.Logger
}

func NewHandler(cfg *Config, orchestrator *Orchestrator, log logger.Logger) *Handler {
	return &Handler{
		config:       cfg,
		orchestrator: orchestrator,
		logger:       log.With(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Orchestrator() *Orchestrator { return h.orchestrator }

// Execute fails the job only when extraction failed; every later failure is
// part of the returned result.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	result := h.orchestrator.Run(ctx, models.PipelineRequest{
		EncodedImage: input.EncodedImage,
		MediaType:    input.MediaType,
	})
	if result.Error != nil {
		return nil, result.Error
	}

	out := &Output{
		RequestID: result.RequestID,
		Success:   result.Success,
		Result:    result,
	}
	if result.ComplianceResult != nil && result.ComplianceResult.ValidationResult != nil && result.ComplianceResult.Success {
		out.ComplianceStatus = result.ComplianceResult.ValidationResult.ComplianceStatus()
	}
	return out, nil
}
