// internal/workers/compliance/validate-compliance/handler.go
package validatecompliance

import (
	"context"
	"time"

	commonhttp "label-compliance/internal/common/http"
	"label-compliance/internal/common/logger"
	"label-compliance/internal/models"
)

const (
	TaskType = "validate-compliance"
)

// Handler submits validation queries to the compliance agent.
type Handler struct {
	config *Config
	client *commonhttp.Client
	logger logger.Logger
}

func NewHandler(cfg *Config, log logger.Logger) *Handler {
	return &Handler{
		config: cfg,
		client: commonhttp.NewClient(commonhttp.Options{
			Service:   "compliance",
			Timeout:   cfg.Timeout,
			Retry:     cfg.Retry,
			UserAgent: cfg.UserAgent,
			Logger:    log,
		}),
		logger: log.With(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	verdict, err := h.Validate(ctx, input.ValidationQuery)
	if err != nil {
		return nil, err
	}
	return &Output{Verdict: *verdict, ComplianceStatus: verdict.ComplianceStatus()}, nil
}

// Validate returns transport failures as errors; every reply, readable or
// not, comes back as a verdict.
func (h *Handler) Validate(ctx context.Context, validationQuery string) (*models.ComplianceVerdict, error) {
	start := time.Now()

	resp, err := h.client.PostJSON(ctx, h.config.APIURL, complianceRequest{
		AIAgentID:                h.config.AIAgentID,
		UserQuery:                validationQuery,
		ConfigurationEnvironment: h.config.ConfigurationEnvironment,
	})
	if err != nil {
		h.logger.Error("Compliance request failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	verdict := parseVerdict(resp.Body)
	verdict.ProcessingTimeMs = time.Since(start).Milliseconds()

	if !verdict.Success {
		h.logger.Warn("Compliance reply not usable", map[string]interface{}{"reason": verdict.Error})
		return verdict, nil
	}

	h.logger.Info("Compliance verdict received", map[string]interface{}{
		"compliant":       verdict.IsCompliant,
		"coveragePercent": verdict.CoveragePercent,
		"missing":         len(verdict.MissingItems),
		"conflicts":       len(verdict.Conflicts),
	})
	return verdict, nil
}

func (h *Handler) Health() commonhttp.HealthInfo {
	return h.client.Health(h.config.APIURL, h.config.AIAgentID, h.config.ConfigurationEnvironment)
}
