// internal/workers/compliance/generate-report/handler.go
package generatereport

import (
	"context"

	"label-compliance/internal/common/logger"
)

const (
	TaskType = "generate-compliance-report"
)

type Handler struct {
	assembler *Assembler
	logger    logger.Logger
}

func NewHandler(cfg *Config, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		assembler: NewAssembler(NewPDFRenderer(), cfg.Title, log),
		logger:    log,
	}
}

func (h *Handler) Assembler() *Assembler { return h.assembler }

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := h.assembler.Assemble(ctx, ReportBundle{
		ExtractedText: input.ExtractedText,
		Regulations:   &input.Regulations,
		Verdict:       &input.Verdict,
	}, input.ReadyForPDF)

	if report == nil {
		h.logger.Debug("Report skipped, run not ready", nil)
	}
	return &Output{Generated: report != nil && report.Success, Report: report}, nil
}
