package generatereport

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/dustin/go-humanize"

	"label-compliance/internal/common/errors"
	"label-compliance/internal/common/logger"
	"label-compliance/internal/models"
)

const DefaultTitle = "Food Export Compliance Report"

// Assembler builds the compliance report once a run is ready for it.
type Assembler struct {
	renderer Renderer
	title    string
	now      func() time.Time
	logger   logger.Logger
}

func NewAssembler(renderer Renderer, title string, log logger.Logger) *Assembler {
	if title == "" {
		title = DefaultTitle
	}
	return &Assembler{
		renderer: renderer,
		title:    title,
		now:      time.Now,
		logger:   log,
	}
}

// WithClock replaces the clock used for timestamps and filenames.
func (a *Assembler) WithClock(now func() time.Time) *Assembler {
	a.now = now
	return a
}

// Assemble returns nil when ready is false. Renderer failures are reported in
// the outcome, never returned.
func (a *Assembler) Assemble(ctx context.Context, bundle ReportBundle, ready bool) *models.ReportOutcome {
	if !ready {
		return nil
	}

	verdict := bundle.Verdict
	if verdict == nil {
		verdict = models.NewFailedVerdict("")
	}
	generatedAt := a.now()

	outcome := &models.ReportOutcome{
		Filename:         "compliance_report_" + generatedAt.Format("20060102_150405") + ".pdf",
		ComplianceStatus: verdict.ComplianceStatus(),
		CoveragePercent:  verdict.CoveragePercent,
		GeneratedAt:      generatedAt,
	}

	pdfBytes, err := a.renderer.Render(ctx, ReportData{
		Title:       a.title,
		GeneratedAt: generatedAt,
		Product:     SummarizeProduct(bundle.ExtractedText),
		Regulations: bundle.Regulations,
		Verdict:     verdict,
	})
	if err != nil {
		stdErr := errors.NewReportGenerationError(err)
		outcome.Error = stdErr.Message + ": " + stdErr.Details
		a.logger.Error("Report generation failed", map[string]interface{}{"error": err.Error()})
		return outcome
	}

	outcome.Success = true
	outcome.PDFBytes = pdfBytes
	outcome.PDFBase64 = base64.StdEncoding.EncodeToString(pdfBytes)
	outcome.Size = len(pdfBytes)

	a.logger.Info("Compliance report generated", map[string]interface{}{
		"filename": outcome.Filename,
		"size":     humanize.Bytes(uint64(len(pdfBytes))),
		"status":   outcome.ComplianceStatus,
	})
	return outcome
}
