// internal/models/pipeline.go
package models

import (
	"time"

	"label-compliance/internal/common/errors"
)

type PipelineStage string

const (
	StageExtracting          PipelineStage = "EXTRACTING"
	StageFactsExtracted      PipelineStage = "FACTS_EXTRACTED"
	StageQueryingRegulations PipelineStage = "QUERYING_REGULATIONS"
	StageRegulationsFound    PipelineStage = "REGULATIONS_FOUND"
	StageRegulationsEmpty    PipelineStage = "REGULATIONS_EMPTY"
	StageValidating          PipelineStage = "VALIDATING"
	StageValidated           PipelineStage = "VALIDATED"
	StageValidationFailed    PipelineStage = "VALIDATION_FAILED"
	StageReporting           PipelineStage = "REPORTING"
	StageDone                PipelineStage = "DONE"
	StageFailed              PipelineStage = "FAILED"
)

// PipelineRequest is one label image submitted for a compliance check.
type PipelineRequest struct {
	EncodedImage string `json:"encoded_image"`
	MediaType    string `json:"media_type"`
}

type RegulationsOutcome struct {
	Success          bool            `json:"success"`
	Query            string          `json:"query"`
	Regulations      *string         `json:"regulations"`
	Sources          []string        `json:"sources"`
	Confidence       *float64        `json:"confidence"`
	ProcessingTimeMs int64           `json:"processing_time_ms"`
	ExtractedInfo    RegulationFacts `json:"extracted_info"`
	Error            string          `json:"error,omitempty"`
	FrontendMessage  string          `json:"frontend_message,omitempty"`
	ValidationError  string          `json:"validation_error,omitempty"`
}

// WithValidationError returns a copy of the outcome carrying the reason the
// downstream validation failed. The receiver is left unchanged.
func (o *RegulationsOutcome) WithValidationError(reason string) *RegulationsOutcome {
	if o == nil {
		return nil
	}
	annotated := *o
	annotated.ValidationError = reason
	return &annotated
}

type ComplianceOutcome struct {
	Success          bool               `json:"success"`
	ValidationQuery  string             `json:"validation_query"`
	ValidationResult *ComplianceVerdict `json:"validation_result"`
	ProcessingTimeMs int64              `json:"processing_time_ms"`
	ReadyForPDF      bool               `json:"ready_for_pdf"`
}

type ReportOutcome struct {
	Success          bool      `json:"success"`
	PDFBytes         []byte    `json:"-"`
	PDFBase64        string    `json:"pdf_base64,omitempty"`
	Filename         string    `json:"filename"`
	Size             int       `json:"size"`
	ComplianceStatus string    `json:"compliance_status"`
	CoveragePercent  float64   `json:"coverage_percent"`
	GeneratedAt      time.Time `json:"generated_at"`
	Error            string    `json:"error,omitempty"`
}

// PipelineResult is built once per run by the orchestrator and not mutated afterwards.
type PipelineResult struct {
	RequestID         string                `json:"request_id"`
	Success           bool                  `json:"success"`
	StatusCode        int                   `json:"status_code"`
	Stages            []PipelineStage       `json:"stages"`
	ExtractedText     string                `json:"extracted_text"`
	ProcessingTimeMs  int64                 `json:"processing_time_ms"`
	ImageMetadata     *ImageMetadata        `json:"image_metadata,omitempty"`
	RagResult         *RegulationsOutcome   `json:"rag_result,omitempty"`
	ComplianceResult  *ComplianceOutcome    `json:"compliance_result,omitempty"`
	PDFReport         *ReportOutcome        `json:"pdf_report,omitempty"`
	Error             *errors.StandardError `json:"error,omitempty"`
	NotificationError string                `json:"notification_error,omitempty"`
}

// VerdictEvent is the summary published to subscribers after validation.
type VerdictEvent struct {
	RequestID       string    `json:"request_id"`
	ProductName     string    `json:"product_name"`
	Destination     string    `json:"destination"`
	IsCompliant     bool      `json:"is_compliant"`
	CoveragePercent float64   `json:"coverage_percent"`
	MissingCount    int       `json:"missing_count"`
	ConflictCount   int       `json:"conflict_count"`
	ReportFilename  string    `json:"report_filename,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}
