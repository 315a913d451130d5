package runpipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"label-compliance/internal/common/errors"
	"label-compliance/internal/common/labels"
	"label-compliance/internal/common/logger"
	"label-compliance/internal/common/metrics"
	"label-compliance/internal/common/observability"
	"label-compliance/internal/models"
	generatereport "label-compliance/internal/workers/compliance/generate-report"
)

const (
	regulationsEmptyError = "No regulations found for the specified product and destination. Please verify the product details and destination country/state."
	regulationsEmptyHint  = "Unable to find regulations for this product and destination. Please check the product information and try again."
)

type Extractor interface {
	Extract(ctx context.Context, encodedImage, mediaType string) (*models.ExtractionResult, error)
}

type FactsExtractor interface {
	ExtractFacts(text string) models.RegulationFacts
}

type QuestionFormatter interface {
	FormatQuestion(facts models.RegulationFacts) string
}

type RegulationsQuerier interface {
	Query(ctx context.Context, question string) (*models.RegulationsAnswer, error)
}

type ValidationQueryBuilder interface {
	Format(extractedText string, regulations map[string]interface{}) (string, error)
}

type ComplianceValidator interface {
	Validate(ctx context.Context, validationQuery string) (*models.ComplianceVerdict, error)
}

type ReportAssembler interface {
	Assemble(ctx context.Context, bundle generatereport.ReportBundle, ready bool) *models.ReportOutcome
}

type VerdictNotifier interface {
	NotifyVerdict(ctx context.Context, event models.VerdictEvent) error
}

// Stages are the collaborators of one run. Report and Notifier may be nil.
type Stages struct {
	Extractor    Extractor
	Facts        FactsExtractor
	Questions    QuestionFormatter
	Regulations  RegulationsQuerier
	QueryBuilder ValidationQueryBuilder
	Validator    ComplianceValidator
	Report       ReportAssembler
	Notifier     VerdictNotifier
}

// Orchestrator runs the label compliance pipeline. It holds no per-run state
// and is safe for concurrent use.
type Orchestrator struct {
	stages        Stages
	reportEnabled bool
	obs           *observability.Observability
	logger        logger.Logger
	now           func() time.Time
}

func NewOrchestrator(stages Stages, reportEnabled bool, obs *observability.Observability, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		stages:        stages,
		reportEnabled: reportEnabled && stages.Report != nil,
		obs:           obs,
		logger:        log,
		now:           time.Now,
	}
}

// run carries the context, logger and stage trail of a single execution.
// Stage outcomes are returned as values and composed into the result once.
type run struct {
	ctx       context.Context
	requestID string
	start     time.Time
	stages    []models.PipelineStage
	log       logger.Logger
}

func (r *run) enter(stage models.PipelineStage, outcome string) {
	r.stages = append(r.stages, stage)
	metrics.PipelineStages.WithLabelValues(string(stage), outcome).Inc()
}

// Run never returns an error; failures are described in the result.
func (o *Orchestrator) Run(ctx context.Context, req models.PipelineRequest) *models.PipelineResult {
	requestID := uuid.NewString()

	ctx, span := o.obs.StartSpan(ctx, "compliance.pipeline", attribute.String("request_id", requestID))
	defer span.End()

	r := &run{
		ctx:       ctx,
		requestID: requestID,
		start:     o.now(),
		stages:    []models.PipelineStage{},
		log:       o.logger.With(map[string]interface{}{"requestId": requestID}),
	}

	result := o.execute(r, req)

	status := "success"
	if !result.Success {
		status = "failure"
		span.SetStatus(codes.Error, "pipeline did not succeed")
	}
	elapsed := time.Duration(result.ProcessingTimeMs) * time.Millisecond
	span.SetAttributes(attribute.Int("status_code", result.StatusCode))
	metrics.PipelineDuration.WithLabelValues(status).Observe(elapsed.Seconds())
	o.obs.RecordRun(ctx, elapsed, status)

	r.log.Info("Pipeline finished", map[string]interface{}{
		"success":          result.Success,
		"statusCode":       result.StatusCode,
		"stages":           result.Stages,
		"processingTimeMs": result.ProcessingTimeMs,
	})
	return result
}

func (o *Orchestrator) execute(r *run, req models.PipelineRequest) *models.PipelineResult {
	extraction, stdErr := o.extract(r, req)
	if stdErr != nil {
		return &models.PipelineResult{
			RequestID:        r.requestID,
			Success:          false,
			StatusCode:       errors.HTTPStatus(stdErr),
			Stages:           r.stages,
			ProcessingTimeMs: o.now().Sub(r.start).Milliseconds(),
			Error:            stdErr,
		}
	}

	facts := o.stages.Facts.ExtractFacts(extraction.ExtractedText)
	question := o.stages.Questions.FormatQuestion(facts)
	r.enter(models.StageFactsExtracted, "ok")

	rag, answer := o.queryRegulations(r, question, facts)

	var (
		compliance        *models.ComplianceOutcome
		verdict           *models.ComplianceVerdict
		pdfReport         *models.ReportOutcome
		notificationError string
	)
	if rag.Success {
		var validationError string
		compliance, verdict, validationError = o.validate(r, extraction.ExtractedText, answer)
		if validationError != "" {
			rag = rag.WithValidationError(validationError)
		}

		if compliance != nil && compliance.ReadyForPDF && o.reportEnabled {
			pdfReport = o.report(r, extraction.ExtractedText, answer, verdict)
		}

		if verdict != nil && verdict.Success && o.stages.Notifier != nil {
			notificationError = o.notify(r, extraction.ExtractedText, verdict, pdfReport)
		}
	}
	r.enter(models.StageDone, "ok")

	metadata := extraction.ImageMetadata
	return &models.PipelineResult{
		RequestID:         r.requestID,
		Success:           rag.Success,
		StatusCode:        200,
		Stages:            r.stages,
		ExtractedText:     extraction.ExtractedText,
		ProcessingTimeMs:  o.now().Sub(r.start).Milliseconds(),
		ImageMetadata:     &metadata,
		RagResult:         rag,
		ComplianceResult:  compliance,
		PDFReport:         pdfReport,
		NotificationError: notificationError,
	}
}

// extract returns the normalized error when extraction failed.
func (o *Orchestrator) extract(r *run, req models.PipelineRequest) (*models.ExtractionResult, *errors.StandardError) {
	r.enter(models.StageExtracting, "ok")
	ctx, span := o.stageSpan(r.ctx, models.StageExtracting)
	defer span.End()

	extraction, err := o.stages.Extractor.Extract(ctx, req.EncodedImage, req.MediaType)
	if err != nil {
		stdErr := errors.Normalize(err)
		failSpan(span, err)
		r.enter(models.StageFailed, "error")
		r.log.Warn("Extraction failed", map[string]interface{}{"code": string(stdErr.Code), "error": stdErr.Message})
		return nil, stdErr
	}
	return extraction, nil
}

func (o *Orchestrator) queryRegulations(r *run, question string, facts models.RegulationFacts) (*models.RegulationsOutcome, *models.RegulationsAnswer) {
	r.enter(models.StageQueryingRegulations, "ok")
	ctx, span := o.stageSpan(r.ctx, models.StageQueryingRegulations)
	defer span.End()

	answer, err := o.stages.Regulations.Query(ctx, question)
	if err != nil {
		failSpan(span, err)
		r.log.Warn("Regulations query failed", map[string]interface{}{"error": err.Error()})
		return &models.RegulationsOutcome{
			Query:         question,
			Sources:       []string{},
			ExtractedInfo: facts,
			Error:         errors.Normalize(err).Message,
		}, nil
	}

	if !answer.HasAnswer() {
		r.enter(models.StageRegulationsEmpty, "empty")
		return &models.RegulationsOutcome{
			Query:            question,
			Sources:          []string{},
			ProcessingTimeMs: answer.ProcessingTimeMs,
			ExtractedInfo:    facts,
			Error:            regulationsEmptyError,
			FrontendMessage:  regulationsEmptyHint,
		}, answer
	}

	r.enter(models.StageRegulationsFound, "ok")
	sources := answer.Sources
	if sources == nil {
		sources = []string{}
	}
	return &models.RegulationsOutcome{
		Success:          true,
		Query:            question,
		Regulations:      answer.Answer,
		Sources:          sources,
		Confidence:       answer.Confidence,
		ProcessingTimeMs: answer.ProcessingTimeMs,
		ExtractedInfo:    facts,
	}, answer
}

// validate returns a nil outcome when no verdict was obtained, and the failure
// reason when validation did not succeed.
func (o *Orchestrator) validate(r *run, extractedText string, answer *models.RegulationsAnswer) (*models.ComplianceOutcome, *models.ComplianceVerdict, string) {
	r.enter(models.StageValidating, "ok")
	ctx, span := o.stageSpan(r.ctx, models.StageValidating)
	defer span.End()

	failed := func(reason string, err error) string {
		failSpan(span, err)
		r.enter(models.StageValidationFailed, "error")
		r.log.Warn("Validation failed", map[string]interface{}{"reason": reason})
		return reason
	}

	query, err := o.stages.QueryBuilder.Format(extractedText, answer.Bundle())
	if err != nil {
		return nil, nil, failed(errors.Normalize(err).Message, err)
	}

	verdict, err := o.stages.Validator.Validate(ctx, query)
	if err != nil {
		return nil, nil, failed(errors.Normalize(err).Message, err)
	}

	outcome := &models.ComplianceOutcome{
		Success:          verdict.Success,
		ValidationQuery:  query,
		ValidationResult: verdict,
		ProcessingTimeMs: verdict.ProcessingTimeMs,
		ReadyForPDF:      verdict.Success,
	}
	if !verdict.Success {
		return outcome, verdict, failed(verdict.Error, nil)
	}

	r.enter(models.StageValidated, "ok")
	span.SetAttributes(attribute.Bool("compliant", verdict.IsCompliant))
	return outcome, verdict, ""
}

func (o *Orchestrator) report(r *run, extractedText string, answer *models.RegulationsAnswer, verdict *models.ComplianceVerdict) *models.ReportOutcome {
	r.enter(models.StageReporting, "ok")
	ctx, span := o.stageSpan(r.ctx, models.StageReporting)
	defer span.End()

	outcome := o.stages.Report.Assemble(ctx, generatereport.ReportBundle{
		ExtractedText: extractedText,
		Regulations:   answer,
		Verdict:       verdict,
	}, true)
	if outcome != nil && !outcome.Success {
		span.SetStatus(codes.Error, outcome.Error)
	}
	return outcome
}

// notify returns the publish error message, or "" when the event was sent.
func (o *Orchestrator) notify(r *run, extractedText string, verdict *models.ComplianceVerdict, pdfReport *models.ReportOutcome) string {
	ctx, span := o.obs.StartSpan(r.ctx, "compliance.notify")
	defer span.End()

	event := models.VerdictEvent{
		RequestID:       r.requestID,
		ProductName:     labels.ProductName(extractedText),
		Destination:     labels.Destination(extractedText),
		IsCompliant:     verdict.IsCompliant,
		CoveragePercent: verdict.CoveragePercent,
		MissingCount:    len(verdict.MissingItems),
		ConflictCount:   len(verdict.Conflicts),
		Timestamp:       o.now().UTC(),
	}
	if pdfReport != nil && pdfReport.Success {
		event.ReportFilename = pdfReport.Filename
	}

	if err := o.stages.Notifier.NotifyVerdict(ctx, event); err != nil {
		failSpan(span, err)
		r.log.Warn("Verdict notification failed", map[string]interface{}{"error": err.Error()})
		return err.Error()
	}
	return ""
}

func (o *Orchestrator) stageSpan(ctx context.Context, stage models.PipelineStage) (context.Context, trace.Span) {
	return o.obs.StartSpan(ctx, "compliance.stage", attribute.String("stage", string(stage)))
}

func failSpan(span trace.Span, err error) {
	if err == nil {
		span.SetStatus(codes.Error, "stage failed")
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
