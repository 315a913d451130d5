package httpserver

import (
	"context"
	"net/http"
	"time"

	"label-compliance/internal/models"
)

func (s *Server) handleExtractText(w http.ResponseWriter, req *http.Request) error {
	var body models.PipelineRequest
	if err := s.decode(w, req, extractTextSchema, &body); err != nil {
		return err
	}

	ctx := req.Context()
	if s.opts.PipelineTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.PipelineTimeout)
		defer cancel()
	}

	result := s.deps.Pipeline.Run(ctx, body)
	status := result.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, result)
	return nil
}

type formatRegulationsQueryRequest struct {
	ExtractedText string `json:"extracted_text"`
}

type formatRegulationsQueryResponse struct {
	FormattedQuery string                 `json:"formatted_query"`
	ExtractedInfo  models.RegulationFacts `json:"extracted_info"`
	OriginalText   string                 `json:"original_text"`
}

func (s *Server) handleFormatRegulationsQuery(w http.ResponseWriter, req *http.Request) error {
	var body formatRegulationsQueryRequest
	if err := s.decode(w, req, formatRegulationsQuerySchema, &body); err != nil {
		return err
	}

	facts := s.deps.Facts.ExtractFacts(body.ExtractedText)
	writeSuccess(w, formatRegulationsQueryResponse{
		FormattedQuery: s.deps.Questions.FormatQuestion(facts),
		ExtractedInfo:  facts,
		OriginalText:   body.ExtractedText,
	})
	return nil
}

type regulationsQueryRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleRegulationsQuery(w http.ResponseWriter, req *http.Request) error {
	var body regulationsQueryRequest
	if err := s.decode(w, req, regulationsQuerySchema, &body); err != nil {
		return err
	}

	answer, err := s.deps.Regulations.Query(req.Context(), body.Query)
	if err != nil {
		return err
	}
	writeSuccess(w, answer)
	return nil
}

type formatValidationQueryRequest struct {
	ExtractedText string                 `json:"extracted_text"`
	RagResponse   map[string]interface{} `json:"rag_response"`
}

type formatValidationQueryResponse struct {
	FormattedQuery        string                 `json:"formatted_query"`
	OriginalExtractedText string                 `json:"original_extracted_text"`
	OriginalRagResponse   map[string]interface{} `json:"original_rag_response"`
}

func (s *Server) handleFormatValidationQuery(w http.ResponseWriter, req *http.Request) error {
	var body formatValidationQueryRequest
	if err := s.decode(w, req, formatValidationQuerySchema, &body); err != nil {
		return err
	}

	query, err := s.deps.QueryBuilder.Format(body.ExtractedText, body.RagResponse)
	if err != nil {
		return err
	}
	writeSuccess(w, formatValidationQueryResponse{
		FormattedQuery:        query,
		OriginalExtractedText: body.ExtractedText,
		OriginalRagResponse:   body.RagResponse,
	})
	return nil
}

type validateComplianceRequest struct {
	ValidationQuery string `json:"validation_query"`
}

type validateComplianceResponse struct {
	ValidationResult *models.ComplianceVerdict `json:"validation_result"`
	ProcessingTimeMs int64                     `json:"processing_time_ms"`
}

func (s *Server) handleValidateCompliance(w http.ResponseWriter, req *http.Request) error {
	var body validateComplianceRequest
	if err := s.decode(w, req, validateComplianceSchema, &body); err != nil {
		return err
	}

	start := time.Now()
	verdict, err := s.deps.Compliance.Validate(req.Context(), body.ValidationQuery)
	if err != nil {
		return err
	}
	writeSuccess(w, validateComplianceResponse{
		ValidationResult: verdict,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	})
	return nil
}

// serviceHealth reports an agent endpoint's configuration. Nothing is probed.
func (s *Server) serviceHealth(reporter HealthReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if reporter == nil {
			writeError(w, http.StatusServiceUnavailable, "service not configured", "ServiceUnavailable")
			return
		}
		info := reporter.Health()
		status := http.StatusOK
		if info.Status != "healthy" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, envelope{Status: "success", StatusCode: status, Data: info})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"version":   s.opts.Version,
		"timestamp": time.Now().UTC(),
	})
}

// handleReady runs every readiness check with a short deadline.
func (s *Server) handleReady(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(s.deps.ReadinessChecks))
	ready := true
	for name, check := range s.deps.ReadinessChecks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	status := http.StatusOK
	state := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "not ready"
	}
	writeJSON(w, status, map[string]interface{}{
		"status": state,
		"checks": checks,
	})
}
