// Package httpserver exposes the compliance pipeline and its stages over HTTP.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"label-compliance/internal/common/errors"
	commonhttp "label-compliance/internal/common/http"
	"label-compliance/internal/common/logger"
	"label-compliance/internal/common/validation"
	"label-compliance/internal/models"
)

type Pipeline interface {
	Run(ctx context.Context, req models.PipelineRequest) *models.PipelineResult
}

type HealthReporter interface {
	Health() commonhttp.HealthInfo
}

type FactsExtractor interface {
	ExtractFacts(text string) models.RegulationFacts
}

type QuestionFormatter interface {
	FormatQuestion(facts models.RegulationFacts) string
}

type RegulationsService interface {
	HealthReporter
	Query(ctx context.Context, question string) (*models.RegulationsAnswer, error)
}

type QueryBuilder interface {
	Format(extractedText string, regulations map[string]interface{}) (string, error)
}

type ComplianceService interface {
	HealthReporter
	Validate(ctx context.Context, validationQuery string) (*models.ComplianceVerdict, error)
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type Dependencies struct {
	Pipeline        Pipeline
	Extraction      HealthReporter
	Facts           FactsExtractor
	Questions       QuestionFormatter
	Regulations     RegulationsService
	QueryBuilder    QueryBuilder
	Compliance      ComplianceService
	ReadinessChecks map[string]ReadinessCheck
}

type Options struct {
	AllowedOrigins  []string
	PipelineTimeout time.Duration
	MaxBodyBytes    int64
	Version         string
}

type Server struct {
	deps   Dependencies
	opts   Options
	logger logger.Logger
}

const defaultMaxBodyBytes = 16 << 20

func NewRouter(deps Dependencies, opts Options, log logger.Logger) http.Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	s := &Server{deps: deps, opts: opts, logger: log}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Use(s.requestLogger)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	mux.Get("/health", s.handleHealth)
	mux.Get("/ready", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())

	mux.Route("/images", func(rt chi.Router) {
		rt.Post("/extract-text", s.wrap(s.handleExtractText))
		rt.Get("/health", s.serviceHealth(deps.Extraction))
	})
	mux.Route("/rag", func(rt chi.Router) {
		rt.Post("/format-query", s.wrap(s.handleFormatRegulationsQuery))
		rt.Post("/query", s.wrap(s.handleRegulationsQuery))
		rt.Get("/health", s.serviceHealth(deps.Regulations))
	})
	mux.Route("/validation", func(rt chi.Router) {
		rt.Post("/format-query", s.wrap(s.handleFormatValidationQuery))
		rt.Post("/validate-compliance", s.wrap(s.handleValidateCompliance))
		rt.Get("/health", s.serviceHealth(deps.Compliance))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap renders returned errors as the standard error envelope.
func (s *Server) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			status := errors.HTTPStatus(err)
			message := err.Error()
			if stdErr, ok := errors.AsStandardError(err); ok {
				message = stdErr.Message
				if stdErr.Code == errors.ErrCodeInvalidRequest && stdErr.Details != "" {
					message = stdErr.Details
				}
			}
			if status >= http.StatusInternalServerError {
				s.logger.Error("Request failed", map[string]interface{}{
					"path":  req.URL.Path,
					"error": err.Error(),
				})
			}
			writeError(w, status, message, errors.ErrorType(err))
		}
	}
}

type errorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type envelope struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Data       interface{} `json:"data,omitempty"`
	Error      *errorBody  `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, envelope{Status: "success", StatusCode: http.StatusOK, Data: data})
}

func writeError(w http.ResponseWriter, status int, message, errType string) {
	writeJSON(w, status, envelope{
		Status:     "error",
		StatusCode: status,
		Error:      &errorBody{Message: message, Type: errType},
	})
}

// decode reads the body, checks it against schema and unmarshals it into v.
func (s *Server) decode(w http.ResponseWriter, req *http.Request, schema *validation.Schema, v interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, s.opts.MaxBodyBytes))
	if err != nil {
		return errors.NewInvalidRequestError(fmt.Sprintf("failed to read request body: %v", err))
	}
	if len(body) == 0 {
		return errors.NewInvalidRequestError("request body is required")
	}

	result := schema.ValidateJSON(body)
	if !result.Valid {
		return errors.NewInvalidRequestError(result.Error())
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.NewInvalidRequestError(fmt.Sprintf("invalid JSON: %v", err))
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		s.logger.Info("HTTP request", map[string]interface{}{
			"method":     req.Method,
			"path":       req.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"durationMs": time.Since(start).Milliseconds(),
			"requestId":  middleware.GetReqID(req.Context()),
		})
	})
}
