// internal/workers/compliance/extract-label-text/handler.go
package extractlabeltext

import (
	"context"
	"strings"
	"time"

	"label-compliance/internal/common/errors"
	commonhttp "label-compliance/internal/common/http"
	"label-compliance/internal/common/logger"
	"label-compliance/internal/models"
)

const (
	TaskType = "extract-label-text"
)

// Handler validates a label image and asks the vision agent for its text.
type Handler struct {
	config     *Config
	client     *commonhttp.Client
	strategies []Strategy
	logger     logger.Logger
}

func NewHandler(cfg *Config, log logger.Logger) *Handler {
	return &Handler{
		config: cfg,
		client: commonhttp.NewClient(commonhttp.Options{
			Service:   "extraction",
			Timeout:   cfg.Timeout,
			Retry:     cfg.Retry,
			UserAgent: cfg.UserAgent,
			Logger:    log,
		}),
		strategies: DefaultStrategies,
		logger:     log.With(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := h.Extract(ctx, input.EncodedImage, input.MediaType)
	if err != nil {
		return nil, err
	}
	return &Output{
		ExtractedText:    result.ExtractedText,
		ProcessingTimeMs: result.ProcessingTimeMs,
		ImageMetadata:    result.ImageMetadata,
	}, nil
}

// Extract returns the trimmed label text. Input problems are reported before any
// network call.
func (h *Handler) Extract(ctx context.Context, encodedImage, mediaType string) (*models.ExtractionResult, error) {
	start := time.Now()

	data, detected, err := validateImage(encodedImage, h.config.MaxImageSize, h.config.AllowedTypes)
	if err != nil {
		h.logger.Warn("Image validation failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	if mediaType == "" {
		mediaType = "image/" + detected
	}

	req := extractionRequest{
		AIAgentID:                h.config.AIAgentID,
		UserQuery:                extractionQuery,
		ConfigurationEnvironment: h.config.ConfigurationEnvironment,
		MediaData: []mediaData{{
			EncodedMedia: encodedPayload(encodedImage),
			MediaType:    mediaType,
		}},
	}

	resp, err := h.client.PostJSON(ctx, h.config.APIURL, req)
	if err != nil {
		h.logger.Error("Extraction request failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	if msg, ok := envelopeError(resp.Body); ok {
		return nil, errors.NewTextExtractionError("LLM service error: " + msg)
	}

	text, strategy, err := probeText(resp.Body, h.strategies)
	if err != nil {
		return nil, errors.NewTextExtractionError("Invalid response from LLM service")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.NewTextExtractionError("No text found in image")
	}

	elapsed := time.Since(start).Milliseconds()
	h.logger.Info("Label text extracted", map[string]interface{}{
		"strategy":         strategy,
		"textLength":       len(text),
		"imageBytes":       len(data),
		"attempts":         resp.Attempts,
		"processingTimeMs": elapsed,
	})

	return &models.ExtractionResult{
		ExtractedText:    text,
		ProcessingTimeMs: elapsed,
		ImageMetadata: models.ImageMetadata{
			MediaType:    mediaType,
			SizeEstimate: len(data),
		},
	}, nil
}

// Health reports the configured extraction endpoint.
func (h *Handler) Health() commonhttp.HealthInfo {
	return h.client.Health(h.config.APIURL, h.config.AIAgentID, h.config.ConfigurationEnvironment)
}

// encodedPayload drops a data URI prefix; the agent expects bare base64.
func encodedPayload(encoded string) string {
	s := strings.TrimSpace(encoded)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			return s[i+1:]
		}
	}
	return s
}
