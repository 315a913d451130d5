// internal/workers/compliance/parse-label-facts/handler.go
package parselabelfacts

import (
	"context"
	"fmt"

	"label-compliance/internal/common/logger"
)

const (
	TaskType = "parse-label-facts"
)

// Handler mines label facts and formats the regulations question.
type Handler struct {
	normalizer *Normalizer
	formatter  *QueryFormatter
	logger     logger.Logger
}

// NewHandler loads the configured match table, falling back to the embedded one.
func NewHandler(cfg *Config, log logger.Logger) (*Handler, error) {
	normalizer := NewDefaultNormalizer()
	if cfg.RulesPath != "" {
		table, err := LoadTableFile(cfg.RulesPath)
		if err != nil {
			return nil, err
		}
		if err := normalizer.Swap(table); err != nil {
			return nil, fmt.Errorf("compile match table %s: %w", cfg.RulesPath, err)
		}
	}

	return &Handler{
		normalizer: normalizer,
		formatter:  NewQueryFormatter(),
		logger:     log.With(map[string]interface{}{"taskType": TaskType}),
	}, nil
}

func (h *Handler) Normalizer() *Normalizer { return h.normalizer }

func (h *Handler) Formatter() *QueryFormatter { return h.formatter }

// Execute never fails on label content; it only honours ctx.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	facts := h.normalizer.ExtractFacts(input.ExtractedText)
	question := h.formatter.FormatQuestion(facts)

	h.logger.Info("Label facts extracted", map[string]interface{}{
		"countries":   len(facts.Countries),
		"states":      len(facts.States),
		"ingredients": len(facts.Ingredients),
		"products":    len(facts.Products),
		"question":    question,
	})

	return &Output{Facts: facts, Question: question}, nil
}
