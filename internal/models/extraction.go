// internal/models/extraction.go
package models

import "strings"

type ImageMetadata struct {
	MediaType    string `json:"media_type"`
	SizeEstimate int    `json:"size_estimate"` // decoded byte length
}

type ExtractionResult struct {
	ExtractedText    string        `json:"extracted_text"`
	ProcessingTimeMs int64         `json:"processing_time_ms"`
	ImageMetadata    ImageMetadata `json:"image_metadata"`
}

// RegulationFacts are the keyword facts found in label text. Lists are never nil.
type RegulationFacts struct {
	Countries    []string `json:"countries"`
	States       []string `json:"states"`
	Ingredients  []string `json:"ingredients"`
	Products     []string `json:"products"`
	OriginalText string   `json:"original_text"`
}

func NewRegulationFacts(originalText string) RegulationFacts {
	return RegulationFacts{
		Countries:    []string{},
		States:       []string{},
		Ingredients:  []string{},
		Products:     []string{},
		OriginalText: originalText,
	}
}

// Location is the first country, else the first state.
func (f RegulationFacts) Location() string {
	if len(f.Countries) > 0 {
		return f.Countries[0]
	}
	if len(f.States) > 0 {
		return f.States[0]
	}
	return ""
}

// Item is the first ingredient, else the first product.
func (f RegulationFacts) Item() string {
	if len(f.Ingredients) > 0 {
		return f.Ingredients[0]
	}
	if len(f.Products) > 0 {
		return f.Products[0]
	}
	return ""
}

// RegulationsAnswer is the parsed reply of the regulations agent.
// A nil Answer means no regulations were found.
type RegulationsAnswer struct {
	Answer           *string  `json:"answer"`
	Sources          []string `json:"sources"`
	Confidence       *float64 `json:"confidence"`
	ProcessingTimeMs int64    `json:"processing_time_ms"`
}

func (a *RegulationsAnswer) HasAnswer() bool {
	return a != nil && a.Answer != nil && strings.TrimSpace(*a.Answer) != ""
}

func (a *RegulationsAnswer) AnswerText() string {
	if a == nil || a.Answer == nil {
		return ""
	}
	return *a.Answer
}

// Bundle returns the regulations map consumed by the validation query builder.
func (a *RegulationsAnswer) Bundle() map[string]interface{} {
	if a == nil {
		return nil
	}
	bundle := map[string]interface{}{
		"answer":  a.AnswerText(),
		"sources": a.Sources,
	}
	if a.Confidence != nil {
		bundle["confidence"] = *a.Confidence
	}
	return bundle
}
