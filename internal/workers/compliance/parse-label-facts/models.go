// internal/workers/compliance/parse-label-facts/models.go
package parselabelfacts

import "label-compliance/internal/models"

type Input struct {
	ExtractedText string `json:"extractedText"`
}

type Output struct {
	Facts    models.RegulationFacts `json:"facts"`
	Question string                 `json:"question"`
}
