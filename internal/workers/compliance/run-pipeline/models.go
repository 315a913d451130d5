// internal/workers/compliance/run-pipeline/models.go
package runpipeline

import "label-compliance/internal/models"

type Input struct {
	EncodedImage string `json:"encodedImage"`
	MediaType    string `json:"mediaType"`
}

type Output struct {
	RequestID        string                 `json:"requestId"`
	Success          bool                   `json:"success"`
	ComplianceStatus string                 `json:"complianceStatus,omitempty"`
	Result           *models.PipelineResult `json:"result"`
}
