// internal/workers/compliance/extract-label-text/models.go
package extractlabeltext

import "label-compliance/internal/models"

type Input struct {
	EncodedImage string `json:"encodedImage"`
	MediaType    string `json:"mediaType"`
}

type Output struct {
	ExtractedText    string               `json:"extractedText"`
	ProcessingTimeMs int64                `json:"processingTimeMs"`
	ImageMetadata    models.ImageMetadata `json:"imageMetadata"`
}

const extractionQuery = "Extract the text in the image"

type mediaData struct {
	EncodedMedia string `json:"encoded_media"`
	MediaType    string `json:"media_type"`
}

type extractionRequest struct {
	AIAgentID                string      `json:"ai_agent_id"`
	UserQuery                string      `json:"user_query"`
	ConfigurationEnvironment string      `json:"configuration_environment"`
	MediaData                []mediaData `json:"media_data"`
}
