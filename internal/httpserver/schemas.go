package httpserver

import "label-compliance/internal/common/validation"

var (
	extractTextSchema = validation.MustCompile(`{
		"type": "object",
		"required": ["encoded_image"],
		"properties": {
			"encoded_image": {"type": "string"},
			"media_type": {"type": "string"}
		}
	}`)

	formatRegulationsQuerySchema = validation.MustCompile(`{
		"type": "object",
		"required": ["extracted_text"],
		"properties": {"extracted_text": {"type": "string"}}
	}`)

	regulationsQuerySchema = validation.MustCompile(`{
		"type": "object",
		"required": ["query"],
		"properties": {"query": {"type": "string", "minLength": 1}}
	}`)

	formatValidationQuerySchema = validation.MustCompile(`{
		"type": "object",
		"required": ["extracted_text", "rag_response"],
		"properties": {
			"extracted_text": {"type": "string"},
			"rag_response": {"type": "object"}
		}
	}`)

	validateComplianceSchema = validation.MustCompile(`{
		"type": "object",
		"required": ["validation_query"],
		"properties": {"validation_query": {"type": "string", "minLength": 1}}
	}`)
)
