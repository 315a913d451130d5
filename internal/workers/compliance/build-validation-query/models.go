// internal/workers/compliance/build-validation-query/models.go
package buildvalidationquery

type Input struct {
	ExtractedText string                 `json:"extractedText"`
	Regulations   map[string]interface{} `json:"regulations"`
}

type Output struct {
	ValidationQuery string `json:"validationQuery"`
}
