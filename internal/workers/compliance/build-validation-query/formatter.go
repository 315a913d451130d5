package buildvalidationquery

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"label-compliance/internal/common/errors"
	"label-compliance/internal/common/labels"
	"label-compliance/internal/common/validation"
	"label-compliance/internal/models"
)

const (
	noRegulations    = "No regulations found"
	defaultReference = "Regulatory_Database.pdf"
)

//go:embed validation_query.schema.json
var validationQuerySchema string

var querySchema = validation.MustCompile(validationQuerySchema)

// Formatter builds the compliance agent payload from label text and a
// regulations bundle. It holds no state.
type Formatter struct{}

func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format returns the compact JSON validation query.
func (f *Formatter) Format(extractedText string, regulations map[string]interface{}) (string, error) {
	query := f.Build(extractedText, regulations)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(query); err != nil {
		return "", errors.NewInternalError(fmt.Errorf("encode validation query: %w", err))
	}
	doc := bytes.TrimRight(buf.Bytes(), "\n")

	if result := querySchema.ValidateJSON(doc); !result.Valid {
		return "", errors.NewValidationQueryInvalidError(result.Error())
	}
	return string(doc), nil
}

// Build assembles the query without serializing it.
func (f *Formatter) Build(extractedText string, regulations map[string]interface{}) models.ValidationQuery {
	return models.ValidationQuery{
		ImageExtractionRaw: models.ImageExtractionRaw{AgentResponse: ProductDetails(extractedText)},
		RagRaw:             ragRaw(regulations),
	}
}

// ProductDetails splits label text into the product, destination and
// supplementary details the compliance agent expects.
func ProductDetails(text string) models.ProductDetails {
	details := models.ProductDetails{
		ProductName:          labels.ProductName(text),
		ExportCountryOrState: labels.Destination(text),
		SupplementaryDetails: strings.TrimSpace(text),
	}
	if lines := labels.Details(text); len(lines) > 0 {
		details.SupplementaryDetails = strings.Join(lines, ". ")
	}
	return details
}

func ragRaw(regulations map[string]interface{}) models.RagRaw {
	raw := models.RagRaw{AgentResponse: noRegulations, References: []string{defaultReference}}

	for _, key := range []string{"answer", "regulations", "response", "data"} {
		if text := strings.TrimSpace(displayText(regulations[key])); text != "" {
			raw.AgentResponse = text
			break
		}
	}

	for _, key := range []string{"sources", "references"} {
		if refs := referenceList(regulations[key]); len(refs) > 0 {
			raw.References = refs
			break
		}
	}
	return raw
}

// displayText renders a regulations value as text; maps and lists become JSON.
func displayText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case map[string]interface{}:
		if len(t) == 0 {
			return ""
		}
		return compactJSON(t)
	case []interface{}:
		if len(t) == 0 {
			return ""
		}
		return compactJSON(t)
	default:
		return fmt.Sprint(t)
	}
}

func compactJSON(v interface{}) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimRight(buf.String(), "\n")
}

// referenceList accepts a list of values or a single scalar.
func referenceList(v interface{}) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		return nonEmpty(t)
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, displayText(item))
		}
		return nonEmpty(out)
	default:
		return nonEmpty([]string{displayText(t)})
	}
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
