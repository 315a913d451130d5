// internal/workers/compliance/generate-report/models.go
package generatereport

import (
	"time"

	"label-compliance/internal/models"
)

type Input struct {
	ExtractedText string                   `json:"extractedText"`
	Regulations   models.RegulationsAnswer `json:"regulations"`
	Verdict       models.ComplianceVerdict `json:"verdict"`
	ReadyForPDF   bool                     `json:"readyForPdf"`
}

type Output struct {
	Generated bool                  `json:"generated"`
	Report    *models.ReportOutcome `json:"report,omitempty"`
}

// ReportBundle is everything the report is built from.
type ReportBundle struct {
	ExtractedText string
	Regulations   *models.RegulationsAnswer
	Verdict       *models.ComplianceVerdict
}

// ProductSummary is the product table of the report. Unknown fields read
// "Not specified".
type ProductSummary struct {
	ProductName  string
	Destination  string
	Ingredients  string
	Weight       string
	Manufacturer string
}

// ReportData is what a Renderer lays out.
type ReportData struct {
	Title       string
	GeneratedAt time.Time
	Product     ProductSummary
	Regulations *models.RegulationsAnswer
	Verdict     *models.ComplianceVerdict
}
