// internal/models/compliance.go
package models

// ValidationQuery is the wire payload sent to the compliance agent.
// Every key is always present.
type ValidationQuery struct {
	ImageExtractionRaw ImageExtractionRaw `json:"image_extraction_raw"`
	RagRaw             RagRaw             `json:"rag_raw"`
}

type ImageExtractionRaw struct {
	AgentResponse ProductDetails `json:"agent_response"`
}

type ProductDetails struct {
	ProductName          string `json:"product_name"`
	ExportCountryOrState string `json:"export_country_or_state"`
	SupplementaryDetails string `json:"supplementary_details"`
}

type RagRaw struct {
	AgentResponse string   `json:"agent_response"`
	References    []string `json:"references"`
}

type MissingItem struct {
	Key             string `json:"key"`
	RequirementText string `json:"requirement_text"`
}

type PartialMatch struct {
	Key             string `json:"key"`
	RequirementText string `json:"requirement_text"`
	Observed        string `json:"observed"`
}

type Conflict struct {
	Type     string `json:"type"`
	Detail   string `json:"detail"`
	Observed string `json:"observed"`
}

// ComplianceVerdict is the parsed compliance agent answer. Success is false when
// the reply could not be interpreted; Error then says why.
type ComplianceVerdict struct {
	Success          bool                   `json:"success"`
	Error            string                 `json:"error,omitempty"`
	IsCompliant      bool                   `json:"is_compliant"`
	CoveragePercent  float64                `json:"coverage_percent"`
	MatchedCount     int                    `json:"matched_count"`
	PartialCount     int                    `json:"partial_count"`
	TotalRequired    int                    `json:"total_required"`
	MissingItems     []MissingItem          `json:"missing_items"`
	PartialMatches   []PartialMatch         `json:"partial_matches"`
	Conflicts        []Conflict             `json:"conflicts"`
	Evidence         map[string]interface{} `json:"evidence"`
	Notes            string                 `json:"notes"`
	References       []string               `json:"references"`
	ProcessingTimeMs int64                  `json:"processing_time_ms"`
}

// NewFailedVerdict returns an unsuccessful verdict with every collection initialised.
func NewFailedVerdict(reason string) *ComplianceVerdict {
	return &ComplianceVerdict{
		Success:        false,
		Error:          reason,
		MissingItems:   []MissingItem{},
		PartialMatches: []PartialMatch{},
		Conflicts:      []Conflict{},
		Evidence:       map[string]interface{}{},
		References:     []string{},
	}
}

// ComplianceStatus is the report headline for the verdict.
func (v *ComplianceVerdict) ComplianceStatus() string {
	if v != nil && v.IsCompliant {
		return "COMPLIANT"
	}
	return "NON-COMPLIANT"
}
