// internal/workers/compliance/validate-compliance/models.go
package validatecompliance

import "label-compliance/internal/models"

type Input struct {
	ValidationQuery string `json:"validationQuery"`
}

type Output struct {
	Verdict models.ComplianceVerdict `json:"verdict"`
	// ComplianceStatus is COMPLIANT or NON-COMPLIANT, for gateway conditions.
	ComplianceStatus string `json:"complianceStatus"`
}

type complianceRequest struct {
	AIAgentID                string `json:"ai_agent_id"`
	UserQuery                string `json:"user_query"`
	ConfigurationEnvironment string `json:"configuration_environment"`
}
