// internal/workers/compliance/query-regulations/models.go
package queryregulations

import "label-compliance/internal/models"

type Input struct {
	Question string `json:"question"`
}

type Output struct {
	Found       bool                     `json:"found"`
	Regulations models.RegulationsAnswer `json:"regulations"`
}

type regulationsRequest struct {
	AIAgentID                string `json:"ai_agent_id"`
	UserQuery                string `json:"user_query"`
	ConfigurationEnvironment string `json:"configuration_environment"`
}
