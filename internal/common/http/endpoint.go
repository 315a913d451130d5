package http

import (
	"label-compliance/internal/common/config"
)

// RetryPolicyFrom builds the retry policy for one agent endpoint section.
func RetryPolicyFrom(ep config.EndpointConfig) RetryPolicy {
	policy := DefaultRetryPolicy()
	if ep.MaxAttempts > 0 {
		policy.MaxAttempts = ep.MaxAttempts
	}
	if ep.RetryBaseDelay > 0 {
		policy.BaseDelay = config.GetDuration(ep.RetryBaseDelay)
	}
	if ep.RetryMaxDelay > 0 {
		policy.MaxDelay = config.GetDuration(ep.RetryMaxDelay)
	}
	return policy
}

// HealthInfo describes a configured agent endpoint. It does not probe the endpoint.
type HealthInfo struct {
	Status                   string  `json:"status"`
	Endpoint                 string  `json:"endpoint"`
	AIAgentID                string  `json:"ai_agent_id"`
	ConfigurationEnvironment string  `json:"configuration_environment"`
	Timeout                  float64 `json:"timeout"` // seconds
	MaxRetries               int     `json:"max_retries"`
}

func (c *Client) Health(endpoint, agentID, environment string) HealthInfo {
	status := "healthy"
	if endpoint == "" || agentID == "" {
		status = "unhealthy"
	}
	return HealthInfo{
		Status:                   status,
		Endpoint:                 endpoint,
		AIAgentID:                agentID,
		ConfigurationEnvironment: environment,
		Timeout:                  c.opts.Timeout.Seconds(),
		MaxRetries:               c.opts.Retry.MaxAttempts,
	}
}
