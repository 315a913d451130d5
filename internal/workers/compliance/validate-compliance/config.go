// internal/workers/compliance/validate-compliance/config.go
package validatecompliance

import (
	"time"

	"label-compliance/internal/common/config"
	commonhttp "label-compliance/internal/common/http"
)

type Config struct {
	APIURL                   string
	AIAgentID                string
	ConfigurationEnvironment string
	UserAgent                string
	Timeout                  time.Duration
	Retry                    commonhttp.RetryPolicy
}

func LoadConfig(cfg *config.Config) *Config {
	ep := cfg.Services.Compliance
	return &Config{
		APIURL:                   ep.APIURL,
		AIAgentID:                ep.AIAgentID,
		ConfigurationEnvironment: ep.ConfigurationEnvironment,
		UserAgent:                ep.UserAgent,
		Timeout:                  config.GetDuration(ep.Timeout),
		Retry:                    commonhttp.RetryPolicyFrom(ep),
	}
}
