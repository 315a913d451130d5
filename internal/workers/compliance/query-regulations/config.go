// internal/workers/compliance/query-regulations/config.go
package queryregulations

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
	CacheEnabled             bool
}

func LoadConfig(cfg *config.Config) *Config {
	ep := cfg.Services.Regulations
	return &Config{
		APIURL:                   ep.APIURL,
		AIAgentID:                ep.AIAgentID,
		ConfigurationEnvironment: ep.ConfigurationEnvironment,
		UserAgent:                ep.UserAgent,
		Timeout:                  config.GetDuration(ep.Timeout),
		Retry:                    commonhttp.RetryPolicyFrom(ep),
		CacheEnabled:             cfg.Redis.Enabled,
	}
}
