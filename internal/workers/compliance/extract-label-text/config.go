// internal/workers/compliance/extract-label-text/config.go
package extractlabeltext

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
	MaxImageSize             int64
	AllowedTypes             []string
}

func LoadConfig(cfg *config.Config) *Config {
	ep := cfg.Services.Extraction
	return &Config{
		APIURL:                   ep.APIURL,
		AIAgentID:                ep.AIAgentID,
		ConfigurationEnvironment: ep.ConfigurationEnvironment,
		UserAgent:                ep.UserAgent,
		Timeout:                  config.GetDuration(ep.Timeout),
		Retry:                    commonhttp.RetryPolicyFrom(ep),
		MaxImageSize:             cfg.Image.MaxSizeBytes,
		AllowedTypes:             cfg.Image.AllowedTypes,
	}
}
