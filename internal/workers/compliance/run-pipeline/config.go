// internal/workers/compliance/run-pipeline/config.go
package runpipeline

import (
	"time"

	"label-compliance/internal/common/config"
)

type Config struct {
	ReportEnabled bool
	// Timeout bounds one whole run.
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		ReportEnabled: cfg.Report.Enabled,
		Timeout:       config.GetDuration(cfg.Server.PipelineTimeout),
	}
}
