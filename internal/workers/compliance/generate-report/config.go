// internal/workers/compliance/generate-report/config.go
package generatereport

import (
	"time"

	"label-compliance/internal/common/config"
)

type Config struct {
	Enabled bool
	Title   string
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Enabled: cfg.Report.Enabled,
		Title:   cfg.Report.Title,
		Timeout: config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
	}
}
