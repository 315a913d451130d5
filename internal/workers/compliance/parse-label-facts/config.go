// internal/workers/compliance/parse-label-facts/config.go
package parselabelfacts

import (
	"time"

	"label-compliance/internal/common/config"
)

type Config struct {
	RulesPath string // empty uses the embedded table
	Watch     bool
	Timeout   time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		RulesPath: cfg.Rules.Path,
		Watch:     cfg.Rules.Watch,
		Timeout:   config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
	}
}
