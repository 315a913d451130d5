// internal/workers/compliance/build-validation-query/config.go
package buildvalidationquery

import (
	"time"

	"label-compliance/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Timeout: config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
	}
}
