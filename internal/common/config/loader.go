// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"label-compliance/internal/common/validation"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Task types with a job worker section in config.
var TaskTypes = []string{
	"extract-label-text",
	"parse-label-facts",
	"query-regulations",
	"build-validation-query",
	"validate-compliance",
	"generate-compliance-report",
	"label-compliance-check",
}

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml and applies env overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	// SERVICES_EXTRACTION_API_URL overrides services.extraction.api_url
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found from the working directory upwards.
func loadEnvFile() string {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills endpoint settings from short env names when the file left them empty.
func overrideEmptyConfig(cfg *Config) {
	overrides := []struct {
		target *string
		env    string
	}{
		{&cfg.Services.Extraction.APIURL, "EXTRACTION_API_URL"},
		{&cfg.Services.Extraction.AIAgentID, "EXTRACTION_AGENT_ID"},
		{&cfg.Services.Regulations.APIURL, "REGULATIONS_API_URL"},
		{&cfg.Services.Regulations.AIAgentID, "REGULATIONS_AGENT_ID"},
		{&cfg.Services.Compliance.APIURL, "COMPLIANCE_API_URL"},
		{&cfg.Services.Compliance.AIAgentID, "COMPLIANCE_AGENT_ID"},
		{&cfg.Redis.Password, "REDIS_PASSWORD"},
		{&cfg.Notifications.SNS.TopicARN, "SNS_TOPIC_ARN"},
	}

	for _, o := range overrides {
		if *o.target == "" {
			if val := os.Getenv(o.env); val != "" {
				*o.target = val
			}
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "label-compliance"
	}

	// Server defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 300000
	}
	if cfg.Server.PipelineTimeout == 0 {
		cfg.Server.PipelineTimeout = 240000
	}

	// Camunda defaults
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	// Endpoint defaults: extraction and compliance do heavier model work than the RAG lookup
	applyEndpointDefaults(&cfg.Services.Extraction, 60000)
	applyEndpointDefaults(&cfg.Services.Regulations, 30000)
	applyEndpointDefaults(&cfg.Services.Compliance, 60000)

	if cfg.Image.MaxSizeBytes == 0 {
		cfg.Image.MaxSizeBytes = 5 * 1024 * 1024
	}
	if len(cfg.Image.AllowedTypes) == 0 {
		cfg.Image.AllowedTypes = []string{"jpeg", "jpg", "png"}
	}

	if cfg.Redis.CacheTTL == 0 {
		cfg.Redis.CacheTTL = 3600000
	}

	if cfg.Report.Title == "" {
		cfg.Report.Title = "Food Export Compliance Report"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Tracing.Exporter == "" {
		cfg.Tracing.Exporter = "none"
	}

	if cfg.Workers == nil {
		cfg.Workers = make(map[string]WorkerConfig)
	}
	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 120000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

func applyEndpointDefaults(ep *EndpointConfig, timeout int) {
	if ep.Timeout == 0 {
		ep.Timeout = timeout
	}
	if ep.MaxAttempts == 0 {
		ep.MaxAttempts = 3
	}
	if ep.RetryBaseDelay == 0 {
		ep.RetryBaseDelay = 1000
	}
	if ep.RetryMaxDelay == 0 {
		ep.RetryMaxDelay = 10000
	}
	if ep.ConfigurationEnvironment == "" {
		ep.ConfigurationEnvironment = "DEV"
	}
	if ep.UserAgent == "" {
		ep.UserAgent = "label-compliance/1.0"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	endpoints := map[string]EndpointConfig{
		"extraction":  cfg.Services.Extraction,
		"regulations": cfg.Services.Regulations,
		"compliance":  cfg.Services.Compliance,
	}
	for name, ep := range endpoints {
		if ep.APIURL == "" {
			return fmt.Errorf("services.%s.api_url is required", name)
		}
		if !validation.ValidateURL(ep.APIURL) {
			return fmt.Errorf("services.%s.api_url is not a valid http url: %q", name, ep.APIURL)
		}
		if ep.AIAgentID == "" {
			return fmt.Errorf("services.%s.ai_agent_id is required", name)
		}
	}

	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}

	if cfg.Redis.Enabled && cfg.Redis.Address == "" {
		return fmt.Errorf("redis.address is required when redis is enabled")
	}

	if cfg.Notifications.SNS.Enabled {
		if cfg.Notifications.SNS.TopicARN == "" {
			return fmt.Errorf("notifications.sns.topic_arn is required when sns is enabled")
		}
		if cfg.Notifications.SNS.Region == "" {
			return fmt.Errorf("notifications.sns.region is required when sns is enabled")
		}
	}

	if cfg.Image.MaxSizeBytes < 0 {
		return fmt.Errorf("image.max_size_bytes must not be negative")
	}

	if cfg.Tracing.Exporter != "none" && cfg.Tracing.Exporter != "log" {
		return fmt.Errorf("tracing.exporter must be one of none, log: %q", cfg.Tracing.Exporter)
	}

	for name := range cfg.Workers {
		if !slices.Contains(TaskTypes, name) {
			return fmt.Errorf("workers.%s is not a known task type", name)
		}
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       120000,
		MaxRetries:    3,
	}
}
