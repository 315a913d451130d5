// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Server        ServerConfig            `mapstructure:"server"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Redis         RedisConfig             `mapstructure:"redis"`
	Services      ServicesConfig          `mapstructure:"services"`
	Image         ImageConfig             `mapstructure:"image"`
	Rules         RulesConfig             `mapstructure:"rules"`
	Report        ReportConfig            `mapstructure:"report"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Tracing       TracingConfig           `mapstructure:"tracing"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            int      `mapstructure:"port"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	ReadTimeout     int      `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int      `mapstructure:"write_timeout"`    // milliseconds
	PipelineTimeout int      `mapstructure:"pipeline_timeout"` // milliseconds, whole pipeline run
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	UsePlaintext   bool   `mapstructure:"use_plaintext"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// WorkerConfig holds the core settings applicable to every job worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	CacheTTL int    `mapstructure:"cache_ttl"` // milliseconds
}

// ServicesConfig holds the three external AI agent endpoints.
type ServicesConfig struct {
	Extraction  EndpointConfig `mapstructure:"extraction"`
	Regulations EndpointConfig `mapstructure:"regulations"`
	Compliance  EndpointConfig `mapstructure:"compliance"`
}

// EndpointConfig describes one agent endpoint on the generic LLM platform.
type EndpointConfig struct {
	APIURL                   string `mapstructure:"api_url"`
	AIAgentID                string `mapstructure:"ai_agent_id"`
	ConfigurationEnvironment string `mapstructure:"configuration_environment"`
	UserAgent                string `mapstructure:"user_agent"`
	Timeout                  int    `mapstructure:"timeout"` // milliseconds
	MaxAttempts              int    `mapstructure:"max_attempts"`
	RetryBaseDelay           int    `mapstructure:"retry_base_delay"` // milliseconds
	RetryMaxDelay            int    `mapstructure:"retry_max_delay"`  // milliseconds
}

type ImageConfig struct {
	MaxSizeBytes int64    `mapstructure:"max_size_bytes"`
	AllowedTypes []string `mapstructure:"allowed_types"`
}

// RulesConfig points at the keyword match table used by the fact extractor.
type RulesConfig struct {
	Path  string `mapstructure:"path"`
	Watch bool   `mapstructure:"watch"`
}

type ReportConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Title   string `mapstructure:"title"`
}

// NotificationConfig holds the verdict notification settings.
type NotificationConfig struct {
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		Region   string `mapstructure:"region"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
}

// TracingConfig selects where finished spans go: "none" or "log".
type TracingConfig struct {
	Exporter string `mapstructure:"exporter"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
