package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `
services:
  extraction:
    api_url: http://llm.local/extract
    ai_agent_id: extract-agent
  regulations:
    api_url: http://llm.local/rag
    ai_agent_id: ${TEST_RAG_AGENT}
  compliance:
    api_url: http://llm.local/compliance
    ai_agent_id: compliance-agent
    timeout: 90000
workers:
  query-regulations:
    enabled: false
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	t.Setenv("TEST_RAG_AGENT", "rag-agent")

	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "rag-agent", cfg.Services.Regulations.AIAgentID)

	assert.Equal(t, 60000, cfg.Services.Extraction.Timeout)
	assert.Equal(t, 30000, cfg.Services.Regulations.Timeout)
	assert.Equal(t, 90000, cfg.Services.Compliance.Timeout)
	assert.Equal(t, 3, cfg.Services.Regulations.MaxAttempts)
	assert.Equal(t, "DEV", cfg.Services.Extraction.ConfigurationEnvironment)

	assert.Equal(t, int64(5*1024*1024), cfg.Image.MaxSizeBytes)
	assert.Equal(t, []string{"jpeg", "jpg", "png"}, cfg.Image.AllowedTypes)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "none", cfg.Tracing.Exporter)

	assert.False(t, GetWorkerConfig(cfg, "query-regulations").Enabled)
	assert.True(t, GetWorkerConfig(cfg, "extract-label-text").Enabled)
	assert.Equal(t, 120000, GetWorkerConfig(cfg, "query-regulations").Timeout)
}

func TestLoadFromFile_EnvFallbacks(t *testing.T) {
	t.Setenv("COMPLIANCE_AGENT_ID", "from-env")

	body := `
services:
  extraction: {api_url: http://a.local, ai_agent_id: a}
  regulations: {api_url: http://b.local, ai_agent_id: b}
  compliance: {api_url: http://c.local}
`
	cfg, err := LoadFromFile(writeConfig(t, body))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Services.Compliance.AIAgentID)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing endpoint",
			body:    "services:\n  extraction: {api_url: http://a.local, ai_agent_id: a}\n",
			wantErr: "api_url is required",
		},
		{
			name:    "redis without address",
			body:    minimalConfig + "redis:\n  enabled: true\n",
			wantErr: "redis.address is required",
		},
		{
			name:    "sns without topic",
			body:    minimalConfig + "notifications:\n  sns:\n    enabled: true\n    region: eu-west-1\n",
			wantErr: "topic_arn is required",
		},
		{
			name:    "malformed url",
			body:    strings.Replace(minimalConfig, "http://llm.local/rag", "llm.local/rag", 1),
			wantErr: "not a valid http url",
		},
		{
			name:    "camunda without broker",
			body:    minimalConfig + "camunda:\n  enabled: true\n",
			wantErr: "broker_address is required",
		},
		{
			name:    "unknown trace exporter",
			body:    minimalConfig + "tracing:\n  exporter: zipkin\n",
			wantErr: "tracing.exporter must be one of none, log",
		},
		{
			name:    "unknown worker",
			body:    minimalConfig + "  query-regulation:\n    enabled: false\n",
			wantErr: "workers.query-regulation is not a known task type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_RAG_AGENT", "rag-agent")
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}
