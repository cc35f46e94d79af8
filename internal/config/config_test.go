package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/discovery-cli/internal/errs"
)

func chtemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Server.MaxConcurrency)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, int64(4096), cfg.Anthropic.MaxTokens)
	assert.InDelta(t, 0.2, cfg.Anthropic.Temperature, 0.001)
	assert.Equal(t, "https://api.perplexity.ai", cfg.Perplexity.BaseURL)
	assert.Equal(t, "sonar-pro", cfg.Perplexity.Model)
	assert.InDelta(t, 0.3, cfg.Discovery.RelevanceThreshold, 0.001)
	assert.Equal(t, 20, cfg.Discovery.CustomerMaxCandidates)
	assert.Equal(t, 10, cfg.Discovery.PartnerMaxCandidates)
	assert.Equal(t, 5, cfg.Discovery.MaxResultsPerQuery)
	assert.Equal(t, 1024, cfg.Discovery.CacheSize)
	assert.Equal(t, "pdftotext", cfg.Docs.PdfToTextPath)
}

func TestLoadFromYAML(t *testing.T) {
	chtemp(t)

	yaml := `
log:
  level: debug
  format: console
server:
  port: 9090
discovery:
  relevance_threshold: 0.5
  customer_max_candidates: 30
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.InDelta(t, 0.5, cfg.Discovery.RelevanceThreshold, 0.001)
	assert.Equal(t, 30, cfg.Discovery.CustomerMaxCandidates)
	// Defaults still apply for unset values
	assert.Equal(t, 10, cfg.Discovery.PartnerMaxCandidates)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	chtemp(t)

	yaml := `
log:
  level: debug
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("DISCOVERY_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chtemp(t)

	t.Setenv("DISCOVERY_SERVER_PORT", "3000")
	t.Setenv("DISCOVERY_ANTHROPIC_KEY", "sk-ant-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "sk-ant-test", cfg.Anthropic.Key)
}

func TestValidate_AllPresent(t *testing.T) {
	cfg := &Config{}
	cfg.Anthropic.Key = "sk-ant-key"
	cfg.Perplexity.Key = "pplx-key"
	cfg.Discovery.RelevanceThreshold = 0.3

	assert.NoError(t, cfg.Validate())
}

func TestValidate_MissingAnthropicKey(t *testing.T) {
	cfg := &Config{}
	cfg.Perplexity.Key = "pplx-key"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.key is required")
	assert.Equal(t, errs.CategoryAPIKey, errs.CategoryOf(err))
}

func TestValidate_MissingPerplexityKey(t *testing.T) {
	cfg := &Config{}
	cfg.Anthropic.Key = "sk-ant-key"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "perplexity.key is required")
	assert.Equal(t, errs.CategoryAPIKey, errs.CategoryOf(err))
}

func TestValidate_ThresholdRange(t *testing.T) {
	cfg := &Config{}
	cfg.Anthropic.Key = "sk-ant-key"
	cfg.Perplexity.Key = "pplx-key"
	cfg.Discovery.RelevanceThreshold = 1.5

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relevance_threshold")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
