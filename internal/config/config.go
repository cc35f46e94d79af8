// Package config loads application configuration from config.yaml and
// the DISCOVERY_* environment, and owns global logger setup.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/discovery-cli/internal/errs"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Discovery  DiscoveryConfig  `yaml:"discovery" mapstructure:"discovery"`
	Docs       DocsConfig       `yaml:"docs" mapstructure:"docs"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key               string  `yaml:"key" mapstructure:"key"`
	Model             string  `yaml:"model" mapstructure:"model"`
	MaxTokens         int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature       float64 `yaml:"temperature" mapstructure:"temperature"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// PerplexityConfig holds Perplexity API settings for web search.
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// DiscoveryConfig tunes the discovery pipeline.
type DiscoveryConfig struct {
	RelevanceThreshold    float64 `yaml:"relevance_threshold" mapstructure:"relevance_threshold"`
	CustomerMaxCandidates int     `yaml:"customer_max_candidates" mapstructure:"customer_max_candidates"`
	PartnerMaxCandidates  int     `yaml:"partner_max_candidates" mapstructure:"partner_max_candidates"`
	MaxResultsPerQuery    int     `yaml:"max_results_per_query" mapstructure:"max_results_per_query"`
	CacheSize             int     `yaml:"cache_size" mapstructure:"cache_size"`
}

// DocsConfig configures document text extraction.
type DocsConfig struct {
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int `yaml:"port" mapstructure:"port"`
	MaxConcurrency int `yaml:"max_concurrency" mapstructure:"max_concurrency"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DISCOVERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_concurrency", 4)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("anthropic.temperature", 0.2)
	v.SetDefault("anthropic.requests_per_second", 2)
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("discovery.relevance_threshold", 0.3)
	v.SetDefault("discovery.customer_max_candidates", 20)
	v.SetDefault("discovery.partner_max_candidates", 10)
	v.SetDefault("discovery.max_results_per_query", 5)
	v.SetDefault("discovery.cache_size", 1024)
	v.SetDefault("docs.pdftotext_path", "pdftotext")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings required for a discovery run. Missing
// API keys come back tagged so the CLI can print setup guidance.
func (c *Config) Validate() error {
	if c.Anthropic.Key == "" {
		return errs.WithCategory(
			eris.New("config: anthropic.key is required"),
			errs.CategoryAPIKey,
		)
	}
	if c.Perplexity.Key == "" {
		return errs.WithCategory(
			eris.New("config: perplexity.key is required"),
			errs.CategoryAPIKey,
		)
	}
	if c.Discovery.RelevanceThreshold < 0 || c.Discovery.RelevanceThreshold > 1 {
		return eris.Errorf("config: discovery.relevance_threshold %v outside [0,1]",
			c.Discovery.RelevanceThreshold)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
