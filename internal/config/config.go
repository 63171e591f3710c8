package config

import (
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Scan      ScanConfig      `yaml:"scan" mapstructure:"scan"`
	Source    SourceConfig    `yaml:"source" mapstructure:"source"`
	Mistral   MistralConfig   `yaml:"mistral" mapstructure:"mistral"`
	Extractor ExtractorConfig `yaml:"extractor" mapstructure:"extractor"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Gemini    GeminiConfig    `yaml:"gemini" mapstructure:"gemini"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Validator ValidateConfig  `yaml:"validate" mapstructure:"validate"`
}

// ScanConfig configures candidate scanning and block building.
type ScanConfig struct {
	ContextLines       int    `yaml:"context_lines" mapstructure:"context_lines"`
	LookbackQID        int    `yaml:"lookback_qid" mapstructure:"lookback_qid"`
	MaxLinesPerBlock   int    `yaml:"max_lines_per_block" mapstructure:"max_lines_per_block"`
	IncludeLineNumbers bool   `yaml:"include_line_numbers" mapstructure:"include_line_numbers"`
	DocTitle           string `yaml:"doc_title" mapstructure:"doc_title"`
	MarkersFile        string `yaml:"markers_file" mapstructure:"markers_file"`
}

// SourceConfig configures document text extraction.
type SourceConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
}

// MistralConfig holds Mistral OCR settings.
type MistralConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// ExtractorConfig configures the structured rule extractor.
type ExtractorConfig struct {
	Provider          string `yaml:"provider" mapstructure:"provider"`
	MaxTokens         int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerMinute int    `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	Concurrency       int    `yaml:"concurrency" mapstructure:"concurrency"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// GeminiConfig holds Google Gemini API settings.
type GeminiConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ValidateConfig configures the dataset validator.
type ValidateConfig struct {
	ErrorPrefix       string `yaml:"error_prefix" mapstructure:"error_prefix"`
	StrictComparisons bool   `yaml:"strict_comparisons" mapstructure:"strict_comparisons"`
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
	v.SetEnvPrefix("SKIPLOGIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("scan.context_lines", 2)
	v.SetDefault("scan.lookback_qid", 40)
	v.SetDefault("scan.max_lines_per_block", 80)
	v.SetDefault("scan.include_line_numbers", true)
	v.SetDefault("scan.doc_title", "SKIP LOGIC CANDIDATE BLOCKS")
	v.SetDefault("scan.markers_file", "")
	v.SetDefault("source.provider", "native")
	v.SetDefault("source.pdftotext_path", "pdftotext")
	v.SetDefault("mistral.key", "")
	v.SetDefault("mistral.model", "mistral-ocr-latest")
	v.SetDefault("extractor.provider", "anthropic")
	v.SetDefault("extractor.max_tokens", 8192)
	v.SetDefault("extractor.requests_per_minute", 30)
	v.SetDefault("extractor.concurrency", 2)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("gemini.key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "skiplogic.db")
	v.SetDefault("validate.error_prefix", "Error_")
	v.SetDefault("validate.strict_comparisons", false)

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

// Validate checks that the settings a command mode needs are present.
// Modes: "candidates", "extract", "validate", "runs".
func (c *Config) Validate(mode string) error {
	var errs []error
	switch mode {
	case "candidates":
		errs = append(errs, c.validateScan()...)
	case "extract":
		errs = append(errs, c.validateScan()...)
		errs = append(errs, c.validateExtractor()...)
		errs = append(errs, c.validateStore()...)
	case "validate":
		if c.Validator.ErrorPrefix == "" {
			errs = append(errs, eris.New("validate.error_prefix is required"))
		}
	case "runs":
		errs = append(errs, c.validateStore()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}
	if len(errs) > 0 {
		return eris.Wrap(errors.Join(errs...), "config: invalid")
	}
	return nil
}

func (c *Config) validateScan() []error {
	var errs []error
	if c.Scan.ContextLines < 0 {
		errs = append(errs, eris.New("scan.context_lines must be >= 0"))
	}
	if c.Scan.MaxLinesPerBlock < 0 {
		errs = append(errs, eris.New("scan.max_lines_per_block must be >= 0"))
	}
	switch c.Source.Provider {
	case "native", "pdftotext", "text", "":
	case "mistral":
		if c.Mistral.Key == "" {
			errs = append(errs, eris.New("mistral.key is required"))
		}
	default:
		errs = append(errs, eris.Errorf("source.provider %q is not supported", c.Source.Provider))
	}
	return errs
}

func (c *Config) validateExtractor() []error {
	var errs []error
	switch c.Extractor.Provider {
	case "anthropic", "":
		if c.Anthropic.Key == "" {
			errs = append(errs, eris.New("anthropic.key is required"))
		}
	case "gemini":
		if c.Gemini.Key == "" {
			errs = append(errs, eris.New("gemini.key is required"))
		}
	default:
		errs = append(errs, eris.Errorf("extractor.provider %q is not supported", c.Extractor.Provider))
	}
	if c.Extractor.MaxTokens <= 0 {
		errs = append(errs, eris.New("extractor.max_tokens must be > 0"))
	}
	if c.Extractor.Concurrency < 1 || c.Extractor.Concurrency > 16 {
		errs = append(errs, eris.New("extractor.concurrency must be between 1 and 16"))
	}
	return errs
}

func (c *Config) validateStore() []error {
	var errs []error
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, eris.Errorf("store.driver %q is not supported", c.Store.Driver))
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, eris.New("store.database_url is required"))
	}
	return errs
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
