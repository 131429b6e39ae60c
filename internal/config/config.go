package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "trainpulse/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Data    DataConfig    `yaml:"data" envconfig:"DATA"`
	Report  ReportConfig  `yaml:"report" envconfig:"REPORT"`
	Chart   ChartConfig   `yaml:"chart" envconfig:"CHART"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"text" validate:"oneof=text json"`
}

// DataConfig controls how input rows are cleaned and coerced
type DataConfig struct {
	DateFormat   string `yaml:"date_format" envconfig:"DATE_FORMAT" default:"2006-01-02" validate:"required"`
	ImputeScores bool   `yaml:"impute_scores" envconfig:"IMPUTE_SCORES" default:"false"`
}

// ReportConfig controls report content and output formats
type ReportConfig struct {
	Title               string  `yaml:"title" envconfig:"TITLE" default:"Intern Training Progress Report" validate:"required"`
	TopPerformers       int     `yaml:"top_performers" envconfig:"TOP_PERFORMERS" default:"3" validate:"min=1,max=50"`
	CompletionThreshold float64 `yaml:"completion_threshold" envconfig:"COMPLETION_THRESHOLD" default:"50" validate:"min=0,max=100"`
	Formats             string  `yaml:"formats" envconfig:"FORMATS" default:"pdf"`
}

// ChartConfig controls chart rendering
type ChartConfig struct {
	Width  int `yaml:"width" envconfig:"WIDTH" default:"1000" validate:"min=200,max=4000"`
	Height int `yaml:"height" envconfig:"HEIGHT" default:"500" validate:"min=100,max=4000"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"reports"`
}

// Load loads configuration from environment variables and an optional config
// file. Environment variables (TRAINPULSE_ prefix) take precedence over file
// values, file values over struct-tag defaults.
func Load(configFile string) (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process("TRAINPULSE", &cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	// Load from config file if it exists
	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileConfig, err := loadFromFile(configFile)
			if err != nil {
				return nil, apperrors.NewConfigError("failed to load config from file", err).
					WithContext("path", configFile)
			}
			cfg = mergeConfigs(*fileConfig, cfg)
		} else if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError("config file").WithContext("path", configFile)
		} else {
			return nil, apperrors.NewConfigError("failed to stat config file", err).
				WithContext("path", configFile)
		}
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, apperrors.NewConfigError("config validation failed", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence).
// envconfig applies struct-tag defaults, so a field still at its default is
// replaced by a non-zero file value.
func mergeConfigs(fileConfig, envConfig Config) Config {
	merged := envConfig

	if !isEnvSet("TRAINPULSE_LOGGING_LEVEL") && fileConfig.Logging.Level != "" {
		merged.Logging.Level = fileConfig.Logging.Level
	}
	if !isEnvSet("TRAINPULSE_LOGGING_FORMAT") && fileConfig.Logging.Format != "" {
		merged.Logging.Format = fileConfig.Logging.Format
	}
	if !isEnvSet("TRAINPULSE_DATA_DATE_FORMAT") && fileConfig.Data.DateFormat != "" {
		merged.Data.DateFormat = fileConfig.Data.DateFormat
	}
	if !isEnvSet("TRAINPULSE_DATA_IMPUTE_SCORES") && fileConfig.Data.ImputeScores {
		merged.Data.ImputeScores = true
	}
	if !isEnvSet("TRAINPULSE_REPORT_TITLE") && fileConfig.Report.Title != "" {
		merged.Report.Title = fileConfig.Report.Title
	}
	if !isEnvSet("TRAINPULSE_REPORT_TOP_PERFORMERS") && fileConfig.Report.TopPerformers != 0 {
		merged.Report.TopPerformers = fileConfig.Report.TopPerformers
	}
	if !isEnvSet("TRAINPULSE_REPORT_COMPLETION_THRESHOLD") && fileConfig.Report.CompletionThreshold != 0 {
		merged.Report.CompletionThreshold = fileConfig.Report.CompletionThreshold
	}
	if !isEnvSet("TRAINPULSE_REPORT_FORMATS") && fileConfig.Report.Formats != "" {
		merged.Report.Formats = fileConfig.Report.Formats
	}
	if !isEnvSet("TRAINPULSE_CHART_WIDTH") && fileConfig.Chart.Width != 0 {
		merged.Chart.Width = fileConfig.Chart.Width
	}
	if !isEnvSet("TRAINPULSE_CHART_HEIGHT") && fileConfig.Chart.Height != 0 {
		merged.Chart.Height = fileConfig.Chart.Height
	}
	if !isEnvSet("TRAINPULSE_PATHS_OUTPUT_DIR") && fileConfig.Paths.OutputDir != "" {
		merged.Paths.OutputDir = fileConfig.Paths.OutputDir
	}

	return merged
}

func isEnvSet(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

// validate checks the assembled configuration against struct tags
func (c *Config) validate() error {
	return validator.New().Struct(c)
}

// ExportFormats returns the configured output formats as a normalized list.
func (c *Config) ExportFormats() []string {
	parts := strings.Split(c.Report.Formats, ",")
	formats := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			formats = append(formats, p)
		}
	}
	return formats
}

// LogLevel converts the configured level string to a slog.Level.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds a slog.Logger for the configured level and format.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel()}
	if c.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
