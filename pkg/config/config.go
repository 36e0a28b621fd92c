package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// NLP configuration
	NLP NLPConfig `mapstructure:"nlp"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// Alert configuration
	Alert AlertConfig `mapstructure:"alert"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`

	// Extraction configuration
	Extraction ExtractionConfig `mapstructure:"extraction"`

	// Categorization configuration
	Categorization CategorizationConfig `mapstructure:"categorization"`

	// Preprocess configuration
	Preprocess PreprocessConfig `mapstructure:"preprocess"`
}

// AlertConfig holds configuration for alerting
type AlertConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	SMTPHost string   `mapstructure:"smtp_host" validate:"required_if=Enabled true"`
	SMTPPort int      `mapstructure:"smtp_port" validate:"omitempty,min=1,max=65535"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval" validate:"min=0"` // in seconds
	Timeout          int     `mapstructure:"timeout" validate:"min=0"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio" validate:"min=0,max=1"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=text json"`

	// File, when set, receives the log instead of stderr and is rotated
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"min=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"min=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"min=0"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"min=0,max=65535"`
	Mode string `mapstructure:"mode" validate:"omitempty,oneof=debug release test"` // gin mode
}

// NLPConfig selects and configures the annotation backend
type NLPConfig struct {
	// Provider is one of rules, http, gliner, rustbert
	Provider string `mapstructure:"provider" validate:"required,oneof=rules http gliner rustbert"`

	// Model is a model path or hub ID for the local backends
	Model string `mapstructure:"model"`

	// TokenizerPath is the tokenizer file for gliner when Model is a path
	TokenizerPath string `mapstructure:"tokenizer_path"`

	// Endpoint is the annotation service URL for the http backend
	Endpoint string `mapstructure:"endpoint" validate:"required_if=Provider http"`

	// ByteOffsets marks an http service that reports byte rather than
	// character offsets
	ByteOffsets bool `mapstructure:"byte_offsets"`

	// Timeout bounds a single annotation call, in seconds
	Timeout int `mapstructure:"timeout" validate:"min=0"`

	// Labels are the entity labels requested from gliner
	Labels []string `mapstructure:"labels"`

	// Threshold is the minimum entity score kept from model backends
	Threshold float64 `mapstructure:"threshold" validate:"min=0,max=1"`
}

// ExtractionConfig tunes the entity extractor heuristics
type ExtractionConfig struct {
	ContextWindow         int      `mapstructure:"context_window" validate:"min=0"`
	RelationContextWindow int      `mapstructure:"relation_context_window" validate:"min=0"`
	ProximityMaxGap       int      `mapstructure:"proximity_max_gap" validate:"min=0"`
	KnownOrganizations    []string `mapstructure:"known_organizations"`

	// Concurrency bounds batch processing; zero reads ORGSIGNAL_CONCURRENCY
	Concurrency int `mapstructure:"concurrency" validate:"min=0"`
}

// CategorizationConfig tunes the organization categorizer
type CategorizationConfig struct {
	Threshold       float64 `mapstructure:"threshold" validate:"min=0,max=1"`
	SectorTablePath string  `mapstructure:"sector_table_path"`
	OverridesPath   string  `mapstructure:"overrides_path"`
}

// PreprocessConfig tunes input validation
type PreprocessConfig struct {
	MaxLength int `mapstructure:"max_length" validate:"min=1"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	overrideWithEnv(config)

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// Default returns the built-in configuration without consulting viper state
// or the environment.
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: "info", Format: "text", MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 28},
		Server: ServerConfig{Host: "localhost", Port: 8080, Mode: "debug"},
		NLP: NLPConfig{
			Provider:  "rules",
			Timeout:   30,
			Labels:    []string{"organization", "person", "location", "country", "city"},
			Threshold: 0.5,
		},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:          false,
			MaxRequests:      1,
			Interval:         60,
			Timeout:          30,
			ReadyToTripRatio: 0.6,
		},
		Extraction: ExtractionConfig{
			ContextWindow:         50,
			RelationContextWindow: 30,
			ProximityMaxGap:       100,
		},
		Categorization: CategorizationConfig{Threshold: 0.3},
		Preprocess:     PreprocessConfig{MaxLength: 50000},
	}
}

// Validate checks struct constraints on the configuration
func Validate(config *Config) error {
	v := validator.New()
	if err := v.Struct(config); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	d := Default()

	// Log defaults
	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.format", d.Log.Format)
	viper.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	viper.SetDefault("log.max_backups", d.Log.MaxBackups)
	viper.SetDefault("log.max_age_days", d.Log.MaxAgeDays)

	// Server defaults
	viper.SetDefault("server.host", d.Server.Host)
	viper.SetDefault("server.port", d.Server.Port)
	viper.SetDefault("server.mode", d.Server.Mode)

	viper.SetDefault("nlp.provider", d.NLP.Provider)
	viper.SetDefault("nlp.timeout", d.NLP.Timeout)
	viper.SetDefault("nlp.labels", d.NLP.Labels)
	viper.SetDefault("nlp.threshold", d.NLP.Threshold)
	viper.SetDefault("nlp.byte_offsets", d.NLP.ByteOffsets)

	viper.SetDefault("circuit_breaker.enabled", d.CircuitBreaker.Enabled)
	viper.SetDefault("circuit_breaker.max_requests", d.CircuitBreaker.MaxRequests)
	viper.SetDefault("circuit_breaker.interval", d.CircuitBreaker.Interval)
	viper.SetDefault("circuit_breaker.timeout", d.CircuitBreaker.Timeout)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", d.CircuitBreaker.ReadyToTripRatio)

	viper.SetDefault("extraction.context_window", d.Extraction.ContextWindow)
	viper.SetDefault("extraction.relation_context_window", d.Extraction.RelationContextWindow)
	viper.SetDefault("extraction.proximity_max_gap", d.Extraction.ProximityMaxGap)

	viper.SetDefault("categorization.threshold", d.Categorization.Threshold)
	viper.SetDefault("preprocess.max_length", d.Preprocess.MaxLength)

	// Telemetry defaults
	home, err := os.UserHomeDir()
	if err == nil {
		defaultPath := fmt.Sprintf("%s/.orgsignal/telemetry", home)
		viper.SetDefault("telemetry.parquet_path", defaultPath)
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if provider := os.Getenv("ORGSIGNAL_NLP_PROVIDER"); provider != "" {
		config.NLP.Provider = provider
	}
	if endpoint := os.Getenv("ORGSIGNAL_NLP_ENDPOINT"); endpoint != "" {
		config.NLP.Endpoint = endpoint
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	// Telemetry settings
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}
