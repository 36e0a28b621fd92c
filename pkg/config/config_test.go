package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))
	assert.Equal(t, "rules", cfg.NLP.Provider)
	assert.Equal(t, 0.3, cfg.Categorization.Threshold)
	assert.Equal(t, 50000, cfg.Preprocess.MaxLength)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.NLP.Provider = "spacy" }},
		{"http without endpoint", func(c *Config) { c.NLP.Provider = "http" }},
		{"threshold above one", func(c *Config) { c.Categorization.Threshold = 1.5 }},
		{"zero max length", func(c *Config) { c.Preprocess.MaxLength = 0 }},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"bad gin mode", func(c *Config) { c.Server.Mode = "prod" }},
		{"alert without smtp host", func(c *Config) { c.Alert.Enabled = true }},
		{"negative concurrency", func(c *Config) { c.Extraction.Concurrency = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestLoad(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("ORGSIGNAL_NLP_PROVIDER", "http")
	t.Setenv("ORGSIGNAL_NLP_ENDPOINT", "http://annotator:8000")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("TELEMETRY_PARQUET_PATH", "/tmp/orgsignal-telemetry")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http", cfg.NLP.Provider)
	assert.Equal(t, "http://annotator:8000", cfg.NLP.Endpoint)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/tmp/orgsignal-telemetry", cfg.Telemetry.ParquetPath)
	assert.Equal(t, Default().Extraction, cfg.Extraction)
}

func TestLoadRejectsInvalid(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("categorization.threshold", 2.0)

	_, err := Load()
	assert.Error(t, err)
}
