package orgsignal

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/soundprediction/orgsignal"
	"github.com/soundprediction/orgsignal/pkg/alert"
	"github.com/soundprediction/orgsignal/pkg/config"
	"github.com/soundprediction/orgsignal/pkg/logger"
	"github.com/soundprediction/orgsignal/pkg/metrics"
	"github.com/soundprediction/orgsignal/pkg/nlp"
	"github.com/soundprediction/orgsignal/pkg/telemetry"
	"github.com/spf13/cobra"
)

// app holds what a command needs once configuration is loaded.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *metrics.Registry
	pipeline *orgsignal.Pipeline

	closers []func() error
}

// addNLPFlags registers the backend flags shared by extract and server.
func addNLPFlags(cmd *cobra.Command) {
	cmd.Flags().String("provider", "", "annotation backend (rules, http, gliner, rustbert)")
	cmd.Flags().String("endpoint", "", "annotation service URL for the http backend")
	cmd.Flags().String("model", "", "model path or hub ID for gliner and rustbert")
	cmd.Flags().Float64("nlp-threshold", 0, "minimum entity score kept from model backends")
	cmd.Flags().Bool("circuit-breaker", false, "guard the backend with a circuit breaker")
	cmd.Flags().String("telemetry-parquet-path", "", "directory for parquet error telemetry")
}

// loadConfig loads viper configuration and applies explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Lookup("provider") != nil {
		if flags.Changed("provider") {
			cfg.NLP.Provider, _ = flags.GetString("provider")
		}
		if flags.Changed("endpoint") {
			cfg.NLP.Endpoint, _ = flags.GetString("endpoint")
		}
		if flags.Changed("model") {
			cfg.NLP.Model, _ = flags.GetString("model")
		}
		if flags.Changed("nlp-threshold") {
			cfg.NLP.Threshold, _ = flags.GetFloat64("nlp-threshold")
		}
		if flags.Changed("circuit-breaker") {
			cfg.CircuitBreaker.Enabled, _ = flags.GetBool("circuit-breaker")
		}
		if flags.Changed("telemetry-parquet-path") {
			cfg.Telemetry.ParquetPath, _ = flags.GetString("telemetry-parquet-path")
		}
	}

	if flags.Lookup("concurrency") != nil && flags.Changed("concurrency") {
		cfg.Extraction.Concurrency, _ = flags.GetInt("concurrency")
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newBaseApp loads configuration and builds the logger only.
func newBaseApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, metrics: metrics.DefaultRegistry()}
	a.logger = a.buildLogger()
	slog.SetDefault(a.logger)
	return a, nil
}

// newApp builds the logger, the annotation backend and the pipeline.
func newApp(cmd *cobra.Command) (*app, error) {
	a, err := newBaseApp(cmd)
	if err != nil {
		return nil, err
	}

	noteCapabilities(a)
	annotator, err := buildAnnotator(a.cfg, a.logger, a.addCloser)
	if err != nil {
		a.close()
		return nil, err
	}

	a.pipeline, err = orgsignal.NewPipelineFromConfig(a.cfg, annotator, a.metrics, a.logger)
	if err != nil {
		a.close()
		return nil, err
	}
	a.logger.Debug("Pipeline ready", "backend", annotator.Name())
	return a, nil
}

func (a *app) addCloser(fn func() error) {
	a.closers = append(a.closers, fn)
}

// buildLogger writes to stderr or a rotated file and, when a telemetry path
// is configured, also persists error records to parquet.
func (a *app) buildLogger() *slog.Logger {
	logCfg := a.cfg.Log
	w := logger.NewWriter(logCfg)
	if logCfg.File != "" {
		logCfg.Format = "json"
		if c, ok := w.(io.Closer); ok {
			a.addCloser(c.Close)
		}
	}
	handler := logger.NewHandler(w, logCfg)

	if path := a.cfg.Telemetry.ParquetPath; path != "" {
		ph, err := telemetry.NewParquetHandler(handler, path, 0)
		if err != nil {
			slog.New(handler).Warn("Telemetry disabled", "path", path, "error", err)
		} else {
			handler = ph
			a.addCloser(ph.Close)
		}
	}
	return slog.New(handler)
}

// close releases backends, flushes telemetry and closes log files in
// reverse registration order.
func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// buildAnnotator constructs the configured backend, optionally behind a
// circuit breaker. Native backends register their Close with addCloser.
func buildAnnotator(cfg *config.Config, log *slog.Logger, addCloser func(func() error)) (nlp.Annotator, error) {
	var (
		annotator nlp.Annotator
		err       error
	)
	switch nlp.ProviderID(cfg.NLP.Provider) {
	case nlp.ProviderGLiNER, nlp.ProviderRustBert:
		var closeFn func() error
		annotator, closeFn, err = newLocalAnnotator(cfg.NLP, log)
		if err == nil {
			addCloser(closeFn)
		}
	default:
		annotator, err = nlp.NewAnnotator(cfg.NLP)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %q annotator: %w", cfg.NLP.Provider, err)
	}

	if cfg.CircuitBreaker.Enabled {
		annotator = nlp.NewCircuitBreakerAnnotator(annotator, cfg.CircuitBreaker, alert.New(cfg.Alert, log), log)
	}
	return annotator, nil
}
