//go:build cgo

package orgsignal

import (
	"fmt"
	"log/slog"

	"github.com/soundprediction/orgsignal/pkg/config"
	"github.com/soundprediction/orgsignal/pkg/gliner"
	"github.com/soundprediction/orgsignal/pkg/nlp"
	"github.com/soundprediction/orgsignal/pkg/rustbert"
)

// newLocalAnnotator loads a native model backend. The returned func
// releases the model.
func newLocalAnnotator(cfg config.NLPConfig, log *slog.Logger) (nlp.Annotator, func() error, error) {
	switch nlp.ProviderID(cfg.Provider) {
	case nlp.ProviderGLiNER:
		model := cfg.Model
		if model == "" {
			model = gliner.DefaultModel
		}
		client, err := gliner.NewClient(model)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", nlp.ErrAnnotatorUnavailable, err)
		}
		a := gliner.NewAnnotator(client, cfg.Labels, cfg.Threshold)
		a.SetLogger(log)
		log.Info("Loaded GLiNER model", "model", model)
		return a, func() error { client.Close(); return nil }, nil

	case nlp.ProviderRustBert:
		client := rustbert.NewClient(rustbert.Config{NERModelID: cfg.Model})
		if err := client.LoadNERModel(); err != nil {
			return nil, nil, fmt.Errorf("%w: %w", nlp.ErrAnnotatorUnavailable, err)
		}
		a := rustbert.NewAnnotator(client, cfg.Threshold)
		a.SetLogger(log)
		log.Info("Loaded rust-bert NER model", "model", cfg.Model)
		return a, func() error { client.Close(); return nil }, nil
	}
	return nil, nil, fmt.Errorf("%w: %s", nlp.ErrUnknownProvider, cfg.Provider)
}
