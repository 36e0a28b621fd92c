//go:build !cgo

package orgsignal

import (
	"fmt"
	"log/slog"

	"github.com/soundprediction/orgsignal/pkg/config"
	"github.com/soundprediction/orgsignal/pkg/nlp"
)

func newLocalAnnotator(cfg config.NLPConfig, _ *slog.Logger) (nlp.Annotator, func() error, error) {
	return nil, nil, fmt.Errorf("%s: %w", cfg.Provider, nlp.ErrCGORequired)
}
