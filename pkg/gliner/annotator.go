package gliner

import (
	"context"
	"log/slog"

	"github.com/soundprediction/orgsignal/pkg/nlp"
)

// DefaultModel is loaded when no model is configured.
const DefaultModel = "urchade/gliner_multi-v2.1"

// DefaultLabels are the zero-shot labels requested when none are configured.
var DefaultLabels = []string{"organization", "person", "location", "country", "city"}

// entityPredictor is the subset of Client used by the annotator.
type entityPredictor interface {
	ExtractEntities(text string, labels []string) ([]Entity, error)
}

// Annotator adapts a GLiNER client to nlp.Annotator. GLiNER predicts entity
// surface forms only; offsets, tokens and sentences are recovered with the
// rule tokenizer, and no dependency edges are produced.
type Annotator struct {
	client    entityPredictor
	labels    []string
	threshold float64
	logger    *slog.Logger
}

// NewAnnotator wraps client. Predictions scoring below threshold are dropped.
func NewAnnotator(client *Client, labels []string, threshold float64) *Annotator {
	return newAnnotator(client, labels, threshold)
}

func newAnnotator(client entityPredictor, labels []string, threshold float64) *Annotator {
	if len(labels) == 0 {
		labels = DefaultLabels
	}
	return &Annotator{
		client:    client,
		labels:    labels,
		threshold: threshold,
		logger:    slog.Default(),
	}
}

// SetLogger sets the logger used for dropped predictions.
func (a *Annotator) SetLogger(l *slog.Logger) {
	if l != nil {
		a.logger = l
	}
}

// Name implements nlp.Annotator
func (a *Annotator) Name() string { return string(nlp.ProviderGLiNER) }

// Annotate implements nlp.Annotator
func (a *Annotator) Annotate(ctx context.Context, text string) (*nlp.Doc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entities, err := a.client.ExtractEntities(text, a.labels)
	if err != nil {
		return nil, nlp.NewAnnotationError(a.Name(), err)
	}

	found := make([]nlp.EntitySpan, 0, len(entities))
	for _, e := range entities {
		if float64(e.Score) < a.threshold {
			continue
		}
		label, ok := nlp.MapLabel(e.Label)
		if !ok {
			a.logger.Debug("GLiNER: dropping unmapped label", "label", e.Label, "text", e.Text)
			continue
		}
		found = append(found, nlp.EntitySpan{Text: e.Text, Label: label, Score: float64(e.Score)})
	}
	return nlp.NewModelDoc(text, found), nil
}
