package rustbert

import (
	"context"
	"log/slog"
	"strings"

	"github.com/soundprediction/orgsignal/pkg/nlp"
)

type entityPredictor interface {
	ExtractEntities(text string) ([]Entity, error)
}

// Annotator adapts a rust-bert NER client to nlp.Annotator. Predictions are
// per word; adjacent words carrying the same label are merged into one span.
// MISC predictions are dropped.
type Annotator struct {
	client    entityPredictor
	threshold float64
	logger    *slog.Logger
}

// NewAnnotator wraps client. Words scoring below threshold are dropped.
func NewAnnotator(client *Client, threshold float64) *Annotator {
	return newAnnotator(client, threshold)
}

func newAnnotator(client entityPredictor, threshold float64) *Annotator {
	return &Annotator{client: client, threshold: threshold, logger: slog.Default()}
}

// SetLogger sets the logger.
func (a *Annotator) SetLogger(l *slog.Logger) {
	if l != nil {
		a.logger = l
	}
}

// Name implements nlp.Annotator
func (a *Annotator) Name() string { return string(nlp.ProviderRustBert) }

// Annotate implements nlp.Annotator
func (a *Annotator) Annotate(ctx context.Context, text string) (*nlp.Doc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	preds, err := a.client.ExtractEntities(text)
	if err != nil {
		return nil, nlp.NewAnnotationError(a.Name(), err)
	}

	words := make([]nlp.EntitySpan, 0, len(preds))
	for _, p := range preds {
		if p.Score < a.threshold {
			continue
		}
		label, ok := nlp.MapLabel(p.Label)
		if !ok {
			continue
		}
		words = append(words, nlp.EntitySpan{
			Text:  strings.TrimPrefix(p.Text, "##"),
			Label: label,
			Score: p.Score,
		})
	}

	doc := nlp.NewModelDoc(text, words)
	doc.Entities = mergeAdjacent(text, doc.Entities)
	a.logger.Debug("rust-bert annotation", "predictions", len(preds), "entities", len(doc.Entities))
	return doc, nil
}

// mergeAdjacent joins consecutive spans with the same label separated only by
// whitespace (or nothing, for word pieces). Scores are averaged.
func mergeAdjacent(text string, spans []nlp.EntitySpan) []nlp.EntitySpan {
	if len(spans) == 0 {
		return spans
	}
	out := make([]nlp.EntitySpan, 0, len(spans))
	cur := spans[0]
	n := 1
	for _, s := range spans[1:] {
		if s.Label == cur.Label && s.Start >= cur.End && strings.TrimSpace(text[cur.End:s.Start]) == "" {
			cur.Score = (cur.Score*float64(n) + s.Score) / float64(n+1)
			cur.End = s.End
			cur.Text = text[cur.Start:cur.End]
			n++
			continue
		}
		out = append(out, cur)
		cur, n = s, 1
	}
	return append(out, cur)
}
