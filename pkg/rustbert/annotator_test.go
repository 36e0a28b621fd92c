package rustbert

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/soundprediction/orgsignal/pkg/nlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePredictor struct {
	entities []Entity
	err      error
}

func (f *fakePredictor) ExtractEntities(text string) ([]Entity, error) {
	return f.entities, f.err
}

func TestAnnotator(t *testing.T) {
	text := "Lockheed Martin hired John Smith in Texas for the Olympics."
	a := newAnnotator(&fakePredictor{entities: []Entity{
		{Text: "Lockheed", Label: "I-ORG", Score: 0.99},
		{Text: "Martin", Label: "I-ORG", Score: 0.97},
		{Text: "John", Label: "I-PER", Score: 0.99},
		{Text: "Smith", Label: "I-PER", Score: 0.99},
		{Text: "Texas", Label: "I-LOC", Score: 0.99},
		{Text: "Olympics", Label: "I-MISC", Score: 0.95},
	}}, 0.5)
	assert.Equal(t, "rustbert", a.Name())

	doc, err := a.Annotate(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, doc.Entities, 3)

	assert.Equal(t, "Lockheed Martin", doc.Entities[0].Text)
	assert.Equal(t, nlp.LabelOrg, doc.Entities[0].Label)
	assert.InDelta(t, 0.98, doc.Entities[0].Score, 1e-9)
	assert.Equal(t, "John Smith", doc.Entities[1].Text)
	assert.Equal(t, nlp.LabelPerson, doc.Entities[1].Label)
	assert.Equal(t, nlp.EntitySpan{Text: "Texas", Label: nlp.LabelLoc, Start: 36, End: 41, Score: 0.99}, doc.Entities[2])
}

func TestMergeAdjacent(t *testing.T) {
	text := "Palantir Technologies, Google"
	spans := []nlp.EntitySpan{
		{Text: "Palantir", Label: nlp.LabelOrg, Start: 0, End: 8, Score: 1},
		{Text: "Technologies", Label: nlp.LabelOrg, Start: 9, End: 21, Score: 1},
		{Text: "Google", Label: nlp.LabelOrg, Start: 23, End: 29, Score: 1},
	}
	merged := mergeAdjacent(text, spans)
	require.Len(t, merged, 2, "a comma separates entities")
	assert.Equal(t, "Palantir Technologies", merged[0].Text)
	assert.Empty(t, mergeAdjacent(text, nil))
}

func TestAnnotatorError(t *testing.T) {
	a := newAnnotator(&fakePredictor{err: errors.New("libtorch missing")}, 0)
	_, err := a.Annotate(context.Background(), "text")
	assert.True(t, errors.Is(err, &nlp.AnnotationError{}))
}

func TestClient(t *testing.T) {
	if testing.Short() || os.Getenv("ORGSIGNAL_RUSTBERT_LIVE") == "" {
		t.Skip("set ORGSIGNAL_RUSTBERT_LIVE to run against the default model")
	}
	c := NewClient(Config{})
	defer c.Close()

	ents, err := c.ExtractEntities("Boeing is based in Arlington.")
	require.NoError(t, err)
	assert.NotEmpty(t, ents)
}
