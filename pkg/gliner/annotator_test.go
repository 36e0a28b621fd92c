package gliner

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
	labels   []string
}

func (f *fakePredictor) ExtractEntities(text string, labels []string) ([]Entity, error) {
	f.labels = labels
	return f.entities, f.err
}

func TestAnnotator(t *testing.T) {
	text := "Apple was founded by Steve Jobs in California."
	pred := &fakePredictor{entities: []Entity{
		{Text: "Apple", Label: "organization", Score: 0.93},
		{Text: "Steve Jobs", Label: "person", Score: 0.88},
		{Text: "California", Label: "location", Score: 0.91},
		{Text: "founded", Label: "event", Score: 0.7},
		{Text: "Steve", Label: "person", Score: 0.2},
	}}

	a := newAnnotator(pred, nil, 0.5)
	assert.Equal(t, "gliner", a.Name())

	doc, err := a.Annotate(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, DefaultLabels, pred.labels)
	assert.False(t, doc.HasDependencies())
	require.Len(t, doc.Sentences, 1)

	require.Len(t, doc.Entities, 3)
	assert.Equal(t, nlp.EntitySpan{Text: "Apple", Label: nlp.LabelOrg, Start: 0, End: 5, Score: float64(float32(0.93))}, doc.Entities[0])
	assert.Equal(t, nlp.LabelPerson, doc.Entities[1].Label)
	assert.Equal(t, "Steve Jobs", text[doc.Entities[1].Start:doc.Entities[1].End])
	assert.Equal(t, nlp.LabelLoc, doc.Entities[2].Label)
}

func TestAnnotatorErrors(t *testing.T) {
	a := newAnnotator(&fakePredictor{err: errors.New("onnx session failed")}, []string{"organization"}, 0)

	_, err := a.Annotate(context.Background(), "Boeing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, &nlp.AnnotationError{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.Annotate(ctx, "Boeing")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient(t *testing.T) {
	if testing.Short() || os.Getenv("ORGSIGNAL_GLINER_MODEL") == "" {
		t.Skip("set ORGSIGNAL_GLINER_MODEL to run against a real model")
	}

	c, err := NewClient(os.Getenv("ORGSIGNAL_GLINER_MODEL"))
	require.NoError(t, err)
	defer c.Close()

	ents, err := c.ExtractEntities("Apple was founded by Steve Jobs in California.", []string{"person", "organization", "location"})
	require.NoError(t, err)

	foundOrg := false
	for _, e := range ents {
		if e.Label == "organization" && e.Text == "Apple" {
			foundOrg = true
		}
	}
	assert.True(t, foundOrg, "Apple should be found as an organization")
}
