package nlp

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/soundprediction/orgsignal/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingAnnotator struct {
	calls int
	err   error
}

func (f *failingAnnotator) Name() string { return "failing" }

func (f *failingAnnotator) Annotate(ctx context.Context, text string) (*Doc, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &Doc{Text: text}, nil
}

type recordingAlerter struct {
	subjects []string
}

func (r *recordingAlerter) Alert(subject, message string) error {
	r.subjects = append(r.subjects, subject)
	return nil
}

func TestCircuitBreakerAnnotator(t *testing.T) {
	cfg := config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         60,
		Timeout:          60,
		ReadyToTripRatio: 0.5,
	}

	t.Run("passes through success", func(t *testing.T) {
		inner := &failingAnnotator{}
		cb := NewCircuitBreakerAnnotator(inner, cfg, nil, nil)

		doc, err := cb.Annotate(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, "hello", doc.Text)
		assert.Equal(t, "failing", cb.Name())
	})

	t.Run("opens and alerts after repeated failures", func(t *testing.T) {
		inner := &failingAnnotator{err: errors.New("model crashed")}
		alerter := &recordingAlerter{}
		cb := NewCircuitBreakerAnnotator(inner, cfg, alerter, nil)

		for i := 0; i < 3; i++ {
			_, err := cb.Annotate(context.Background(), "text")
			require.Error(t, err)
			assert.True(t, errors.Is(err, &AnnotationError{}))
		}
		assert.Equal(t, gobreaker.StateOpen, cb.State())
		require.Len(t, alerter.subjects, 1)
		assert.Contains(t, alerter.subjects[0], "Circuit Breaker Tripped - failing")

		_, err := cb.Annotate(context.Background(), "text")
		assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
		assert.Equal(t, 3, inner.calls, "open breaker does not call the backend")
	})
}
