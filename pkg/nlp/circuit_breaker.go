package nlp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"github.com/soundprediction/orgsignal/pkg/alert"
	"github.com/soundprediction/orgsignal/pkg/config"
)

// CircuitBreakerAnnotator wraps an Annotator with circuit breaking logic
type CircuitBreakerAnnotator struct {
	annotator Annotator
	cb        *gobreaker.CircuitBreaker
	alerter   alert.Alerter
}

// NewCircuitBreakerAnnotator creates a new circuit breaker annotator. The
// breaker trips once at least three calls were made and the failure ratio
// reaches cfg.ReadyToTripRatio.
func NewCircuitBreakerAnnotator(annotator Annotator, cfg config.CircuitBreakerConfig, alerter alert.Alerter, logger *slog.Logger) *CircuitBreakerAnnotator {
	if logger == nil {
		logger = slog.Default()
	}
	name := annotator.Name()

	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if to != gobreaker.StateOpen {
				logger.Info("Circuit breaker state changed", "annotator", name, "from", from.String(), "to", to.String())
				return
			}
			msg := fmt.Sprintf("Circuit Breaker '%s' changed status from %s to %s. Too many annotation failures detected.", name, from, to)
			if alerter != nil {
				if err := alerter.Alert(fmt.Sprintf("URGENT: Circuit Breaker Tripped - %s", name), msg); err != nil {
					logger.Warn("Failed to send circuit breaker alert", "error", err)
				}
			}
			logger.Error("Circuit breaker opened", "annotator", name)
		},
	}

	return &CircuitBreakerAnnotator{
		annotator: annotator,
		cb:        gobreaker.NewCircuitBreaker(st),
		alerter:   alerter,
	}
}

// Name implements Annotator
func (c *CircuitBreakerAnnotator) Name() string {
	return c.annotator.Name()
}

// Annotate implements Annotator
func (c *CircuitBreakerAnnotator) Annotate(ctx context.Context, text string) (*Doc, error) {
	doc, err := c.cb.Execute(func() (interface{}, error) {
		return c.annotator.Annotate(ctx, text)
	})
	if err != nil {
		return nil, NewAnnotationError(c.Name(), err)
	}
	return doc.(*Doc), nil
}

// State returns the current breaker state.
func (c *CircuitBreakerAnnotator) State() gobreaker.State {
	return c.cb.State()
}
