package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/orgsignal"
	"github.com/soundprediction/orgsignal/pkg/extractor"
	"github.com/soundprediction/orgsignal/pkg/nlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type unhealthyAnnotator struct{ nlp.Annotator }

func (unhealthyAnnotator) Name() string { return "remote" }
func (unhealthyAnnotator) Health(ctx context.Context) error { return errors.New("connection refused") }

func newPipeline(annotator nlp.Annotator) *orgsignal.Pipeline {
	return orgsignal.NewPipeline(extractor.New(annotator, nil, extractor.Options{}, nil), nil, nil)
}

func rulePipeline() *orgsignal.Pipeline {
	return newPipeline(nlp.NewRuleAnnotator(nlp.DefaultRuleConfig()))
}

func serve(t *testing.T, method, path string, h gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	r := gin.New()
	r.Handle(method, path, h)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestHealthCheck(t *testing.T) {
	w, body := serve(t, http.MethodGet, "/health", NewHealthHandler(nil, nil).HealthCheck)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "orgsignal", body["service"])
	assert.Contains(t, body, "timestamp")
	assert.Contains(t, body, "version")
}

func TestLivenessCheck(t *testing.T) {
	w, body := serve(t, http.MethodGet, "/live", NewHealthHandler(nil, nil).LivenessCheck)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alive", body["status"])
}

func TestReadinessCheck(t *testing.T) {
	t.Run("no pipeline", func(t *testing.T) {
		w, body := serve(t, http.MethodGet, "/ready", NewHealthHandler(nil, nil).ReadinessCheck)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "not_ready", body["status"])
	})

	t.Run("no annotator", func(t *testing.T) {
		w, body := serve(t, http.MethodGet, "/ready", NewHealthHandler(newPipeline(nil), nil).ReadinessCheck)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		checks := body["checks"].(map[string]any)
		assert.Equal(t, "unhealthy", checks["annotator"].(map[string]any)["status"])
	})

	t.Run("remote backend down", func(t *testing.T) {
		w, body := serve(t, http.MethodGet, "/ready", NewHealthHandler(newPipeline(unhealthyAnnotator{}), nil).ReadinessCheck)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		annotator := body["checks"].(map[string]any)["annotator"].(map[string]any)
		assert.Equal(t, "remote", annotator["backend"])
		assert.Equal(t, "connection refused", annotator["error"])
	})

	t.Run("ready", func(t *testing.T) {
		w, body := serve(t, http.MethodGet, "/ready", NewHealthHandler(rulePipeline(), nil).ReadinessCheck)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ready", body["status"])
		checks := body["checks"].(map[string]any)
		assert.Equal(t, "rules", checks["annotator"].(map[string]any)["backend"])
		cat := checks["categorizer"].(map[string]any)
		assert.EqualValues(t, 0, cat["overrides"])
		assert.Greater(t, cat["sectors"], 0.0)
	})
}

func TestDetailedHealthCheck(t *testing.T) {
	w, body := serve(t, http.MethodGet, "/health/detailed", NewHealthHandler(rulePipeline(), nil).DetailedHealthCheck)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body, "build_info")
	checks := body["checks"].(map[string]any)
	probe := checks["pipeline"].(map[string]any)
	assert.Equal(t, "healthy", probe["status"])
	assert.GreaterOrEqual(t, probe["organizations"], 1.0)
	assert.Contains(t, checks["system"], "goroutines")
}
