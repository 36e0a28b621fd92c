package handlers

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/orgsignal"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

const (
	serviceName = "orgsignal"
	probeText   = "Microsoft opened an office in London."
)

// healthChecker is implemented by annotators backed by a remote service.
type healthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	pipeline *orgsignal.Pipeline
	mu       *sync.RWMutex
	started  time.Time
}

// NewHealthHandler creates a new health handler. mu guards the categorizer's
// override registry and may be shared with the override handlers.
func NewHealthHandler(p *orgsignal.Pipeline, mu *sync.RWMutex) *HealthHandler {
	if mu == nil {
		mu = &sync.RWMutex{}
	}
	return &HealthHandler{
		pipeline: p,
		mu:       mu,
		started:  time.Now(),
	}
}

// HealthCheck handles GET /health - basic liveness check
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// ReadinessCheck handles GET /ready
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := gin.H{}
	allHealthy := h.checkAnnotator(ctx, checks)
	if h.pipeline != nil {
		checks["categorizer"] = h.categorizerStatus()
	}
	checks["system"] = gin.H{
		"status": "healthy",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	}

	response := gin.H{
		"status":    "ready",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	}
	if !allHealthy {
		response["status"] = "not_ready"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	c.JSON(http.StatusOK, response)
}

// LivenessCheck handles GET /live - Kubernetes liveness probe endpoint
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// DetailedHealthCheck handles GET /health/detailed - comprehensive health information
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	startTime := time.Now()
	checks := gin.H{}
	allHealthy := h.checkAnnotator(ctx, checks)

	if h.pipeline != nil {
		checks["categorizer"] = h.categorizerStatus()

		// end to end probe through preprocessing, extraction and validation
		probeStart := time.Now()
		h.mu.RLock()
		result := h.pipeline.Process(ctx, probeText, "text")
		h.mu.RUnlock()
		probe := gin.H{
			"status":        "healthy",
			"duration_ms":   time.Since(probeStart).Milliseconds(),
			"operation":     "Process",
			"organizations": len(result.Extraction.Organizations),
			"quality_score": result.Validation.QualityScore,
		}
		if ctx.Err() != nil {
			probe["status"] = "unhealthy"
			probe["error"] = "probe timeout"
			allHealthy = false
		}
		checks["pipeline"] = probe
	}

	systemMetrics := h.getSystemMetrics()
	checks["system"] = gin.H{
		"status":       "healthy",
		"uptime":       time.Since(h.started).Round(time.Second).String(),
		"memory_usage": systemMetrics.MemoryUsage,
		"goroutines":   systemMetrics.Goroutines,
		"gc_cycles":    systemMetrics.GCCycles,
		"heap_objects": systemMetrics.HeapObjects,
		"stack_usage":  systemMetrics.StackUsage,
	}

	response := gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": Version,
		"build_info": gin.H{
			"git_commit": GitCommit,
			"build_time": BuildTime,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"environment": gin.H{
			"go_version": GoVersion,
		},
		"checks": checks,
		"metrics": gin.H{
			"response_time_ms": time.Since(startTime).Milliseconds(),
		},
	}
	if !allHealthy {
		response["status"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	c.JSON(http.StatusOK, response)
}

// checkAnnotator records the annotation backend status in checks and
// reports whether it is usable.
func (h *HealthHandler) checkAnnotator(ctx context.Context, checks gin.H) bool {
	if h.pipeline == nil {
		checks["pipeline"] = gin.H{
			"status": "unhealthy",
			"error":  "pipeline not initialized",
		}
		return false
	}

	annotator := h.pipeline.Extractor().Annotator()
	if annotator == nil {
		checks["annotator"] = gin.H{
			"status": "unhealthy",
			"error":  "no annotation backend configured",
		}
		return false
	}

	start := time.Now()
	var err error
	if hc, ok := annotator.(healthChecker); ok {
		err = hc.Health(ctx)
	} else {
		_, err = annotator.Annotate(ctx, probeText)
	}
	status := gin.H{
		"status":      "healthy",
		"backend":     annotator.Name(),
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		status["status"] = "unhealthy"
		status["error"] = err.Error()
		checks["annotator"] = status
		return false
	}
	checks["annotator"] = status
	return true
}

func (h *HealthHandler) categorizerStatus() gin.H {
	h.mu.RLock()
	defer h.mu.RUnlock()
	cat := h.pipeline.Categorizer()
	return gin.H{
		"status":     "healthy",
		"sectors":    len(cat.Table().Sectors),
		"overrides":  len(cat.OverrideNames()),
		"threshold":  cat.Threshold(),
		"categories": cat.Table().Categories(),
	}
}

// SystemMetrics holds system runtime metrics
type SystemMetrics struct {
	MemoryUsage string `json:"memory_usage"`
	Goroutines  int    `json:"goroutines"`
	GCCycles    uint32 `json:"gc_cycles"`
	HeapObjects uint64 `json:"heap_objects"`
	StackUsage  string `json:"stack_usage"`
}

// getSystemMetrics collects current system runtime metrics
func (h *HealthHandler) getSystemMetrics() SystemMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SystemMetrics{
		MemoryUsage: fmt.Sprintf("%.2f MB", float64(m.Alloc)/(1024*1024)),
		Goroutines:  runtime.NumGoroutine(),
		GCCycles:    m.NumGC,
		HeapObjects: m.HeapObjects,
		StackUsage:  fmt.Sprintf("%.2f MB", float64(m.StackSys)/(1024*1024)),
	}
}
