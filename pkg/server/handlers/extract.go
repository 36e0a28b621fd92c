package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/orgsignal"
	"github.com/soundprediction/orgsignal/pkg/preprocess"
	"github.com/soundprediction/orgsignal/pkg/server/dto"
)

// ExtractHandler serves extraction and preprocessing requests
type ExtractHandler struct {
	pipeline *orgsignal.Pipeline
	mu       *sync.RWMutex
	logger   *slog.Logger
}

// NewExtractHandler creates a new extract handler. Extraction holds mu for
// reading while it consults the override registry.
func NewExtractHandler(p *orgsignal.Pipeline, mu *sync.RWMutex, logger *slog.Logger) *ExtractHandler {
	if mu == nil {
		mu = &sync.RWMutex{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractHandler{pipeline: p, mu: mu, logger: logger}
}

// Extract handles POST /api/v1/extract. Rejected input is answered with 422
// and the full result so the validation errors reach the caller.
func (h *ExtractHandler) Extract(c *gin.Context) {
	var req dto.ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := req.Validate(); err != nil {
		abortWithError(c, http.StatusBadRequest, "validation_error", err)
		return
	}

	h.mu.RLock()
	result := h.pipeline.Process(c.Request.Context(), req.Text, req.SourceType)
	h.mu.RUnlock()

	if !result.InputValidation.IsValid {
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExtractBatch handles POST /api/v1/extract/batch
func (h *ExtractHandler) ExtractBatch(c *gin.Context) {
	var req dto.BatchExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := req.Validate(); err != nil {
		abortWithError(c, http.StatusBadRequest, "validation_error", err)
		return
	}

	h.mu.RLock()
	results, errs := h.pipeline.ProcessBatch(c.Request.Context(), req.Documents)
	h.mu.RUnlock()

	resp := dto.BatchExtractResponse{Results: make([]dto.BatchExtractItem, len(results))}
	for i := range results {
		if errs[i] != nil {
			resp.Results[i].Error = errs[i].Error()
			resp.Failed++
			continue
		}
		resp.Results[i].Result = results[i]
	}
	if resp.Failed > 0 {
		h.logger.WarnContext(c.Request.Context(), "Batch extraction incomplete", "documents", len(req.Documents), "failed", resp.Failed)
	}
	c.JSON(http.StatusOK, resp)
}

// Preprocess handles POST /api/v1/preprocess
func (h *ExtractHandler) Preprocess(c *gin.Context) {
	var req dto.PreprocessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	maxLength := req.MaxLength
	if maxLength <= 0 {
		maxLength = preprocess.DefaultMaxLength
	}

	pre := h.pipeline.Preprocessor()
	validation := pre.ValidateInput(req.Text, maxLength)
	if !validation.IsValid {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"input_validation": validation,
			"error":            strings.Join(validation.Errors, "; "),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"input_validation": validation,
		"preprocessing":    pre.Preprocess(req.Text, req.SourceType),
	})
}
