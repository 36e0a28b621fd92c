package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/orgsignal/pkg/categorizer"
	"github.com/soundprediction/orgsignal/pkg/server/dto"
	"github.com/soundprediction/orgsignal/pkg/types"
)

// CategorizeHandler serves sector classification and the override registry
type CategorizeHandler struct {
	categorizer *categorizer.Categorizer
	mu          *sync.RWMutex
}

// NewCategorizeHandler creates a new categorize handler. Override mutations
// take mu for writing.
func NewCategorizeHandler(c *categorizer.Categorizer, mu *sync.RWMutex) *CategorizeHandler {
	if mu == nil {
		mu = &sync.RWMutex{}
	}
	return &CategorizeHandler{categorizer: c, mu: mu}
}

// Categorize handles POST /api/v1/categorize
func (h *CategorizeHandler) Categorize(c *gin.Context) {
	var req dto.CategorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := req.Validate(); err != nil {
		abortWithError(c, http.StatusBadRequest, "validation_error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	var result types.CategorizationResult
	if req.Threshold != nil {
		result = h.categorizer.CategorizeWithThreshold(req.Name, req.Context, *req.Threshold)
	} else {
		result = h.categorizer.Categorize(req.Name, req.Context)
	}
	c.JSON(http.StatusOK, result)
}

// CategorizeBatch handles POST /api/v1/categorize/batch
func (h *CategorizeHandler) CategorizeBatch(c *gin.Context) {
	var req dto.BatchCategorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := req.Validate(); err != nil {
		abortWithError(c, http.StatusBadRequest, "validation_error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	enriched := h.categorizer.CategorizeBatch(req.Organizations)
	c.JSON(http.StatusOK, dto.BatchCategorizeResponse{
		Organizations: enriched,
		Statistics:    h.categorizer.CategoryStatistics(enriched),
	})
}

// Categories handles GET /api/v1/categories
func (h *CategorizeHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.categorizer.Table().Categories()})
}

// ListOverrides handles GET /api/v1/overrides
func (h *CategorizeHandler) ListOverrides(c *gin.Context) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	overrides := h.categorizer.Overrides()
	c.JSON(http.StatusOK, dto.OverridesResponse{Overrides: overrides, Count: len(overrides)})
}

// GetOverride handles GET /api/v1/overrides/:name
func (h *CategorizeHandler) GetOverride(c *gin.Context) {
	h.mu.RLock()
	o, ok := h.categorizer.Override(c.Param("name"))
	h.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "not_found",
			Message: "no override registered for " + c.Param("name"),
			Code:    http.StatusNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, o)
}

// PutOverride handles PUT /api/v1/overrides/:name
func (h *CategorizeHandler) PutOverride(c *gin.Context) {
	name := c.Param("name")
	var req dto.OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if len(name) > dto.MaxNameLength {
		abortWithError(c, http.StatusBadRequest, "validation_error", dto.ErrNameTooLong)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.categorizer.AddManualOverride(name, req.Category, req.Reason, req.Subcategories...) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_category",
			Message: types.ErrInvalidCategory.Error() + ": " + string(req.Category),
			Code:    http.StatusBadRequest,
		})
		return
	}
	o, _ := h.categorizer.Override(name)
	c.JSON(http.StatusOK, o)
}

// DeleteOverride handles DELETE /api/v1/overrides/:name
func (h *CategorizeHandler) DeleteOverride(c *gin.Context) {
	h.mu.Lock()
	removed := h.categorizer.RemoveManualOverride(c.Param("name"))
	h.mu.Unlock()
	if !removed {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "not_found",
			Message: "no override registered for " + c.Param("name"),
			Code:    http.StatusNotFound,
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportOverrides handles GET /api/v1/overrides/export. The body is the
// same document the CLI writes to disk.
func (h *CategorizeHandler) ExportOverrides(c *gin.Context) {
	h.mu.RLock()
	data, err := h.categorizer.MarshalOverrides()
	h.mu.RUnlock()
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "export_failed", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="overrides.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

// ImportOverrides handles POST /api/v1/overrides/import with an overrides
// document as the body
func (h *CategorizeHandler) ImportOverrides(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if len(data) > dto.MaxContentLength {
		abortWithError(c, http.StatusBadRequest, "validation_error", dto.ErrContentTooLong)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	imported, err := h.categorizer.ImportOverridesJSON(data)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_overrides", err)
		return
	}
	c.JSON(http.StatusOK, dto.ImportOverridesResponse{
		Imported: imported,
		Total:    len(h.categorizer.OverrideNames()),
	})
}
