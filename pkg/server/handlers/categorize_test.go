package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/orgsignal/pkg/categorizer"
	"github.com/soundprediction/orgsignal/pkg/server/dto"
	"github.com/soundprediction/orgsignal/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func categorizeRouter(c *categorizer.Categorizer) *gin.Engine {
	h := NewCategorizeHandler(c, nil)
	r := gin.New()
	r.POST("/categorize", h.Categorize)
	r.POST("/categorize/batch", h.CategorizeBatch)
	r.GET("/categories", h.Categories)
	r.GET("/overrides", h.ListOverrides)
	r.GET("/overrides/export", h.ExportOverrides)
	r.POST("/overrides/import", h.ImportOverrides)
	r.GET("/overrides/:name", h.GetOverride)
	r.PUT("/overrides/:name", h.PutOverride)
	r.DELETE("/overrides/:name", h.DeleteOverride)
	return r
}

func TestCategorize(t *testing.T) {
	r := categorizeRouter(categorizer.New(categorizer.Options{}, nil))

	w := doJSON(t, r, http.MethodPost, "/categorize", dto.CategorizeRequest{Name: "Raytheon"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result types.CategorizationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, types.SectorMilitary, result.Category)
	assert.Equal(t, types.MethodCompanyNameMatch, result.Method)
	assert.True(t, result.Validation.IsValid)

	tooHigh := 1.5
	w = doJSON(t, r, http.MethodPost, "/categorize", dto.CategorizeRequest{Name: "Raytheon", Threshold: &tooHigh})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/categorize", map[string]string{"context": "missiles"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCategorizeBatch(t *testing.T) {
	r := categorizeRouter(categorizer.New(categorizer.Options{}, nil))

	w := doJSON(t, r, http.MethodPost, "/categorize/batch", dto.BatchCategorizeRequest{
		Organizations: []map[string]any{
			{"name": "Raytheon", "source": "report"},
			{"name": "Lockheed Martin"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.BatchCategorizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Organizations, 2)
	assert.Equal(t, "report", resp.Organizations[0]["source"])
	assert.Equal(t, "military", resp.Organizations[0][categorizer.FieldCategory])
	assert.Equal(t, 2, resp.Statistics.TotalOrganizations)
	assert.Equal(t, 2, resp.Statistics.CategoryDistribution["military"])

	w = doJSON(t, r, http.MethodPost, "/categorize/batch", dto.BatchCategorizeRequest{Organizations: []map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCategories(t *testing.T) {
	r := categorizeRouter(categorizer.New(categorizer.Options{}, nil))

	w := doJSON(t, r, http.MethodGet, "/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Categories []types.Sector `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Categories, types.SectorMilitary)
	assert.Contains(t, body.Categories, types.SectorOther)
}

func TestOverrideLifecycle(t *testing.T) {
	cat := categorizer.New(categorizer.Options{}, nil)
	r := categorizeRouter(cat)

	w := doJSON(t, r, http.MethodPut, "/overrides/Acme", dto.OverrideRequest{
		Category: types.SectorTechnology,
		Reason:   "analyst review",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var o types.ManualOverride
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &o))
	assert.Equal(t, types.SectorTechnology, o.Category)
	assert.NotEmpty(t, o.AddedTimestamp)

	w = doJSON(t, r, http.MethodGet, "/overrides/acme", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/categorize", dto.CategorizeRequest{Name: "ACME"})
	var result types.CategorizationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, types.MethodManualOverride, result.Method)
	assert.Equal(t, "Manual override: analyst review", result.Reasoning)

	w = doJSON(t, r, http.MethodPut, "/overrides/Acme", dto.OverrideRequest{Category: "pirates"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	got, _ := cat.Override("Acme")
	assert.Equal(t, types.SectorTechnology, got.Category)

	w = doJSON(t, r, http.MethodGet, "/overrides", nil)
	var list dto.OverridesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
	assert.Contains(t, list.Overrides, "acme")

	w = doJSON(t, r, http.MethodDelete, "/overrides/Acme", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, r, http.MethodDelete, "/overrides/Acme", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(t, r, http.MethodGet, "/overrides/Acme", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOverrideExportImport(t *testing.T) {
	src := categorizer.New(categorizer.Options{}, nil)
	require.True(t, src.AddManualOverride("Company A", types.SectorMilitary, "contracts"))

	w := doJSON(t, categorizeRouter(src), http.MethodGet, "/overrides/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "overrides.json")
	exported := w.Body.String()

	dst := categorizer.New(categorizer.Options{}, nil)
	r := categorizeRouter(dst)
	w = doJSON(t, r, http.MethodPost, "/overrides/import", exported)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.ImportOverridesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ImportOverridesResponse{Imported: 1, Total: 1}, resp)
	assert.Equal(t, types.MethodManualOverride, dst.Categorize("company a", "").Method)

	// trailing comma is repaired
	w = doJSON(t, r, http.MethodPost, "/overrides/import", `{"Elbit Systems": {"category": "military", "reason": "x"},}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ImportOverridesResponse{Imported: 1, Total: 2}, resp)

	w = doJSON(t, r, http.MethodPost, "/overrides/import", `[1, 2, 3]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
