package dto

import (
	"strings"

	"github.com/soundprediction/orgsignal/pkg/categorizer"
	"github.com/soundprediction/orgsignal/pkg/types"
)

// CategorizeRequest asks for the sector of one organization. A nil
// threshold uses the configured default.
type CategorizeRequest struct {
	Name      string   `json:"name" binding:"required"`
	Context   string   `json:"context,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// Validate performs validation on CategorizeRequest
func (r *CategorizeRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if len(r.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if len(r.Context) > MaxContentLength {
		return ErrContentTooLong
	}
	if r.Threshold != nil && (*r.Threshold < 0 || *r.Threshold > 1) {
		return ErrInvalidRange
	}
	return nil
}

// BatchCategorizeRequest carries free-form organization records with at
// least a name field
type BatchCategorizeRequest struct {
	Organizations []map[string]any `json:"organizations" binding:"required"`
}

// Validate performs validation on BatchCategorizeRequest
func (r *BatchCategorizeRequest) Validate() error {
	if len(r.Organizations) == 0 {
		return ErrEmptyBatch
	}
	if len(r.Organizations) > MaxBatchSize {
		return ErrBatchTooLarge
	}
	return nil
}

// BatchCategorizeResponse holds the enriched records and their statistics
type BatchCategorizeResponse struct {
	Organizations []map[string]any       `json:"organizations"`
	Statistics    categorizer.Statistics `json:"statistics"`
}

// OverrideRequest registers a manual override for the organization in the
// URL path
type OverrideRequest struct {
	Category      types.Sector `json:"category" binding:"required"`
	Reason        string       `json:"reason,omitempty"`
	Subcategories []string     `json:"subcategories,omitempty"`
}

// OverridesResponse lists the registry
type OverridesResponse struct {
	Overrides map[string]types.ManualOverride `json:"overrides"`
	Count     int                             `json:"count"`
}

// ImportOverridesResponse reports the outcome of an override import
type ImportOverridesResponse struct {
	Imported int `json:"imported"`
	Total    int `json:"total"`
}
