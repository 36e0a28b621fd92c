package orgsignal

import (
	"context"

	"github.com/soundprediction/orgsignal/pkg/categorizer"
	"github.com/soundprediction/orgsignal/pkg/types"
)

// Consumers should depend on the smallest of these interfaces that meets
// their needs.

// DocumentProcessor turns raw text into structured extraction results.
type DocumentProcessor interface {
	// Process runs the full pipeline over one document.
	Process(ctx context.Context, text, sourceType string) *Result

	// ProcessBatch processes documents concurrently, preserving order.
	ProcessBatch(ctx context.Context, docs []Document) ([]*Result, []error)
}

// OrganizationClassifier categorizes organization names by sector.
type OrganizationClassifier interface {
	Categorize(name, context string) types.CategorizationResult
	CategorizeWithThreshold(name, context string, threshold float64) types.CategorizationResult
	CategorizeBatch(records []map[string]any) []map[string]any
	CategoryStatistics(records []map[string]any) categorizer.Statistics
}

// OverrideManager maintains the manual override registry.
type OverrideManager interface {
	AddManualOverride(name string, category types.Sector, reason string, subcategories ...string) bool
	RemoveManualOverride(name string) bool
	Override(name string) (types.ManualOverride, bool)
	Overrides() map[string]types.ManualOverride
	ExportOverrides(path string) bool
	ImportOverrides(path string) bool
}

var (
	_ DocumentProcessor      = (*Pipeline)(nil)
	_ OrganizationClassifier = (*categorizer.Categorizer)(nil)
	_ OverrideManager        = (*categorizer.Categorizer)(nil)
)
