package extractor

import (
	"github.com/soundprediction/orgsignal/pkg/categorizer"
	"github.com/soundprediction/orgsignal/pkg/types"
)

// ValidateExtractions scores the quality of an extraction result. The score
// is the mean of the overall confidence, the entity count normalized to 10,
// and whether anything was found at all.
func ValidateExtractions(r *types.ExtractionResult) types.ExtractionValidation {
	v := types.ExtractionValidation{
		IsValid:         true,
		Issues:          []string{},
		Recommendations: []string{},
	}
	if r == nil {
		r = types.NewEmptyExtractionResult("")
	}

	if r.TotalEntities == 0 {
		v.Issues = append(v.Issues, "No entities extracted")
		v.Recommendations = append(v.Recommendations, "Check text quality and preprocessing")
	}

	overall := r.ConfidenceScores.Overall
	if overall < 0.5 {
		v.Issues = append(v.Issues, "Low overall confidence in extractions")
		v.Recommendations = append(v.Recommendations, "Consider manual review of results")
	}

	found := 0.0
	if r.TotalEntities > 0 {
		found = 1.0
	}
	v.QualityScore = (overall + min(1.0, float64(r.TotalEntities)/10) + found) / 3
	return v
}

// GroupByCategory buckets organizations by sector, keeping their order.
// Organizations without a category land in other.
func GroupByCategory(orgs []types.Organization) map[types.Sector][]types.Organization {
	out := make(map[types.Sector][]types.Organization)
	for _, o := range orgs {
		c := o.Category
		if c == "" {
			c = types.SectorOther
		}
		out[c] = append(out[c], o)
	}
	return out
}

// DetailedCategorization re-runs the categorizer over extracted
// organizations and returns batch records with the full categorization
// fields.
func (e *Extractor) DetailedCategorization(orgs []types.Organization) []map[string]any {
	return e.categorizer.CategorizeBatch(organizationRecords(orgs))
}

// AddCategorizationOverride pins org to category for subsequent
// extractions.
func (e *Extractor) AddCategorizationOverride(org string, category types.Sector, reason string) bool {
	return e.categorizer.AddManualOverride(org, category, reason)
}

// CategorizationStatistics summarizes the categorization of extracted
// organizations.
func (e *Extractor) CategorizationStatistics(orgs []types.Organization) categorizer.Statistics {
	return e.categorizer.CategoryStatistics(e.categorizer.CategorizeBatch(organizationRecords(orgs)))
}

func organizationRecords(orgs []types.Organization) []map[string]any {
	records := make([]map[string]any, 0, len(orgs))
	for _, o := range orgs {
		records = append(records, map[string]any{
			categorizer.FieldName:    o.Name,
			categorizer.FieldContext: o.Context,
			"confidence":             o.Confidence,
			"start_char":             o.Start,
			"end_char":               o.End,
			"label":                  o.Label,
		})
	}
	return records
}
