package categorizer

import (
	"encoding/json"

	"github.com/soundprediction/orgsignal/pkg/types"
)

// Batch record fields added by CategorizeBatch.
const (
	FieldName               = "name"
	FieldContext            = "context"
	FieldCategory           = "category"
	FieldCategoryConfidence = "category_confidence"
	FieldCategoryReasoning  = "category_reasoning"
	FieldCategoryMethod     = "category_method"
	FieldSubcategories      = "subcategories"
	FieldValidation         = "validation"
)

// CategorizeBatch categorizes every record by its "name" and optional
// "context" fields. Each returned record is a copy of the input with the
// categorization fields added; inputs are not modified.
func (c *Categorizer) CategorizeBatch(records []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		name, _ := rec[FieldName].(string)
		context, _ := rec[FieldContext].(string)
		r := c.Categorize(name, context)

		enhanced := make(map[string]any, len(rec)+6)
		for k, v := range rec {
			enhanced[k] = v
		}
		subcategories := r.Subcategories
		if subcategories == nil {
			subcategories = []string{}
		}
		enhanced[FieldCategory] = string(r.Category)
		enhanced[FieldCategoryConfidence] = r.Confidence
		enhanced[FieldCategoryReasoning] = r.Reasoning
		enhanced[FieldCategoryMethod] = string(r.Method)
		enhanced[FieldSubcategories] = subcategories
		enhanced[FieldValidation] = r.Validation
		out = append(out, enhanced)
	}
	return out
}

// Statistics summarizes a set of categorized records.
type Statistics struct {
	TotalOrganizations     int            `json:"total_organizations"`
	CategoryDistribution   map[string]int `json:"category_distribution"`
	ConfidenceDistribution map[string]int `json:"confidence_distribution"`
	MethodDistribution     map[string]int `json:"method_distribution"`
	ValidationIssues       map[string]int `json:"validation_issues"`
	AverageConfidence      float64        `json:"average_confidence"`
}

// Confidence buckets used by CategoryStatistics.
const (
	BucketHigh   = "high"
	BucketMedium = "medium"
	BucketLow    = "low"
)

// CategoryStatistics counts records per category, confidence bucket (high
// >= 0.8, medium >= 0.5, low otherwise), method and validation issue.
// Issues are counted only for records whose validation is invalid. Records
// may come from CategorizeBatch or from decoded JSON; missing categories and
// methods count as "unknown" and missing confidences as 0.
func (c *Categorizer) CategoryStatistics(records []map[string]any) Statistics {
	stats := Statistics{
		TotalOrganizations:     len(records),
		CategoryDistribution:   map[string]int{},
		ConfidenceDistribution: map[string]int{},
		MethodDistribution:     map[string]int{},
		ValidationIssues:       map[string]int{},
	}

	total := 0.0
	for _, rec := range records {
		category := stringField(rec[FieldCategory], "unknown")
		method := stringField(rec[FieldCategoryMethod], "unknown")
		confidence := floatField(rec[FieldCategoryConfidence])

		stats.CategoryDistribution[category]++
		stats.MethodDistribution[method]++

		switch {
		case confidence >= 0.8:
			stats.ConfidenceDistribution[BucketHigh]++
		case confidence >= 0.5:
			stats.ConfidenceDistribution[BucketMedium]++
		default:
			stats.ConfidenceDistribution[BucketLow]++
		}
		total += confidence

		if v, ok := validationField(rec[FieldValidation]); ok && !v.IsValid {
			for _, issue := range v.Issues {
				stats.ValidationIssues[issue]++
			}
		}
	}

	if len(records) > 0 {
		stats.AverageConfidence = total / float64(len(records))
	}
	return stats
}

func stringField(v any, fallback string) string {
	switch s := v.(type) {
	case string:
		return s
	case types.Sector:
		return string(s)
	case types.Method:
		return string(s)
	case nil:
		return fallback
	}
	return fallback
}

func floatField(v any) float64 {
	switch f := v.(type) {
	case float64:
		return f
	case float32:
		return float64(f)
	case int:
		return float64(f)
	case int64:
		return float64(f)
	case json.Number:
		n, _ := f.Float64()
		return n
	}
	return 0
}

// validationField accepts a typed validation or its decoded JSON form.
func validationField(v any) (types.CategorizationValidation, bool) {
	switch val := v.(type) {
	case types.CategorizationValidation:
		return val, true
	case *types.CategorizationValidation:
		if val == nil {
			return types.CategorizationValidation{}, false
		}
		return *val, true
	case map[string]any:
		out := types.CategorizationValidation{IsValid: true}
		if b, ok := val["is_valid"].(bool); ok {
			out.IsValid = b
		}
		switch issues := val["issues"].(type) {
		case []string:
			out.Issues = issues
		case []any:
			for _, i := range issues {
				if s, ok := i.(string); ok {
					out.Issues = append(out.Issues, s)
				}
			}
		}
		return out, true
	}
	return types.CategorizationValidation{}, false
}
