package categorizer

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/soundprediction/orgsignal/pkg/types"
)

func TestCategorizerProperties(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	c := New(Options{}, nil)
	words := gen.OneConstOf("defense", "bank", "software", "oil", "pharma", "media", "retail",
		"car", "telecom", "contractor", "company", "corp", "Raytheon", "Apple", "", "the")
	phrase := gen.SliceOfN(6, words).Map(func(ws []string) string {
		out := ""
		for _, w := range ws {
			out += w + " "
		}
		return out
	})

	properties.Property("confidence stays in [0, 1] and category is valid", prop.ForAll(
		func(name, context string, threshold float64) bool {
			r := c.CategorizeWithThreshold(name, context, threshold)
			return r.Confidence >= 0 && r.Confidence <= 1 &&
				c.Table().IsValidCategory(r.Category) && r.Validation.IsValid
		},
		gen.OneGenOf(gen.AlphaString(), phrase),
		phrase,
		gen.Float64Range(0, 1),
	))

	properties.Property("categorization is deterministic", prop.ForAll(
		func(name, context string) bool {
			a := c.Categorize(name, context)
			b := c.Categorize(name, context)
			return a.Category == b.Category && a.Confidence == b.Confidence && a.Method == b.Method
		},
		phrase,
		phrase,
	))

	properties.Property("manual override wins regardless of context", prop.ForAll(
		func(name, context string, idx int) bool {
			o := New(Options{}, nil)
			sector := types.Sectors[idx]
			if !o.AddManualOverride(name, sector, "pinned") {
				return false
			}
			r := o.Categorize(name, context)
			return r.Category == sector && r.Confidence == 1.0 && r.Method == types.MethodManualOverride
		},
		gen.Identifier(),
		phrase,
		gen.IntRange(0, len(types.Sectors)-1),
	))

	properties.TestingRun(t)
}
