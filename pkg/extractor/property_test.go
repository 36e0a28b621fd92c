package extractor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/soundprediction/orgsignal/pkg/types"
)

var fragments = []string{
	"Raytheon", "Apple Inc.", "Tim Cook", "Boeing", "Cupertino", "California",
	"Acme Corp", "Jane Smith", "Israel", "Gaza", "Lockheed Martin", "NSO Group",
	"owns", "works for", "is a subsidiary of", "supplies to", "based in",
	"said", "CEO", "director", "the", "in", "and", ".", ",", "company",
}

func genText() gopter.Gen {
	return gen.SliceOf(gen.IntRange(0, len(fragments)-1)).Map(func(idx []int) string {
		words := make([]string, len(idx))
		for i, n := range idx {
			words[i] = fragments[n]
		}
		return strings.Join(words, " ")
	})
}

// checkResult returns a description of the first broken invariant.
func checkResult(r *types.ExtractionResult) string {
	if r.TotalEntities != len(r.Organizations)+len(r.Locations)+len(r.Persons) {
		return "total entities mismatch"
	}
	if r.TotalRelationships != len(r.Relationships) {
		return "total relationships mismatch"
	}

	var confidences [][]float64
	var names [][]string
	collect := func(n int, conf func(int) float64, name func(int) string) {
		c := make([]float64, n)
		s := make([]string, n)
		for i := 0; i < n; i++ {
			c[i], s[i] = conf(i), strings.ToLower(name(i))
		}
		confidences = append(confidences, c)
		names = append(names, s)
	}
	collect(len(r.Organizations), func(i int) float64 { return r.Organizations[i].Confidence }, func(i int) string { return r.Organizations[i].Name })
	collect(len(r.Locations), func(i int) float64 { return r.Locations[i].Confidence }, func(i int) string { return r.Locations[i].Name })
	collect(len(r.Persons), func(i int) float64 { return r.Persons[i].Confidence }, func(i int) string { return r.Persons[i].Name })
	rels := make([]float64, len(r.Relationships))
	for i, rel := range r.Relationships {
		rels[i] = rel.Confidence
	}
	confidences = append(confidences, rels)

	for _, cs := range confidences {
		for _, c := range cs {
			if c < 0 || c > 1 {
				return fmt.Sprintf("confidence %v out of range", c)
			}
		}
		if !sort.SliceIsSorted(cs, func(i, j int) bool { return cs[i] > cs[j] }) {
			return "not sorted by confidence"
		}
	}
	for _, ns := range names {
		seen := map[string]bool{}
		for _, n := range ns {
			if seen[n] {
				return "duplicate entity " + n
			}
			seen[n] = true
		}
	}
	keys := map[types.RelationshipKey]bool{}
	for _, rel := range r.Relationships {
		if keys[rel.Key()] {
			return fmt.Sprintf("duplicate relationship %v", rel.Key())
		}
		keys[rel.Key()] = true
	}

	s := r.ConfidenceScores
	for _, c := range []float64{s.Organizations, s.Locations, s.Persons, s.Overall} {
		if c < 0 || c > 1 {
			return "mean confidence out of range"
		}
	}
	return ""
}

func TestExtractionProperties(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	e := newRuleExtractor()
	ctx := context.Background()

	properties.Property("results satisfy bounds, totals, dedup and ordering", prop.ForAll(
		func(text string) bool {
			if msg := checkResult(e.ExtractEntities(ctx, text)); msg != "" {
				t.Log(msg)
				return false
			}
			return true
		},
		genText(),
	))

	properties.Property("extraction is idempotent", prop.ForAll(
		func(text string) bool {
			a := e.ExtractEntities(ctx, text)
			b := e.ExtractEntities(ctx, text)
			a.ProcessingMetadata.ExtractionID, b.ProcessingMetadata.ExtractionID = "", ""
			return fmt.Sprintf("%+v", a) == fmt.Sprintf("%+v", b)
		},
		genText(),
	))

	properties.Property("arbitrary input never breaks invariants", prop.ForAll(
		func(text string) bool {
			if msg := checkResult(e.ExtractEntities(ctx, text)); msg != "" {
				t.Log(msg)
				return false
			}
			return true
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
