// Package categorizer assigns organizations to industry sectors.
//
// Three matchers run independently (known company names, weighted keyword
// hits and phrase patterns) and their votes are fused by method
// reliability. Manual overrides short-circuit the matchers entirely.
//
// A Categorizer is safe for concurrent Categorize calls, but override
// mutations (AddManualOverride, RemoveManualOverride, ImportOverrides) must
// not run concurrently with anything else; callers sharing one instance
// serialize access.
package categorizer

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/soundprediction/orgsignal/pkg/config"
	"github.com/soundprediction/orgsignal/pkg/metrics"
	"github.com/soundprediction/orgsignal/pkg/types"
)

// DefaultThreshold is the fused confidence below which a categorization
// falls back to "other".
const DefaultThreshold = 0.3

// Options configures a Categorizer.
type Options struct {
	// Threshold used by Categorize. Zero means DefaultThreshold.
	Threshold float64

	// Table holds the sector data. Nil uses DefaultTable().
	Table *Table

	// Metrics, when set, counts categorization decisions.
	Metrics *metrics.Registry
}

// Categorizer classifies organization names by sector.
type Categorizer struct {
	table     *Table
	threshold float64
	overrides map[string]types.ManualOverride
	metrics   *metrics.Registry
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a Categorizer. A nil logger uses slog.Default().
func New(opts Options, logger *slog.Logger) *Categorizer {
	if logger == nil {
		logger = slog.Default()
	}
	table := opts.Table
	if table == nil {
		table = DefaultTable()
	}
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	return &Categorizer{
		table:     table,
		threshold: threshold,
		overrides: make(map[string]types.ManualOverride),
		metrics:   opts.Metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// NewFromConfig builds a Categorizer from configuration, loading the sector
// table overlay and importing the overrides file when configured.
func NewFromConfig(cfg config.CategorizationConfig, reg *metrics.Registry, logger *slog.Logger) (*Categorizer, error) {
	opts := Options{Threshold: cfg.Threshold, Metrics: reg}

	var seeded map[string]types.ManualOverride
	if cfg.SectorTablePath != "" {
		t, overrides, err := LoadTable(cfg.SectorTablePath)
		if err != nil {
			return nil, err
		}
		opts.Table = t
		seeded = overrides
	}

	c := New(opts, logger)
	c.mergeOverrides(seeded)

	if cfg.OverridesPath != "" {
		if !c.ImportOverrides(cfg.OverridesPath) {
			return nil, fmt.Errorf("failed to import overrides from %s", cfg.OverridesPath)
		}
	}
	return c, nil
}

// SetLogger sets the logger.
func (c *Categorizer) SetLogger(logger *slog.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// Table returns the sector table in use.
func (c *Categorizer) Table() *Table { return c.table }

// Threshold returns the default fusion threshold.
func (c *Categorizer) Threshold() float64 { return c.threshold }

// Categorize classifies name using the configured threshold.
func (c *Categorizer) Categorize(name, context string) types.CategorizationResult {
	return c.CategorizeWithThreshold(name, context, c.threshold)
}

// CategorizeWithThreshold classifies name. Every result carries a
// validation report.
func (c *Categorizer) CategorizeWithThreshold(name, context string, threshold float64) types.CategorizationResult {
	var result types.CategorizationResult

	switch override, ok := c.overrides[overrideKey(name)]; {
	case strings.TrimSpace(name) == "":
		result = types.CategorizationResult{
			Category:  types.SectorOther,
			Method:    types.MethodDefault,
			Reasoning: "Empty or None organization name",
		}
	case ok:
		reason := override.Reason
		if reason == "" {
			reason = "No reason provided"
		}
		result = types.CategorizationResult{
			Category:      override.Category,
			Confidence:    1.0,
			Method:        types.MethodManualOverride,
			Reasoning:     "Manual override: " + reason,
			Subcategories: append([]string{}, override.Subcategories...),
		}
	default:
		var votes []vote
		if v, ok := c.byCompanyName(name); ok {
			votes = append(votes, v)
		}
		if v, ok := c.byKeywords(name, context); ok {
			votes = append(votes, v)
		}
		if v, ok := c.byPatterns(name, context); ok {
			votes = append(votes, v)
		}
		result = c.combine(votes, threshold)
	}

	result.Validation = c.validate(name, result)
	if c.metrics != nil {
		c.metrics.RecordCategorization(string(result.Method), string(result.Category))
	}
	return result
}

// vote is the outcome of one matcher.
type vote struct {
	category   types.Sector
	confidence float64
	method     types.Method
	reasoning  string
}

func (v vote) result() types.CategorizationResult {
	return types.CategorizationResult{
		Category:   v.category,
		Confidence: v.confidence,
		Method:     v.method,
		Reasoning:  v.reasoning,
	}
}

func (c *Categorizer) byCompanyName(name string) (vote, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, s := range c.table.Sectors {
		for _, company := range s.Companies {
			company = strings.ToLower(company)
			if strings.Contains(lower, company) || strings.Contains(company, lower) {
				return vote{
					category:   s.Name,
					confidence: c.table.CompanyMatchConfidence,
					method:     types.MethodCompanyNameMatch,
					reasoning:  "Matched known company: " + company,
				}, true
			}
		}
	}
	return vote{}, false
}

func (c *Categorizer) byKeywords(name, context string) (vote, bool) {
	text := strings.ToLower(name + " " + context)
	ks := c.table.KeywordScoring

	var (
		best        types.Sector
		bestScore   int
		bestMatches []string
	)
	for _, s := range c.table.Sectors {
		score := 0
		var matched []string
		for _, kw := range s.Primary {
			if strings.Contains(text, kw) {
				score += ks.PrimaryWeight
				matched = append(matched, kw)
			}
		}
		for _, kw := range s.Secondary {
			if strings.Contains(text, kw) {
				score += ks.SecondaryWeight
				matched = append(matched, kw)
			}
		}
		// strict comparison keeps the earliest sector on ties
		if score > bestScore {
			best, bestScore, bestMatches = s.Name, score, matched
		}
	}
	if bestScore == 0 {
		return vote{}, false
	}

	shown := bestMatches
	if len(shown) > ks.ReasoningKeywords {
		shown = shown[:ks.ReasoningKeywords]
	}
	return vote{
		category:   best,
		confidence: min(ks.MaxConfidence, ks.BaseConfidence+float64(bestScore)*ks.ConfidenceStep),
		method:     types.MethodKeywordAnalysis,
		reasoning:  "Matched keywords: " + strings.Join(shown, ", "),
	}, true
}

func (c *Categorizer) byPatterns(name, context string) (vote, bool) {
	text := strings.ToLower(name + " " + context)
	for _, p := range c.table.Patterns {
		if p.re.MatchString(text) {
			return vote{
				category:   p.Category,
				confidence: p.Confidence,
				method:     types.MethodPatternMatching,
				reasoning:  "Matched pattern: " + p.Pattern,
			}, true
		}
	}
	return vote{}, false
}

type weighted struct {
	vote
	weight float64
}

// combine fuses matcher votes: none gives the default result, one is
// returned unchanged, several are weighted by method reliability and
// averaged per category.
func (c *Categorizer) combine(votes []vote, threshold float64) types.CategorizationResult {
	switch len(votes) {
	case 0:
		return types.CategorizationResult{
			Category:  types.SectorOther,
			Method:    types.MethodDefault,
			Reasoning: "No categorization methods matched",
		}
	case 1:
		return votes[0].result()
	}

	var order []types.Sector
	byCategory := make(map[types.Sector][]weighted)
	for _, v := range votes {
		if _, seen := byCategory[v.category]; !seen {
			order = append(order, v.category)
		}
		byCategory[v.category] = append(byCategory[v.category], weighted{
			vote:   v,
			weight: v.confidence * c.table.methodWeight(v.method),
		})
	}

	var (
		bestCategory types.Sector
		bestScore    float64
		bestVotes    []weighted
	)
	for _, cat := range order {
		ws := byCategory[cat]
		sum := 0.0
		for _, w := range ws {
			sum += w.weight
		}
		if avg := sum / float64(len(ws)); avg > bestScore {
			bestCategory, bestScore, bestVotes = cat, avg, ws
		}
	}

	if bestScore < threshold {
		return types.CategorizationResult{
			Category:   types.SectorOther,
			Confidence: bestScore,
			Method:     types.MethodThresholdFilter,
			Reasoning:  fmt.Sprintf("Confidence %.2f below threshold %v", bestScore, threshold),
		}
	}

	methods := make([]types.Method, 0, len(bestVotes))
	var uniqueMethods, reasons []string
	seen := make(map[types.Method]bool)
	for _, w := range bestVotes {
		methods = append(methods, w.method)
		if !seen[w.method] {
			seen[w.method] = true
			uniqueMethods = append(uniqueMethods, string(w.method))
		}
		if len(reasons) < 2 {
			reasons = append(reasons, w.reasoning)
		}
	}

	return types.CategorizationResult{
		Category:            bestCategory,
		Confidence:          bestScore,
		Method:              types.MethodCombined,
		Reasoning:           fmt.Sprintf("Combined from %s: %s", strings.Join(uniqueMethods, ", "), strings.Join(reasons, "; ")),
		ContributingMethods: methods,
	}
}

func (c *Categorizer) validate(name string, r types.CategorizationResult) types.CategorizationValidation {
	v := types.CategorizationValidation{
		IsValid:  true,
		Issues:   []string{},
		Warnings: []string{},
	}

	if !c.table.IsValidCategory(r.Category) {
		v.IsValid = false
		v.Issues = append(v.Issues, fmt.Sprintf("Invalid category: %s", r.Category))
	}

	if r.Confidence < c.table.LowConfidenceWarning {
		v.Warnings = append(v.Warnings, "Low confidence categorization")
	}

	if c.hasConflictingIndicators(name, r.Category) {
		v.Warnings = append(v.Warnings, "Potential conflicting sector indicators")
	}

	return v
}

func (c *Categorizer) hasConflictingIndicators(name string, category types.Sector) bool {
	lower := strings.ToLower(name)
	for _, term := range c.table.Conflicts[category] {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
