package nlp

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

// RuleConfig holds the curated vocabularies of the rule backend.
type RuleConfig struct {
	// Organizations are matched verbatim as ORG.
	Organizations []string `yaml:"organizations"`

	// Locations are matched verbatim as GPE.
	Locations []string `yaml:"locations"`
}

// DefaultRuleConfig returns the built-in vocabularies.
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		Organizations: []string{
			"Microsoft", "Apple", "Google", "Raytheon", "Lockheed Martin", "NSO Group",
		},
		Locations: []string{
			"California", "Cupertino", "Gaza", "Palestine", "Israel", "Syria",
			"Lebanon", "Jordan", "Egypt", "Iran", "Iraq", "Yemen", "Qatar",
			"Saudi Arabia", "United Arab Emirates", "United States", "United Kingdom",
			"Russia", "Ukraine", "China", "Washington", "London", "Tel Aviv",
			"Jerusalem", "West Bank", "Beirut", "Damascus", "Cairo",
		},
	}
}

type rulePattern struct {
	label Label
	re    *regexp.Regexp
}

// RuleAnnotator is a pure Go backend: regex tokenizer, abbreviation-aware
// sentence splitter and pattern-based NER. It does not parse dependencies.
type RuleAnnotator struct {
	patterns []rulePattern
}

// NewRuleAnnotator builds a RuleAnnotator from cfg.
func NewRuleAnnotator(cfg RuleConfig) *RuleAnnotator {
	patterns := []rulePattern{
		{LabelOrg, regexp.MustCompile(`\b[A-Z][a-zA-Z]*\s+(?:(?:Inc|Corp|Ltd)\b\.?|(?:LLC|Company|Group|Systems)\b)`)},
	}
	if re := alternation(cfg.Organizations); re != nil {
		patterns = append(patterns, rulePattern{LabelOrg, re})
	}
	patterns = append(patterns,
		rulePattern{LabelPerson, regexp.MustCompile(`\b[A-Z][a-z]+\s+[A-Z][a-z]+\b`)},
		rulePattern{LabelPerson, regexp.MustCompile(`\b(?:Mr|Ms|Mrs|Dr)\.?\s+[A-Z][a-z]+\b`)},
	)
	if re := alternation(cfg.Locations); re != nil {
		patterns = append(patterns, rulePattern{LabelGPE, re})
	}
	return &RuleAnnotator{patterns: patterns}
}

// alternation compiles a word-bounded, longest-first alternation of names.
func alternation(names []string) *regexp.Regexp {
	if len(names) == 0 {
		return nil
	}
	sorted := append([]string(nil), names...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	quoted := make([]string, 0, len(sorted))
	for _, n := range sorted {
		if n = strings.TrimSpace(n); n != "" {
			quoted = append(quoted, regexp.QuoteMeta(n))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// Name implements Annotator
func (a *RuleAnnotator) Name() string { return string(ProviderRules) }

// Annotate implements Annotator
func (a *RuleAnnotator) Annotate(ctx context.Context, text string) (*Doc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tokens := Tokenize(text)
	return &Doc{
		Text:      text,
		Tokens:    tokens,
		Sentences: SplitSentences(text, tokens),
		Entities:  a.findEntities(text),
	}, nil
}

type candidate struct {
	EntitySpan
	priority int
}

func (a *RuleAnnotator) findEntities(text string) []EntitySpan {
	var cands []candidate
	for prio, p := range a.patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			cands = append(cands, candidate{
				EntitySpan: EntitySpan{Text: text[loc[0]:loc[1]], Label: p.label, Start: loc[0], End: loc[1]},
				priority:   prio,
			})
		}
	}
	return resolveOverlaps(cands)
}

// resolveOverlaps keeps the longest candidates first, then the earliest, then
// the highest priority pattern, dropping anything that overlaps a kept span.
func resolveOverlaps(cands []candidate) []EntitySpan {
	sort.SliceStable(cands, func(i, j int) bool {
		li, lj := cands[i].End-cands[i].Start, cands[j].End-cands[j].Start
		if li != lj {
			return li > lj
		}
		if cands[i].Start != cands[j].Start {
			return cands[i].Start < cands[j].Start
		}
		return cands[i].priority < cands[j].priority
	})

	var kept []EntitySpan
	for _, c := range cands {
		overlaps := false
		for _, k := range kept {
			if c.Start < k.End && k.Start < c.End {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, c.EntitySpan)
		}
	}
	sortEntities(kept)
	return kept
}
