package nlp

import (
	"fmt"
	"strings"
	"time"

	"github.com/soundprediction/orgsignal/pkg/config"
)

// NewAnnotator builds the pure Go backend named by cfg.Provider. The gliner
// and rustbert backends need native libraries and are constructed by their
// own packages; asking for them here returns ErrCGORequired.
func NewAnnotator(cfg config.NLPConfig) (Annotator, error) {
	switch ProviderID(cfg.Provider) {
	case ProviderRules, "":
		return NewRuleAnnotator(DefaultRuleConfig()), nil
	case ProviderHTTP:
		return NewHTTPAnnotator(HTTPConfig{
			Endpoint:    cfg.Endpoint,
			Timeout:     time.Duration(cfg.Timeout) * time.Second,
			ByteOffsets: cfg.ByteOffsets,
		})
	case ProviderGLiNER, ProviderRustBert:
		return nil, fmt.Errorf("%s: %w", cfg.Provider, ErrCGORequired)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
}

// MapLabel maps a backend specific label to a coarse Label. It returns false
// for labels the extractor does not use (MISC, dates, ...).
func MapLabel(label string) (Label, bool) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(label, "B-"), "I-")) {
	case "org", "organization", "organisation", "company":
		return LabelOrg, true
	case "per", "person":
		return LabelPerson, true
	case "gpe", "country", "city", "state":
		return LabelGPE, true
	case "loc", "location", "region":
		return LabelLoc, true
	}
	return "", false
}

// NewModelDoc builds a Doc for backends that only predict entity surface
// forms. Tokens and sentences come from the rule tokenizer, and each entity
// is anchored to the next unused occurrence of its text.
func NewModelDoc(text string, found []EntitySpan) *Doc {
	tokens := Tokenize(text)
	return &Doc{
		Text:      text,
		Tokens:    tokens,
		Sentences: SplitSentences(text, tokens),
		Entities:  AlignEntities(text, found),
	}
}

// AlignEntities recovers byte offsets for entities that carry only text,
// scanning left to right. Entities whose text cannot be found are dropped and
// overlapping spans are resolved longest first.
func AlignEntities(text string, found []EntitySpan) []EntitySpan {
	used := make(map[[2]int]bool)
	cursor := 0
	var cands []candidate
	for _, e := range found {
		surface := strings.TrimSpace(e.Text)
		if surface == "" {
			continue
		}
		start := indexFrom(text, surface, cursor, used)
		if start < 0 {
			start = indexFrom(text, surface, 0, used)
		}
		if start < 0 {
			continue
		}
		end := start + len(surface)
		used[[2]int{start, end}] = true
		cursor = end
		e.Text, e.Start, e.End = surface, start, end
		cands = append(cands, candidate{EntitySpan: e})
	}
	return resolveOverlaps(cands)
}

func indexFrom(text, surface string, from int, used map[[2]int]bool) int {
	for from <= len(text) {
		i := strings.Index(text[from:], surface)
		if i < 0 {
			return -1
		}
		start := from + i
		if !used[[2]int{start, start + len(surface)}] {
			return start
		}
		from = start + 1
	}
	return -1
}
