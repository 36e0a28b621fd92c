package extractor

import (
	"regexp"
	"sort"
	"strings"

	"github.com/soundprediction/orgsignal/pkg/nlp"
	"github.com/soundprediction/orgsignal/pkg/types"
)

// dependencyRoles are the dependency labels that link a head entity to a
// child entity.
var dependencyRoles = map[string]bool{
	"nsubj":    true,
	"dobj":     true,
	"pobj":     true,
	"compound": true,
}

const (
	dependencyConfidence = 0.7
	proximityConfidence  = 0.4
)

type relationPattern struct {
	re           *regexp.Regexp
	relationType string
	confidence   float64
}

// relationPatterns run in order over the raw text. Each captures a source
// and a target name fragment.
var relationPatterns = []relationPattern{
	{regexp.MustCompile(`(?i)(\w+)\s+(?:is|was)\s+(?:a|an|the)?\s*(?:subsidiary|division|part)\s+of\s+(\w+)`), types.RelationSubsidiaryOf, 0.8},
	{regexp.MustCompile(`(?i)(\w+)\s+(?:owns|acquired|bought)\s+(\w+)`), types.RelationOwns, 0.8},
	{regexp.MustCompile(`(?i)(\w+)\s+(?:CEO|president|director)\s+(\w+)`), types.RelationLeads, 0.7},
	{regexp.MustCompile(`(?i)(\w+)\s+(?:works|worked)\s+(?:at|for)\s+(\w+)`), types.RelationEmployedBy, 0.6},
	{regexp.MustCompile(`(?i)(\w+)\s+(?:based|located|headquartered)\s+in\s+(\w+)`), types.RelationLocatedIn, 0.8},
	{regexp.MustCompile(`(?i)(\w+)\s+(?:operates|has\s+operations)\s+in\s+(\w+)`), types.RelationOperatesIn, 0.7},
	{regexp.MustCompile(`(?i)(\w+)\s+(?:supplies|provides|sells)\s+(?:to|for)\s+(\w+)`), types.RelationSuppliesTo, 0.7},
	{regexp.MustCompile(`(?i)(\w+)\s+(?:partners|partnered|collaborates)\s+with\s+(\w+)`), types.RelationPartnersWith, 0.6},
}

type lookupEntry struct {
	ref  types.EntityRef
	span types.Span
}

// entityLookup indexes entities by span in insertion order. Registering a
// span again replaces the entry in place.
type entityLookup struct {
	entries []lookupEntry
	index   map[types.Span]int
}

func newEntityLookup(orgs []types.Organization, locs []types.Location, persons []types.Person) *entityLookup {
	l := &entityLookup{index: make(map[types.Span]int)}
	for _, o := range orgs {
		l.put(o.Ref(), o.Span)
	}
	for _, loc := range locs {
		l.put(loc.Ref(), loc.Span)
	}
	for _, p := range persons {
		l.put(p.Ref(), p.Span)
	}
	return l
}

func (l *entityLookup) put(ref types.EntityRef, span types.Span) {
	if i, ok := l.index[span]; ok {
		l.entries[i].ref = ref
		return
	}
	l.index[span] = len(l.entries)
	l.entries = append(l.entries, lookupEntry{ref: ref, span: span})
}

// at returns the first entity whose span contains pos.
func (l *entityLookup) at(pos int) (lookupEntry, bool) {
	for _, e := range l.entries {
		if e.span.Contains(pos) {
			return e, true
		}
	}
	return lookupEntry{}, false
}

// byName returns the first entity whose name contains fragment or is
// contained in it, ignoring case.
func (l *entityLookup) byName(fragment string) (lookupEntry, bool) {
	fragment = strings.ToLower(fragment)
	for _, e := range l.entries {
		name := strings.ToLower(e.ref.Name)
		if strings.Contains(name, fragment) || strings.Contains(fragment, name) {
			return e, true
		}
	}
	return lookupEntry{}, false
}

func (e *Extractor) extractRelationships(doc *nlp.Doc, orgs []types.Organization, locs []types.Location, persons []types.Person) []types.Relationship {
	lookup := newEntityLookup(orgs, locs, persons)

	var rels []types.Relationship
	rels = append(rels, e.dependencyRelationships(doc, lookup)...)
	rels = append(rels, patternRelationships(doc, lookup)...)
	rels = append(rels, e.proximityRelationships(doc, lookup)...)

	rels = deduplicate(rels)
	sort.SliceStable(rels, func(i, j int) bool { return rels[i].Confidence > rels[j].Confidence })
	return rels
}

// dependencyRelationships links the entity at a token to the entity at its
// syntactic head. Skipped when the backend produced no dependency edges.
func (e *Extractor) dependencyRelationships(doc *nlp.Doc, lookup *entityLookup) []types.Relationship {
	if !doc.HasDependencies() {
		return nil
	}

	var rels []types.Relationship
	for i, tok := range doc.Tokens {
		if !dependencyRoles[tok.Dep] {
			continue
		}
		head, ok := doc.HeadOf(i)
		if !ok {
			continue
		}
		headEntity, ok := lookup.at(head.Start)
		if !ok {
			continue
		}
		childEntity, ok := lookup.at(tok.Start)
		if !ok || headEntity.span == childEntity.span {
			continue
		}
		rels = append(rels, newRelationship(headEntity, childEntity, tok.Dep,
			window(doc.Text, tok.Start, tok.End, e.opts.RelationContextWindow),
			dependencyConfidence, types.RelationMethodDependency))
	}
	return rels
}

func patternRelationships(doc *nlp.Doc, lookup *entityLookup) []types.Relationship {
	var rels []types.Relationship
	for _, p := range relationPatterns {
		for _, m := range p.re.FindAllStringSubmatch(doc.Text, -1) {
			source, ok := lookup.byName(m[1])
			if !ok {
				continue
			}
			target, ok := lookup.byName(m[2])
			if !ok {
				continue
			}
			rels = append(rels, newRelationship(source, target, p.relationType, m[0],
				p.confidence, types.RelationMethodPattern))
		}
	}
	return rels
}

// proximityRelationships pairs entities that start within ProximityMaxGap
// of each other's end and share a sentence.
func (e *Extractor) proximityRelationships(doc *nlp.Doc, lookup *entityLookup) []types.Relationship {
	entities := append([]lookupEntry(nil), lookup.entries...)
	sort.SliceStable(entities, func(i, j int) bool { return entities[i].span.Start < entities[j].span.Start })

	var rels []types.Relationship
	for i, first := range entities {
		for _, second := range entities[i+1:] {
			// sorted by start, so no later entity can be closer
			if second.span.Start-first.span.End > e.opts.ProximityMaxGap {
				break
			}
			s1, ok1 := doc.SentenceAt(first.span.Start)
			s2, ok2 := doc.SentenceAt(second.span.Start)
			if !ok1 || !ok2 || s1 != s2 {
				continue
			}
			rels = append(rels, newRelationship(first, second, types.RelationMentionedWith,
				doc.SentenceText(s1), proximityConfidence, types.RelationMethodProximity))
		}
	}
	return rels
}

func newRelationship(source, target lookupEntry, relationType, context string, confidence float64, method types.RelationMethod) types.Relationship {
	return types.Relationship{
		Source:       source.ref,
		Target:       target.ref,
		RelationType: relationType,
		Context:      strings.TrimSpace(context),
		Confidence:   confidence,
		Method:       method,
		SourceSpan:   source.span,
		TargetSpan:   target.span,
	}
}

// deduplicate keeps the first relationship for each key.
func deduplicate(rels []types.Relationship) []types.Relationship {
	out := make([]types.Relationship, 0, len(rels))
	seen := make(map[types.RelationshipKey]bool, len(rels))
	for _, r := range rels {
		k := r.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}
