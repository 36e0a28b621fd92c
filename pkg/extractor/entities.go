package extractor

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/soundprediction/orgsignal/pkg/nlp"
	"github.com/soundprediction/orgsignal/pkg/types"
)

var (
	orgSuffixes       = []string{"inc", "corp", "ltd", "llc", "company", "group", "systems"}
	orgContextWords   = []string{"company", "corporation", "firm", "organization"}
	countryIndicators = []string{"republic", "kingdom", "states", "federation"}
	countryContext    = []string{"country", "nation", "government"}
	geoContextWords   = []string{"in", "from", "to", "at", "near", "country", "city"}
	reportingSpeech   = []string{"said", "stated", "according to", "spokesperson"}
)

type rolePattern struct {
	role string
	re   *regexp.Regexp
}

// rolePatterns are tried in order; the first title found in the context
// wins.
var rolePatterns = []rolePattern{
	{"ceo", regexp.MustCompile(`(?i)\b(?:ceo|chief executive officer)\b`)},
	{"president", regexp.MustCompile(`(?i)\b(?:president|pres\.?)\b`)},
	{"director", regexp.MustCompile(`(?i)\b(?:director|dir\.?)\b`)},
	{"manager", regexp.MustCompile(`(?i)\b(?:manager|mgr\.?)\b`)},
	{"minister", regexp.MustCompile(`(?i)\b(?:minister|min\.?)\b`)},
	{"general", regexp.MustCompile(`(?i)\b(?:general|gen\.?)\b`)},
	{"colonel", regexp.MustCompile(`(?i)\b(?:colonel|col\.?)\b`)},
	{"admiral", regexp.MustCompile(`(?i)\b(?:admiral|adm\.?)\b`)},
}

type knownOrg struct {
	key string
	re  *regexp.Regexp
}

func compileKnown(names []string) []knownOrg {
	out := make([]knownOrg, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		out = append(out, knownOrg{
			key: strings.ToLower(n),
			re:  regexp.MustCompile(`(?i)` + regexp.QuoteMeta(n)),
		})
	}
	return out
}

func (e *Extractor) extractOrganizations(doc *nlp.Doc) []types.Organization {
	orgs := []types.Organization{}
	seen := make(map[string]bool)

	for _, ent := range doc.Entities {
		if ent.Label != nlp.LabelOrg && ent.Label != nlp.LabelPerson {
			continue
		}
		surface := spanText(doc, ent)
		name := strings.TrimSpace(surface)
		key := strings.ToLower(name)
		if seen[key] || utf8.RuneCountInString(name) < 3 {
			continue
		}
		seen[key] = true

		context := window(doc.Text, ent.Start, ent.End, e.opts.ContextWindow)
		orgs = append(orgs, types.Organization{
			Name:       name,
			Category:   e.categorizer.Categorize(name, context).Category,
			Confidence: orgConfidence(surface, context),
			Context:    context,
			Span:       types.Span{Start: ent.Start, End: ent.End},
			Label:      string(ent.Label),
		})
	}

	// names the backend missed; case is taken from the text
	for _, k := range e.known {
		if seen[k.key] {
			continue
		}
		loc := k.re.FindStringIndex(doc.Text)
		if loc == nil {
			continue
		}
		name := doc.Text[loc[0]:loc[1]]
		context := window(doc.Text, loc[0], loc[1], e.opts.ContextWindow)
		orgs = append(orgs, types.Organization{
			Name:       name,
			Category:   e.categorizer.Categorize(name, context).Category,
			Confidence: 0.8,
			Context:    context,
			Span:       types.Span{Start: loc[0], End: loc[1]},
			Label:      string(nlp.LabelOrg),
		})
		seen[k.key] = true
	}

	sort.SliceStable(orgs, func(i, j int) bool { return orgs[i].Confidence > orgs[j].Confidence })
	return orgs
}

func (e *Extractor) extractLocations(doc *nlp.Doc) []types.Location {
	locs := []types.Location{}
	seen := make(map[string]bool)

	for _, ent := range doc.Entities {
		if ent.Label != nlp.LabelGPE && ent.Label != nlp.LabelLoc {
			continue
		}
		surface := spanText(doc, ent)
		name := strings.TrimSpace(surface)
		key := strings.ToLower(name)
		if seen[key] || utf8.RuneCountInString(name) < 2 {
			continue
		}
		seen[key] = true

		context := window(doc.Text, ent.Start, ent.End, e.opts.ContextWindow)
		locs = append(locs, types.Location{
			Name:       name,
			Type:       locationType(surface, ent.Label, context),
			Confidence: locationConfidence(surface, context),
			Context:    context,
			Span:       types.Span{Start: ent.Start, End: ent.End},
			Label:      string(ent.Label),
		})
	}

	sort.SliceStable(locs, func(i, j int) bool { return locs[i].Confidence > locs[j].Confidence })
	return locs
}

func (e *Extractor) extractPersons(doc *nlp.Doc) []types.Person {
	persons := []types.Person{}
	seen := make(map[string]bool)

	for _, ent := range doc.Entities {
		if ent.Label != nlp.LabelPerson {
			continue
		}
		surface := spanText(doc, ent)
		name := strings.TrimSpace(surface)
		key := strings.ToLower(name)
		if seen[key] || utf8.RuneCountInString(name) < 3 {
			continue
		}
		seen[key] = true

		context := window(doc.Text, ent.Start, ent.End, e.opts.ContextWindow)
		role := identifyRole(context)
		persons = append(persons, types.Person{
			Name:         name,
			Role:         role,
			Organization: associatedOrganization(doc, ent),
			Confidence:   personConfidence(surface, context, role),
			Context:      context,
			Span:         types.Span{Start: ent.Start, End: ent.End},
			Label:        string(ent.Label),
		})
	}

	sort.SliceStable(persons, func(i, j int) bool { return persons[i].Confidence > persons[j].Confidence })
	return persons
}

func orgConfidence(surface, context string) float64 {
	confidence := 0.5
	if startsUpper(surface) {
		confidence += 0.1
	}
	if containsAny(strings.ToLower(surface), orgSuffixes) {
		confidence += 0.2
	}
	if containsAny(strings.ToLower(context), orgContextWords) {
		confidence += 0.1
	}
	return min(1.0, confidence)
}

func locationType(surface string, label nlp.Label, context string) types.LocationType {
	if label != nlp.LabelGPE {
		return types.LocationTypeLocation
	}
	if containsAny(strings.ToLower(surface), countryIndicators) ||
		containsAny(strings.ToLower(context), countryContext) {
		return types.LocationTypeCountry
	}
	return types.LocationTypeCity
}

func locationConfidence(surface, context string) float64 {
	confidence := 0.6
	if startsUpper(surface) {
		confidence += 0.1
	}
	if containsAny(strings.ToLower(context), geoContextWords) {
		confidence += 0.2
	}
	return min(1.0, confidence)
}

func personConfidence(surface, context, role string) float64 {
	confidence := 0.4
	parts := strings.Fields(surface)
	if len(parts) >= 2 {
		allUpper := true
		for _, p := range parts {
			if !startsUpper(p) {
				allUpper = false
				break
			}
		}
		if allUpper {
			confidence += 0.2
		}
	}
	if role != "" {
		confidence += 0.3
	}
	if containsAny(strings.ToLower(context), reportingSpeech) {
		confidence += 0.1
	}
	return min(1.0, confidence)
}

func identifyRole(context string) string {
	for _, p := range rolePatterns {
		if p.re.MatchString(context) {
			return p.role
		}
	}
	return ""
}

// associatedOrganization returns the ORG span closest to person within the
// same sentence. Ties go to the earlier span.
func associatedOrganization(doc *nlp.Doc, person nlp.EntitySpan) string {
	sent, ok := doc.SentenceAt(person.Start)
	if !ok {
		return ""
	}
	best, bestDist := "", -1
	for _, ent := range doc.EntitiesIn(sent) {
		if ent.Label != nlp.LabelOrg || (ent.Start == person.Start && ent.End == person.End) {
			continue
		}
		dist := 0
		switch {
		case ent.End <= person.Start:
			dist = person.Start - ent.End
		case ent.Start >= person.End:
			dist = ent.Start - person.End
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = strings.TrimSpace(spanText(doc, ent)), dist
		}
	}
	return best
}

// spanText prefers the backend's surface form and falls back to slicing the
// document text.
func spanText(doc *nlp.Doc, ent nlp.EntitySpan) string {
	if ent.Text != "" {
		return ent.Text
	}
	if ent.Start >= 0 && ent.End <= len(doc.Text) && ent.Start <= ent.End {
		return doc.Text[ent.Start:ent.End]
	}
	return ""
}

// window returns the trimmed text within radius bytes of [start, end),
// widened to rune boundaries.
func window(text string, start, end, radius int) string {
	lo := max(0, start-radius)
	hi := min(len(text), end+radius)
	if lo >= hi {
		return ""
	}
	for lo > 0 && !utf8.RuneStart(text[lo]) {
		lo--
	}
	for hi < len(text) && !utf8.RuneStart(text[hi]) {
		hi++
	}
	return strings.TrimSpace(text[lo:hi])
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsUpper(r)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
