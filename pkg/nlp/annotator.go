package nlp

import (
	"context"
	"sort"
)

// Label is a coarse entity label.
type Label string

const (
	LabelOrg    Label = "ORG"
	LabelPerson Label = "PERSON"
	LabelGPE    Label = "GPE"
	LabelLoc    Label = "LOC"
)

// Annotator is the NLP capability the extractor consumes.
type Annotator interface {
	// Name identifies the backend in logs and result metadata.
	Name() string

	// Annotate analyses text. Offsets in the returned Doc are byte offsets
	// into text.
	Annotate(ctx context.Context, text string) (*Doc, error)
}

// Token is a single token with its byte offsets. Dep and Head are only
// meaningful when the owning Doc has DependencyParsed set; Head is the index
// of the syntactic head in Doc.Tokens, or -1.
type Token struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Dep   string `json:"dep,omitempty"`
	Head  int    `json:"head"`
}

// Sentence is a byte range [Start, End) of the document text.
type Sentence struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether pos falls inside the sentence.
func (s Sentence) Contains(pos int) bool { return s.Start <= pos && pos < s.End }

// EntitySpan is a base entity recognised by the backend.
type EntitySpan struct {
	Text  string  `json:"text"`
	Label Label   `json:"label"`
	Start int     `json:"start"`
	End   int     `json:"end"`
	Score float64 `json:"score,omitempty"`
}

// Doc is the annotated form of a text.
type Doc struct {
	Text             string       `json:"text"`
	Sentences        []Sentence   `json:"sentences"`
	Tokens           []Token      `json:"tokens"`
	Entities         []EntitySpan `json:"entities"`
	DependencyParsed bool         `json:"dependency_parsed"`
}

// HasDependencies reports whether dependency edges are available.
func (d *Doc) HasDependencies() bool {
	return d != nil && d.DependencyParsed && len(d.Tokens) > 0
}

// SentenceAt returns the sentence containing pos.
func (d *Doc) SentenceAt(pos int) (Sentence, bool) {
	i := sort.Search(len(d.Sentences), func(i int) bool { return d.Sentences[i].End > pos })
	if i < len(d.Sentences) && d.Sentences[i].Contains(pos) {
		return d.Sentences[i], true
	}
	return Sentence{}, false
}

// SentenceText returns the text of s.
func (d *Doc) SentenceText(s Sentence) string {
	if s.Start < 0 || s.End > len(d.Text) || s.Start > s.End {
		return ""
	}
	return d.Text[s.Start:s.End]
}

// EntitiesIn returns the entities that start inside s, in document order.
func (d *Doc) EntitiesIn(s Sentence) []EntitySpan {
	var out []EntitySpan
	for _, e := range d.Entities {
		if s.Contains(e.Start) {
			out = append(out, e)
		}
	}
	return out
}

// HeadOf returns the head token of the token at index i.
func (d *Doc) HeadOf(i int) (Token, bool) {
	if i < 0 || i >= len(d.Tokens) {
		return Token{}, false
	}
	h := d.Tokens[i].Head
	if h < 0 || h >= len(d.Tokens) {
		return Token{}, false
	}
	return d.Tokens[h], true
}

// sortEntities orders entities by start offset, longer spans first on ties.
func sortEntities(ents []EntitySpan) {
	sort.SliceStable(ents, func(i, j int) bool {
		if ents[i].Start != ents[j].Start {
			return ents[i].Start < ents[j].Start
		}
		return ents[i].End > ents[j].End
	})
}
