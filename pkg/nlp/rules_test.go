package nlp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Apple Inc. hired AT&T's U.S. staff.")
	texts := make([]string, len(tokens))
	for i, tok := range tokens {
		texts[i] = tok.Text
		assert.Equal(t, -1, tok.Head)
	}
	assert.Equal(t, []string{"Apple", "Inc", ".", "hired", "AT&T's", "U.S", ".", "staff", "."}, texts)
	assert.Equal(t, 0, tokens[0].Start)
	assert.Equal(t, 5, tokens[0].End)
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Sentence
	}{
		{
			name: "two sentences",
			text: "Raytheon builds missiles. Boeing builds planes.",
			want: []Sentence{{0, 25}, {26, 47}},
		},
		{
			name: "abbreviations do not split",
			text: "Dr. Smith met Gen. Jones at Acme Inc. headquarters.",
			want: []Sentence{{0, 51}},
		},
		{
			name: "lower case continuation does not split",
			text: "It cost 3.5 bn. more than planned.",
			want: []Sentence{{0, 34}},
		},
		{
			name: "blank line splits",
			text: "First line\n\nsecond line",
			want: []Sentence{{0, 10}, {12, 23}},
		},
		{
			name: "closing quote stays with sentence",
			text: `He said "no." Then he left.`,
			want: []Sentence{{0, 13}, {14, 27}},
		},
		{
			name: "empty",
			text: "   ",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.text, Tokenize(tt.text)))
		})
	}
}

func TestRuleAnnotator(t *testing.T) {
	a := NewRuleAnnotator(DefaultRuleConfig())
	assert.Equal(t, "rules", a.Name())

	t.Run("org, person and places", func(t *testing.T) {
		text := "Apple Inc. CEO Tim Cook visited Cupertino, California yesterday."
		doc, err := a.Annotate(context.Background(), text)
		require.NoError(t, err)

		assert.False(t, doc.HasDependencies())
		require.Len(t, doc.Sentences, 1)
		assert.Equal(t, text, doc.SentenceText(doc.Sentences[0]))

		require.Len(t, doc.Entities, 4)
		assert.Equal(t, EntitySpan{Text: "Apple Inc.", Label: LabelOrg, Start: 0, End: 10}, doc.Entities[0])
		assert.Equal(t, EntitySpan{Text: "Tim Cook", Label: LabelPerson, Start: 15, End: 23}, doc.Entities[1])
		assert.Equal(t, EntitySpan{Text: "Cupertino", Label: LabelGPE, Start: 32, End: 41}, doc.Entities[2])
		assert.Equal(t, EntitySpan{Text: "California", Label: LabelGPE, Start: 43, End: 53}, doc.Entities[3])
	})

	t.Run("curated organizations beat person pattern", func(t *testing.T) {
		doc, err := a.Annotate(context.Background(), "Lockheed Martin won the contract.")
		require.NoError(t, err)
		require.Len(t, doc.Entities, 1)
		assert.Equal(t, LabelOrg, doc.Entities[0].Label)
		assert.Equal(t, "Lockheed Martin", doc.Entities[0].Text)
	})

	t.Run("honorific person", func(t *testing.T) {
		doc, err := a.Annotate(context.Background(), "the report by Dr. Haddad was cited")
		require.NoError(t, err)
		require.Len(t, doc.Entities, 1)
		assert.Equal(t, "Dr. Haddad", doc.Entities[0].Text)
		assert.Equal(t, LabelPerson, doc.Entities[0].Label)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := a.Annotate(ctx, "Raytheon")
		assert.Error(t, err)
	})
}

func TestDocHelpers(t *testing.T) {
	text := "Raytheon builds missiles. Boeing builds planes."
	doc, err := NewRuleAnnotator(DefaultRuleConfig()).Annotate(context.Background(), text)
	require.NoError(t, err)

	s, ok := doc.SentenceAt(30)
	require.True(t, ok)
	assert.Equal(t, "Boeing builds planes.", doc.SentenceText(s))

	_, ok = doc.SentenceAt(25)
	assert.False(t, ok, "inter-sentence whitespace belongs to no sentence")

	first, _ := doc.SentenceAt(0)
	ents := doc.EntitiesIn(first)
	require.Len(t, ents, 1)
	assert.Equal(t, "Raytheon", ents[0].Text)

	_, ok = doc.HeadOf(0)
	assert.False(t, ok)
}

func TestAlignEntities(t *testing.T) {
	text := "Boeing and Airbus compete. Boeing won."
	got := AlignEntities(text, []EntitySpan{
		{Text: "Boeing", Label: LabelOrg},
		{Text: "Airbus", Label: LabelOrg},
		{Text: "Boeing", Label: LabelOrg},
		{Text: "Embraer", Label: LabelOrg},
		{Text: "Airbus compete", Label: LabelOrg},
	})

	require.Len(t, got, 3)
	assert.Equal(t, 0, got[0].Start)
	assert.Equal(t, "Airbus compete", got[1].Text)
	assert.Equal(t, 27, got[2].Start)
	assert.Equal(t, 33, got[2].End)
}
