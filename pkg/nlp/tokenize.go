package nlp

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:[&'’.\-][\p{L}\p{N}]+)*|\S`)

// abbreviations never end a sentence when followed by a period.
var abbreviations = map[string]bool{
	"inc": true, "corp": true, "ltd": true, "co": true, "bros": true,
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
	"gen": true, "col": true, "adm": true, "lt": true, "sgt": true, "capt": true,
	"st": true, "jr": true, "sr": true, "vs": true,
	"u.s": true, "u.k": true, "e.g": true, "i.e": true,
}

// Tokenize splits text into word and punctuation tokens with byte offsets.
// Head is set to -1 on every token.
func Tokenize(text string) []Token {
	locs := tokenPattern.FindAllStringIndex(text, -1)
	tokens := make([]Token, 0, len(locs))
	for _, loc := range locs {
		tokens = append(tokens, Token{
			Text:  text[loc[0]:loc[1]],
			Start: loc[0],
			End:   loc[1],
			Head:  -1,
		})
	}
	return tokens
}

// SplitSentences groups tokens into sentences. A sentence ends at '.', '!'
// or '?' when the next token starts with an upper-case letter, a digit or an
// opening quote, unless the period follows a known abbreviation. A blank line
// always ends a sentence.
func SplitSentences(text string, tokens []Token) []Sentence {
	if len(tokens) == 0 {
		return nil
	}

	var sents []Sentence
	start := tokens[0].Start
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		last := i == len(tokens)-1
		if last {
			sents = append(sents, Sentence{Start: start, End: tok.End})
			break
		}

		next := tokens[i+1]
		if strings.Contains(text[tok.End:next.Start], "\n\n") {
			sents = append(sents, Sentence{Start: start, End: tok.End})
			start = next.Start
			continue
		}

		if !isTerminal(tok.Text) {
			continue
		}
		if tok.Text == "." && i > 0 && tok.Start == tokens[i-1].End &&
			abbreviations[strings.ToLower(tokens[i-1].Text)] {
			continue
		}

		// absorb closing quotes and brackets into the sentence
		end := i
		for end+1 < len(tokens) && isCloser(tokens[end+1].Text) && tokens[end+1].Start == tokens[end].End {
			end++
		}
		if end+1 >= len(tokens) {
			sents = append(sents, Sentence{Start: start, End: tokens[end].End})
			break
		}
		if !startsSentence(tokens[end+1].Text) {
			i = end
			continue
		}
		sents = append(sents, Sentence{Start: start, End: tokens[end].End})
		start = tokens[end+1].Start
		i = end
	}
	return sents
}

func isTerminal(s string) bool {
	return s == "." || s == "!" || s == "?"
}

func isCloser(s string) bool {
	switch s {
	case `"`, "'", ")", "]", "”", "’":
		return true
	}
	return false
}

func startsSentence(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	switch {
	case unicode.IsUpper(r), unicode.IsDigit(r):
		return true
	case r == '"' || r == '“' || r == '(' || r == '\'':
		return true
	}
	return false
}
