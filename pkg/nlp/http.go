package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

// HTTPConfig configures an HTTPAnnotator.
type HTTPConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration

	// ByteOffsets is set when the service reports byte offsets. spaCy
	// reports character (code point) offsets, which are converted.
	ByteOffsets bool
}

// HTTPAnnotator calls an annotation service that accepts {"text": ...} and
// answers with spaCy-style JSON:
//
//	{
//	  "sents":  [{"start": 0, "end": 42}],
//	  "tokens": [{"text": "Apple", "start": 0, "end": 5, "dep": "nsubj", "head": 3}],
//	  "ents":   [{"text": "Apple", "label": "ORG", "start": 0, "end": 5}],
//	  "dependency_parsed": true
//	}
//
// Offsets in the response are character offsets, as spaCy's start_char and
// end_char, unless HTTPConfig.ByteOffsets is set; they are remapped to byte
// offsets before the Doc is returned.
//
// It is the only built-in backend that can supply dependency edges.
type HTTPAnnotator struct {
	endpoint    string
	apiKey      string
	byteOffsets bool
	httpClient  *http.Client
}

type annotateRequest struct {
	Text string `json:"text"`
}

type annotateResponse struct {
	Sents            []Sentence   `json:"sents"`
	Tokens           []Token      `json:"tokens"`
	Ents             []EntitySpan `json:"ents"`
	DependencyParsed bool         `json:"dependency_parsed"`
}

// NewHTTPAnnotator creates a new HTTP annotator
func NewHTTPAnnotator(cfg HTTPConfig) (*HTTPAnnotator, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPAnnotator{
		endpoint:    strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:      cfg.APIKey,
		byteOffsets: cfg.ByteOffsets,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Name implements Annotator
func (a *HTTPAnnotator) Name() string { return string(ProviderHTTP) }

// Annotate implements Annotator
func (a *HTTPAnnotator) Annotate(ctx context.Context, text string) (*Doc, error) {
	reqBody, err := json.Marshal(annotateRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint+"/annotate", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, NewAnnotationError(a.Name(), fmt.Errorf("%w: %v", ErrAnnotatorUnavailable, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewAnnotationError(a.Name(), fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		var apiError struct {
			Detail string `json:"detail"`
		}
		_ = json.Unmarshal(body, &apiError)
		return nil, NewAnnotationError(a.Name(), fmt.Errorf("API error (status %d): %s", resp.StatusCode, apiError.Detail))
	}

	var out annotateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, NewAnnotationError(a.Name(), fmt.Errorf("failed to decode response: %w", err))
	}

	if !a.byteOffsets {
		toBytes := charToByteOffsets(text)
		for i := range out.Sents {
			out.Sents[i].Start, out.Sents[i].End = toBytes(out.Sents[i].Start), toBytes(out.Sents[i].End)
		}
		for i := range out.Tokens {
			out.Tokens[i].Start, out.Tokens[i].End = toBytes(out.Tokens[i].Start), toBytes(out.Tokens[i].End)
		}
		for i := range out.Ents {
			out.Ents[i].Start, out.Ents[i].End = toBytes(out.Ents[i].Start), toBytes(out.Ents[i].End)
		}
	}

	doc := &Doc{
		Text:             text,
		Sentences:        out.Sents,
		Tokens:           out.Tokens,
		Entities:         out.Ents,
		DependencyParsed: out.DependencyParsed,
	}
	if len(doc.Tokens) == 0 {
		doc.Tokens = Tokenize(text)
		doc.DependencyParsed = false
	}
	if len(doc.Sentences) == 0 {
		doc.Sentences = SplitSentences(text, doc.Tokens)
	}
	for i := range doc.Entities {
		doc.Entities[i].Label = Label(strings.ToUpper(string(doc.Entities[i].Label)))
	}
	sortEntities(doc.Entities)
	return doc, nil
}

// charToByteOffsets maps character offsets of text to byte offsets.
// Offsets outside the text are clamped to its bounds.
func charToByteOffsets(text string) func(int) int {
	if utf8.RuneCountInString(text) == len(text) {
		return func(i int) int { return min(max(i, 0), len(text)) }
	}
	offsets := make([]int, 0, len(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))
	return func(i int) int {
		return offsets[min(max(i, 0), len(offsets)-1)]
	}
}

// Health checks that the annotation service responds.
func (a *HTTPAnnotator) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoint+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %d", resp.StatusCode)
	}
	return nil
}
