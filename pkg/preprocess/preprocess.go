// Package preprocess cleans raw article text before entity extraction:
// HTML stripping, unicode and whitespace normalization, coarse language
// detection and input validation.
package preprocess

import (
	"fmt"
	stdhtml "html"
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxLength is the input limit applied by ValidateInput callers that
// have no configured limit.
const DefaultMaxLength = 50000

// Step names recorded in Result.PreprocessingSteps.
const (
	StepHTMLCleaning      = "html_cleaning"
	StepTextNormalization = "text_normalization"
	StepLanguageDetection = "language_detection"
)

// Source types understood by Preprocess.
const (
	SourceText = "text"
	SourceHTML = "html"
	SourcePDF  = "pdf"
)

// SupportedLanguages maps the codes DetectLanguage can return to names.
var SupportedLanguages = map[string]string{
	"en": "English",
	"ar": "Arabic",
	"he": "Hebrew",
}

// Result is the outcome of Preprocess. Lengths count characters.
type Result struct {
	ProcessedText      string   `json:"processed_text"`
	OriginalLength     int      `json:"original_length"`
	ProcessedLength    int      `json:"processed_length"`
	Language           string   `json:"language"`
	SourceType         string   `json:"source_type"`
	PreprocessingSteps []string `json:"preprocessing_steps"`
	CompressionRatio   float64  `json:"compression_ratio"`
}

// InputValidation reports whether text may be processed.
type InputValidation struct {
	IsValid    bool     `json:"is_valid"`
	Errors     []string `json:"errors"`
	Warnings   []string `json:"warnings"`
	TextLength int      `json:"text_length"`
}

// Preprocessor is stateless apart from its logger and safe for concurrent use.
type Preprocessor struct {
	logger *slog.Logger
}

// New creates a Preprocessor. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Preprocessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Preprocessor{logger: logger}
}

// SetLogger sets the logger.
func (p *Preprocessor) SetLogger(logger *slog.Logger) {
	if logger != nil {
		p.logger = logger
	}
}

var (
	spaceTabRun = regexp.MustCompile(`[ \t]+`)
	blankLines  = regexp.MustCompile(`\n[\s\p{Z}]*\n`)
	scriptTag   = regexp.MustCompile(`(?i)<script`)
)

// collapseWhitespace replaces every unicode whitespace run with one space and
// trims the result.
func collapseWhitespace(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// NormalizeText decomposes unicode (NFD), drops control characters other
// than \n, \t and \r, collapses space and tab runs, squeezes blank line runs
// to a single blank line, converts CRLF to LF and trims every line.
func (p *Preprocessor) NormalizeText(text string) (out string) {
	if text == "" {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("Text normalization failed, collapsing whitespace", "error", r)
			out = collapseWhitespace(text)
		}
	}()

	text = nfd(text)
	text = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			return -1
		}
		return r
	}, text)

	text = spaceTabRun.ReplaceAllString(text, " ")
	text = blankLines.ReplaceAllString(text, "\n\n")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// DetectLanguage guesses the language of text from the script of its first
// 1000 characters: Arabic, Hebrew or Latin (reported as English). The script
// with the highest share wins if it covers more than 10% of the sample;
// anything else is reported as "en". Latin script languages other than
// English are not distinguished.
func (p *Preprocessor) DetectLanguage(text string) string {
	if text == "" {
		return "en"
	}
	sample := text
	if utf8.RuneCountInString(sample) > 1000 {
		sample = string([]rune(sample)[:1000])
	}
	sample = strings.TrimSpace(sample)
	if sample == "" {
		return "en"
	}

	var arabic, hebrew, latin, total int
	for _, r := range sample {
		total++
		switch {
		case (r >= 0x0600 && r <= 0x06FF) || (r >= 0x0750 && r <= 0x077F) || (r >= 0x08A0 && r <= 0x08FF):
			arabic++
		case r >= 0x0590 && r <= 0x05FF:
			hebrew++
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			latin++
		}
	}

	// ties keep the earlier script, matching the scoring order ar, he, en
	best, bestCount := "en", 0
	for _, s := range []struct {
		lang  string
		count int
	}{{"ar", arabic}, {"he", hebrew}, {"en", latin}} {
		if s.count > bestCount {
			best, bestCount = s.lang, s.count
		}
	}
	if bestCount > 0 && float64(bestCount)/float64(total) > 0.1 {
		return best
	}
	return "en"
}

// Preprocess runs HTML cleaning (for sourceType "html" or text containing
// '<'), normalization and language detection.
func (p *Preprocessor) Preprocess(text, sourceType string) Result {
	if sourceType == "" {
		sourceType = SourceText
	}
	if text == "" {
		return Result{
			Language:           "en",
			SourceType:         sourceType,
			PreprocessingSteps: []string{},
		}
	}

	steps := make([]string, 0, 3)
	originalLength := utf8.RuneCountInString(text)

	if sourceType == SourceHTML || strings.Contains(text, "<") {
		text = p.CleanHTML(text)
		steps = append(steps, StepHTMLCleaning)
	}

	text = p.NormalizeText(text)
	steps = append(steps, StepTextNormalization)

	language := p.DetectLanguage(text)
	steps = append(steps, StepLanguageDetection)

	processedLength := utf8.RuneCountInString(text)
	p.logger.Debug("Preprocessed text",
		"source_type", sourceType,
		"original_length", originalLength,
		"processed_length", processedLength,
		"language", language)

	return Result{
		ProcessedText:      text,
		OriginalLength:     originalLength,
		ProcessedLength:    processedLength,
		Language:           language,
		SourceType:         sourceType,
		PreprocessingSteps: steps,
		CompressionRatio:   float64(processedLength) / float64(originalLength),
	}
}

// ValidateInput checks text against processing limits. Empty text and text
// longer than maxLength characters are invalid; embedded script tags and
// invalid UTF-8 only produce warnings. maxLength <= 0 uses DefaultMaxLength.
func (p *Preprocessor) ValidateInput(text string, maxLength int) InputValidation {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	length := utf8.RuneCountInString(text)
	v := InputValidation{
		IsValid:    true,
		Errors:     []string{},
		Warnings:   []string{},
		TextLength: length,
	}

	if text == "" {
		v.IsValid = false
		v.Errors = append(v.Errors, "Empty text provided")
		return v
	}

	if length > maxLength {
		v.IsValid = false
		v.Errors = append(v.Errors, fmt.Sprintf("Text length (%d) exceeds maximum (%d)", length, maxLength))
	}

	if scriptTag.MatchString(text) {
		v.Warnings = append(v.Warnings, "Potential script tags detected")
	}

	if !utf8.ValidString(text) {
		v.Warnings = append(v.Warnings, "Text contains encoding issues")
	}

	return v
}

// unescape decodes HTML character references.
func unescape(s string) string { return stdhtml.UnescapeString(s) }
