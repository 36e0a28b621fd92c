package orgsignal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/soundprediction/orgsignal/pkg/categorizer"
	"github.com/soundprediction/orgsignal/pkg/config"
	"github.com/soundprediction/orgsignal/pkg/extractor"
	"github.com/soundprediction/orgsignal/pkg/metrics"
	"github.com/soundprediction/orgsignal/pkg/nlp"
	"github.com/soundprediction/orgsignal/pkg/preprocess"
	"github.com/soundprediction/orgsignal/pkg/types"
	"github.com/soundprediction/orgsignal/pkg/utils"
)

// Document is one input of a batch.
type Document struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	SourceType string `json:"source_type"`
}

// Result is the outcome of processing one document. Preprocessing is nil
// when the input was rejected.
type Result struct {
	DocumentID      string                     `json:"document_id,omitempty"`
	InputValidation preprocess.InputValidation `json:"input_validation"`
	Preprocessing   *preprocess.Result         `json:"preprocessing,omitempty"`
	Extraction      *types.ExtractionResult    `json:"extraction"`
	Validation      types.ExtractionValidation `json:"validation"`
	ProcessedAt     time.Time                  `json:"processed_at"`
}

// Config holds configuration for the Pipeline.
type Config struct {
	// MaxLength is the longest accepted input in characters
	MaxLength int
	// Concurrency bounds ProcessBatch; zero reads ORGSIGNAL_CONCURRENCY
	Concurrency int
}

// Pipeline runs input validation, preprocessing, extraction and extraction
// validation over documents.
//
// Process and ProcessBatch only read the categorizer's override registry.
// Callers mutating overrides while documents are in flight must serialize
// the two.
type Pipeline struct {
	preprocessor *preprocess.Preprocessor
	extractor    *extractor.Extractor
	config       *Config
	logger       *slog.Logger
}

// NewPipeline creates a Pipeline around ext.
func NewPipeline(ext *extractor.Extractor, cfg *Config, logger *slog.Logger) *Pipeline {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = preprocess.DefaultMaxLength
	}
	if logger == nil {
		logger = slog.Default()
	}
	ext.SetLogger(logger)
	return &Pipeline{
		preprocessor: preprocess.New(logger),
		extractor:    ext,
		config:       cfg,
		logger:       logger,
	}
}

// NewPipelineFromConfig wires the categorizer, extractor and pipeline from
// application configuration around an already constructed annotator.
func NewPipelineFromConfig(cfg *config.Config, annotator nlp.Annotator, reg *metrics.Registry, logger *slog.Logger) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	cat, err := categorizer.NewFromConfig(cfg.Categorization, reg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create categorizer: %w", err)
	}
	ext := extractor.New(annotator, cat, extractor.OptionsFromConfig(cfg.Extraction, reg), logger)
	return NewPipeline(ext, &Config{
		MaxLength:   cfg.Preprocess.MaxLength,
		Concurrency: cfg.Extraction.Concurrency,
	}, logger), nil
}

// Extractor returns the entity extractor
func (p *Pipeline) Extractor() *extractor.Extractor { return p.extractor }

// Categorizer returns the organization categorizer
func (p *Pipeline) Categorizer() *categorizer.Categorizer { return p.extractor.Categorizer() }

// Preprocessor returns the text preprocessor
func (p *Pipeline) Preprocessor() *preprocess.Preprocessor { return p.preprocessor }

// Process runs the full pipeline over text. It never fails: rejected input
// yields the input validation and an empty extraction.
func (p *Pipeline) Process(ctx context.Context, text, sourceType string) *Result {
	result := &Result{
		InputValidation: p.preprocessor.ValidateInput(text, p.config.MaxLength),
		ProcessedAt:     time.Now().UTC(),
	}

	if !result.InputValidation.IsValid {
		p.logger.Warn("Rejected input", "errors", result.InputValidation.Errors)
		result.Extraction = types.NewEmptyExtractionResult(p.extractor.ModelName())
		result.Validation = extractor.ValidateExtractions(result.Extraction)
		return result
	}
	for _, w := range result.InputValidation.Warnings {
		p.logger.Warn("Input warning", "warning", w)
	}

	pre := p.preprocessor.Preprocess(text, sourceType)
	result.Preprocessing = &pre
	result.Extraction = p.extractor.ExtractEntities(ctx, pre.ProcessedText)
	result.Validation = extractor.ValidateExtractions(result.Extraction)
	return result
}

// ProcessBatch processes docs concurrently. Results and errors are indexed
// like docs; an error is set only when a document was not processed
// because ctx ended or processing panicked.
func (p *Pipeline) ProcessBatch(ctx context.Context, docs []Document) ([]*Result, []error) {
	pool := utils.NewWorkerPool[Document, *Result](p.concurrency(), func(ctx context.Context, d Document) (*Result, error) {
		r := p.Process(ctx, d.Text, d.SourceType)
		r.DocumentID = d.ID
		return r, nil
	})
	results, errs := pool.ProcessItems(ctx, docs)

	failed := 0
	for i, err := range errs {
		if err == nil {
			continue
		}
		failed++
		var pe *utils.PanicError
		if errors.As(err, &pe) {
			p.logger.Error("Document processing panicked", "document_id", docs[i].ID, "error", err)
		}
	}
	if failed > 0 {
		p.logger.Warn("Batch finished with failures", "documents", len(docs), "failed", failed)
	}
	return results, errs
}

func (p *Pipeline) concurrency() int {
	if p.config.Concurrency > 0 {
		return p.config.Concurrency
	}
	return utils.GetConcurrencyLimit()
}
