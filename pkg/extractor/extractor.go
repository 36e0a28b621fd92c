// Package extractor finds organizations, locations and persons in text,
// links them with relationships and scores everything with heuristic
// confidences.
//
// The Extractor consumes an injected nlp.Annotator for tokens, sentences,
// base entity spans and (optionally) dependency edges. Organizations are
// classified with a categorizer.Categorizer. Extraction never fails: input,
// backend and internal errors all degrade to the canonical empty result and
// are logged.
package extractor

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/soundprediction/orgsignal/pkg/categorizer"
	"github.com/soundprediction/orgsignal/pkg/config"
	"github.com/soundprediction/orgsignal/pkg/metrics"
	"github.com/soundprediction/orgsignal/pkg/nlp"
	"github.com/soundprediction/orgsignal/pkg/telemetry"
	"github.com/soundprediction/orgsignal/pkg/types"
	"github.com/soundprediction/orgsignal/pkg/utils"
)

// DefaultKnownOrganizations are scanned for verbatim when the backend
// misses them.
var DefaultKnownOrganizations = []string{
	"Raytheon", "Lockheed Martin", "Boeing", "Northrop Grumman",
	"General Dynamics", "BAE Systems", "Thales", "Airbus",
	"NSO Group", "Cellebrite", "Palantir", "Clearview AI",
}

const (
	DefaultContextWindow         = 50
	DefaultRelationContextWindow = 30
	DefaultProximityMaxGap       = 100
)

// Options tunes the extraction heuristics. Zero values select the defaults.
type Options struct {
	// ContextWindow is the radius in bytes of the context kept around each
	// entity.
	ContextWindow int

	// RelationContextWindow is the radius of the context kept around the
	// token of a dependency relationship.
	RelationContextWindow int

	// ProximityMaxGap is the largest distance between two entities that
	// still yields a mentioned_with relationship.
	ProximityMaxGap int

	// KnownOrganizations overrides DefaultKnownOrganizations when non-nil.
	KnownOrganizations []string

	Metrics *metrics.Registry
}

func (o Options) withDefaults() Options {
	if o.ContextWindow <= 0 {
		o.ContextWindow = DefaultContextWindow
	}
	if o.RelationContextWindow <= 0 {
		o.RelationContextWindow = DefaultRelationContextWindow
	}
	if o.ProximityMaxGap <= 0 {
		o.ProximityMaxGap = DefaultProximityMaxGap
	}
	if o.KnownOrganizations == nil {
		o.KnownOrganizations = DefaultKnownOrganizations
	}
	return o
}

// OptionsFromConfig maps the extraction section of the configuration.
func OptionsFromConfig(cfg config.ExtractionConfig, reg *metrics.Registry) Options {
	opts := Options{
		ContextWindow:         cfg.ContextWindow,
		RelationContextWindow: cfg.RelationContextWindow,
		ProximityMaxGap:       cfg.ProximityMaxGap,
		Metrics:               reg,
	}
	if len(cfg.KnownOrganizations) > 0 {
		opts.KnownOrganizations = cfg.KnownOrganizations
	}
	return opts
}

// Extractor runs entity and relationship extraction.
type Extractor struct {
	annotator   nlp.Annotator
	categorizer *categorizer.Categorizer
	opts        Options
	known       []knownOrg
	logger      *slog.Logger
}

// New creates an Extractor. A nil categorizer uses a default one; a nil
// logger uses slog.Default().
func New(annotator nlp.Annotator, cat *categorizer.Categorizer, opts Options, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cat == nil {
		cat = categorizer.New(categorizer.Options{Metrics: opts.Metrics}, logger)
	}
	opts = opts.withDefaults()
	return &Extractor{
		annotator:   annotator,
		categorizer: cat,
		opts:        opts,
		known:       compileKnown(opts.KnownOrganizations),
		logger:      logger,
	}
}

// SetLogger sets the logger.
func (e *Extractor) SetLogger(logger *slog.Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// Categorizer returns the categorizer used for organizations.
func (e *Extractor) Categorizer() *categorizer.Categorizer { return e.categorizer }

// Annotator returns the annotation backend, possibly nil.
func (e *Extractor) Annotator() nlp.Annotator { return e.annotator }

// ModelName returns the name of the annotation backend.
func (e *Extractor) ModelName() string {
	if e.annotator == nil {
		return "none"
	}
	return e.annotator.Name()
}

// ExtractEntities analyses text and returns the structured extraction. It
// never returns nil and never fails; errors are logged and yield the
// canonical empty result.
func (e *Extractor) ExtractEntities(ctx context.Context, text string) *types.ExtractionResult {
	if text == "" {
		e.record("empty", time.Now(), nil)
		return types.NewEmptyExtractionResult(e.ModelName())
	}

	id := uuid.New().String()
	ctx = telemetry.WithExtractionID(ctx, id)
	start := time.Now()

	result, err := e.extract(ctx, text)
	if err != nil {
		e.logger.ErrorContext(ctx, "Error extracting entities",
			"backend", e.ModelName(),
			"text_length", utf8.RuneCountInString(text),
			"error", err)
		var annErr *nlp.AnnotationError
		if e.opts.Metrics != nil && errors.As(err, &annErr) {
			e.opts.Metrics.RecordAnnotatorFailure(annErr.Backend)
		}
		e.record("error", start, nil)
		return types.NewEmptyExtractionResult(e.ModelName())
	}

	result.ProcessingMetadata.ExtractionID = id
	e.record("ok", start, result)
	e.logger.DebugContext(ctx, "Extracted entities",
		"organizations", len(result.Organizations),
		"locations", len(result.Locations),
		"persons", len(result.Persons),
		"relationships", result.TotalRelationships,
		"duration", time.Since(start))
	return result
}

func (e *Extractor) extract(ctx context.Context, text string) (result *types.ExtractionResult, err error) {
	defer utils.RecoverAsError(&err)

	if e.annotator == nil {
		return nil, nlp.ErrAnnotatorUnavailable
	}
	doc, err := e.annotator.Annotate(ctx, text)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nlp.NewAnnotationError(e.annotator.Name(), errors.New("nil document"))
	}
	if doc.Text == "" {
		doc.Text = text
	}

	orgs := e.extractOrganizations(doc)
	locs := e.extractLocations(doc)
	persons := e.extractPersons(doc)
	rels := e.extractRelationships(doc, orgs, locs, persons)

	return &types.ExtractionResult{
		Organizations:      orgs,
		Locations:          locs,
		Persons:            persons,
		Relationships:      rels,
		ConfidenceScores:   confidenceScores(orgs, locs, persons),
		TotalEntities:      len(orgs) + len(locs) + len(persons),
		TotalRelationships: len(rels),
		ProcessingMetadata: types.ProcessingMetadata{
			ModelUsed:          e.annotator.Name(),
			TextLength:         utf8.RuneCountInString(text),
			SentencesProcessed: len(doc.Sentences),
			DependencyParsed:   doc.HasDependencies(),
		},
	}, nil
}

func (e *Extractor) record(status string, start time.Time, r *types.ExtractionResult) {
	if e.opts.Metrics == nil {
		return
	}
	if r == nil {
		e.opts.Metrics.RecordExtraction(status, time.Since(start), 0, 0, 0)
		return
	}
	e.opts.Metrics.RecordExtraction(status, time.Since(start), len(r.Organizations), len(r.Locations), len(r.Persons))
	for _, rel := range r.Relationships {
		e.opts.Metrics.RecordRelationship(string(rel.Method))
	}
}

func confidenceScores(orgs []types.Organization, locs []types.Location, persons []types.Person) types.ConfidenceScores {
	mean := func(sum float64, n int) float64 {
		if n == 0 {
			return 0
		}
		return sum / float64(n)
	}

	// overall accumulates in list order so it matches summing the
	// concatenated lists
	var sumO, sumL, sumP, overall float64
	for _, o := range orgs {
		sumO += o.Confidence
		overall += o.Confidence
	}
	for _, l := range locs {
		sumL += l.Confidence
		overall += l.Confidence
	}
	for _, p := range persons {
		sumP += p.Confidence
		overall += p.Confidence
	}
	return types.ConfidenceScores{
		Organizations: mean(sumO, len(orgs)),
		Locations:     mean(sumL, len(locs)),
		Persons:       mean(sumP, len(persons)),
		Overall:       mean(overall, len(orgs)+len(locs)+len(persons)),
	}
}
