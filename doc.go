// Package orgsignal turns free-form journalistic and report text into
// structured signal: organizations with an industry sector, locations,
// persons with roles, the relationships between them, and a confidence for
// every item.
//
// # Basic Usage
//
// Build a Pipeline around an NLP backend:
//
//	annotator := nlp.NewRuleAnnotator(nlp.DefaultRuleConfig())
//	pipeline, err := orgsignal.NewPipelineFromConfig(config.Default(), annotator, nil, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result := pipeline.Process(ctx, "Raytheon is a defense contractor.", preprocess.SourceText)
//	for _, org := range result.Extraction.Organizations {
//		fmt.Println(org.Name, org.Category, org.Confidence)
//	}
//
// # Stages
//
// Process validates the input (length, encoding, embedded scripts), cleans
// and normalizes it (HTML stripping, Unicode normalization, language
// detection), runs the extractor and finally scores the extraction quality.
// None of the stages return errors; rejected input and backend failures
// produce an empty extraction and are logged.
//
// # NLP Backends
//
// The extractor depends only on the nlp.Annotator interface. Built-in
// backends are the pure Go rule annotator, an HTTP client for a remote
// annotation service (the only backend providing dependency parses), and
// the cgo GLiNER and rust-bert adapters in pkg/gliner and pkg/rustbert.
//
// # Manual Overrides
//
// Categorizer overrides pin an organization to a sector regardless of
// context:
//
//	pipeline.Categorizer().AddManualOverride("Acme", types.SectorMilitary, "analyst review")
//
// Overrides persist only through explicit ExportOverrides/ImportOverrides
// calls.
package orgsignal
