// Package nlp defines the annotation capability consumed by the extractor.
//
// An Annotator turns raw text into a Doc: sentence boundaries, a token stream
// with byte offsets, optional dependency edges, and entity spans with coarse
// labels (ORG, PERSON, GPE, LOC). The extraction core depends only on this
// contract; each concrete backend lives behind its own adapter.
//
// # Backends
//
//   - RuleAnnotator: pure Go tokenizer, sentence splitter and pattern NER.
//     Never produces dependency edges.
//   - HTTPAnnotator: calls an annotation service that returns spaCy-style
//     JSON, including dependency edges when the service model has a parser.
//   - gliner and rustbert packages: local span/NER models via Rust bindings.
//
// # Wrappers
//
//   - CircuitBreakerAnnotator: stops calling a failing backend and raises an
//     alert when the breaker opens.
//
// # Usage
//
//	ann := nlp.NewRuleAnnotator(nlp.DefaultRuleConfig())
//	doc, err := ann.Annotate(ctx, "Apple Inc. CEO Tim Cook visited Cupertino.")
//	for _, ent := range doc.Entities {
//	    fmt.Println(ent.Label, ent.Text)
//	}
//
// # Error Handling
//
// Backend failures are reported as *AnnotationError, which wraps the cause and
// supports errors.Is against ErrAnnotatorUnavailable and ErrCGORequired.
package nlp
