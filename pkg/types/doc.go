// Package types defines the value types produced by orgsignal.
//
// This package contains the records every other package exchanges:
//   - Organization, Location, Person: entities found in a document
//   - Relationship/EntityRef: links between entities
//   - ExtractionResult: the full structured output of one extraction call
//   - CategorizationResult/ManualOverride: sector classification output
//
// # Spans
//
// Every entity carries a Span of byte offsets into the analysed text. The
// span is the entity's identity for deduplication and relationship linking:
//
//	org := types.Organization{Name: "Raytheon", Span: types.Span{Start: 0, End: 8}}
//	ref := org.Ref()
//
// # JSON Serialization
//
// All types are JSON-serializable with snake_case tags matching the
// persisted extraction format. Slices in an ExtractionResult are never nil
// so empty lists serialize as [].
package types
