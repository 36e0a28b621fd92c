package types

// ConfidenceScores holds mean confidences per entity type.
type ConfidenceScores struct {
	Organizations float64 `json:"organizations"`
	Locations     float64 `json:"locations"`
	Persons       float64 `json:"persons"`
	Overall       float64 `json:"overall"`
}

// ProcessingMetadata describes how a result was produced.
type ProcessingMetadata struct {
	// ExtractionID uniquely identifies the extraction call
	ExtractionID string `json:"extraction_id,omitempty"`

	// ModelUsed is the name of the NLP backend
	ModelUsed string `json:"model_used"`

	// TextLength is the length of the analysed text in characters
	TextLength int `json:"text_length"`

	// SentencesProcessed is the number of sentences in the annotated doc
	SentencesProcessed int `json:"sentences_processed"`

	// DependencyParsed reports whether the dependency pass ran
	DependencyParsed bool `json:"dependency_parsed"`
}

// ExtractionResult is the structured output of one extraction call.
type ExtractionResult struct {
	Organizations      []Organization     `json:"organizations"`
	Locations          []Location         `json:"locations"`
	Persons            []Person           `json:"persons"`
	Relationships      []Relationship     `json:"relationships"`
	ConfidenceScores   ConfidenceScores   `json:"confidence_scores"`
	TotalEntities      int                `json:"total_entities"`
	TotalRelationships int                `json:"total_relationships"`
	ProcessingMetadata ProcessingMetadata `json:"processing_metadata"`
}

// NewEmptyExtractionResult returns the canonical empty result.
func NewEmptyExtractionResult(modelUsed string) *ExtractionResult {
	return &ExtractionResult{
		Organizations: []Organization{},
		Locations:     []Location{},
		Persons:       []Person{},
		Relationships: []Relationship{},
		ProcessingMetadata: ProcessingMetadata{
			ModelUsed: modelUsed,
		},
	}
}

// IsEmpty returns true if no entities or relationships were extracted.
func (r *ExtractionResult) IsEmpty() bool {
	if r == nil {
		return true
	}
	return r.TotalEntities == 0 && r.TotalRelationships == 0
}

// ExtractionValidation is the quality report for an extraction result.
type ExtractionValidation struct {
	IsValid         bool     `json:"is_valid"`
	QualityScore    float64  `json:"quality_score"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
}
