package dto

import (
	"fmt"
	"strings"

	"github.com/soundprediction/orgsignal"
)

// ExtractRequest asks for extraction over one document
type ExtractRequest struct {
	Text       string `json:"text" binding:"required"`
	SourceType string `json:"source_type,omitempty"`
}

// Validate performs validation on ExtractRequest
func (r *ExtractRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return ErrEmptyText
	}
	if len(r.Text) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}

// BatchExtractRequest asks for extraction over several documents
type BatchExtractRequest struct {
	Documents []orgsignal.Document `json:"documents" binding:"required"`
}

// Validate performs validation on BatchExtractRequest
func (r *BatchExtractRequest) Validate() error {
	if len(r.Documents) == 0 {
		return ErrEmptyBatch
	}
	if len(r.Documents) > MaxBatchSize {
		return ErrBatchTooLarge
	}
	for i, d := range r.Documents {
		if len(d.Text) > MaxContentLength {
			return fmt.Errorf("document %d: %w", i, ErrContentTooLong)
		}
	}
	return nil
}

// BatchExtractItem is one entry of a batch response. Error is set when
// the document was not processed.
type BatchExtractItem struct {
	Result *orgsignal.Result `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// BatchExtractResponse is the response of a batch extraction
type BatchExtractResponse struct {
	Results []BatchExtractItem `json:"results"`
	Failed  int                `json:"failed"`
}

// PreprocessRequest asks for text cleaning only
type PreprocessRequest struct {
	Text       string `json:"text"`
	SourceType string `json:"source_type,omitempty"`
	MaxLength  int    `json:"max_length,omitempty"`
}
