// Package gliner runs GLiNER span models through go-gline-rs as an
// annotation backend.
package gliner

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/soundprediction/go-gline-rs/pkg/gline"
)

// Client owns a loaded GLiNER span model. Predictions are serialized.
type Client struct {
	spanModel *gline.Model
	mu        sync.Mutex
}

// NewClient loads a span model from a local directory containing model.onnx
// and tokenizer.json, or from a Hugging Face model ID.
func NewClient(modelID string) (*Client, error) {
	if err := gline.Init(); err != nil {
		return nil, fmt.Errorf("failed to init gline: %w", err)
	}

	if _, err := os.Stat(modelID); err == nil {
		modelPath := filepath.Join(modelID, "model.onnx")
		tokPath := filepath.Join(modelID, "tokenizer.json")
		m, err := gline.NewSpanModel(modelPath, tokPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load span model from %s: %w", modelID, err)
		}
		return &Client{spanModel: m}, nil
	}

	m, err := gline.NewSpanModelFromHF(modelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load span model %s: %w", modelID, err)
	}
	return &Client{spanModel: m}, nil
}

// Close releases the model.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.spanModel != nil {
		c.spanModel.Close()
		c.spanModel = nil
	}
}

// Entity is a predicted entity surface form.
type Entity struct {
	Text  string
	Label string
	Score float32
}

// ExtractEntities predicts entities of the given labels in text.
func (c *Client) ExtractEntities(text string, labels []string) ([]Entity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.spanModel == nil {
		return nil, fmt.Errorf("span model not loaded")
	}

	results, err := c.spanModel.Predict([]string{text}, labels)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return []Entity{}, nil
	}

	entities := make([]Entity, 0, len(results[0]))
	for _, e := range results[0] {
		entities = append(entities, Entity{
			Text:  e.Text,
			Label: e.Label,
			Score: e.Probability,
		})
	}
	return entities, nil
}
