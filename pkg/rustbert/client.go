// Package rustbert runs token classification models through go-rust-bert as
// an annotation backend.
package rustbert

import (
	"fmt"
	"sync"

	"github.com/soundprediction/go-rust-bert/pkg/rustbert"
)

// Client wraps a go-rust-bert NER model.
type Client struct {
	config   Config
	nerModel *rustbert.NERModel
	mu       sync.Mutex
}

// Config holds configuration for the NER model.
type Config struct {
	// NERModelID is a Hugging Face model ID. Empty uses the default BERT
	// CoNLL-03 model.
	NERModelID string
}

// NewClient creates a client. The model is loaded lazily.
func NewClient(cfg Config) *Client {
	return &Client{
		config: cfg,
	}
}

// LoadNERModel loads the NER model if it is not loaded yet.
func (c *Client) LoadNERModel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked()
}

func (c *Client) loadLocked() error {
	if c.nerModel != nil {
		return nil
	}

	if c.config.NERModelID != "" {
		modelPath, configPath, vocabPath, mergesPath, err := rustbert.DownloadArtifacts(c.config.NERModelID, "")
		if err != nil {
			return fmt.Errorf("failed to download artifacts for %s: %w", c.config.NERModelID, err)
		}

		m, err := rustbert.NewNERModelFromFiles(modelPath, configPath, vocabPath, mergesPath, rustbert.ModelTypeBert)
		if err != nil {
			return fmt.Errorf("failed to create custom NER model: %w", err)
		}
		c.nerModel = m
		return nil
	}

	m, err := rustbert.NewNERModel()
	if err != nil {
		return fmt.Errorf("failed to create NER model: %w", err)
	}
	c.nerModel = m
	return nil
}

// Close releases the model.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.nerModel != nil {
		c.nerModel.Close()
		c.nerModel = nil
	}
}

// Entity is one token level prediction.
type Entity struct {
	Text  string
	Label string
	Score float64
}

// ExtractEntities runs NER over text, loading the model on first use.
func (c *Client) ExtractEntities(text string) ([]Entity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loadLocked(); err != nil {
		return nil, err
	}

	results, err := c.nerModel.Predict(text)
	if err != nil {
		return nil, fmt.Errorf("NER prediction failed: %w", err)
	}

	entities := make([]Entity, len(results))
	for i, r := range results {
		entities[i] = Entity{
			Text:  r.Word,
			Label: r.Label,
			Score: r.Score,
		}
	}
	return entities, nil
}
