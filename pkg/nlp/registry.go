package nlp

import "slices"

// TaskCapability represents a specific NLP task that a backend can perform.
type TaskCapability string

const (
	// TaskTokenization represents tokenization and sentence segmentation.
	TaskTokenization TaskCapability = "tokenization"
	// TaskNamedEntityRecognition represents named entity recognition (NER).
	TaskNamedEntityRecognition TaskCapability = "ner"
	// TaskDependencyParsing represents syntactic dependency parsing.
	TaskDependencyParsing TaskCapability = "dependency_parsing"
)

// ProviderID represents a unique identifier for an annotation backend.
type ProviderID string

const (
	// ProviderRules is the ID for the built-in rule backend.
	ProviderRules ProviderID = "rules"
	// ProviderHTTP is the ID for a remote spaCy-style annotation service.
	ProviderHTTP ProviderID = "http"
	// ProviderGLiNER is the ID for the GLiNER local provider.
	ProviderGLiNER ProviderID = "gliner"
	// ProviderRustBert is the ID for the RustBert local provider.
	ProviderRustBert ProviderID = "rustbert"
)

// Provider represents an annotation backend.
type Provider struct {
	ID           ProviderID
	Name         string
	Description  string
	IsLocal      bool
	RequiresCGO  bool
	Capabilities []TaskCapability
}

// Model represents a specific NER model.
type Model struct {
	ID          string
	Name        string
	ProviderID  ProviderID
	Description string
}

// BuiltInProviders contains the standard set of supported providers.
var BuiltInProviders = map[ProviderID]Provider{
	ProviderRules: {
		ID:           ProviderRules,
		Name:         "Rules",
		Description:  "Pattern-based tokenizer, sentence splitter and entity recognizer",
		IsLocal:      true,
		Capabilities: []TaskCapability{TaskTokenization, TaskNamedEntityRecognition},
	},
	ProviderHTTP: {
		ID:           ProviderHTTP,
		Name:         "HTTP",
		Description:  "Remote annotation service returning spaCy-style documents",
		IsLocal:      false,
		Capabilities: []TaskCapability{TaskTokenization, TaskNamedEntityRecognition, TaskDependencyParsing},
	},
	ProviderGLiNER: {
		ID:           ProviderGLiNER,
		Name:         "GLiNER",
		Description:  "Generalist Model for Named Entity Recognition via Rust bindings",
		IsLocal:      true,
		RequiresCGO:  true,
		Capabilities: []TaskCapability{TaskNamedEntityRecognition},
	},
	ProviderRustBert: {
		ID:           ProviderRustBert,
		Name:         "RustBert",
		Description:  "Rust-based BERT token classification models via bindings",
		IsLocal:      true,
		RequiresCGO:  true,
		Capabilities: []TaskCapability{TaskNamedEntityRecognition},
	},
}

// BuiltInModels contains a curated list of built-in models.
var BuiltInModels = []Model{
	// --- GLiNER ---
	{
		ID:          "urchade/gliner_multi-v2.1",
		Name:        "GLiNER Multi v2.1",
		ProviderID:  ProviderGLiNER,
		Description: "Multilingual GLiNER model for zero-shot NER",
	},
	{
		ID:          "urchade/gliner_base",
		Name:        "GLiNER Base",
		ProviderID:  ProviderGLiNER,
		Description: "Base English GLiNER model for zero-shot NER",
	},
	{
		ID:          "onnx-community/gliner_small-v2.1",
		Name:        "GLiNER Small v2.1",
		ProviderID:  ProviderGLiNER,
		Description: "Lightweight multilingual GLiNER model",
	},

	// --- RustBert ---
	{
		ID:          "bert-base-ner",
		Name:        "BERT NER",
		ProviderID:  ProviderRustBert,
		Description: "Default BERT-based CoNLL-03 Named Entity Recognition",
	},
}

// GetProvider returns the provider with the given ID.
func GetProvider(id ProviderID) (Provider, bool) {
	p, ok := BuiltInProviders[id]
	return p, ok
}

// GetModel returns the model with the given ID.
func GetModel(id string) (Model, bool) {
	for _, m := range BuiltInModels {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// GetModelsByProvider returns all models for a specific provider.
func GetModelsByProvider(providerID ProviderID) []Model {
	var models []Model
	for _, m := range BuiltInModels {
		if m.ProviderID == providerID {
			models = append(models, m)
		}
	}
	return models
}

// GetProvidersByCapability returns the IDs of providers supporting a task, sorted.
func GetProvidersByCapability(capability TaskCapability) []ProviderID {
	var ids []ProviderID
	for id, p := range BuiltInProviders {
		if slices.Contains(p.Capabilities, capability) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}
