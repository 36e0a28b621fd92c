package nlp_test

import (
	"errors"
	"testing"

	"github.com/soundprediction/orgsignal/pkg/config"
	"github.com/soundprediction/orgsignal/pkg/nlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProvider(t *testing.T) {
	tests := []struct {
		id      nlp.ProviderID
		wantCGO bool
		wantErr bool
	}{
		{id: nlp.ProviderRules},
		{id: nlp.ProviderHTTP},
		{id: nlp.ProviderGLiNER, wantCGO: true},
		{id: nlp.ProviderRustBert, wantCGO: true},
		{id: "nonexistent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			got, found := nlp.GetProvider(tt.id)
			if tt.wantErr {
				assert.False(t, found)
				return
			}
			assert.True(t, found)
			assert.Equal(t, tt.id, got.ID)
			assert.Equal(t, tt.wantCGO, got.RequiresCGO)
		})
	}
}

func TestGetModel(t *testing.T) {
	got, found := nlp.GetModel("urchade/gliner_multi-v2.1")
	assert.True(t, found)
	assert.Equal(t, nlp.ProviderGLiNER, got.ProviderID)

	_, found = nlp.GetModel("fake-model")
	assert.False(t, found)

	assert.NotEmpty(t, nlp.GetModelsByProvider(nlp.ProviderRustBert))
	assert.Empty(t, nlp.GetModelsByProvider(nlp.ProviderRules))
}

func TestGetProvidersByCapability(t *testing.T) {
	assert.Equal(t, []nlp.ProviderID{nlp.ProviderHTTP}, nlp.GetProvidersByCapability(nlp.TaskDependencyParsing))
	assert.Len(t, nlp.GetProvidersByCapability(nlp.TaskNamedEntityRecognition), 4)
}

func TestNewAnnotator(t *testing.T) {
	t.Run("rules", func(t *testing.T) {
		a, err := nlp.NewAnnotator(config.NLPConfig{Provider: "rules"})
		require.NoError(t, err)
		assert.Equal(t, "rules", a.Name())
	})

	t.Run("http requires endpoint", func(t *testing.T) {
		_, err := nlp.NewAnnotator(config.NLPConfig{Provider: "http"})
		assert.Error(t, err)

		a, err := nlp.NewAnnotator(config.NLPConfig{Provider: "http", Endpoint: "http://localhost:9000", Timeout: 5})
		require.NoError(t, err)
		assert.Equal(t, "http", a.Name())
	})

	t.Run("native backends", func(t *testing.T) {
		_, err := nlp.NewAnnotator(config.NLPConfig{Provider: "gliner"})
		assert.True(t, errors.Is(err, nlp.ErrCGORequired))
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := nlp.NewAnnotator(config.NLPConfig{Provider: "spacy"})
		assert.True(t, errors.Is(err, nlp.ErrUnknownProvider))
	})
}

func TestMapLabel(t *testing.T) {
	tests := []struct {
		in   string
		want nlp.Label
		ok   bool
	}{
		{"organization", nlp.LabelOrg, true},
		{"ORG", nlp.LabelOrg, true},
		{"I-PER", nlp.LabelPerson, true},
		{"person", nlp.LabelPerson, true},
		{"country", nlp.LabelGPE, true},
		{"city", nlp.LabelGPE, true},
		{"B-LOC", nlp.LabelLoc, true},
		{"MISC", "", false},
		{"date", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := nlp.MapLabel(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
