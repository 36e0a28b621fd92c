package orgsignal

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soundprediction/orgsignal/pkg/config"
	"github.com/soundprediction/orgsignal/pkg/metrics"
	"github.com/soundprediction/orgsignal/pkg/nlp"
	"github.com/soundprediction/orgsignal/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectSourceType(t *testing.T) {
	assert.Equal(t, "html", detectSourceType("report.HTML", ""))
	assert.Equal(t, "html", detectSourceType("page.htm", ""))
	assert.Equal(t, "text", detectSourceType("notes.txt", ""))
	assert.Equal(t, "text", detectSourceType("-", ""))
	assert.Equal(t, "text", detectSourceType("page.html", "text"))
}

func TestReadDocuments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>Raytheon</p>"), 0o644))

	docs, err := readDocuments(strings.NewReader("from stdin"), nil, "")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "-", docs[0].ID)
	assert.Equal(t, "from stdin", docs[0].Text)

	docs, err = readDocuments(nil, []string{path}, "")
	require.NoError(t, err)
	assert.Equal(t, "html", docs[0].SourceType)
	assert.Equal(t, "<p>Raytheon</p>", docs[0].Text)

	_, err = readDocuments(nil, []string{filepath.Join(dir, "missing.txt")}, "")
	assert.Error(t, err)
}

func TestReadRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orgs.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name": "Raytheon"}, {"name": "JPMorgan Chase",},]`), 0o644))

	records, err := readRecords(nil, path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "JPMorgan Chase", records[1]["name"])

	records, err = readRecords(strings.NewReader(`[{"name": "Shell"}]`), "-")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestBuildAnnotator(t *testing.T) {
	var closers []func() error
	addCloser := func(fn func() error) { closers = append(closers, fn) }

	cfg := config.Default()
	a, err := buildAnnotator(cfg, nil, addCloser)
	require.NoError(t, err)
	assert.Equal(t, "rules", a.Name())

	cfg.NLP.Provider = "http"
	cfg.NLP.Endpoint = "http://localhost:9999"
	cfg.CircuitBreaker.Enabled = true
	a, err = buildAnnotator(cfg, nil, addCloser)
	require.NoError(t, err)
	assert.IsType(t, &nlp.CircuitBreakerAnnotator{}, a)

	cfg = config.Default()
	cfg.NLP.Provider = "spacy"
	_, err = buildAnnotator(cfg, nil, addCloser)
	assert.ErrorIs(t, err, nlp.ErrUnknownProvider)
	assert.Empty(t, closers)
}

func TestAppCloseOrder(t *testing.T) {
	var order []int
	a := &app{}
	for i := range 3 {
		a.addCloser(func() error { order = append(order, i); return nil })
	}
	require.NoError(t, a.close())
	assert.Equal(t, []int{2, 1, 0}, order)
	assert.NoError(t, a.close())
}

func TestOverrideStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.json")
	cfg := config.Default().Categorization

	s, err := openOverrides(cfg, path, true, metrics.NewRegistry(), nil)
	require.NoError(t, err)
	require.NoError(t, s.add("Acme Widgets", types.SectorRetail, "test", []string{"hardware"}))
	assert.Error(t, s.add("Acme Widgets", "spaceflight", "", nil))
	assert.Error(t, s.remove("Nobody"))

	// exclusive lock held
	_, err = openOverrides(cfg, path, false, metrics.NewRegistry(), nil)
	assert.Error(t, err)
	require.NoError(t, s.close())

	s, err = openOverrides(cfg, path, false, metrics.NewRegistry(), nil)
	require.NoError(t, err)
	o, ok := s.cat.Override("acme widgets")
	require.True(t, ok)
	assert.Equal(t, types.SectorRetail, o.Category)
	assert.Equal(t, []string{"hardware"}, o.Subcategories)

	// shared locks coexist
	reader, err := openOverrides(cfg, path, false, metrics.NewRegistry(), nil)
	require.NoError(t, err)
	require.NoError(t, reader.close())
	require.NoError(t, s.close())

	s, err = openOverrides(cfg, path, true, metrics.NewRegistry(), nil)
	require.NoError(t, err)
	n, err := s.merge([]byte(`{"Initech": {"category": "technology", "reason": "imported",}}`))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NoError(t, s.remove("acme widgets"))
	require.NoError(t, s.close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var stored map[string]types.ManualOverride
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Len(t, stored, 1)
	assert.Contains(t, stored, "initech")
}

func TestCategorizeCommandUsesOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	overrides := filepath.Join(home, "overrides.json")
	require.NoError(t, os.WriteFile(overrides, []byte(`{"raytheon": {"category": "technology", "reason": "test"}}`), 0o644))
	cfgPath := filepath.Join(home, "orgsignal.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("categorization:\n  overrides_path: "+overrides+"\n"), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--config", cfgPath, "categorize", "Raytheon"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())

	var result types.CategorizationResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, types.SectorTechnology, result.Category)
	assert.Equal(t, types.MethodManualOverride, result.Method)
}

func TestRenderTables(t *testing.T) {
	var out bytes.Buffer
	renderCategorizations(&out, []string{"Raytheon"}, []types.CategorizationResult{{
		Category: types.SectorMilitary, Confidence: 0.9, Method: types.MethodCompanyNameMatch,
	}})
	renderOverrides(&out, nil)

	assert.Contains(t, out.String(), "Raytheon")
	assert.Contains(t, out.String(), "0.90")
	assert.Contains(t, out.String(), "none")
}

func TestProviderIDs(t *testing.T) {
	assert.Equal(t, []nlp.ProviderID{"gliner", "http", "rules", "rustbert"}, providerIDs(""))
	assert.Equal(t, []nlp.ProviderID{"http"}, providerIDs(nlp.TaskDependencyParsing))

	var out bytes.Buffer
	renderProviders(&out, providerIDs(nlp.TaskNamedEntityRecognition))
	assert.Contains(t, out.String(), "urchade/gliner_multi-v2.1")
	assert.Contains(t, out.String(), "bert-base-ner")
}
