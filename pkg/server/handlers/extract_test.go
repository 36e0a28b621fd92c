package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/orgsignal"
	"github.com/soundprediction/orgsignal/pkg/extractor"
	"github.com/soundprediction/orgsignal/pkg/nlp"
	"github.com/soundprediction/orgsignal/pkg/server/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func extractRouter(p *orgsignal.Pipeline) *gin.Engine {
	h := NewExtractHandler(p, nil, nil)
	r := gin.New()
	r.POST("/extract", h.Extract)
	r.POST("/extract/batch", h.ExtractBatch)
	r.POST("/preprocess", h.Preprocess)
	return r
}

func TestExtract(t *testing.T) {
	r := extractRouter(rulePipeline())

	w := doJSON(t, r, http.MethodPost, "/extract", dto.ExtractRequest{Text: "Raytheon supplies to Israel."})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result orgsignal.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.NotNil(t, result.Extraction)
	require.NotEmpty(t, result.Extraction.Organizations)
	assert.Equal(t, "Raytheon", result.Extraction.Organizations[0].Name)
	assert.Equal(t, "rules", result.Extraction.ProcessingMetadata.ModelUsed)
	assert.True(t, result.Validation.IsValid)
}

func TestExtractErrors(t *testing.T) {
	r := extractRouter(rulePipeline())

	tests := []struct {
		name string
		body any
	}{
		{"malformed json", `{"text": `},
		{"missing text", map[string]string{"source_type": "text"}},
		{"blank text", dto.ExtractRequest{Text: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/extract", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
		})
	}
}

func TestExtractRejectedInput(t *testing.T) {
	ext := extractor.New(nlp.NewRuleAnnotator(nlp.DefaultRuleConfig()), nil, extractor.Options{}, nil)
	r := extractRouter(orgsignal.NewPipeline(ext, &orgsignal.Config{MaxLength: 10}, nil))

	w := doJSON(t, r, http.MethodPost, "/extract", dto.ExtractRequest{Text: "Raytheon supplies to Israel."})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var result orgsignal.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.InputValidation.IsValid)
	assert.NotEmpty(t, result.InputValidation.Errors)
	assert.Nil(t, result.Preprocessing)
}

func TestExtractBatch(t *testing.T) {
	r := extractRouter(rulePipeline())

	w := doJSON(t, r, http.MethodPost, "/extract/batch", dto.BatchExtractRequest{Documents: []orgsignal.Document{
		{ID: "a", Text: "Raytheon builds missiles."},
		{ID: "b", Text: "Apple Inc. opened an office in London."},
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.BatchExtractResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Zero(t, resp.Failed)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "a", resp.Results[0].Result.DocumentID)
	assert.Equal(t, "b", resp.Results[1].Result.DocumentID)

	w = doJSON(t, r, http.MethodPost, "/extract/batch", dto.BatchExtractRequest{Documents: []orgsignal.Document{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreprocess(t *testing.T) {
	r := extractRouter(rulePipeline())

	w := doJSON(t, r, http.MethodPost, "/preprocess", dto.PreprocessRequest{
		Text:       "<p>Raytheon   supplies to Israel.</p>",
		SourceType: "html",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Preprocessing struct {
			ProcessedText string `json:"processed_text"`
		} `json:"preprocessing"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Raytheon supplies to Israel.", body.Preprocessing.ProcessedText)

	w = doJSON(t, r, http.MethodPost, "/preprocess", dto.PreprocessRequest{Text: ""})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
