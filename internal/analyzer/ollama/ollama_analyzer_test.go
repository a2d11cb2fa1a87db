package ollama_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"labvista/internal/analyzer"
	ollama "labvista/internal/analyzer/ollama"
	"labvista/internal/config"
	"labvista/internal/port"
)

func newTestAnalyzer(serverURL string) *ollama.Analyzer {
	cfg := &config.AnalyzerProviderConfig{
		Provider:     "ollama",
		BaseURL:      serverURL,
		DefaultModel: "deepseek-r1:8b",
		TimeoutSecs:  30,
	}
	return ollama.NewAnalyzer(cfg)
}

func TestOllamaAnalyzer_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&reqBody)
		assert.NoError(t, err)
		assert.Equal(t, "deepseek-r1:8b", reqBody["model"])
		assert.Equal(t, false, reqBody["stream"])
		assert.Contains(t, reqBody["prompt"], "Glucose 92 mg/dL")

		options := reqBody["options"].(map[string]interface{})
		assert.Equal(t, float64(2000), options["num_predict"])
		assert.Equal(t, 0.1, options["temperature"])
		assert.Equal(t, 0.9, options["top_p"])

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"response": `{"patientInfo":{"id":"p1","name":"Jane Doe","lastTestDate":"2025-01-10"}}`,
			"done":     true,
		})
	}))
	defer server.Close()

	a := newTestAnalyzer(server.URL)

	out, err := a.Analyze(context.Background(), port.AnalyzeInput{
		Text: "Glucose 92 mg/dL",
	})

	assert.NoError(t, err)
	assert.NotNil(t, out)
	assert.Equal(t, "deepseek-r1:8b", out.ModelUsed)
	assert.Contains(t, out.RawText, "Jane Doe")
}

func TestOllamaAnalyzer_RequiresText(t *testing.T) {
	a := newTestAnalyzer("http://unused")

	out, err := a.Analyze(context.Background(), port.AnalyzeInput{
		FileBytes:   []byte("%PDF-1.4"),
		ContentType: "application/pdf",
	})

	assert.Nil(t, out)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires extracted report text")
}

func TestOllamaAnalyzer_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("model not found"))
	}))
	defer server.Close()

	a := newTestAnalyzer(server.URL)

	out, err := a.Analyze(context.Background(), port.AnalyzeInput{Text: "report"})

	assert.Nil(t, out)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestOllamaAnalyzer_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "10")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	a := newTestAnalyzer(server.URL)

	out, err := a.Analyze(context.Background(), port.AnalyzeInput{Text: "report"})

	assert.Nil(t, out)
	var rlErr *analyzer.RateLimitError
	assert.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "ollama", rlErr.Provider)
}

func TestOllamaAnalyzer_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"response": "", "done": true})
	}))
	defer server.Close()

	a := newTestAnalyzer(server.URL)

	out, err := a.Analyze(context.Background(), port.AnalyzeInput{Text: "report"})

	assert.Nil(t, out)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}
