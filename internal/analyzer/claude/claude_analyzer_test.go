package claude_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"labvista/internal/analyzer"
	claude "labvista/internal/analyzer/claude"
	"labvista/internal/config"
	"labvista/internal/port"
)

func newTestAnalyzer(serverURL string) *claude.Analyzer {
	cfg := &config.AnalyzerProviderConfig{
		Provider:     "claude",
		APIKey:       "test-api-key",
		DefaultModel: "claude-sonnet-4-20250514",
		TimeoutSecs:  30,
	}
	return claude.NewAnalyzerWithEndpoint(cfg, serverURL)
}

func TestClaudeAnalyzer_PDF_Success(t *testing.T) {
	responseBody := map[string]interface{}{
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": `{"patientInfo":{"id":"p1","name":"Jane Doe","lastTestDate":"2025-01-10"},"latestResults":[],"testCategories":[]}`,
			},
		},
		"stop_reason": "end_turn",
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&reqBody)
		assert.NoError(t, err)
		assert.Equal(t, "claude-sonnet-4-20250514", reqBody["model"])
		assert.Equal(t, float64(8192), reqBody["max_tokens"])

		messages := reqBody["messages"].([]interface{})
		assert.Len(t, messages, 1)
		msg := messages[0].(map[string]interface{})
		assert.Equal(t, "user", msg["role"])

		content := msg["content"].([]interface{})
		assert.Len(t, content, 2)

		docBlock := content[0].(map[string]interface{})
		assert.Equal(t, "document", docBlock["type"])
		source := docBlock["source"].(map[string]interface{})
		assert.Equal(t, "base64", source["type"])
		assert.Equal(t, "application/pdf", source["media_type"])
		assert.NotEmpty(t, source["data"])

		textBlock := content[1].(map[string]interface{})
		assert.Equal(t, "text", textBlock["type"])
		assert.Contains(t, textBlock["text"], "JSON")

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	a := newTestAnalyzer(server.URL)

	out, err := a.Analyze(context.Background(), port.AnalyzeInput{
		FileBytes:   []byte("%PDF-1.4 test content"),
		ContentType: "application/pdf",
	})

	assert.NoError(t, err)
	assert.NotNil(t, out)
	assert.Equal(t, "claude-sonnet-4-20250514", out.ModelUsed)
	assert.NotEmpty(t, out.PromptUsed)
	assert.Contains(t, out.RawText, "Jane Doe")
}

func TestClaudeAnalyzer_TextInput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&reqBody)

		messages := reqBody["messages"].([]interface{})
		msg := messages[0].(map[string]interface{})
		content := msg["content"].([]interface{})
		assert.Len(t, content, 2)

		first := content[0].(map[string]interface{})
		assert.Equal(t, "text", first["type"])
		assert.Contains(t, first["text"], "Hemoglobin 13.5 g/dL")

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]interface{}{{"type": "text", "text": "{}"}},
		})
	}))
	defer server.Close()

	a := newTestAnalyzer(server.URL)

	out, err := a.Analyze(context.Background(), port.AnalyzeInput{
		Text: "Hemoglobin 13.5 g/dL",
	})

	assert.NoError(t, err)
	assert.Equal(t, "{}", out.RawText)
}

func TestClaudeAnalyzer_UnsupportedInput(t *testing.T) {
	a := newTestAnalyzer("http://unused")

	out, err := a.Analyze(context.Background(), port.AnalyzeInput{
		FileBytes:   []byte("binary"),
		ContentType: "image/tiff",
	})

	assert.Nil(t, out)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported content type")
}

func TestClaudeAnalyzer_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	a := newTestAnalyzer(server.URL)

	out, err := a.Analyze(context.Background(), port.AnalyzeInput{
		FileBytes:   []byte("%PDF-1.4"),
		ContentType: "application/pdf",
	})

	assert.Nil(t, out)
	var rlErr *analyzer.RateLimitError
	assert.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "claude", rlErr.Provider)
	assert.Equal(t, float64(30), rlErr.RetryAfter.Seconds())
}

func TestClaudeAnalyzer_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"type":"api_error"}}`))
	}))
	defer server.Close()

	a := newTestAnalyzer(server.URL)

	out, err := a.Analyze(context.Background(), port.AnalyzeInput{
		FileBytes:   []byte("%PDF-1.4"),
		ContentType: "application/pdf",
	})

	assert.Nil(t, out)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestClaudeAnalyzer_TruncatedOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content":     []map[string]interface{}{{"type": "text", "text": `{"partial":`}},
			"stop_reason": "max_tokens",
		})
	}))
	defer server.Close()

	a := newTestAnalyzer(server.URL)

	out, err := a.Analyze(context.Background(), port.AnalyzeInput{
		FileBytes:   []byte("%PDF-1.4"),
		ContentType: "application/pdf",
	})

	assert.Nil(t, out)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_tokens")
}
