package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"labvista/internal/analyzer"
	"labvista/internal/config"
	"labvista/internal/port"
)

const defaultBaseURL = "http://localhost:11434"

func init() {
	analyzer.RegisterProvider("ollama", func(cfg *config.AnalyzerProviderConfig) (port.ReportAnalyzer, error) {
		return NewAnalyzer(cfg), nil
	})
}

// Analyzer implements port.ReportAnalyzer against a local Ollama server.
// Ollama has no document ingestion, so it only accepts inputs that carry
// pre-extracted report text.
type Analyzer struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewAnalyzer creates an Ollama-based report analyzer from a provider config.
func NewAnalyzer(cfg *config.AnalyzerProviderConfig) *Analyzer {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.DefaultModel
	if model == "" {
		model = "deepseek-r1:8b"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 180 * time.Second
	}
	return &Analyzer{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (a *Analyzer) Analyze(ctx context.Context, input port.AnalyzeInput) (*port.AnalyzeOutput, error) {
	if input.Text == "" {
		return nil, fmt.Errorf("ollama analyzer requires extracted report text, got content type %s", input.ContentType)
	}

	prompt := analyzer.BuildLabReportPrompt() + "\n\nREPORT CONTENT:\n" + input.Text

	reqBody := generateRequest{
		Model:  a.model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]interface{}{
			"num_predict": 2000,
			"temperature": 0.1,
			"top_p":       0.9,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := a.baseURL + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling ollama: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := analyzer.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, analyzer.NewRateLimitError("ollama", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if genResp.Response == "" {
		return nil, fmt.Errorf("empty response from ollama")
	}

	return &port.AnalyzeOutput{
		RawText:    genResp.Response,
		ModelUsed:  a.model,
		PromptUsed: prompt,
	}, nil
}
