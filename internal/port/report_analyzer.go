package port

import "context"

// AnalyzeInput carries the data needed for lab report analysis. FileBytes
// holds the uploaded document for providers that consume files natively;
// Text carries pre-extracted content for text-only providers.
type AnalyzeInput struct {
	FileBytes   []byte
	ContentType string
	Text        string
	PageNumber  int
}

// AnalyzeOutput contains the raw emission from an LLM analyzer. RawText is
// handed to the repair pipeline as-is; decoding is not the analyzer's job.
type AnalyzeOutput struct {
	RawText    string
	ModelUsed  string
	PromptUsed string
}

// ReportAnalyzer abstracts LLM-based lab report analysis.
type ReportAnalyzer interface {
	Analyze(ctx context.Context, input AnalyzeInput) (*AnalyzeOutput, error)
}
