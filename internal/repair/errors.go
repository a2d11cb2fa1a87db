package repair

import (
	"fmt"
	"strings"
)

// ParseError indicates the text is not syntactically valid JSON after
// normalization. Offset is the byte offset reported by the decoder, or -1
// when the decoder did not provide one.
type ParseError struct {
	Msg    string
	Offset int64
}

func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Msg)
	}
	return "parse error: " + e.Msg
}

// Failure is a single schema violation at a field path.
type Failure struct {
	Path   string
	Reason string
}

// ValidationError indicates the text parsed but does not conform to the
// declared schema.
type ValidationError struct {
	Variant  string
	Failures []Failure
}

func (e *ValidationError) Error() string {
	return "validation failed: " + JoinFailures(e.Failures)
}

// JoinFailures renders a failure list as a single diagnostic string with a
// bullet per entry.
func JoinFailures(failures []Failure) string {
	parts := make([]string, 0, len(failures))
	for _, f := range failures {
		parts = append(parts, f.Path+": "+f.Reason)
	}
	return "• " + strings.Join(parts, " • ")
}
