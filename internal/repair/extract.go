package repair

import (
	"regexp"
	"strings"
)

var (
	// First fenced block anywhere in the text, optionally tagged json.
	anyFenceRe = regexp.MustCompile("(?s)```(?:json)?[ \t]*\r?\n?(.*?)```")

	// First top-level brace-delimited span, greedy to the last }.
	braceSpanRe = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractEmbeddedJSON locates a JSON payload inside surrounding prose or
// markdown. It tries a fenced code block first, then the widest {...} span.
// The second return value reports whether anything was found.
func ExtractEmbeddedJSON(s string) (string, bool) {
	if m := anyFenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if m := braceSpanRe.FindString(s); m != "" {
		return strings.TrimSpace(m), true
	}
	return "", false
}
