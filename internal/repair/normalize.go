package repair

import (
	"regexp"
	"strings"
)

// Normalization passes for the malformations LLMs are known to produce.
// Each pass is a pure string transform, applied in fixed order by Normalize.
// They are heuristic: a pass that does not apply leaves the text unchanged,
// and anything still broken afterwards surfaces at parse time.

var (
	// The entire trimmed input is exactly one fenced code block.
	wholeFenceRe = regexp.MustCompile("(?s)\\A```[a-zA-Z0-9]*[ \t]*\r?\n?(.*?)\r?\n?```\\z")

	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

	// A backslash before a quote where the backslash is not itself escaped.
	escapedQuoteRe = regexp.MustCompile(`(\A|[^\\])\\"`)

	// { or , followed by a bare identifier and a colon.
	bareKeyRe = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)(\s*):`)

	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	// Line comments only when preceded by start-of-line or whitespace, so
	// "http://..." inside string content survives.
	lineCommentRe = regexp.MustCompile(`(\A|\s)//[^\n]*`)

	whitespaceRunRe = regexp.MustCompile(`\s+`)
)

// Normalize applies every pass in order and returns the cleaned text.
// It never fails; malformed results are caught later by the parser.
func Normalize(s string) string {
	s = UnwrapFence(s)
	s = StripTrailingCommas(s)
	s = CollapseEscapedQuotes(s)
	s = QuoteBareKeys(s)
	s = SingleToDoubleQuotes(s)
	s = StripComments(s)
	s = CollapseWhitespace(s)
	return s
}

// UnwrapFence removes a wrapping fenced code block (language tag optional)
// when the whole trimmed input is exactly one such block.
func UnwrapFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if m := wholeFenceRe.FindStringSubmatch(trimmed); m != nil {
		return m[1]
	}
	return s
}

// StripTrailingCommas removes commas immediately before a closing } or ].
func StripTrailingCommas(s string) string {
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

// CollapseEscapedQuotes un-escapes \" where the backslash is not itself
// escaped, undoing accidental double-escaping in model output.
func CollapseEscapedQuotes(s string) string {
	return escapedQuoteRe.ReplaceAllString(s, `$1"`)
}

// QuoteBareKeys wraps unquoted object keys in double quotes.
func QuoteBareKeys(s string) string {
	return bareKeyRe.ReplaceAllString(s, `$1"$2"$3:`)
}

// SingleToDoubleQuotes converts single-quote delimiters to double quotes.
// Known gap: this mangles double-quoted string content that legitimately
// contains apostrophes. The upstream output patterns make this rare and the
// trade-off is kept deliberately.
func SingleToDoubleQuotes(s string) string {
	return strings.ReplaceAll(s, "'", `"`)
}

// StripComments removes /* */ and // style comments.
func StripComments(s string) string {
	s = blockCommentRe.ReplaceAllString(s, "")
	s = lineCommentRe.ReplaceAllString(s, "$1")
	return s
}

// CollapseWhitespace collapses whitespace runs to single spaces and trims
// the ends.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRunRe.ReplaceAllString(s, " "))
}
