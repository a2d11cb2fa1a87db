package port

// TextExtractor pulls the plain-text layer out of an uploaded document so
// text-only analyzers can consume it.
type TextExtractor interface {
	ExtractText(data []byte) (string, error)
}
