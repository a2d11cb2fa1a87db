package pdftext_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"labvista/internal/pdftext"
)

func TestExtractText_RejectsNonPDF(t *testing.T) {
	e := pdftext.New()

	_, err := e.ExtractText([]byte("<html><body>not a pdf</body></html>"))

	assert.Error(t, err)
}

func TestExtractText_RejectsEmptyInput(t *testing.T) {
	e := pdftext.New()

	_, err := e.ExtractText(nil)

	assert.Error(t, err)
}

func TestExtractText_RejectsTruncatedPDF(t *testing.T) {
	e := pdftext.New()

	// A bare header with no body or cross-reference table.
	_, err := e.ExtractText([]byte("%PDF-1.4\n"))

	assert.Error(t, err)
}
