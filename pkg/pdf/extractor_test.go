package pdf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractRejectsEmptyBuffer(t *testing.T) {
	_, err := New().Extract(nil)
	require.Error(t, err)
}

func TestExtractRejectsNonPDF(t *testing.T) {
	_, err := New().Extract([]byte("plain text, not a pdf"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "not a PDF")
}

func TestExtractRejectsTruncatedPDF(t *testing.T) {
	// Valid header but no document body.
	_, err := New().Extract([]byte("%PDF-1.7\n"))
	require.Error(t, err)
}

func TestCollapseWhitespace(t *testing.T) {
	input := "  Q1: answer  \r\n\r\n\r\nmore   \n\n\nQ2: two\n"
	require.Equal(t, "Q1: answer\n\nmore\n\nQ2: two", collapseWhitespace(input))
}
