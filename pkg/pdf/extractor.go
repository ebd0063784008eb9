package pdf

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

// Extraction is the plain-text result of reading a PDF buffer.
type Extraction struct {
	Text      string
	PageCount int
	Metadata  map[string]string
}

// Extractor converts an uploaded document buffer into plain text.
type Extractor interface {
	Extract(data []byte) (Extraction, error)
}

// Service implements Extractor for PDF buffers.
type Service struct{}

// New returns a PDF extractor instance.
func New() *Service {
	return &Service{}
}

// Extract reads the buffer as a PDF and returns its plain text and page count.
// Buffers without a PDF header are rejected before parsing.
func (s *Service) Extract(data []byte) (Extraction, error) {
	if len(data) == 0 {
		return Extraction{}, fmt.Errorf("empty document buffer")
	}

	if !isPDF(data) {
		return Extraction{}, fmt.Errorf("document is not a PDF: missing %%PDF header")
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Extraction{}, fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return Extraction{}, fmt.Errorf("extract pdf text: %w", err)
	}

	var builder strings.Builder
	if _, err := io.Copy(&builder, plain); err != nil {
		return Extraction{}, fmt.Errorf("read pdf text: %w", err)
	}

	return Extraction{
		Text:      collapseWhitespace(builder.String()),
		PageCount: reader.NumPage(),
		Metadata:  map[string]string{"format": "pdf"},
	}, nil
}

func isPDF(data []byte) bool {
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}

// collapseWhitespace trims lines and drops runs of blank lines so downstream
// parsing sees stable line boundaries regardless of PDF layout quirks.
func collapseWhitespace(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	cleaned := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(cleaned) > 0 {
				cleaned = append(cleaned, "")
			}
			blank = true
			continue
		}
		blank = false
		cleaned = append(cleaned, line)
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
