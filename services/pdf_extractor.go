package services

import (
	"bytes"
	"fmt"
	"strings"

	"pdf-chat-backend/internal/logger"

	"github.com/ledongthuc/pdf"
)

// ExtractPDFText extracts plain text from PDF bytes, one page at a time
// with page markers. A corrupt file or a PDF with no extractable text is
// an ingestion failure; there is no retry or alternate extraction path.
func ExtractPDFText(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}

	var textBuilder strings.Builder
	pages := reader.NumPage()

	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			logger.Warn("failed to extract text from page", "page", i, "error", err)
			continue
		}

		textBuilder.WriteString(fmt.Sprintf("\n--- Page %d ---\n", i))
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	extracted := textBuilder.String()
	if strings.TrimSpace(extracted) == "" {
		return "", fmt.Errorf("PDF appears to be empty or contains no extractable text")
	}

	logger.Debug("extracted text from PDF", "pages", pages, "characters", len(extracted))
	return extracted, nil
}
