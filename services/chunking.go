package services

import (
	"strings"

	"pdf-chat-backend/models"
)

// Separators tried largest-first so splits land on semantic boundaries
// before falling back to a hard character cut.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// TextChunker splits raw document text into overlapping segments of at
// most chunkSize characters. Consecutive segments share up to overlap
// characters so content spanning a boundary stays intact in one chunk.
type TextChunker struct {
	chunkSize  int
	overlap    int
	separators []string
}

func NewTextChunker(chunkSize, overlap int) *TextChunker {
	return &TextChunker{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}
}

// Chunk splits text and stamps each segment with its position and the
// final total. Whitespace-only input produces zero chunks; callers treat
// that as "document contains no extractable content".
func (tc *TextChunker) Chunk(text, pdfID, pdfName string) []models.DocumentChunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	pieces := tc.splitText(text, tc.separators)

	chunks := make([]models.DocumentChunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, models.DocumentChunk{
			Text: piece,
			Metadata: models.ChunkMetadata{
				PDFID:       pdfID,
				PDFName:     pdfName,
				ChunkIndex:  i,
				TotalChunks: len(pieces),
			},
		})
	}
	return chunks
}

// splitText recursively splits on the first separator present in text,
// descending to finer separators for any piece still over chunkSize.
func (tc *TextChunker) splitText(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var remaining []string
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			separator = sep
			remaining = separators[i+1:]
			break
		}
	}

	splits := splitOnSeparator(text, separator)

	var final []string
	var good []string
	for _, split := range splits {
		if len(split) <= tc.chunkSize {
			good = append(good, split)
			continue
		}
		if len(good) > 0 {
			final = append(final, tc.mergeSplits(good, separator)...)
			good = nil
		}
		if len(remaining) == 0 {
			final = append(final, split)
		} else {
			final = append(final, tc.splitText(split, remaining)...)
		}
	}
	if len(good) > 0 {
		final = append(final, tc.mergeSplits(good, separator)...)
	}
	return final
}

// mergeSplits recombines fine-grained splits into chunks of at most
// chunkSize, carrying a tail of at most overlap characters into the next
// chunk.
func (tc *TextChunker) mergeSplits(splits []string, separator string) []string {
	sepLen := len(separator)

	var docs []string
	var current []string
	total := 0

	for _, split := range splits {
		length := len(split)

		extra := 0
		if len(current) > 0 {
			extra = sepLen
		}
		if total+length+extra > tc.chunkSize {
			if len(current) > 0 {
				if doc := strings.TrimSpace(strings.Join(current, separator)); doc != "" {
					docs = append(docs, doc)
				}
				// Drop from the front until the retained tail fits the
				// overlap budget and leaves room for the next split.
				for total > tc.overlap || (overflows(total, length, len(current), sepLen, tc.chunkSize) && total > 0) {
					total -= len(current[0])
					if len(current) > 1 {
						total -= sepLen
					}
					current = current[1:]
				}
			}
		}

		current = append(current, split)
		total += length
		if len(current) > 1 {
			total += sepLen
		}
	}

	if doc := strings.TrimSpace(strings.Join(current, separator)); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

func overflows(total, length, currentLen, sepLen, chunkSize int) bool {
	extra := 0
	if currentLen > 0 {
		extra = sepLen
	}
	return total+length+extra > chunkSize
}

// splitOnSeparator splits text on sep, dropping empty pieces. An empty
// separator splits into individual characters for the hard-cut fallback.
func splitOnSeparator(text, sep string) []string {
	var raw []string
	if sep == "" {
		raw = strings.Split(text, "")
	} else {
		raw = strings.Split(text, sep)
	}

	splits := make([]string, 0, len(raw))
	for _, s := range raw {
		if s != "" {
			splits = append(splits, s)
		}
	}
	return splits
}
