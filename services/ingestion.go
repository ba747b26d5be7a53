package services

import (
	"context"
	"strings"

	"pdf-chat-backend/internal/ai"
	"pdf-chat-backend/internal/logger"
	"pdf-chat-backend/internal/telemetry"
	"pdf-chat-backend/models"
	"pdf-chat-backend/utils"

	"go.opentelemetry.io/otel/attribute"
)

// ChunkInserter is the write side of the vector store.
type ChunkInserter interface {
	Insert(ctx context.Context, chunks []models.DocumentChunk) ([]string, error)
}

// IngestionService turns one document's extracted text into searchable
// records: chunk, embed all chunks in one batch, store with one insert.
// Any stage failure aborts the whole ingestion; because storage is a
// single insert call, a failed attempt leaves the document entirely
// absent rather than partially indexed.
type IngestionService struct {
	chunker  *TextChunker
	embedder ai.Embedder
	store    ChunkInserter
}

func NewIngestionService(chunker *TextChunker, embedder ai.Embedder, store ChunkInserter) *IngestionService {
	return &IngestionService{
		chunker:  chunker,
		embedder: embedder,
		store:    store,
	}
}

// Ingest returns the number of chunks stored for the document.
func (s *IngestionService) Ingest(ctx context.Context, text, pdfID, pdfName string) (int, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "ingest.document")
	defer span.End()
	span.SetAttributes(attribute.String("pdf.id", pdfID))

	if strings.TrimSpace(text) == "" {
		return 0, utils.NewInvalidInput("document contains no extractable content")
	}

	chunks := s.chunker.Chunk(text, pdfID, pdfName)
	if len(chunks) == 0 {
		return 0, utils.NewInvalidInput("document contains no extractable content")
	}

	logger.Info("chunked document", "pdf_id", pdfID, "chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	span.SetAttributes(attribute.Int("pdf.chunks", len(chunks)))

	embeddings, err := s.embedder.BatchEmbed(ctx, texts)
	if err != nil {
		span.RecordError(err)
		return 0, utils.WrapProvider("failed to generate embeddings", err)
	}
	if len(embeddings) != len(chunks) {
		return 0, utils.WrapProvider("embedding count does not match chunk count", nil)
	}

	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	if _, err := s.store.Insert(ctx, chunks); err != nil {
		span.RecordError(err)
		return 0, utils.WrapStorage("failed to store document chunks", err)
	}

	logger.Info("ingested document", "pdf_id", pdfID, "pdf_name", pdfName, "chunks", len(chunks))
	return len(chunks), nil
}
