package services

import (
	"context"

	"pdf-chat-backend/internal/ai"
	"pdf-chat-backend/models"
	"pdf-chat-backend/utils"
)

// Searcher is the similarity-query side of the vector store.
type Searcher interface {
	Search(ctx context.Context, queryVector []float32, limit int, pdfID string) ([]models.ScoredChunk, error)
}

// DocumentFetcher is the retrieval capability the answer pipeline depends
// on: one query in, ranked passages out. Swappable for testing.
type DocumentFetcher interface {
	Retrieve(ctx context.Context, query string) ([]models.ScoredChunk, error)
}

// VectorRetriever embeds a query and searches the vector store. It does
// not rerank or deduplicate; ordering is the index's similarity ranking.
// A retriever is scoped to one request's optional document filter.
type VectorRetriever struct {
	embedder ai.Embedder
	store    Searcher
	k        int
	pdfID    string
}

func NewVectorRetriever(embedder ai.Embedder, store Searcher, k int, pdfID string) *VectorRetriever {
	return &VectorRetriever{
		embedder: embedder,
		store:    store,
		k:        k,
		pdfID:    pdfID,
	}
}

func (r *VectorRetriever) Retrieve(ctx context.Context, query string) ([]models.ScoredChunk, error) {
	vectors, err := r.embedder.BatchEmbed(ctx, []string{query})
	if err != nil {
		return nil, utils.WrapProvider("failed to embed query", err)
	}
	if len(vectors) == 0 {
		return nil, utils.WrapProvider("no embedding returned for query", nil)
	}

	results, err := r.store.Search(ctx, vectors[0], r.k, r.pdfID)
	if err != nil {
		return nil, utils.WrapStorage("vector search failed", err)
	}
	return results, nil
}

var _ DocumentFetcher = (*VectorRetriever)(nil)
