package services

import (
	"context"
	"errors"
	"testing"

	"pdf-chat-backend/models"
	"pdf-chat-backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorderStore struct {
	inserted []models.DocumentChunk
	err      error
}

func (r *recorderStore) Insert(_ context.Context, chunks []models.DocumentChunk) ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.inserted = append(r.inserted, chunks...)
	ids := make([]string, len(chunks))
	return ids, nil
}

func TestIngestStoresChunksInOrder(t *testing.T) {
	store := &recorderStore{}
	svc := NewIngestionService(NewTextChunker(1000, 200), &stubEmbedder{}, store)

	count, err := svc.Ingest(context.Background(), distinctWords(500), "pdf-1", "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.Len(t, store.inserted, 3)

	for i, chunk := range store.inserted {
		assert.Equal(t, i, chunk.Metadata.ChunkIndex)
		assert.Equal(t, 3, chunk.Metadata.TotalChunks)
		// stubEmbedder encodes the batch position in the vector, so a
		// matching first component proves order survived end to end.
		require.NotEmpty(t, chunk.Embedding)
		assert.Equal(t, float32(i), chunk.Embedding[0])
		assert.Equal(t, float32(len(chunk.Text)), chunk.Embedding[1])
	}
}

func TestIngestWhitespaceOnlyInput(t *testing.T) {
	store := &recorderStore{}
	svc := NewIngestionService(NewTextChunker(1000, 200), &stubEmbedder{}, store)

	count, err := svc.Ingest(context.Background(), "  \n\t ", "pdf-1", "report.pdf")
	require.Error(t, err)
	assert.Equal(t, utils.KindInvalidInput, utils.KindOf(err))
	assert.Zero(t, count)
	assert.Empty(t, store.inserted, "no partial state on input errors")
}

func TestIngestEmbeddingFailureLeavesNothingStored(t *testing.T) {
	store := &recorderStore{}
	svc := NewIngestionService(NewTextChunker(1000, 200), &stubEmbedder{err: errors.New("connection reset")}, store)

	count, err := svc.Ingest(context.Background(), distinctWords(500), "pdf-1", "report.pdf")
	require.Error(t, err)
	assert.Equal(t, utils.KindProviderUnavailable, utils.KindOf(err))
	assert.Zero(t, count)
	assert.Empty(t, store.inserted)
}

func TestIngestStorageFailure(t *testing.T) {
	store := &recorderStore{err: errors.New("index unreachable")}
	svc := NewIngestionService(NewTextChunker(1000, 200), &stubEmbedder{}, store)

	count, err := svc.Ingest(context.Background(), distinctWords(500), "pdf-1", "report.pdf")
	require.Error(t, err)
	assert.Equal(t, utils.KindStorageUnavailable, utils.KindOf(err))
	assert.Zero(t, count)
}
