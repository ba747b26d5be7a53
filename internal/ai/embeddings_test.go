package ai

import (
	"context"
	"os"
	"testing"

	"pdf-chat-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbedderProviderSelection(t *testing.T) {
	ctx := context.Background()

	embedder, err := NewEmbedder(ctx, &config.Config{
		EmbeddingsProvider: "openai",
		OpenAIAPIKey:       "test-key",
		VectorDimensions:   1536,
	})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIEmbedder{}, embedder)
	assert.Equal(t, 1536, embedder.Dimension())

	// Empty provider falls back to OpenAI.
	embedder, err = NewEmbedder(ctx, &config.Config{
		OpenAIAPIKey:     "test-key",
		VectorDimensions: 1536,
	})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIEmbedder{}, embedder)
}

func TestNewEmbedderMissingKeys(t *testing.T) {
	ctx := context.Background()

	_, err := NewEmbedder(ctx, &config.Config{EmbeddingsProvider: "openai"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")

	_, err = NewEmbedder(ctx, &config.Config{EmbeddingsProvider: "google"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestNewEmbedderUnknownProvider(t *testing.T) {
	_, err := NewEmbedder(context.Background(), &config.Config{EmbeddingsProvider: "cohere"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown embeddings provider")
}

func TestOpenAIEmbedderEmptyBatch(t *testing.T) {
	embedder := NewOpenAIEmbedder("test-key", "text-embedding-3-small", 1536)

	_, err := embedder.BatchEmbed(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no texts")
}

func TestOpenAIEmbedderLive(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY not set")
	}

	embedder := NewOpenAIEmbedder(apiKey, "text-embedding-3-small", 1536)
	vectors, err := embedder.BatchEmbed(context.Background(), []string{"hello world", "goodbye world"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Len(t, vectors[0], 1536)
	assert.Len(t, vectors[1], 1536)
}
