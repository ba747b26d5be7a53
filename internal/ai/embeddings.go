package ai

import (
	"context"
	"fmt"

	"pdf-chat-backend/internal/config"

	"github.com/google/generative-ai-go/genai"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	gapioption "google.golang.org/api/option"
)

// Embedder converts a batch of texts into fixed-dimension vectors,
// preserving input order. A provider failure fails the whole batch.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// NewEmbedder builds the configured embedding provider. Default provider
// is OpenAI (text-embedding-3-small).
func NewEmbedder(ctx context.Context, cfg *config.Config) (Embedder, error) {
	switch cfg.EmbeddingsProvider {
	case "openai", "":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("missing OPENAI_API_KEY for embeddings")
		}
		return NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.OpenAIEmbeddingsModel, cfg.VectorDimensions), nil

	case "google":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("missing GEMINI_API_KEY for embeddings")
		}
		return NewGoogleEmbedder(ctx, cfg.GeminiAPIKey, cfg.GoogleEmbeddingsModel, cfg.VectorDimensions)

	default:
		return nil, fmt.Errorf("unknown embeddings provider: %s", cfg.EmbeddingsProvider)
	}
}

// OpenAIEmbedder generates embeddings through the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client    openai.Client
	model     string
	dimension int
}

func NewOpenAIEmbedder(apiKey, model string, dimension int) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client:    openai.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		dimension: dimension,
	}
}

// BatchEmbed sends all texts in a single API call. The response order
// matches the input order.
func (e *OpenAIEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts provided")
	}

	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
	}
	if len(texts) == 1 {
		params.Input = openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(texts[0]),
		}
	} else {
		params.Input = openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		}
	}
	if e.dimension > 0 {
		params.Dimensions = openai.Int(int64(e.dimension))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d texts", len(resp.Data), len(texts))
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		vector := make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			vector[j] = float32(v)
		}
		if e.dimension > 0 && len(vector) != e.dimension {
			return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(vector), e.dimension)
		}
		embeddings[i] = vector
	}

	return embeddings, nil
}

func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

// GoogleEmbedder generates embeddings through the Google Generative AI
// API. The client is created once at startup and reused.
type GoogleEmbedder struct {
	client    *genai.Client
	model     string
	dimension int
}

func NewGoogleEmbedder(ctx context.Context, apiKey, model string, dimension int) (*GoogleEmbedder, error) {
	client, err := genai.NewClient(ctx, gapioption.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GoogleEmbedder{
		client:    client,
		model:     model,
		dimension: dimension,
	}, nil
}

func (e *GoogleEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts provided")
	}

	em := e.client.EmbeddingModel(e.model)
	batch := em.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d texts", len(resp.Embeddings), len(texts))
	}

	embeddings := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if emb == nil {
			return nil, fmt.Errorf("no embedding returned for text %d", i)
		}
		if e.dimension > 0 && len(emb.Values) != e.dimension {
			return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(emb.Values), e.dimension)
		}
		embeddings[i] = emb.Values
	}

	return embeddings, nil
}

func (e *GoogleEmbedder) Dimension() int {
	return e.dimension
}

func (e *GoogleEmbedder) Close() error {
	return e.client.Close()
}
