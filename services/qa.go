package services

import (
	"context"
	"fmt"
	"strings"

	"pdf-chat-backend/internal/ai"
	"pdf-chat-backend/internal/logger"
	"pdf-chat-backend/internal/telemetry"
	"pdf-chat-backend/models"
	"pdf-chat-backend/utils"

	"go.opentelemetry.io/otel/attribute"
)

// The grounding instruction is the correctness mechanism here: the model
// must answer from the supplied context only, and decline otherwise.
const answerPromptTemplate = `Use the following pieces of context from uploaded PDF documents to answer the question.
If you don't know the answer based on the context, just say that you don't know, don't try to make up an answer.

Context: %s

Question: %s

Provide a detailed answer based only on the context provided:`

// citationMaxLength bounds the text carried in a source citation.
const citationMaxLength = 200

// ChatCompleter runs one chat completion.
type ChatCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// FetcherFactory builds a retriever scoped to one request's document
// filter. A fresh fetcher per question keeps the pdf_id filter from
// leaking across requests.
type FetcherFactory func(pdfID string) DocumentFetcher

// QAService answers questions from retrieved context.
type QAService struct {
	llm        ChatCompleter
	newFetcher FetcherFactory
}

func NewQAService(llm ChatCompleter, embedder ai.Embedder, store Searcher, k int) *QAService {
	return &QAService{
		llm: llm,
		newFetcher: func(pdfID string) DocumentFetcher {
			return NewVectorRetriever(embedder, store, k, pdfID)
		},
	}
}

// NewQAServiceWithFetcher swaps the retrieval strategy, used by tests and
// alternate fetchers.
func NewQAServiceWithFetcher(llm ChatCompleter, factory FetcherFactory) *QAService {
	return &QAService{llm: llm, newFetcher: factory}
}

// Answer retrieves passages for the question (optionally scoped to one
// PDF), synthesizes an answer with a single model call, and attaches
// truncated source citations.
func (s *QAService) Answer(ctx context.Context, question, pdfID string) (*models.Answer, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "qa.answer")
	defer span.End()
	span.SetAttributes(attribute.String("pdf.id", pdfID))

	if strings.TrimSpace(question) == "" {
		return nil, utils.NewInvalidInput("question must not be empty")
	}

	fetcher := s.newFetcher(pdfID)
	passages, err := fetcher.Retrieve(ctx, question)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("qa.passages", len(passages)))
	logger.Debug("retrieved passages", "count", len(passages), "pdf_id", pdfID)

	prompt := buildAnswerPrompt(question, passages)
	answer, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		return nil, utils.WrapProvider("chat model call failed", err)
	}

	return &models.Answer{
		Answer:          answer,
		SourceDocuments: buildCitations(passages),
	}, nil
}

// buildAnswerPrompt concatenates passage texts in retrieval order into a
// single context block and fills the instruction template.
func buildAnswerPrompt(question string, passages []models.ScoredChunk) string {
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}
	contextBlock := strings.Join(texts, "\n\n")
	return fmt.Sprintf(answerPromptTemplate, contextBlock, question)
}

// buildCitations truncates each passage for display and carries its
// metadata through untouched.
func buildCitations(passages []models.ScoredChunk) []models.SourceDocument {
	sources := make([]models.SourceDocument, 0, len(passages))
	for _, p := range passages {
		sources = append(sources, models.SourceDocument{
			Text:     truncateCitation(p.Text),
			Metadata: p.Metadata,
		})
	}
	return sources
}

func truncateCitation(text string) string {
	// Truncate by rune so a cut never lands inside a multi-byte character.
	runes := []rune(text)
	if len(runes) > citationMaxLength {
		return string(runes[:citationMaxLength]) + "..."
	}
	return text
}
