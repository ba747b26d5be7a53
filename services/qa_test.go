package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"pdf-chat-backend/models"
	"pdf-chat-backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLLM struct {
	gotPrompt string
	answer    string
	err       error
}

func (s *stubLLM) Complete(_ context.Context, prompt string) (string, error) {
	s.gotPrompt = prompt
	return s.answer, s.err
}

type stubFetcher struct {
	passages []models.ScoredChunk
	err      error
}

func (s *stubFetcher) Retrieve(context.Context, string) ([]models.ScoredChunk, error) {
	return s.passages, s.err
}

func fixedFetcher(f DocumentFetcher) FetcherFactory {
	return func(string) DocumentFetcher { return f }
}

func TestAnswerPromptContainsContextAndQuestion(t *testing.T) {
	llm := &stubLLM{answer: "The warranty lasts two years."}
	fetcher := &stubFetcher{passages: []models.ScoredChunk{
		{Text: "first passage", Metadata: models.ChunkMetadata{PDFID: "doc-a", ChunkIndex: 0}, Score: 0.9},
		{Text: "second passage", Metadata: models.ChunkMetadata{PDFID: "doc-a", ChunkIndex: 1}, Score: 0.8},
	}}
	qa := NewQAServiceWithFetcher(llm, fixedFetcher(fetcher))

	answer, err := qa.Answer(context.Background(), "how long is the warranty?", "doc-a")
	require.NoError(t, err)

	assert.Equal(t, "The warranty lasts two years.", answer.Answer)
	assert.Contains(t, llm.gotPrompt, "first passage\n\nsecond passage")
	assert.Contains(t, llm.gotPrompt, "how long is the warranty?")
	assert.Contains(t, llm.gotPrompt, "just say that you don't know")
}

func TestAnswerCitationsTruncated(t *testing.T) {
	long := strings.Repeat("a", 450)
	short := "short passage"
	meta := models.ChunkMetadata{PDFID: "doc-a", PDFName: "a.pdf", ChunkIndex: 3, TotalChunks: 7}

	llm := &stubLLM{answer: "ok"}
	fetcher := &stubFetcher{passages: []models.ScoredChunk{
		{Text: long, Metadata: meta, Score: 0.9},
		{Text: short, Metadata: models.ChunkMetadata{PDFID: "doc-a"}, Score: 0.8},
	}}
	qa := NewQAServiceWithFetcher(llm, fixedFetcher(fetcher))

	answer, err := qa.Answer(context.Background(), "q", "")
	require.NoError(t, err)
	require.Len(t, answer.SourceDocuments, 2)

	truncated := answer.SourceDocuments[0]
	assert.Equal(t, long[:200]+"...", truncated.Text)
	assert.LessOrEqual(t, len(truncated.Text), 203)
	assert.Equal(t, meta, truncated.Metadata, "metadata must be carried through untouched")

	assert.Equal(t, short, answer.SourceDocuments[1].Text, "short passages are not truncated")
}

func TestAnswerCitationsTruncateByRune(t *testing.T) {
	// A byte-indexed cut through CJK text would split a character and emit
	// invalid UTF-8; truncation counts runes instead.
	long := strings.Repeat("世", 300)

	llm := &stubLLM{answer: "ok"}
	fetcher := &stubFetcher{passages: []models.ScoredChunk{
		{Text: long, Metadata: models.ChunkMetadata{PDFID: "doc-a"}, Score: 0.9},
	}}
	qa := NewQAServiceWithFetcher(llm, fixedFetcher(fetcher))

	answer, err := qa.Answer(context.Background(), "q", "")
	require.NoError(t, err)
	require.Len(t, answer.SourceDocuments, 1)

	text := answer.SourceDocuments[0].Text
	assert.True(t, utf8.ValidString(text))
	assert.Equal(t, strings.Repeat("世", 200)+"...", text)
	assert.Equal(t, 203, utf8.RuneCountInString(text))
}

func TestAnswerEmptyQuestion(t *testing.T) {
	qa := NewQAServiceWithFetcher(&stubLLM{}, fixedFetcher(&stubFetcher{}))

	_, err := qa.Answer(context.Background(), "   ", "")
	require.Error(t, err)
	assert.Equal(t, utils.KindInvalidInput, utils.KindOf(err))
}

func TestAnswerLLMFailurePropagates(t *testing.T) {
	llm := &stubLLM{err: errors.New("quota exceeded")}
	qa := NewQAServiceWithFetcher(llm, fixedFetcher(&stubFetcher{}))

	_, err := qa.Answer(context.Background(), "q", "")
	require.Error(t, err)
	assert.Equal(t, utils.KindProviderUnavailable, utils.KindOf(err))
}

func TestAnswerRetrievalFailurePropagates(t *testing.T) {
	fetcher := &stubFetcher{err: utils.WrapStorage("vector search failed", errors.New("down"))}
	qa := NewQAServiceWithFetcher(&stubLLM{}, fixedFetcher(fetcher))

	_, err := qa.Answer(context.Background(), "q", "")
	require.Error(t, err)
	assert.Equal(t, utils.KindStorageUnavailable, utils.KindOf(err))
}

func TestAnswerNoPassagesStillAsksModel(t *testing.T) {
	// With an empty context block the grounding instruction makes the
	// model decline; the pipeline itself does not special-case it.
	llm := &stubLLM{answer: "I don't know."}
	qa := NewQAServiceWithFetcher(llm, fixedFetcher(&stubFetcher{}))

	answer, err := qa.Answer(context.Background(), "q", "")
	require.NoError(t, err)
	assert.Equal(t, "I don't know.", answer.Answer)
	assert.Empty(t, answer.SourceDocuments)
}
