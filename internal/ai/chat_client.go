package ai

import (
	"context"
	"fmt"
	"time"

	"pdf-chat-backend/internal/logger"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const chatCallTimeout = 60 * time.Second

// ChatClient wraps the chat-model API behind a circuit breaker and a
// request-rate limiter. One instance is created at startup and shared by
// all in-flight requests.
type ChatClient struct {
	client      openai.Client
	model       string
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter
}

func NewChatClient(apiKey, model string) *ChatClient {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ChatModelAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})

	// Conservative default; the upstream per-minute limit is enforced
	// server-side anyway.
	rateLimiter := rate.NewLimiter(rate.Limit(1), 5)

	return &ChatClient{
		client:      openai.NewClient(option.WithAPIKey(apiKey)),
		model:       model,
		breaker:     breaker,
		rateLimiter: rateLimiter,
	}
}

// Complete runs one chat completion for the given prompt. No retry is
// performed here; a failed call surfaces to the caller as-is.
func (cc *ChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, chatCallTimeout)
	defer cancel()

	if err := cc.rateLimiter.Wait(ctx); err != nil {
		return "", err
	}

	result, err := cc.breaker.Execute(func() (interface{}, error) {
		completion, err := cc.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: shared.ChatModel(cc.model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Temperature: openai.Float(0),
		})
		if err != nil {
			return nil, err
		}
		if len(completion.Choices) == 0 {
			return nil, fmt.Errorf("no completion choices returned")
		}
		return completion.Choices[0].Message.Content, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			return "", fmt.Errorf("chat model temporarily unavailable: %w", err)
		}
		return "", err
	}

	return result.(string), nil
}
