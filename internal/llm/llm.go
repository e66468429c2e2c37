package llm

import (
	"context"
	"errors"
	"io"

	"github.com/sashabaranov/go-openai"

	"github.com/workspacehq/assistant/internal/config"
	"github.com/workspacehq/assistant/internal/logger"
)

// Stream is a pull-style sequence of text deltas. Recv returns io.EOF once the
// provider ends the response.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// Client is the subset of chat-completion behaviour the assistant needs; it is easy to mock in tests.
type Client interface {
	Complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error)
	Stream(ctx context.Context, req openai.ChatCompletionRequest) (Stream, error)
}

// OpenAIClient talks to any OpenAI-compatible chat endpoint, Gemini's included.
type OpenAIClient struct {
	api *openai.Client
}

// NewClient creates a new OpenAI-compatible client. A missing API key is
// logged and tolerated; the provider rejects the request later.
func NewClient(cfg config.LLMConfig) *OpenAIClient {
	if err := cfg.Check(); err != nil {
		logger.L.Warn("llm credential missing; requests will fail at the provider", "error", err, "provider", cfg.Provider)
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &OpenAIClient{api: openai.NewClientWithConfig(config)}
}

// Complete runs a non-streaming chat completion and returns the first choice's text.
func (c *OpenAIClient) Complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream opens a streaming chat completion.
func (c *OpenAIClient) Stream(ctx context.Context, req openai.ChatCompletionRequest) (Stream, error) {
	s, err := c.api.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, err
	}
	return &openAIStream{s: s}, nil
}

type openAIStream struct {
	s *openai.ChatCompletionStream
}

// Recv skips chunks that carry no text (role headers, usage trailers).
func (o *openAIStream) Recv() (string, error) {
	for {
		chunk, err := o.s.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", io.EOF
			}
			return "", err
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			return delta, nil
		}
	}
}

func (o *openAIStream) Close() error {
	return o.s.Close()
}
