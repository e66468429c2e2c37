package assistant

import (
	"context"
	"errors"
	"io"
	"iter"
	"sync/atomic"

	"github.com/sashabaranov/go-openai"

	"github.com/workspacehq/assistant/internal/config"
	"github.com/workspacehq/assistant/internal/conversation"
	"github.com/workspacehq/assistant/internal/llm"
	"github.com/workspacehq/assistant/internal/logger"
)

// Client turns a conversation and a new message into a streamed reply.
type Client struct {
	llm         llm.Client
	model       string
	temperature float32
	system      string
	fallback    string
	replay      bool
}

// NewClient creates a client from the llm and assistant sections of cfg.
func NewClient(llmClient llm.Client, cfg config.Config) *Client {
	fallback := cfg.Assistant.FallbackText
	if fallback == "" {
		fallback = config.DefaultFallbackText
	}
	return &Client{
		llm:         llmClient,
		model:       cfg.LLM.Model,
		temperature: cfg.LLM.Temperature,
		system:      cfg.Assistant.SystemInstruction,
		fallback:    fallback,
		replay:      cfg.Assistant.ReplayHistory,
	}
}

// FallbackText is the message shown in place of a reply that could not be streamed.
func (c *Client) FallbackText() string { return c.fallback }

func (c *Client) chatRequest(history []conversation.Turn, newMessage string) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	if c.system != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: c.system})
	}
	if c.replay {
		for _, t := range history {
			role := openai.ChatMessageRoleUser
			if t.Role == conversation.RoleAssistant {
				role = openai.ChatMessageRoleAssistant
			}
			messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: t.Content})
		}
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: newMessage})

	return openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	}
}

// Reply is one open streaming response. It is consumed once.
type Reply struct {
	stream llm.Stream
	done   bool
}

// Next returns the next non-empty fragment, io.EOF at the end of the
// response, or a *TransportError.
func (r *Reply) Next() (string, error) {
	for !r.done {
		frag, err := r.stream.Recv()
		if errors.Is(err, io.EOF) {
			r.done = true
			break
		}
		if err != nil {
			r.done = true
			return "", &TransportError{Stage: StageRecv, Err: err}
		}
		if frag != "" {
			return frag, nil
		}
	}
	return "", io.EOF
}

// Close releases the underlying stream.
func (r *Reply) Close() error {
	r.done = true
	return r.stream.Close()
}

// Open issues the remote request for newMessage.
func (c *Client) Open(ctx context.Context, history []conversation.Turn, newMessage string) (*Reply, error) {
	req := c.chatRequest(history, newMessage)
	logger.L.Debug("opening chat stream", "model", req.Model, "messages", len(req.Messages))

	s, err := c.llm.Stream(ctx, req)
	if err != nil {
		return nil, &TransportError{Stage: StageOpen, Err: err}
	}
	return &Reply{stream: s}, nil
}

// StreamReply returns the reply as a lazy sequence of fragments. The request
// is issued when the sequence is first ranged over; ranging again yields
// nothing. Provider failures end the sequence with a single fallback fragment.
func (c *Client) StreamReply(ctx context.Context, history []conversation.Turn, newMessage string) iter.Seq[string] {
	var used atomic.Bool
	return func(yield func(string) bool) {
		if used.Swap(true) {
			return
		}

		reply, err := c.Open(ctx, history, newMessage)
		if err != nil {
			logger.L.Error("stream error", "error", err)
			yield(c.fallback)
			return
		}
		defer reply.Close()

		for {
			frag, err := reply.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				logger.L.Error("stream error", "error", err)
				yield(c.fallback)
				return
			}
			if !yield(frag) {
				return
			}
		}
	}
}
