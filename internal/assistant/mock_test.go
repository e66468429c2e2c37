package assistant

import (
	"context"
	"io"
	"sync"

	"github.com/sashabaranov/go-openai"

	"github.com/workspacehq/assistant/internal/config"
	"github.com/workspacehq/assistant/internal/history"
	"github.com/workspacehq/assistant/internal/llm"
)

// mockStream replays fragments, then fails with err (or ends with io.EOF).
// When gate is set, every Recv waits for a value on it first.
type mockStream struct {
	fragments []string
	err       error
	gate      chan struct{}
	ctx       context.Context
	closed    bool
}

func (m *mockStream) Recv() (string, error) {
	if m.gate != nil {
		select {
		case <-m.gate:
		case <-m.ctx.Done():
			return "", m.ctx.Err()
		}
	}
	if len(m.fragments) > 0 {
		f := m.fragments[0]
		m.fragments = m.fragments[1:]
		return f, nil
	}
	if m.err != nil {
		return "", m.err
	}
	return "", io.EOF
}

func (m *mockStream) Close() error {
	m.closed = true
	return nil
}

type mockLLM struct {
	mu sync.Mutex

	streams     []*mockStream
	openErr     error
	completion  string
	completeErr error

	requests []openai.ChatCompletionRequest
}

func (m *mockLLM) Stream(ctx context.Context, req openai.ChatCompletionRequest) (llm.Stream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.openErr != nil {
		return nil, m.openErr
	}
	if len(m.streams) == 0 {
		panic("mockLLM: no more streams configured for request: " + req.Messages[len(req.Messages)-1].Content)
	}
	s := m.streams[0]
	m.streams = m.streams[1:]
	s.ctx = ctx
	return s, nil
}

func (m *mockLLM) Complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.completeErr != nil {
		return "", m.completeErr
	}
	return m.completion, nil
}

func (m *mockLLM) lastRequest() openai.ChatCompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[len(m.requests)-1]
}

type memoryArchive struct {
	mu      sync.Mutex
	records []history.Record
}

func (a *memoryArchive) Save(_ context.Context, rec history.Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
	return nil
}

func testConfig() config.Config {
	return config.Config{
		LLM: config.LLMConfig{Model: "gemini-2.5-flash"},
		Assistant: config.AssistantConfig{
			SystemInstruction: config.DefaultSystemInstruction,
			FallbackText:      config.DefaultFallbackText,
			ReplayHistory:     true,
		},
	}
}
