package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"

	"github.com/workspacehq/assistant/internal/config"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(config.LLMConfig{BaseURL: srv.URL, APIKey: "test", Model: "gemini-2.5-flash"})
}

func sseChunk(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":     "chunk",
		"object": "chat.completion.chunk",
		"choices": []map[string]any{{
			"index": 0,
			"delta": map[string]any{"content": content},
		}},
	})
	return fmt.Sprintf("data: %s\n\n", b)
}

func TestStream_RelaysDeltas(t *testing.T) {
	var got openai.ChatCompletionRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, sseChunk(""))
		for _, f := range []string{"Sure", ", here", " it is."} {
			io.WriteString(w, sseChunk(f))
		}
		io.WriteString(w, "data: [DONE]\n\n")
	})

	s, err := c.Stream(context.Background(), openai.ChatCompletionRequest{
		Model:    "gemini-2.5-flash",
		Messages: []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	defer s.Close()

	var out []string
	for {
		frag, err := s.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		out = append(out, frag)
	}
	require.Equal(t, []string{"Sure", ", here", " it is."}, out)
	require.True(t, got.Stream)
	require.Equal(t, "hi", got.Messages[0].Content)
}

func TestStream_ProviderError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"API key not valid","type":"invalid_request_error"}}`)
	})

	_, err := c.Stream(context.Background(), openai.ChatCompletionRequest{Model: "gemini-2.5-flash"})
	require.Error(t, err)

	var apiErr *openai.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatusCode)
}

func TestComplete(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"All on track."},"finish_reason":"stop"}]}`)
	})

	out, err := c.Complete(context.Background(), openai.ChatCompletionRequest{Model: "gemini-2.5-flash"})
	require.NoError(t, err)
	require.Equal(t, "All on track.", out)
}

func TestComplete_NoChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"x","object":"chat.completion","choices":[]}`)
	})

	out, err := c.Complete(context.Background(), openai.ChatCompletionRequest{Model: "gemini-2.5-flash"})
	require.NoError(t, err)
	require.Empty(t, out)
}
