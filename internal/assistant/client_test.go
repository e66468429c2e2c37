package assistant

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"

	"github.com/workspacehq/assistant/internal/config"
	"github.com/workspacehq/assistant/internal/conversation"
)

func TestStreamReply_RelaysFragments(t *testing.T) {
	m := &mockLLM{streams: []*mockStream{{fragments: []string{"Sure", "", ", here", " it is."}}}}
	c := NewClient(m, testConfig())

	got := slices.Collect(c.StreamReply(context.Background(), nil, "Summarize my projects"))
	require.Equal(t, []string{"Sure", ", here", " it is."}, got)

	req := m.lastRequest()
	require.Equal(t, "gemini-2.5-flash", req.Model)
	require.Len(t, req.Messages, 2)
	require.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	require.Equal(t, "Summarize my projects", req.Messages[1].Content)
}

func TestStreamReply_IsLazyAndNotRestartable(t *testing.T) {
	m := &mockLLM{streams: []*mockStream{{fragments: []string{"one"}}}}
	c := NewClient(m, testConfig())

	seq := c.StreamReply(context.Background(), nil, "hi")
	require.Empty(t, m.requests, "no request before the sequence is consumed")

	require.Equal(t, []string{"one"}, slices.Collect(seq))
	require.Empty(t, slices.Collect(seq))
	require.Len(t, m.requests, 1)
}

func TestStreamReply_OpenFailureYieldsFallback(t *testing.T) {
	m := &mockLLM{openErr: errors.New("connection refused")}
	c := NewClient(m, testConfig())

	got := slices.Collect(c.StreamReply(context.Background(), nil, "hi"))
	require.Equal(t, []string{config.DefaultFallbackText}, got)
}

func TestStreamReply_MidStreamFailureAppendsFallback(t *testing.T) {
	stream := &mockStream{fragments: []string{"partial"}, err: errors.New("reset by peer")}
	c := NewClient(&mockLLM{streams: []*mockStream{stream}}, testConfig())

	got := slices.Collect(c.StreamReply(context.Background(), nil, "hi"))
	require.Equal(t, []string{"partial", config.DefaultFallbackText}, got)
	require.True(t, stream.closed)
}

func TestStreamReply_EarlyBreakClosesStream(t *testing.T) {
	stream := &mockStream{fragments: []string{"a", "b", "c"}}
	c := NewClient(&mockLLM{streams: []*mockStream{stream}}, testConfig())

	for frag := range c.StreamReply(context.Background(), nil, "hi") {
		require.Equal(t, "a", frag)
		break
	}
	require.True(t, stream.closed)
}

func TestChatRequest_ReplaysHistory(t *testing.T) {
	history := []conversation.Turn{
		{Role: conversation.RoleAssistant, Content: "Hello!"},
		{Role: conversation.RoleUser, Content: "first"},
		{Role: conversation.RoleAssistant, Content: "answer"},
	}

	c := NewClient(&mockLLM{}, testConfig())
	req := c.chatRequest(history, "next")
	roles := make([]string, 0, len(req.Messages))
	for _, m := range req.Messages {
		roles = append(roles, m.Role)
	}
	require.Equal(t, []string{
		openai.ChatMessageRoleSystem,
		openai.ChatMessageRoleAssistant,
		openai.ChatMessageRoleUser,
		openai.ChatMessageRoleAssistant,
		openai.ChatMessageRoleUser,
	}, roles)
	require.Equal(t, "next", req.Messages[4].Content)

	cfg := testConfig()
	cfg.Assistant.ReplayHistory = false
	cfg.Assistant.SystemInstruction = ""
	noReplay := NewClient(&mockLLM{}, cfg).chatRequest(history, "next")
	require.Len(t, noReplay.Messages, 1)
	require.Equal(t, "next", noReplay.Messages[0].Content)
}

func TestReply_TransportError(t *testing.T) {
	cause := errors.New("reset by peer")
	c := NewClient(&mockLLM{streams: []*mockStream{{err: cause}}}, testConfig())

	reply, err := c.Open(context.Background(), nil, "hi")
	require.NoError(t, err)
	_, err = reply.Next()

	var te *TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, StageRecv, te.Stage)
	require.ErrorIs(t, err, cause)
}

func TestNewClient_DefaultFallback(t *testing.T) {
	cfg := testConfig()
	cfg.Assistant.FallbackText = ""
	require.Equal(t, config.DefaultFallbackText, NewClient(&mockLLM{}, cfg).FallbackText())
}
