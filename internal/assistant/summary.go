package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/workspacehq/assistant/internal/logger"
	"github.com/workspacehq/assistant/internal/workspace"
)

const (
	SummaryEmptyText  = "No summary could be generated."
	SummaryFailedText = "Failed to generate summary due to an error."
	BriefEmptyText    = "Could not generate brief."
	BriefFailedText   = "Error generating brief."
)

func summaryPrompt(p workspace.Project) string {
	return fmt.Sprintf(`You are an intelligent project management assistant.
Summarize the status of the following project for a stakeholder update.
Be professional, concise, and highlight risks if the progress is low relative to status.

Project Name: %s
Description: %s
Status: %s
Progress: %d%%
Due Date: %s
Team Size: %d members`,
		p.Name, p.Description, p.Status, p.Progress, p.DueDate, len(p.Members))
}

func briefPrompt(topic string) string {
	return fmt.Sprintf(`Create a structured project brief for: %q. Include sections: Goal, Key Stakeholders, and High-level Timeline. Return as Markdown.`, topic)
}

// complete runs a single-turn, non-streaming request. Errors are logged and
// replaced with failed; an empty answer becomes empty.
func (c *Client) complete(ctx context.Context, prompt, empty, failed string) string {
	out, err := c.llm.Complete(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages:    []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}},
	})
	if err != nil {
		logger.L.Error("completion failed", "error", &TransportError{Stage: StageOpen, Err: err})
		return failed
	}
	if strings.TrimSpace(out) == "" {
		return empty
	}
	return out
}

// ProjectSummary writes a stakeholder update for p.
func (c *Client) ProjectSummary(ctx context.Context, p workspace.Project) string {
	return c.complete(ctx, summaryPrompt(p), SummaryEmptyText, SummaryFailedText)
}

// SmartBrief drafts a Markdown project brief about topic.
func (c *Client) SmartBrief(ctx context.Context, topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", ErrBlankTopic
	}
	return c.complete(ctx, briefPrompt(topic), BriefEmptyText, BriefFailedText), nil
}
