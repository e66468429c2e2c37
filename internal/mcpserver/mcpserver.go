// Package mcpserver publishes the assistant as MCP tools so other agents can
// ask for summaries, briefs and chat replies.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/workspacehq/assistant/internal/assistant"
	"github.com/workspacehq/assistant/internal/conversation"
	"github.com/workspacehq/assistant/internal/logger"
	"github.com/workspacehq/assistant/internal/workspace"
)

// Tools holds the handlers behind each MCP tool.
type Tools struct {
	client  *assistant.Client
	session *assistant.Session
}

func NewTools(client *assistant.Client, session *assistant.Session) *Tools {
	return &Tools{client: client, session: session}
}

// New builds an MCP server with every workspace tool registered.
func New(t *Tools, version string) *server.MCPServer {
	s := server.NewMCPServer("workspacehq", version, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("Lists WorkspaceHQ projects with status, progress and due date."),
	), t.ListProjects)

	s.AddTool(mcp.NewTool("project_summary",
		mcp.WithDescription("Writes a short stakeholder status update for one project."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id as returned by list_projects, e.g. p1")),
	), t.ProjectSummary)

	s.AddTool(mcp.NewTool("smart_brief",
		mcp.WithDescription("Drafts a Markdown project brief with Goal, Key Stakeholders and High-level Timeline sections."),
		mcp.WithString("topic", mcp.Required(), mcp.Description("What the project is about")),
	), t.SmartBrief)

	s.AddTool(mcp.NewTool("ask_assistant",
		mcp.WithDescription("Sends a message to the WorkspaceHQ assistant conversation and returns its reply."),
		mcp.WithString("message", mcp.Required(), mcp.Description("The user message")),
	), t.Ask)

	return s
}

// Serve runs the server over stdio until stdin closes.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func (t *Tools) ListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(workspace.Projects())
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (t *Tools) ProjectSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := workspace.ProjectByID(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(t.client.ProjectSummary(ctx, p)), nil
}

func (t *Tools) SmartBrief(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic, err := request.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	brief, err := t.client.SmartBrief(ctx, topic)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(brief), nil
}

func (t *Tools) Ask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reply, err := t.session.Submit(ctx, message, nil)
	switch {
	case errors.Is(err, conversation.ErrValidation):
		return mcp.NewToolResultError("message must not be blank"), nil
	case errors.Is(err, conversation.ErrBusy):
		return mcp.NewToolResultError("the assistant is still answering a previous message"), nil
	case err != nil:
		logger.L.Error("ask_assistant failed", "error", err)
		return nil, err
	}
	if reply.Failed {
		return mcp.NewToolResultError(reply.Content), nil
	}
	return mcp.NewToolResultText(reply.Content), nil
}
