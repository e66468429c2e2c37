package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/workspacehq/assistant/internal/assistant"
	"github.com/workspacehq/assistant/internal/config"
	"github.com/workspacehq/assistant/internal/conversation"
	"github.com/workspacehq/assistant/internal/history"
	"github.com/workspacehq/assistant/internal/llm"
	"github.com/workspacehq/assistant/internal/logger"
)

// Version is set at build time.
var Version = "0.1.0"

// app is the wiring shared by every subcommand.
type app struct {
	cfg     *config.Config
	client  *assistant.Client
	session *assistant.Session
	archive *history.Store
}

func newApp(cfg *config.Config) *app {
	client := assistant.NewClient(llm.NewClient(cfg.LLM), *cfg)

	a := &app{cfg: cfg, client: client}
	opts := []assistant.SessionOption{assistant.WithStreamTimeout(cfg.Assistant.StreamTimeout)}
	if cfg.History.Enabled {
		a.archive = history.NewStore(cfg.History.DBPath)
		opts = append(opts, assistant.WithArchive(a.archive))
	}
	a.session = assistant.NewSession(conversation.NewWithGreeting(cfg.Assistant.Greeting), client, opts...)
	return a
}

func (a *app) Close() error {
	if a.archive != nil {
		return a.archive.Close()
	}
	return nil
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
		current    *app
	)

	root := &cobra.Command{
		Use:           "workspacehq",
		Short:         "WorkspaceHQ project assistant",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `workspacehq runs the WorkspaceHQ assistant: a chat panel backed by a
generative-AI provider, plus project summaries and smart briefs.

Examples:
  workspacehq serve                       Serve the HTTP API for the dashboard
  workspacehq chat                        Start an interactive chat
  workspacehq ask "Draft a kickoff email" Stream a single answer
  workspacehq summary p2                  Stakeholder update for a project
  workspacehq brief "Partner portal"      Markdown project brief
  workspacehq mcp                         Serve the tools over MCP stdio`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations["stdout"] == "owned" {
				logger.UseStderr()
			}
			load := config.Load
			if configPath != "" {
				load = func() (*config.Config, error) { return config.LoadFile(configPath) }
			}
			cfg, err := load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			logger.SetLevel(cfg.Log.Level)
			current = newApp(cfg)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if current != nil {
				return current.Close()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: $CONFIG_PATH or ./config.yaml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	appFn := func() *app { return current }
	root.AddCommand(
		newServeCmd(appFn),
		newChatCmd(appFn),
		newAskCmd(appFn),
		newSummaryCmd(appFn),
		newBriefCmd(appFn),
		newProjectsCmd(),
		newMCPCmd(appFn),
	)
	return root
}

// ownsStdout marks commands whose stdout must stay free of log lines.
func ownsStdout(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations["stdout"] = "owned"
	return cmd
}
