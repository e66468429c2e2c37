package main

import (
	"github.com/spf13/cobra"

	"github.com/workspacehq/assistant/internal/mcpserver"
)

func newMCPCmd(appFn func() *app) *cobra.Command {
	return ownsStdout(&cobra.Command{
		Use:   "mcp",
		Short: "Serve the workspace tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			return mcpserver.Serve(mcpserver.New(mcpserver.NewTools(a.client, a.session), Version))
		},
	})
}
