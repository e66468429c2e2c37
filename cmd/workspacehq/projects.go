package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/workspacehq/assistant/internal/render"
	"github.com/workspacehq/assistant/internal/workspace"
)

func newProjectsCmd() *cobra.Command {
	return ownsStdout(&cobra.Command{
		Use:   "projects",
		Short: "List workspace projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSTATUS\tPROGRESS\tDUE\tTEAM")
			for _, p := range workspace.Projects() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d%%\t%s\t%d\n", p.ID, p.Name, p.Status, p.Progress, p.DueDate, len(p.Members))
			}
			return w.Flush()
		},
	})
}

func newSummaryCmd(appFn func() *app) *cobra.Command {
	return ownsStdout(&cobra.Command{
		Use:   "summary <project-id>",
		Short: "Generate a stakeholder update for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := workspace.ProjectByID(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), appFn().client.ProjectSummary(cmd.Context(), p))
			return nil
		},
	})
}

func newBriefCmd(appFn func() *app) *cobra.Command {
	var (
		raw   bool
		style string
		width int
	)
	cmd := ownsStdout(&cobra.Command{
		Use:   "brief <topic>",
		Short: "Draft a Markdown project brief",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			brief, err := appFn().client.SmartBrief(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if raw {
				fmt.Fprintln(cmd.OutOrStdout(), brief)
				return nil
			}
			out, err := render.Markdown(brief, style, width)
			if err != nil {
				return fmt.Errorf("render brief: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	})
	cmd.Flags().BoolVar(&raw, "raw", false, "print the Markdown source instead of rendering it")
	cmd.Flags().StringVar(&style, "style", "dark", "glamour style: dark, light, notty")
	cmd.Flags().IntVar(&width, "width", render.DefaultWidth, "word-wrap width")
	return cmd
}
