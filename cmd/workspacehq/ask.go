package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCmd(appFn func() *app) *cobra.Command {
	return ownsStdout(&cobra.Command{
		Use:   "ask <message>",
		Short: "Stream a single answer without keeping a conversation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")
			if strings.TrimSpace(message) == "" {
				return fmt.Errorf("message must not be blank")
			}
			out := cmd.OutOrStdout()
			for frag := range appFn().client.StreamReply(cmd.Context(), nil, message) {
				fmt.Fprint(out, frag)
			}
			fmt.Fprintln(out)
			return nil
		},
	})
}
