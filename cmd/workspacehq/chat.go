package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/workspacehq/assistant/internal/assistant"
	"github.com/workspacehq/assistant/internal/conversation"
)

const chatHelp = "Commands: /history shows the conversation, /quit exits."

func newChatCmd(appFn func() *app) *cobra.Command {
	return ownsStdout(&cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, appFn().session, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	})
}

func runChat(cmd *cobra.Command, session *assistant.Session, in io.Reader, out io.Writer) error {
	for _, m := range session.Messages() {
		printMessage(out, m)
	}
	fmt.Fprintln(out, chatHelp)

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		line := sc.Text()

		switch strings.TrimSpace(line) {
		case "/quit", "/exit":
			return nil
		case "/history":
			for _, m := range session.Messages() {
				printMessage(out, m)
			}
			continue
		case "":
			continue
		}

		_, err := session.Submit(cmd.Context(), line, func(e assistant.Event) {
			switch e.Kind {
			case assistant.EventStarted:
				fmt.Fprint(out, "assistant: ")
			case assistant.EventFragment:
				fmt.Fprint(out, e.Fragment)
			case assistant.EventDone:
				if e.Message.Failed {
					fmt.Fprint(out, e.Message.Content)
				}
				fmt.Fprintln(out)
			}
		})
		if errors.Is(err, conversation.ErrValidation) || errors.Is(err, conversation.ErrBusy) {
			fmt.Fprintln(out, err)
			continue
		}
		if err != nil {
			return err
		}
	}
}

func printMessage(out io.Writer, m conversation.Message) {
	fmt.Fprintf(out, "%s: %s\n", m.Role, m.Content)
}
