package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/5w1tchy/shelfbot/internal/llm"
	"github.com/spf13/cobra"
)

var errNotDone = errors.New("the assistant could not complete the request")

// replHistory bounds what is kept locally; the gateway trims further.
const replHistory = 20

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Chat with the assistant interactively",
	Long:  "Reads one message per line until EOF or \"exit\". Earlier turns are sent as context.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()

		out := cmd.OutOrStdout()
		in := bufio.NewScanner(cmd.InOrStdin())
		var history []llm.Turn

		fmt.Fprintln(out, `Type a message, "help" for examples, or "exit" to quit.`)
		for {
			fmt.Fprint(out, "> ")
			if !in.Scan() {
				fmt.Fprintln(out)
				return in.Err()
			}
			line := strings.TrimSpace(in.Text())
			switch strings.ToLower(line) {
			case "":
				continue
			case "exit", "quit":
				return nil
			}

			reply := s.bot.HandleUserMessage(cmd.Context(), line, history)
			fmt.Fprintln(out, reply.Message)

			history = append(history,
				llm.Turn{Role: llm.RoleUser, Message: line},
				llm.Turn{Role: llm.RoleAssistant, Message: reply.Message})
			if len(history) > replHistory {
				history = history[len(history)-replHistory:]
			}
			if cmd.Context().Err() != nil {
				return nil
			}
		}
	},
}
