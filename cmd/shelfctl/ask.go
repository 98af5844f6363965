package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Send one message and print the reply",
	Example: `  shelfctl ask "add Dune by Frank Herbert, 1965, sci-fi"
  shelfctl ask "which books do I have by Austen?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()

		reply := s.bot.HandleUserMessage(cmd.Context(), strings.Join(args, " "), nil)
		fmt.Fprintln(cmd.OutOrStdout(), reply.Message)
		if !reply.Success {
			// non-zero exit for scripts, without cobra's usage dump
			return errNotDone
		}
		return nil
	},
}
