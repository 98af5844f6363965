package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/5w1tchy/shelfbot/internal/security/password"
	"github.com/spf13/cobra"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Print an argon2id hash for APP_PASSWORD_HASH",
	Long:  "Reads the owner password from the first line of stdin and prints its PHC string.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := bufio.NewScanner(cmd.InOrStdin())
		if !in.Scan() {
			if err := in.Err(); err != nil {
				return err
			}
			return errors.New("no password on stdin")
		}
		plain, warn, err := password.Validate(in.Text())
		if err != nil {
			return err
		}
		if warn != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning:", warn)
		}
		phc, err := password.Hash(plain)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(phc))
		return nil
	},
}
