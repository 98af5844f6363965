package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/5w1tchy/shelfbot/internal/models"
	"github.com/spf13/cobra"
)

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "Print the catalogue without involving the assistant",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeFn, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		all, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(all) == 0 {
			fmt.Fprintln(out, "No books yet.")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TITLE\tAUTHORS\tYEAR\tGENRES")
		for _, b := range all {
			year := "-"
			if b.Year != 0 {
				year = fmt.Sprint(b.Year)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.Title, models.JoinList(b.Authors), year, models.JoinList(b.Genres))
		}
		return tw.Flush()
	},
}
