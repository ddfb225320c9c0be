package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systemshift/gitlet/internal/repo"
)

var findCmd = &cobra.Command{
	Use:   "find <message>",
	Short: "Print the ids of commits with the given message",
	Args:  exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			ids, err := r.Find(args[0])
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(findCmd)
}
