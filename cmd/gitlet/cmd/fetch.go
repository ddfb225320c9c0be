package cmd

import (
	"github.com/spf13/cobra"

	"github.com/systemshift/gitlet/internal/repo"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <remote> <branch>",
	Short: "Copy a remote branch into <remote>/<branch>",
	Args:  exactArgs(2),
	RunE:  runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	return withRepo(func(r *repo.Repository) error {
		_, err := r.Fetch(cmd.Context(), args[0], args[1])
		return err
	})
}
