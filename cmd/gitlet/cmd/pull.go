package cmd

import (
	"github.com/spf13/cobra"

	"github.com/systemshift/gitlet/internal/repo"
)

var pullCmd = &cobra.Command{
	Use:   "pull <remote> <branch>",
	Short: "Fetch a remote branch and merge it into the current branch",
	Args:  exactArgs(2),
	RunE:  runPull,
}

func init() {
	rootCmd.AddCommand(pullCmd)
}

func runPull(cmd *cobra.Command, args []string) error {
	return withRepo(func(r *repo.Repository) error {
		res, err := r.Pull(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		reportMerge(cmd.OutOrStdout(), res)
		return nil
	})
}
