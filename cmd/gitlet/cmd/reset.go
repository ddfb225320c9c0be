package cmd

import (
	"github.com/spf13/cobra"

	"github.com/systemshift/gitlet/internal/repo"
)

var resetCmd = &cobra.Command{
	Use:   "reset <commit>",
	Short: "Check out a commit and move the current branch to it",
	Args:  exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			return r.Reset(args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
