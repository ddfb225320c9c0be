package cmd

import (
	"github.com/spf13/cobra"

	"github.com/systemshift/gitlet/internal/repo"
)

var rmCmd = &cobra.Command{
	Use:   "rm <file>",
	Short: "Unstage a file, or stage its removal",
	Args:  exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			return r.Remove(args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
