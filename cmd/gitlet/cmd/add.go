package cmd

import (
	"github.com/spf13/cobra"

	"github.com/systemshift/gitlet/internal/repo"
)

var addCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Stage a file for the next commit",
	Args:  exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			return r.Add(args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
