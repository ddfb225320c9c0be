package cmd

import (
	"github.com/spf13/cobra"

	"github.com/systemshift/gitlet/internal/repo"
)

var commitCmd = &cobra.Command{
	Use:   "commit <message>",
	Short: "Record the staged snapshot",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCommit,
}

func init() {
	rootCmd.AddCommand(commitCmd)
}

func runCommit(cmd *cobra.Command, args []string) error {
	var message string
	if len(args) == 1 {
		message = args[0]
	}
	return withRepo(func(r *repo.Repository) error {
		_, err := r.Commit(message)
		return err
	})
}
