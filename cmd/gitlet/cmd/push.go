package cmd

import (
	"github.com/spf13/cobra"

	"github.com/systemshift/gitlet/internal/repo"
)

var pushCmd = &cobra.Command{
	Use:   "push <remote> <branch>",
	Short: "Send the current branch to a remote branch",
	Long:  "Copy the current branch's history to a remote and fast-forward the remote branch to it.",
	Args:  exactArgs(2),
	RunE:  runPush,
}

func init() {
	rootCmd.AddCommand(pushCmd)
}

func runPush(cmd *cobra.Command, args []string) error {
	return withRepo(func(r *repo.Repository) error {
		_, err := r.Push(cmd.Context(), args[0], args[1])
		return err
	})
}
