package cmd

import (
	"github.com/spf13/cobra"

	"github.com/systemshift/gitlet/internal/repo"
)

var addRemoteCmd = &cobra.Command{
	Use:   "add-remote <name> <location>",
	Short: "Register another repository's metadata directory as a remote",
	Args:  exactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			return r.AddRemote(args[0], args[1])
		})
	},
}

var rmRemoteCmd = &cobra.Command{
	Use:   "rm-remote <name>",
	Short: "Forget a remote and its tracking branches",
	Args:  exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			return r.RemoveRemote(args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(addRemoteCmd)
	rootCmd.AddCommand(rmRemoteCmd)
}
