package cmd

import (
	"github.com/spf13/cobra"

	"github.com/systemshift/gitlet/internal/repo"
)

var branchCmd = &cobra.Command{
	Use:   "branch <name>",
	Short: "Create a branch at the current head commit",
	Args:  exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			return r.CreateBranch(args[0])
		})
	},
}

var rmBranchCmd = &cobra.Command{
	Use:   "rm-branch <name>",
	Short: "Delete a branch pointer",
	Args:  exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			return r.RemoveBranch(args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(branchCmd)
	rootCmd.AddCommand(rmBranchCmd)
}
