package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/systemshift/gitlet/internal/repo"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <branch>",
	Short: "Merge a branch into the current branch",
	Args:  exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			res, err := r.Merge(args[0])
			if err != nil {
				return err
			}
			reportMerge(cmd.OutOrStdout(), res)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}

func reportMerge(w io.Writer, res *repo.MergeResult) {
	switch res.Outcome {
	case repo.MergeUpToDate:
		fmt.Fprintln(w, "Given branch is an ancestor of the current branch.")
	case repo.MergeFastForward:
		fmt.Fprintln(w, "Current branch fast-forwarded.")
	case repo.MergeCommitted:
		if res.Conflicted() {
			fmt.Fprintln(w, "Encountered a merge conflict.")
		}
	}
}
