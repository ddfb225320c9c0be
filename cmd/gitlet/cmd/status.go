package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/systemshift/gitlet/internal/repo"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show branches, staged changes and untracked files",
	Args:  exactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			st, err := r.Status()
			if err != nil {
				return err
			}
			writeStatus(cmd.OutOrStdout(), st)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func writeStatus(w io.Writer, st *repo.Status) {
	fmt.Fprintln(w, "=== Branches ===")
	for _, b := range st.Branches {
		if b == st.ActiveBranch {
			fmt.Fprint(w, "*")
		}
		fmt.Fprintln(w, b)
	}
	fmt.Fprintln(w)

	section := func(title string, lines []string) {
		fmt.Fprintf(w, "=== %s ===\n", title)
		for _, l := range lines {
			fmt.Fprintln(w, l)
		}
		fmt.Fprintln(w)
	}
	section("Staged Files", st.Staged)
	section("Removed Files", st.Removed)

	var changes []string
	for _, c := range st.Unstaged {
		changes = append(changes, fmt.Sprintf("%s (%s)", c.Path, c.Kind))
	}
	section("Modifications Not Staged For Commit", changes)
	section("Untracked Files", st.Untracked)
}
