package cmd

import (
	"github.com/spf13/cobra"

	"github.com/systemshift/gitlet/internal/repo"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout [<commit>] -- <file> | checkout <branch>",
	Short: "Restore a file, or switch branches",
	RunE:  runCheckout,
}

func init() {
	rootCmd.AddCommand(checkoutCmd)
}

type checkoutTarget struct {
	commit string
	file   string
	branch string
}

// parseCheckout interprets checkout's operands; dash is the number of
// arguments before "--", or -1 when there is none.
func parseCheckout(args []string, dash int) (checkoutTarget, error) {
	switch {
	case dash == 0 && len(args) == 1:
		return checkoutTarget{file: args[0]}, nil
	case dash == 1 && len(args) == 2:
		return checkoutTarget{commit: args[0], file: args[1]}, nil
	case dash < 0 && len(args) == 1:
		return checkoutTarget{branch: args[0]}, nil
	default:
		return checkoutTarget{}, errIncorrectOperands
	}
}

func runCheckout(cmd *cobra.Command, args []string) error {
	target, err := parseCheckout(args, cmd.ArgsLenAtDash())
	if err != nil {
		return err
	}
	return withRepo(func(r *repo.Repository) error {
		switch {
		case target.branch != "":
			return r.CheckoutBranch(target.branch)
		case target.commit != "":
			return r.CheckoutCommitFile(target.commit, target.file)
		default:
			return r.CheckoutFile(target.file)
		}
	})
}
