package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/systemshift/gitlet/internal/config"
	"github.com/systemshift/gitlet/internal/errors"
	"github.com/systemshift/gitlet/internal/logging"
	"github.com/systemshift/gitlet/internal/repo"
)

var (
	cfgFile   string
	verbosity int
)

var rootCmd = &cobra.Command{
	Use:   "gitlet",
	Short: "A small version-control system",
	Long: "gitlet tracks snapshots of a directory, with branches, three-way merges\n" +
		"and push/fetch/pull between repositories on the local filesystem.",
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return errors.New(errors.ErrIncorrectOperands, "", "Please enter a command.")
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.SetupLogger(verbosity)
		return config.Init(viper.GetViper(), cfgFile)
	},
}

// Execute runs the command line. Failures print one line and exit 1.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stdout, errors.Message(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/gitlet/config.yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v, -vv, -vvv)")
	rootCmd.PersistentFlags().String("dir", "", "metadata directory name (default: .gitlet)")

	viper.BindPFlag("dir", rootCmd.PersistentFlags().Lookup("dir"))
}

func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// openRepo opens the repository rooted at the current directory.
func openRepo() (*repo.Repository, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return repo.Open(wd, cfg.RepoOptions()...)
}

// withRepo runs fn against the open repository and closes it afterwards.
func withRepo(fn func(r *repo.Repository) error) (err error) {
	r, err := openRepo()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := r.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(r)
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return errIncorrectOperands
		}
		return nil
	}
}

var errIncorrectOperands = errors.New(errors.ErrIncorrectOperands, "", "Incorrect operands.")
