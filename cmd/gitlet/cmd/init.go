package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/systemshift/gitlet/internal/repo"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a repository in the current directory",
	Args:  exactArgs(0),
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	r, err := repo.Init(wd, cfg.RepoOptions()...)
	if err != nil {
		return err
	}
	return r.Close()
}
