package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	gitletfuse "github.com/systemshift/gitlet/internal/fuse"
	"github.com/systemshift/gitlet/internal/repo"
)

var mountCmd = &cobra.Command{
	Use:   "mount <mountpoint>",
	Short: "Mount a read-only view of branches and history",
	Long: "Mount a read-only filesystem exposing HEAD, one directory per branch with\n" +
		"its head snapshot, and the current branch's log. Unmounts on interrupt.",
	Args: exactArgs(1),
	RunE: runMount,
}

func init() {
	rootCmd.AddCommand(mountCmd)
}

func runMount(cmd *cobra.Command, args []string) error {
	mountpoint := args[0]
	if err := os.MkdirAll(mountpoint, 0755); err != nil {
		return fmt.Errorf("create mountpoint: %w", err)
	}

	return withRepo(func(r *repo.Repository) error {
		server, err := gitletfuse.MountFS(mountpoint, r.Store(), verbosity >= 3)
		if err != nil {
			return fmt.Errorf("mount: %w", err)
		}
		log.Info().Str("mountpoint", mountpoint).Msg("mounted")

		go func() {
			<-cmd.Context().Done()
			log.Info().Msg("unmounting")
			if err := server.Unmount(); err != nil {
				log.Error().Err(err).Msg("unmount failed")
			}
		}()

		server.Wait()
		return nil
	})
}
