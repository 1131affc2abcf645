package cmd

import (
	"github.com/spf13/cobra"

	"github.com/snowfs/snowfs/internal/repository"
)

func newRmCmd() *cobra.Command {
	cmd := NewRepoCommand("rm <path>...", "Stage files for deletion in the next commit", func(repo *repository.Repository, cmd *cobra.Command, args []string) error {
		return repo.RemovePaths(args)
	})
	cmd.Args = cobra.MinimumNArgs(1)
	return cmd
}
