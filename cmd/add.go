package cmd

import (
	"github.com/spf13/cobra"

	"github.com/snowfs/snowfs/internal/repository"
)

func newAddCmd() *cobra.Command {
	cmd := NewRepoCommand("add <path>...", "Stage files for the next commit", func(repo *repository.Repository, cmd *cobra.Command, args []string) error {
		return repo.AddPaths(args)
	})
	cmd.Args = cobra.MinimumNArgs(1)
	return cmd
}
