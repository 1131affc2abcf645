package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snowfs/snowfs/internal/repository"
)

func newCheckoutCmd() *cobra.Command {
	var (
		detach         bool
		discard        bool
		restoreDeleted bool
		deleteNew      bool
	)

	cmd := NewRepoCommand("checkout <ref-or-hash>", "Switch the working tree to a commit or reference", func(repo *repository.Repository, cmd *cobra.Command, args []string) error {
		var reset repository.ResetFlags
		if detach {
			reset |= repository.Detach
		}
		if discard {
			reset |= repository.DiscardChanges
		}
		if restoreDeleted {
			reset |= repository.RestoreDeletedFiles
		}
		if deleteNew {
			reset |= repository.DeleteNewFiles
		}

		if err := repo.Checkout(args[0], reset); err != nil {
			return err
		}
		fmt.Printf("Switched to '%s'\n", args[0])
		return nil
	})

	cmd.Args = cobra.ExactArgs(1)
	cmd.Flags().BoolVar(&detach, "detach", false, "leave HEAD detached even when the target is a branch")
	cmd.Flags().BoolVar(&discard, "discard", false, "discard local modifications and untracked-file conflicts")
	cmd.Flags().BoolVar(&restoreDeleted, "restore-deleted", false, "restore files deleted locally but present in the target")
	cmd.Flags().BoolVar(&deleteNew, "delete-new", false, "delete untracked files not present in the target")
	return cmd
}
