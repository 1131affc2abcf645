package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snowfs/snowfs/internal/objects"
	"github.com/snowfs/snowfs/internal/repository"
)

func newBranchCmd() *cobra.Command {
	var deleteName string

	cmd := NewRepoCommand("branch [name] [start]", "List, create or delete branches", func(repo *repository.Repository, cmd *cobra.Command, args []string) error {
		if deleteName != "" {
			return repo.DeleteReference(deleteName)
		}

		if len(args) == 0 {
			current, attached := repo.HeadBranch()
			for name, ref := range repo.Refs() {
				if ref.Type != objects.Branch {
					continue
				}
				marker := "  "
				if attached && name == current {
					marker = "* "
				}
				fmt.Printf("%s%s\n", marker, name)
			}
			return nil
		}

		start := "HEAD"
		if len(args) > 1 {
			start = args[1]
		}
		startCommit, err := repo.FindCommitByHash(start)
		if err != nil {
			return err
		}
		_, err = repo.CreateNewReference(objects.Branch, args[0], startCommit.Hash)
		return err
	})

	cmd.Args = cobra.MaximumNArgs(2)
	cmd.Flags().StringVarP(&deleteName, "delete", "d", "", "delete the named branch")
	return cmd
}
