package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snowfs/snowfs/internal/repository"
	"github.com/snowfs/snowfs/internal/snowerr"
)

// HandlerFunc is the signature every repository-scoped command handler
// implements: the repository is already open by the time the handler runs.
type HandlerFunc func(repo *repository.Repository, cmd *cobra.Command, args []string) error

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "snowfs",
		Short: "SnowFS is a content-addressed version control engine for large binary assets",
	}
	root.AddCommand(
		newInitCmd(),
		newAddCmd(),
		newRmCmd(),
		newCommitCmd(),
		newStatusCmd(),
		newLogCmd(),
		newCheckoutCmd(),
		newBranchCmd(),
		newDiffCmd(),
	)
	return root
}

// NewRepoCommand builds a cobra.Command that opens the repository containing
// the current directory before invoking handler.
func NewRepoCommand(use, short string, handler HandlerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository.Open(".")
			if err != nil {
				return err
			}
			return handler(repo, cmd, args)
		},
	}
}

// exitCodeFor maps an error to a process exit code: 1 for anything carrying
// a recognised snowerr.Kind (a user-facing condition: bad argument, missing
// file, unrelated-history merge, ...), 2 otherwise.
func exitCodeFor(err error) int {
	var snowErr *snowerr.Error
	if errors.As(err, &snowErr) {
		return 1
	}
	var aggErr *snowerr.AggregateFileAccessError
	if errors.As(err, &aggErr) {
		return 1
	}
	fmt.Println(err)
	return 2
}
