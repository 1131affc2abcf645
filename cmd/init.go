package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/snowfs/snowfs/internal/repository"
)

func newInitCmd() *cobra.Command {
	var commondir string

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create a new repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return err
			}

			repo, err := repository.InitExt(absDir, repository.InitOptions{Commondir: commondir})
			if err != nil {
				return err
			}
			fmt.Printf("Initialized empty SnowFS repository in %s\n", repo.Commondir)
			return nil
		},
	}
	cmd.Flags().StringVar(&commondir, "commondir", "", "store repository state outside the working directory")
	return cmd
}
