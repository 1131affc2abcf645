package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/snowfs/snowfs/internal/repository"
	"github.com/snowfs/snowfs/internal/snowerr"
)

func newCommitCmd() *cobra.Command {
	var (
		message    string
		allowEmpty bool
		tags       []string
		userData   []string
	)

	cmd := NewRepoCommand("commit", "Record staged changes as a new commit", func(repo *repository.Repository, cmd *cobra.Command, args []string) error {
		if message == "" {
			return snowerr.New(snowerr.InvalidArgument, "commit message must not be empty")
		}

		data := make(map[string]string, len(userData))
		for _, kv := range userData {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return snowerr.New(snowerr.InvalidArgument, "invalid --user-data '"+kv+"', expected key=value")
			}
			data[k] = v
		}

		commit, err := repo.CreateCommit(message, repository.CommitOptions{
			AllowEmpty: allowEmpty,
			Tags:       tags,
			UserData:   data,
		})
		if err != nil {
			return err
		}
		fmt.Printf("[%s] %s\n", commit.Hash[:8], commit.Message)
		return nil
	})

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().BoolVar(&allowEmpty, "allow-empty", false, "allow an empty commit")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "attach a tag to the commit (repeatable)")
	cmd.Flags().StringArrayVar(&userData, "user-data", nil, "attach key=value user data to the commit (repeatable)")
	return cmd
}
