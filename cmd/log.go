package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/snowfs/snowfs/internal/repository"
)

type commitJSON struct {
	Hash     string            `json:"hash"`
	Parents  []string          `json:"parents"`
	Date     int64             `json:"date"`
	Message  string            `json:"message"`
	Tags     []string          `json:"tags,omitempty"`
	UserData map[string]string `json:"userData,omitempty"`
}

func newLogCmd() *cobra.Command {
	var (
		verbose bool
		output  string
	)

	cmd := NewRepoCommand("log", "Show commit history", func(repo *repository.Repository, cmd *cobra.Command, args []string) error {
		commits := repo.GetAllCommits(repository.NewestFirst)

		if output == "json" {
			rows := make([]commitJSON, len(commits))
			for i, c := range commits {
				row := commitJSON{Hash: c.Hash, Parents: c.Parents, Date: c.Date, Message: c.Message}
				if verbose {
					row.Tags = c.Tags
					row.UserData = c.UserData
				}
				rows[i] = row
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		}

		for i, c := range commits {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("%s %s\n", color.YellowString("commit"), c.Hash)
			if len(c.Parents) > 1 {
				fmt.Printf("Merge: %v\n", c.Parents)
			}
			fmt.Printf("Date:   %s\n", time.UnixMilli(c.Date).Format(time.RFC1123))
			if verbose {
				if len(c.Tags) > 0 {
					fmt.Printf("Tags:   %v\n", c.Tags)
				}
				for k, v := range c.UserData {
					fmt.Printf("%s: %s\n", k, v)
				}
			}
			fmt.Println()
			fmt.Printf("    %s\n", c.Message)
		}
		return nil
	})

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "include tags and user data")
	cmd.Flags().StringVar(&output, "output", "", "output format (json)")
	return cmd
}
