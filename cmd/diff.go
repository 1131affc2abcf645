package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/snowfs/snowfs/internal/repository"
)

type diffEntryJSON struct {
	Path  string `json:"path"`
	Hash  string `json:"hash"`
	Size  int64  `json:"size"`
	IsDir bool   `json:"isdir"`
}

type diffResultJSON struct {
	Added       []diffEntryJSON `json:"added"`
	Modified    []diffEntryJSON `json:"modified"`
	Deleted     []diffEntryJSON `json:"deleted"`
	NonModified []diffEntryJSON `json:"nonModified"`
}

func newDiffCmd() *cobra.Command {
	var output string

	cmd := NewRepoCommand("diff <a> <b>", "Show the differences between two commits", func(repo *repository.Repository, cmd *cobra.Command, args []string) error {
		a, err := repo.FindCommitByHash(args[0])
		if err != nil {
			return err
		}
		b, err := repo.FindCommitByHash(args[1])
		if err != nil {
			return err
		}

		result := repository.Diff(b.Root, a.Root, true)

		if output == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(diffResultJSON{
				Added:       toJSONEntries(result.Added),
				Modified:    toJSONEntries(result.Modified),
				Deleted:     toJSONEntries(result.Deleted),
				NonModified: toJSONEntries(result.NonModified),
			})
		}

		printDiffSection(color.GreenString("added"), result.Added)
		printDiffSection(color.YellowString("modified"), result.Modified)
		printDiffSection(color.RedString("deleted"), result.Deleted)
		return nil
	})

	cmd.Args = cobra.ExactArgs(2)
	cmd.Flags().StringVar(&output, "output", "", "output format (json)")
	return cmd
}

func printDiffSection(label string, entries []repository.DiffEntry) {
	for _, e := range entries {
		fmt.Printf("%s %s\n", label, e.Path)
	}
}

func toJSONEntries(entries []repository.DiffEntry) []diffEntryJSON {
	out := make([]diffEntryJSON, len(entries))
	for i, e := range entries {
		out[i] = diffEntryJSON{Path: e.Path, Hash: e.Hash, Size: e.Size, IsDir: e.IsDir}
	}
	return out
}
