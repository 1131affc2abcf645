package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/snowfs/snowfs/internal/repository"
)

type statusEntryJSON struct {
	Path   string `json:"path"`
	IsDir  bool   `json:"isdir"`
	Status string `json:"status"`
	Size   int64  `json:"size"`
}

func newStatusCmd() *cobra.Command {
	var (
		all     bool
		ignored bool
		output  string
	)

	cmd := NewRepoCommand("status", "Show the working tree status", func(repo *repository.Repository, cmd *cobra.Command, args []string) error {
		filter := repository.FilterDefault
		if all {
			filter = repository.FilterAll
		} else if ignored {
			filter |= repository.IncludeIgnored
		}

		entries, err := repo.GetStatus(filter)
		if err != nil {
			return err
		}

		if output == "json" {
			rows := make([]statusEntryJSON, len(entries))
			for i, e := range entries {
				rows[i] = statusEntryJSON{Path: e.Path, IsDir: e.IsDir, Status: e.Status.String(), Size: e.Size}
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		}

		for _, e := range entries {
			fmt.Printf("%s %s\n", statusColor(e.Status), e.Path)
		}
		return nil
	})

	cmd.Flags().BoolVar(&all, "all", false, "include unmodified and ignored entries")
	cmd.Flags().BoolVar(&ignored, "ignored", false, "include ignored entries")
	cmd.Flags().StringVar(&output, "output", "", "output format (json)")
	return cmd
}

func statusColor(status repository.Kind) string {
	switch status {
	case repository.WTNew:
		return color.GreenString("new")
	case repository.WTModified:
		return color.YellowString("modified")
	case repository.WTDeleted:
		return color.RedString("deleted")
	case repository.Ignored:
		return color.New(color.Faint).Sprint("ignored")
	default:
		return status.String()
	}
}
