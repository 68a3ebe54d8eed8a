package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/manifoldco/promptui"
	"github.com/olekukonko/tablewriter"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"remote-sync/internal/history"
	"remote-sync/internal/syncdata"
	"remote-sync/internal/util"
)

const (
	actionRun    = "Run again"
	actionDryRun = "Dry run"
	actionRemove = "Remove from history"
	actionBack   = "Back"
)

func newHistoryCmd() *cobra.Command {
	var (
		pick  bool
		limit int
	)
	c := &cobra.Command{
		Use:   "history [query]",
		Short: "Show recent transfers",
		Long: `List recent transfers, most recent first. A query filters by local path
or host. With --pick, choose a transfer to run again.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv()
			if err != nil {
				return err
			}
			store := history.NewStore(env.home)

			var entries []history.HistoryEntry
			if len(args) == 1 {
				entries, err = store.Search(args[0])
			} else {
				entries, err = store.Recent(limit)
			}
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				util.Default.Println("No transfers recorded yet.")
				return nil
			}

			if !pick {
				renderHistory(util.Default.Writer(), entries, time.Now())
				return nil
			}
			return pickAndRun(env, store, entries)
		},
	}
	c.Flags().BoolVar(&pick, "pick", false, "choose a transfer to run again")
	c.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show (0 for all)")
	c.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a transfer from history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv()
			if err != nil {
				return err
			}
			if err := history.NewStore(env.home).Remove(args[0]); err != nil {
				return err
			}
			util.Default.Printf("Removed from history: %s\n", args[0])
			return nil
		},
	})
	return c
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func entryLabel(e history.HistoryEntry) string {
	return fmt.Sprintf("%s %s  %s", e.Direction(), e.Host, e.LocalPath)
}

func renderHistory(w io.Writer, entries []history.HistoryEntry, now time.Time) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Direction", "Host", "Path", "Last run", "Status"})
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, e := range entries {
		status := "ok"
		if e.Failed {
			status = "failed"
		}
		table.Append([]string{
			shortID(e.ID),
			e.Direction(),
			e.Host,
			e.LocalPath,
			humanize.RelTime(e.LastRun, now, "ago", "from now"),
			status,
		})
	}
	table.Render()
}

func pickAndRun(env *appEnv, store *history.Store, entries []history.HistoryEntry) error {
	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = entryLabel(e)
	}

	prompt := promptui.Select{
		Label: "Recent transfers (type / to search)",
		Items: labels,
		Size:  10,
		Searcher: func(input string, index int) bool {
			input = strings.TrimSpace(input)
			return input == "" || len(fuzzy.Find(input, labels[index:index+1])) > 0
		},
	}
	idx, _, err := prompt.Run()
	if err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	chosen := entries[idx]

	sub := promptui.Select{
		Label: fmt.Sprintf("Selected: %s", entryLabel(chosen)),
		Items: []string{actionRun, actionDryRun, actionRemove, actionBack},
	}
	_, action, err := sub.Run()
	if err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}

	req := syncdata.Request{
		Path:    chosen.LocalPath,
		Host:    chosen.Host,
		Pull:    chosen.Pull,
		NoPerms: chosen.NoPerms,
	}
	switch action {
	case actionRun:
		return runSync(env, req)
	case actionDryRun:
		req.DryRun = true
		return runSync(env, req)
	case actionRemove:
		if err := store.Remove(chosen.ID); err != nil {
			return err
		}
		util.Default.Printf("Removed from history: %s\n", entryLabel(chosen))
	}
	return nil
}
