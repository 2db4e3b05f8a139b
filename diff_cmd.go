package main

import (
	"fmt"
	"sort"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/questvox/internal/snapshot"
)

var (
	diffAll    bool
	diffFilter string

	diffCmd = &cobra.Command{
		Use:   "diff",
		Short: "Show what a sync would do, without generating anything",
		Long: paragraph(fmt.Sprintf(
			"\n%s the quest catalog against the last snapshot and print the classification: new, changed, removed and unchanged. No audio is generated and no state is written.",
			keyword("Diff"))),
		Example: paragraph("questvox diff\nquestvox diff --all\nquestvox diff --filter defias"),
		Args:    cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}

			diff, _, err := a.diffCatalog()
			if err != nil {
				return err
			}

			fmt.Printf("%s %d quests: %d new, %d changed, %d unchanged, %d removed\n",
				keyword("Classified"), diff.Total(), diff.New, diff.Changed, diff.Unchanged, diff.Removed)

			entries := diff.NewAndChanged()
			if diffAll {
				entries = diff.Entries
			}
			sort.Slice(entries, func(i, j int) bool {
				if entries[i].Zone != entries[j].Zone {
					return entries[i].Zone < entries[j].Zone
				}
				return entries[i].QuestID < entries[j].QuestID
			})

			if diffFilter != "" {
				entries = fuzzyFilter(entries, a, diffFilter)
			}
			for _, e := range entries {
				fmt.Printf("  %-9s %s\n", e.Type, describeEntry(a, e))
			}
			return nil
		},
	}
)

func init() {
	diffCmd.Flags().BoolVar(&diffAll, "all", false, "list unchanged and removed quests too")
	diffCmd.Flags().StringVar(&diffFilter, "filter", "", "fuzzy-match quest titles and zones")
}

func describeEntry(a *app, e snapshot.DiffEntry) string {
	if r, ok := a.catalog.Get(e.QuestID); ok {
		return r.Label()
	}
	// Removed quests have no catalog record anymore; the snapshot's zone is
	// all that is left.
	return fmt.Sprintf("[%d] (%s)", e.QuestID, e.Zone)
}

func fuzzyFilter(entries []snapshot.DiffEntry, a *app, pattern string) []snapshot.DiffEntry {
	haystack := make([]string, len(entries))
	for i, e := range entries {
		haystack[i] = describeEntry(a, e)
	}

	matches := fuzzy.Find(pattern, haystack)
	out := make([]snapshot.DiffEntry, 0, len(matches))
	for _, m := range matches {
		out = append(out, entries[m.Index])
	}
	return out
}
