package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/questvox/internal/audioindex"
	"github.com/dgnsrekt/questvox/internal/catalog"
	"github.com/dgnsrekt/questvox/internal/snapshot"
	"github.com/dgnsrekt/questvox/internal/syncer"
)

// dryRunPreviewLimit caps how many pending quests a dry run prints in full.
const dryRunPreviewLimit = 20

var (
	syncForce   bool
	syncDryRun  bool
	syncWatch   bool
	syncVoices  []string
	syncQuests  []int64
	syncDelay   time.Duration
	syncReport  string
	syncCatalog string

	syncCmd = &cobra.Command{
		Use:   "sync",
		Short: "Voice everything new or changed since the last snapshot",
		Long: paragraph(fmt.Sprintf(
			"\n%s the quest catalog against the last snapshot and generate narration audio for every quest that is new or changed. Quests whose audio already exists are skipped unless --force is set.",
			keyword("Diff"))),
		Example: paragraph("questvox sync\nquestvox sync --dry-run\nquestvox sync --voices male --force\nquestvox sync --quest 1021 --quest 1022"),
		Args:    cobra.NoArgs,
		RunE:    runSync,
	}
)

func init() {
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "regenerate audio even when it already exists")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "classify and preview, generate nothing")
	syncCmd.Flags().BoolVar(&syncWatch, "watch", false, "keep running and re-sync when the catalog file changes")
	syncCmd.Flags().StringSliceVar(&syncVoices, "voices", []string{"male", "female"}, "narration tracks to generate")
	syncCmd.Flags().Int64SliceVar(&syncQuests, "quest", nil, "restrict the run to specific quest ids (repeatable)")
	syncCmd.Flags().DurationVar(&syncDelay, "delay", 0, "delay between narration calls (overrides sync.delay)")
	syncCmd.Flags().StringVar(&syncReport, "report", "", "write the full run report as JSON to this path")
	syncCmd.Flags().StringVar(&syncCatalog, "file", "", "quest catalog file (overrides catalog.file)")
}

func runSync(*cobra.Command, []string) error {
	a, err := newSyncApp()
	if err != nil {
		return err
	}

	voices, err := parseVoiceSet(syncVoices)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := syncOnce(ctx, a, voices); err != nil {
		return err
	}
	if !syncWatch || syncDryRun {
		return nil
	}
	return watchAndSync(ctx, a, voices)
}

func newSyncApp() (*app, error) {
	a, err := newApp(syncCatalog == "")
	if err != nil {
		return nil, err
	}
	if syncCatalog != "" {
		cat, err := catalog.LoadFile(syncCatalog)
		if err != nil {
			return nil, err
		}
		a.catalog = cat
		a.cfg.CatalogFile = syncCatalog
	}
	return a, nil
}

func syncOnce(ctx context.Context, a *app, voices syncer.VoiceSet) error {
	diff, records, err := a.diffCatalog()
	if err != nil {
		return err
	}

	items := pendingRecords(diff, a.catalog)
	// Quests that failed on an earlier run are Unchanged by fingerprint but
	// still have no audio; the presence index brings them back into the list.
	items = appendMissingAudio(items, records, voices, a.index)
	if syncForce {
		// A forced run re-voices regardless of classification.
		items = records
	}
	if len(syncQuests) > 0 {
		items = filterQuests(items, syncQuests)
	}

	fmt.Printf("%s %d quests: %d new, %d changed, %d unchanged, %d removed\n",
		keyword("Classified"), diff.Total(), diff.New, diff.Changed, diff.Unchanged, diff.Removed)

	if syncDryRun {
		printDryRun(items)
		return nil
	}
	if len(items) == 0 {
		fmt.Println("Nothing to do. Audio is up to date.")
		return nil
	}

	backend, err := a.openBackend()
	if err != nil {
		return err
	}

	delay := a.cfg.Delay
	if syncDelay > 0 {
		delay = syncDelay
	}
	orch, err := a.newOrchestrator(backend, delay)
	if err != nil {
		return err
	}

	report, err := orch.RunBatch(ctx, syncer.Batch{
		Items:      items,
		Catalog:    records,
		Voices:     voices,
		Regenerate: changedSet(diff),
		Force:      syncForce,
		Progress: func(p syncer.Progress) {
			fmt.Printf("  [%d/%d] %s\n", p.Processed, p.Total, p.Current)
		},
	})
	if err != nil {
		return err
	}

	catalog.ApplyVoiceFlags(a.catalog, report.VoiceFlags)
	if err := a.catalog.Save(); err != nil {
		log.Warn("could not write voice flags back to catalog", "err", err)
	}

	fmt.Println(report.Summary())
	for _, item := range report.FailedItems {
		fmt.Printf("  failed: quest %d (%s): %s\n", item.QuestID, item.Voice, item.Error)
	}
	if report.PersistenceError != "" {
		fmt.Printf("  warning: state not fully persisted: %s\n", report.PersistenceError)
	}

	if syncReport != "" {
		if err := report.Dump(syncReport); err != nil {
			return fmt.Errorf("unable to write report: %w", err)
		}
		fmt.Println("Wrote report to:", syncReport)
	}
	return nil
}

// watchAndSync re-runs the sync whenever the catalog file is rewritten.
// Editors and exporters replace the file, so the parent directory is watched
// and events are matched by name.
func watchAndSync(ctx context.Context, a *app, voices syncer.VoiceSet) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unable to watch catalog: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	catalogPath := a.cfg.CatalogFile
	if err := watcher.Add(filepath.Dir(catalogPath)); err != nil {
		return fmt.Errorf("unable to watch catalog: %w", err)
	}
	fmt.Println("Watching for catalog changes. Press ctrl-c to stop.")

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(catalogPath) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// Debounce: exporters write in bursts.
			pending = time.After(time.Second)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "err", err)
		case <-pending:
			pending = nil
			cat, err := catalog.LoadFile(catalogPath)
			if err != nil {
				log.Warn("catalog reload failed", "err", err)
				continue
			}
			a.catalog = cat
			fmt.Println("Catalog changed, re-syncing.")
			if err := syncOnce(ctx, a, voices); err != nil {
				log.Error("sync failed", "err", err)
			}
		}
	}
}

// pendingRecords maps the New and Changed diff entries back to full quest
// records, preserving diff order.
func pendingRecords(diff *snapshot.DiffResult, cat *catalog.FileCatalog) []catalog.QuestRecord {
	pending := diff.NewAndChanged()
	items := make([]catalog.QuestRecord, 0, len(pending))
	for _, e := range pending {
		if r, ok := cat.Get(e.QuestID); ok {
			items = append(items, r)
		}
	}
	return items
}

// appendMissingAudio widens the work list with quests that lack audio for a
// requested track, keeping catalog order for the additions.
func appendMissingAudio(items, records []catalog.QuestRecord, voices syncer.VoiceSet, index *audioindex.Index) []catalog.QuestRecord {
	have := make(map[catalog.QuestID]struct{}, len(items))
	for _, r := range items {
		have[r.ID] = struct{}{}
	}

	for _, r := range records {
		if _, ok := have[r.ID]; ok {
			continue
		}
		if r.NarrationText() == "" {
			continue
		}
		for _, g := range voices.Genders() {
			if !index.Has(r.ID, g) {
				items = append(items, r)
				break
			}
		}
	}
	return items
}

// changedSet collects the quest ids whose content changed, so their stale
// audio is overwritten rather than presence-skipped.
func changedSet(diff *snapshot.DiffResult) map[catalog.QuestID]bool {
	out := make(map[catalog.QuestID]bool, diff.Changed)
	for _, e := range diff.Entries {
		if e.Type == snapshot.DiffChanged {
			out[e.QuestID] = true
		}
	}
	return out
}

func filterQuests(items []catalog.QuestRecord, ids []int64) []catalog.QuestRecord {
	want := make(map[catalog.QuestID]struct{}, len(ids))
	for _, id := range ids {
		want[catalog.QuestID(id)] = struct{}{}
	}
	out := make([]catalog.QuestRecord, 0, len(ids))
	for _, r := range items {
		if _, ok := want[r.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}

func parseVoiceSet(names []string) (syncer.VoiceSet, error) {
	var set syncer.VoiceSet
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "male":
			set.Male = true
		case "female":
			set.Female = true
		default:
			return set, fmt.Errorf("unknown voice %q (valid: male, female)", name)
		}
	}
	return set, nil
}

func printDryRun(items []catalog.QuestRecord) {
	if len(items) == 0 {
		fmt.Println("Nothing pending. Audio is up to date.")
		return
	}

	fmt.Printf("%s %d quests would be voiced:\n", keyword("Dry run:"), len(items))
	for i, r := range items {
		if i == dryRunPreviewLimit {
			fmt.Printf("  ... and %d more\n", len(items)-dryRunPreviewLimit)
			break
		}
		fmt.Printf("  %s\n", r.Label())
	}
}
