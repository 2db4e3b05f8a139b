package main

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last sync and the state of the audio pack",
	Long: paragraph(fmt.Sprintf(
		"\n%s the sync state: when the last sync ran, which snapshot it produced, and how much audio the pack holds.",
		keyword("Summarize"))),
	Example: paragraph("questvox status"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}

		meta := a.meta.Load(a.cfg.Language)
		fmt.Println(keyword("Language:"), a.cfg.Language)
		if meta.LastSyncAt.IsZero() {
			fmt.Println(keyword("Last sync:"), "never")
		} else {
			fmt.Println(keyword("Last sync:"), humanize.Time(meta.LastSyncAt))
			fmt.Println(keyword("Snapshot:"), meta.LastDataVersion)
			fmt.Println(keyword("Quests voiced:"), meta.TotalQuestsVoiced)
		}

		snap, err := a.snapshots.Load(a.cfg.Language)
		if err != nil {
			fmt.Println(keyword("Snapshot file:"), "unreadable:", err)
		} else if snap != nil {
			fmt.Println(keyword("Snapshot entries:"), len(snap.Entries))
		}
		if history, err := a.snapshots.History(a.cfg.Language); err == nil && len(history) > 0 {
			fmt.Println(keyword("Archived snapshots:"), len(history))
		}

		fmt.Println(keyword("Indexed audio files:"), a.index.Len())
		fmt.Println(keyword("Audio pack size:"), humanize.Bytes(audioTreeSize(a.cfg.AudioRoot)))
		return nil
	},
}

// audioTreeSize totals file sizes under root. Best effort; unreadable entries
// count as zero.
func audioTreeSize(root string) uint64 {
	var total uint64
	_ = filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil //nolint:nilerr
		}
		if info, err := d.Info(); err == nil {
			total += uint64(info.Size())
		}
		return nil
	})
	return total
}
