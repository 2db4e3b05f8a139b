package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var rescanCmd = &cobra.Command{
	Use:   "rescan",
	Short: "Rebuild the audio presence index from disk",
	Long: paragraph(fmt.Sprintf(
		"\n%s the audio output tree and rebuild the presence index from what is actually on disk. Run this after copying, deleting or restoring audio files outside questvox.",
		keyword("Walk"))),
	Example: paragraph("questvox rescan"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}

		n, err := a.index.Rescan(a.cfg.AudioRoot)
		if err != nil {
			return err
		}
		if err := a.index.Save(a.indexPath); err != nil {
			log.Warn("could not persist audio index", "err", err)
		}

		fmt.Printf("%s %d audio files under %s\n", keyword("Indexed"), n, a.cfg.AudioRoot)
		return nil
	},
}
