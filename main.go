// Package main provides the entry point for the questvox CLI.
//
// questvox keeps a large catalog of game quest narration in sync with its
// generated audio: it fingerprints quest text, diffs it against the last
// snapshot, and re-voices only what changed.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string

	rootCmd = &cobra.Command{
		Use:   "questvox",
		Short: "Incremental text-to-speech narration for quest catalogs",
		Long: paragraph(fmt.Sprintf(
			"\nGenerate and %s quest narration audio. questvox fingerprints every quest, diffs the catalog against the last snapshot, and only voices what is new or changed.",
			keyword("incrementally re-generate"))),
		SilenceErrors: false,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
	}
)

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))

	// Config defaults
	viper.SetDefault("language", "enUS")
	viper.SetDefault("catalog.file", "")
	viper.SetDefault("audio.root", "")
	viper.SetDefault("audio.ext", "mp3")
	viper.SetDefault("data.dir", "")
	viper.SetDefault("backend.engine", "edge")
	viper.SetDefault("backend.timeout", 30)
	viper.SetDefault("backend.openai.api_key", "")
	viper.SetDefault("backend.openai.model", "")
	viper.SetDefault("voices.male", "en-US-GuyNeural")
	viper.SetDefault("voices.female", "en-US-AriaNeural")
	viper.SetDefault("sync.delay", "500ms")

	rootCmd.AddCommand(syncCmd, diffCmd, rescanCmd, statusCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "questvox")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "questvox")}, dirs...)
	}

	if c := os.Getenv("QUESTVOX_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("questvox")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("questvox")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "questvox.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
