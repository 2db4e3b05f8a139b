package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/questvox/internal/audioindex"
	"github.com/dgnsrekt/questvox/internal/catalog"
	"github.com/dgnsrekt/questvox/internal/snapshot"
	"github.com/dgnsrekt/questvox/internal/syncer"
	"github.com/dgnsrekt/questvox/internal/voice"
	"github.com/dgnsrekt/questvox/utils"
)

// secretOptions are credentials that may come from the environment instead of
// the config file.
type secretOptions struct {
	OpenAIAPIKey string `env:"QUESTVOX_OPENAI_API_KEY"`
}

// appConfig is the resolved runtime configuration for one invocation.
type appConfig struct {
	Language    string
	CatalogFile string
	AudioRoot   string
	AudioExt    string
	DataDir     string
	Engine      string
	Timeout     int
	APIKey      string
	Model       string
	MaleVoice   string
	FemaleVoice string
	Delay       time.Duration
}

// app bundles the wired engine components used by the commands. Everything is
// explicitly constructed here; no component reaches for ambient state.
type app struct {
	cfg       appConfig
	catalog   *catalog.FileCatalog
	index     *audioindex.Index
	snapshots *snapshot.Store
	meta      *snapshot.MetaStore
	indexPath string
}

func loadAppConfig() (appConfig, error) {
	secrets, err := env.ParseAs[secretOptions]()
	if err != nil {
		return appConfig{}, fmt.Errorf("error parsing environment: %w", err)
	}

	cfg := appConfig{
		Language:    viper.GetString("language"),
		CatalogFile: utils.ExpandPath(viper.GetString("catalog.file")),
		AudioRoot:   utils.ExpandPath(viper.GetString("audio.root")),
		AudioExt:    viper.GetString("audio.ext"),
		DataDir:     utils.ExpandPath(viper.GetString("data.dir")),
		Engine:      viper.GetString("backend.engine"),
		Timeout:     viper.GetInt("backend.timeout"),
		APIKey:      viper.GetString("backend.openai.api_key"),
		Model:       viper.GetString("backend.openai.model"),
		MaleVoice:   viper.GetString("voices.male"),
		FemaleVoice: viper.GetString("voices.female"),
		Delay:       viper.GetDuration("sync.delay"),
	}
	if secrets.OpenAIAPIKey != "" {
		cfg.APIKey = secrets.OpenAIAPIKey
	}

	if cfg.DataDir == "" {
		scope := gap.NewScope(gap.User, "questvox")
		dir, err := scope.DataPath("")
		if err != nil {
			return appConfig{}, fmt.Errorf("could not resolve data directory: %w", err)
		}
		cfg.DataDir = dir
	}
	if cfg.AudioRoot == "" {
		cfg.AudioRoot = filepath.Join(cfg.DataDir, "audio")
	}

	return cfg, nil
}

// newApp wires the stores and the presence index. The catalog file is only
// required by commands that read quests.
func newApp(needCatalog bool) (*app, error) {
	cfg, err := loadAppConfig()
	if err != nil {
		return nil, err
	}
	if err := utils.EnsureDir(cfg.DataDir); err != nil {
		return nil, fmt.Errorf("could not create data directory: %w", err)
	}

	snapshots, err := snapshot.NewStore(filepath.Join(cfg.DataDir, "snapshots"))
	if err != nil {
		return nil, err
	}
	meta, err := snapshot.NewMetaStore(filepath.Join(cfg.DataDir, "snapshots"))
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		index:     audioindex.New(),
		snapshots: snapshots,
		meta:      meta,
		indexPath: filepath.Join(cfg.DataDir, "audio.index"),
	}

	// Warm-start the presence index; fall back to a full rescan when the
	// warm file is missing or unreadable.
	if err := a.index.Load(a.indexPath); err != nil {
		if !os.IsNotExist(err) {
			log.Warn("audio index unreadable, rescanning", "err", err)
		}
		if _, err := a.index.Rescan(cfg.AudioRoot); err != nil {
			return nil, err
		}
	}

	if needCatalog {
		if cfg.CatalogFile == "" {
			return nil, errors.New("no catalog file configured (set catalog.file or run questvox config)")
		}
		cat, err := catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
		a.catalog = cat
	}

	return a, nil
}

// openBackend builds the configured narration backend.
func (a *app) openBackend() (voice.Backend, error) {
	return voice.Open(a.cfg.Engine, voice.Config{
		APIKey:         a.cfg.APIKey,
		Model:          a.cfg.Model,
		TimeoutSeconds: a.cfg.Timeout,
	})
}

// newOrchestrator wires a batch orchestrator around the app's stores.
func (a *app) newOrchestrator(backend voice.Backend, delay time.Duration) (*syncer.Orchestrator, error) {
	return syncer.New(syncer.Config{
		Backend:    backend,
		Index:      a.index,
		Snapshots:  a.snapshots,
		Meta:       a.meta,
		OutputRoot: a.cfg.AudioRoot,
		Language:   a.cfg.Language,
		VoiceIDs: map[voice.Gender]string{
			voice.Male:   a.cfg.MaleVoice,
			voice.Female: a.cfg.FemaleVoice,
		},
		AudioExt:  a.cfg.AudioExt,
		Delay:     delay,
		IndexPath: a.indexPath,
	})
}

// diffCatalog loads the stored snapshot and classifies the live catalog
// against it.
func (a *app) diffCatalog() (*snapshot.DiffResult, []catalog.QuestRecord, error) {
	records := a.catalog.ListAll()

	old, err := a.snapshots.Load(a.cfg.Language)
	if err != nil {
		if errors.Is(err, snapshot.ErrCorruptSnapshot) {
			return nil, nil, fmt.Errorf("%w\nRefusing to continue: a full re-voice would follow. Inspect or remove the file, then retry", err)
		}
		return nil, nil, err
	}

	return snapshot.Diff(old, snapshot.BuildEntries(records)), records, nil
}
