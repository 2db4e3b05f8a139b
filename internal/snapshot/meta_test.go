package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMetaStoreLoadAbsent(t *testing.T) {
	store, err := NewMetaStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	meta := store.Load("enUS")
	if meta.Language != "enUS" {
		t.Errorf("Load() language = %q, want enUS", meta.Language)
	}
	if !meta.LastSyncAt.IsZero() || meta.LastDataVersion != "" {
		t.Errorf("absent metadata not zero-valued: %+v", meta)
	}
}

func TestMetaStoreRoundtrip(t *testing.T) {
	store, err := NewMetaStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	want := Metadata{
		LastDataVersion:   "2026-08-01_12-00-00",
		LastSyncAt:        time.Date(2026, 8, 1, 12, 0, 3, 0, time.UTC),
		Language:          "enUS",
		TotalQuestsVoiced: 4213,
		AudioPackVersion:  "2026-08-01_12-00-00",
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got := store.Load("enUS")
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestMetaStoreUnreadableFallsBackToZero(t *testing.T) {
	dir := t.TempDir()
	store, err := NewMetaStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "syncmeta_enUS.json"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	meta := store.Load("enUS")
	if meta.Language != "enUS" || meta.TotalQuestsVoiced != 0 {
		t.Errorf("Load() over garbage = %+v, want zero value", meta)
	}
}

func TestMetaStoreSaveRejectsNoLanguage(t *testing.T) {
	store, err := NewMetaStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(Metadata{}); err == nil {
		t.Error("Save() accepted metadata without a language code")
	}
}
