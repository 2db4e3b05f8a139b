package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgnsrekt/questvox/internal/catalog"
)

func TestStoreLoadAbsent(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	snap, err := store.Load("enUS")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if snap != nil {
		t.Errorf("Load() = %+v, want nil for absent snapshot", snap)
	}
}

func TestStoreRoundtrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	snap := New("enUS", []Entry{
		{QuestID: 1, Zone: "Westfall", Category: catalog.CategoryStandard, Fingerprint: "aa", IsMainStory: true},
		{QuestID: 2, Zone: "Duskwood", Fingerprint: "bb"},
	})
	if err := store.Save(snap); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := store.Load("enUS")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded == nil {
		t.Fatal("Load() = nil after Save")
	}
	if loaded.VersionID != snap.VersionID || loaded.Language != "enUS" {
		t.Errorf("loaded header = %s/%s, want %s/enUS", loaded.VersionID, loaded.Language, snap.VersionID)
	}
	if len(loaded.Entries) != 2 {
		t.Fatalf("loaded %d entries, want 2", len(loaded.Entries))
	}
	if e := loaded.Entries[1]; e.Fingerprint != "aa" || !e.IsMainStory {
		t.Errorf("entry 1 = %+v", e)
	}
}

func TestStoreLanguagesAreIndependent(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Save(New("enUS", []Entry{{QuestID: 1, Fingerprint: "aa"}})); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(New("deDE", []Entry{{QuestID: 2, Fingerprint: "bb"}})); err != nil {
		t.Fatal(err)
	}

	en, err := store.Load("enUS")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := en.Entries[2]; ok {
		t.Error("deDE entry leaked into enUS snapshot")
	}
}

func TestStoreCorruptSnapshot(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "snapshot_enUS.json"), []byte("{truncated"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err = store.Load("enUS")
	if !errors.Is(err, ErrCorruptSnapshot) {
		t.Errorf("Load() error = %v, want ErrCorruptSnapshot", err)
	}
}

func TestStoreArchivesOnSave(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	first := New("enUS", []Entry{{QuestID: 1, Fingerprint: "aa"}})
	if err := store.Save(first); err != nil {
		t.Fatal(err)
	}

	// Force a distinct version id; they are second-granular.
	second := New("enUS", []Entry{{QuestID: 1, Fingerprint: "a2"}})
	second.VersionID = versionIDAt(time.Now().UTC().Add(time.Hour))
	if err := store.Save(second); err != nil {
		t.Fatal(err)
	}

	history, err := store.History("enUS")
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}
	if len(history) != 1 || history[0] != first.VersionID {
		t.Fatalf("History() = %v, want [%s]", history, first.VersionID)
	}

	archived, err := store.LoadArchived("enUS", first.VersionID)
	if err != nil {
		t.Fatalf("LoadArchived() error: %v", err)
	}
	if archived.Entries[1].Fingerprint != "aa" {
		t.Errorf("archived entry = %+v, want the superseded fingerprint", archived.Entries[1])
	}

	current, err := store.Load("enUS")
	if err != nil {
		t.Fatal(err)
	}
	if current.Entries[1].Fingerprint != "a2" {
		t.Errorf("current entry = %+v, want the new fingerprint", current.Entries[1])
	}
}

func TestStoreSaveRejectsNoLanguage(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(&Snapshot{}); err == nil {
		t.Error("Save() accepted a snapshot without a language code")
	}
	if err := store.Save(nil); err == nil {
		t.Error("Save() accepted a nil snapshot")
	}
}
