// Package audioindex maintains a rebuildable index of which quest/voice pairs
// already have audio on disk. The filesystem is ground truth; the index is a
// read-through cache over it, rebuilt wholesale by Rescan and kept current by
// the orchestrator's Upsert calls.
package audioindex

import (
	"encoding/gob"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgnsrekt/questvox/internal/catalog"
	"github.com/dgnsrekt/questvox/internal/voice"
)

// Entry records one existing audio file.
type Entry struct {
	QuestID       catalog.QuestID
	Gender        voice.Gender
	FilePath      string
	LastWrittenAt time.Time
}

type key struct {
	id     catalog.QuestID
	gender voice.Gender
}

// Index is the in-memory presence index. A single orchestrator writes it
// during a batch; Rescan must not run concurrently with an active batch
// (callers serialize via the orchestrator's running guard).
type Index struct {
	mu      sync.RWMutex
	entries map[key]Entry
}

// New returns an empty index.
func New() *Index {
	return &Index{entries: make(map[key]Entry)}
}

// AudioPath returns the canonical output path for a quest's voice track:
// {root}/{gender}/quest_{id}.{ext}. The layout is load-bearing: Rescan parses
// it to recover identity, so it must stay bijective.
func AudioPath(root string, gender voice.Gender, id catalog.QuestID, ext string) string {
	return filepath.Join(root, string(gender), fmt.Sprintf("quest_%d.%s", id, ext))
}

// ParseAudioPath recovers (quest id, gender) from a path following the
// canonical layout. Files that do not follow it are not audio outputs.
func ParseAudioPath(path string) (catalog.QuestID, voice.Gender, bool) {
	gender, ok := voice.ParseGender(filepath.Base(filepath.Dir(path)))
	if !ok {
		return 0, "", false
	}

	name := filepath.Base(path)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if ext == "" || !strings.HasPrefix(stem, "quest_") {
		return 0, "", false
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(stem, "quest_"), 10, 64)
	if err != nil {
		return 0, "", false
	}
	return catalog.QuestID(id), gender, true
}

// Rescan walks the output tree once and replaces the entire index with what
// it finds. A missing or empty root yields zero entries and no error; that is
// the normal state of a first run.
func (ix *Index) Rescan(root string) (int, error) {
	fresh := make(map[key]Entry)

	for _, gender := range voice.Genders() {
		dir := filepath.Join(root, string(gender))
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return filepath.SkipAll
				}
				return err
			}
			if d.IsDir() {
				return nil
			}

			id, g, ok := ParseAudioPath(path)
			if !ok {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return nil
			}
			fresh[key{id, g}] = Entry{
				QuestID:       id,
				Gender:        g,
				FilePath:      path,
				LastWrittenAt: info.ModTime(),
			}
			return nil
		})
		if err != nil {
			return 0, fmt.Errorf("unable to scan audio directory %s: %w", dir, err)
		}
	}

	ix.mu.Lock()
	ix.entries = fresh
	ix.mu.Unlock()

	return len(fresh), nil
}

// Get returns the entry for a quest/voice pair, if indexed.
func (ix *Index) Get(id catalog.QuestID, gender voice.Gender) (Entry, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	e, ok := ix.entries[key{id, gender}]
	return e, ok
}

// Has reports whether a quest/voice pair is indexed.
func (ix *Index) Has(id catalog.QuestID, gender voice.Gender) bool {
	_, ok := ix.Get(id, gender)
	return ok
}

// Upsert records a freshly written audio file, avoiding a full rescan per
// generated item.
func (ix *Index) Upsert(id catalog.QuestID, gender voice.Gender, filePath string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.entries[key{id, gender}] = Entry{
		QuestID:       id,
		Gender:        gender,
		FilePath:      filePath,
		LastWrittenAt: time.Now(),
	}
}

// Remove drops an entry, used when a skip check finds the underlying file
// gone.
func (ix *Index) Remove(id catalog.QuestID, gender voice.Gender) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	delete(ix.entries, key{id, gender})
}

// Len returns the number of indexed audio files.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return len(ix.entries)
}

// Entries returns a copy of all index entries.
func (ix *Index) Entries() []Entry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := make([]Entry, 0, len(ix.entries))
	for _, e := range ix.entries {
		out = append(out, e)
	}
	return out
}

// Save persists the index as a warm-start file. The file is a convenience
// only; Load falls back to nothing and callers rescan when it is absent or
// stale.
func (ix *Index) Save(path string) error {
	entries := ix.Entries()

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	err = gob.NewEncoder(file).Encode(entries)
	closeErr := file.Close()

	if err != nil {
		os.Remove(tempPath)
		return err
	}
	if closeErr != nil {
		os.Remove(tempPath)
		return closeErr
	}
	return os.Rename(tempPath, path)
}

// Load replaces the index with the contents of a warm-start file.
func (ix *Index) Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close() //nolint:errcheck

	var entries []Entry
	if err := gob.NewDecoder(file).Decode(&entries); err != nil {
		return fmt.Errorf("unable to decode audio index: %w", err)
	}

	fresh := make(map[key]Entry, len(entries))
	for _, e := range entries {
		fresh[key{e.QuestID, e.Gender}] = e
	}

	ix.mu.Lock()
	ix.entries = fresh
	ix.mu.Unlock()
	return nil
}
