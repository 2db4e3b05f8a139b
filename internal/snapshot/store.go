package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"

	"github.com/dgnsrekt/questvox/internal/catalog"
)

// ErrCorruptSnapshot marks a snapshot file that exists but cannot be parsed.
// Callers must surface it rather than silently treating it as "no snapshot":
// discarding it forces a full re-voice of everything.
var ErrCorruptSnapshot = errors.New("snapshot file is corrupt")

const historyDir = "history"

// Store reads and writes per-language snapshot files under a directory.
// Writes are atomic (temp file + rename) and the superseded file is kept
// zstd-compressed under history/, so a snapshot is never edited in place.
//
// A Store serializes its own writes; concurrent Saves for the same language
// from multiple Stores over one directory are not supported.
type Store struct {
	dir    string
	logger *log.Logger

	mu sync.Mutex
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the logger used for non-fatal archival warnings.
func WithStoreLogger(logger *log.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// NewStore creates a snapshot store rooted at dir, creating it if needed.
func NewStore(dir string, opts ...StoreOption) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create snapshot directory: %w", err)
	}
	s := &Store{dir: dir, logger: log.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Load returns the stored snapshot for a language, or nil when none exists
// yet. A file that exists but does not parse is reported as
// ErrCorruptSnapshot.
func (s *Store) Load(language string) (*Snapshot, error) {
	data, err := os.ReadFile(s.path(language))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, s.path(language), err)
	}
	if snap.Entries == nil {
		snap.Entries = make(map[catalog.QuestID]Entry)
	}
	return &snap, nil
}

// Save writes a snapshot atomically, archiving any previously stored snapshot
// for the same language first.
func (s *Store) Save(snap *Snapshot) error {
	if snap == nil || snap.Language == "" {
		return errors.New("snapshot has no language code")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(snap.Language)
	if err := s.archive(path); err != nil {
		// Archival failure is not worth losing a sync over; the new snapshot
		// still lands atomically.
		s.logger.Warn("could not archive previous snapshot", "path", path, "err", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode snapshot: %w", err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("unable to write snapshot: %w", err)
	}
	return nil
}

// History returns the archived snapshot version ids for a language, oldest
// first.
func (s *Store) History(language string) ([]string, error) {
	pattern := filepath.Join(s.dir, historyDir, fmt.Sprintf("snapshot_%s_*.json.zst", language))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	prefix := fmt.Sprintf("snapshot_%s_", language)
	versions := make([]string, 0, len(matches))
	for _, m := range matches {
		name := filepath.Base(m)
		version := name[len(prefix) : len(name)-len(".json.zst")]
		versions = append(versions, version)
	}
	return versions, nil
}

// LoadArchived restores an archived snapshot by version id.
func (s *Store) LoadArchived(language, versionID string) (*Snapshot, error) {
	path := filepath.Join(s.dir, historyDir, fmt.Sprintf("snapshot_%s_%s.json.zst", language, versionID))
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read archived snapshot: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create zstd decoder: %w", err)
	}
	defer decoder.Close()

	data, err := decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, path, err)
	}
	return &snap, nil
}

func (s *Store) path(language string) string {
	return filepath.Join(s.dir, fmt.Sprintf("snapshot_%s.json", language))
}

// archive moves the current snapshot file, if any, into history/ compressed
// with zstd. The archive name carries the old snapshot's version id.
func (s *Store) archive(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var old Snapshot
	if err := json.Unmarshal(data, &old); err != nil {
		// A corrupt file is preserved as-is for inspection instead of being
		// compressed under a bogus version label.
		return os.Rename(path, path+".corrupt")
	}

	dir := filepath.Join(s.dir, historyDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return fmt.Errorf("unable to create zstd encoder: %w", err)
	}
	compressed := encoder.EncodeAll(data, nil)
	if err := encoder.Close(); err != nil {
		return err
	}

	name := fmt.Sprintf("snapshot_%s_%s.json.zst", old.Language, old.VersionID)
	return writeFileAtomic(filepath.Join(dir, name), compressed)
}

// writeFileAtomic writes to a temp file first, then renames, so a crash
// mid-write never leaves a half-written file visible to the next Load.
func writeFileAtomic(path string, data []byte) error {
	tempPath := path + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
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
