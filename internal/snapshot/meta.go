package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Metadata is the advisory "last successful sync" record kept per language.
// It is overwritten on each successful sync and consumed by the caller for UI
// defaults only; the snapshot remains authoritative for diffing.
type Metadata struct {
	LastDataVersion   string    `json:"last_data_version"`
	LastSyncAt        time.Time `json:"last_sync_at_utc"`
	Language          string    `json:"language"`
	TotalQuestsVoiced int       `json:"total_quests_voiced"`
	AudioPackVersion  string    `json:"audio_pack_version"`
}

// MetaStore reads and writes sync metadata files under a directory.
type MetaStore struct {
	dir string
}

// NewMetaStore creates a metadata store rooted at dir, creating it if needed.
func NewMetaStore(dir string) (*MetaStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create metadata directory: %w", err)
	}
	return &MetaStore{dir: dir}, nil
}

// Load returns the metadata for a language. Absence or unreadability yields a
// zero-value record, never an error; "no metadata yet" is the normal state of
// a first run.
func (m *MetaStore) Load(language string) Metadata {
	data, err := os.ReadFile(m.path(language))
	if err != nil {
		return Metadata{Language: language}
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{Language: language}
	}
	return meta
}

// Save overwrites the metadata record for meta.Language atomically.
func (m *MetaStore) Save(meta Metadata) error {
	if meta.Language == "" {
		return fmt.Errorf("metadata has no language code")
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode sync metadata: %w", err)
	}
	if err := writeFileAtomic(m.path(meta.Language), data); err != nil {
		return fmt.Errorf("unable to write sync metadata: %w", err)
	}
	return nil
}

func (m *MetaStore) path(language string) string {
	return filepath.Join(m.dir, fmt.Sprintf("syncmeta_%s.json", language))
}
