package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

// FileCatalog is a flat-file catalog source backed by a JSON export, the
// format the desktop app writes for batch runs. It satisfies Catalog with an
// in-memory copy; voice-flag updates are kept in memory and can be written
// back with Save.
type FileCatalog struct {
	path string

	mu     sync.RWMutex
	quests map[QuestID]QuestRecord
}

// LoadFile reads a JSON quest export from path.
func LoadFile(path string) (*FileCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read quest file: %w", err)
	}

	var records []QuestRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unable to parse quest file %s: %w", path, err)
	}

	fc := &FileCatalog{
		path:   path,
		quests: make(map[QuestID]QuestRecord, len(records)),
	}
	for _, r := range records {
		fc.quests[r.ID] = r
	}
	return fc, nil
}

// ListAll returns every quest sorted by zone then id, the order the desktop
// browser presents them in.
func (fc *FileCatalog) ListAll() []QuestRecord {
	fc.mu.RLock()
	defer fc.mu.RUnlock()

	records := make([]QuestRecord, 0, len(fc.quests))
	for _, r := range fc.quests {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Zone != records[j].Zone {
			return records[i].Zone < records[j].Zone
		}
		return records[i].ID < records[j].ID
	})
	return records
}

// Get returns the record for id, if present.
func (fc *FileCatalog) Get(id QuestID) (QuestRecord, bool) {
	fc.mu.RLock()
	defer fc.mu.RUnlock()

	r, ok := fc.quests[id]
	return r, ok
}

// Len returns the number of quests in the catalog.
func (fc *FileCatalog) Len() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()

	return len(fc.quests)
}

// UpdateVoiceFlags implements Catalog.
func (fc *FileCatalog) UpdateVoiceFlags(id QuestID, hasMale, hasFemale bool) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	r, ok := fc.quests[id]
	if !ok {
		return
	}
	r.HasMaleAudio = hasMale
	r.HasFemaleAudio = hasFemale
	fc.quests[id] = r
}

// Save writes the catalog, including updated voice flags, back to its file.
func (fc *FileCatalog) Save() error {
	records := fc.ListAll()

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode quest file: %w", err)
	}
	if err := os.WriteFile(fc.path, data, 0o644); err != nil {
		return fmt.Errorf("unable to write quest file: %w", err)
	}
	return nil
}
