// Package snapshot persists fingerprinted views of the quest catalog and
// computes the diff between a stored snapshot and the live catalog. The
// snapshot, not the sync metadata, is the authority for what was last voiced.
package snapshot

import (
	"time"

	"github.com/dgnsrekt/questvox/internal/catalog"
	"github.com/dgnsrekt/questvox/internal/fingerprint"
)

// Entry is a lightweight denormalized copy of one quest at snapshot time.
// It carries no quest text, only the fingerprint of it.
type Entry struct {
	QuestID      catalog.QuestID  `json:"quest_id"`
	Zone         string           `json:"zone"`
	Category     catalog.Category `json:"category"`
	Fingerprint  string           `json:"fingerprint"`
	IsMainStory  bool             `json:"is_main_story"`
	IsGroupQuest bool             `json:"is_group_quest"`
}

// Snapshot is an immutable record of all quest fingerprints for one language
// at a point in time. Updates always produce a new snapshot; Save never edits
// a stored one in place.
type Snapshot struct {
	VersionID string                    `json:"version_id"`
	Language  string                    `json:"language"`
	CreatedAt time.Time                 `json:"created_at"`
	Entries   map[catalog.QuestID]Entry `json:"entries"`
}

// New builds a snapshot of entries for a language, stamped with a fresh
// version id.
func New(language string, entries []Entry) *Snapshot {
	now := time.Now().UTC()
	s := &Snapshot{
		VersionID: versionIDAt(now),
		Language:  language,
		CreatedAt: now,
		Entries:   make(map[catalog.QuestID]Entry, len(entries)),
	}
	for _, e := range entries {
		s.Entries[e.QuestID] = e
	}
	return s
}

// BuildEntries fingerprints a set of catalog records into snapshot entries.
func BuildEntries(records []catalog.QuestRecord) []Entry {
	entries := make([]Entry, 0, len(records))
	for _, q := range records {
		entries = append(entries, Entry{
			QuestID:      q.ID,
			Zone:         q.Zone,
			Category:     q.Category,
			Fingerprint:  fingerprint.ForQuest(q),
			IsMainStory:  q.IsMainStory,
			IsGroupQuest: q.IsGroupQuest,
		})
	}
	return entries
}

// GenerateVersionID returns a wall-clock version label, sortable
// lexicographically. Two calls within the same second collide, which only
// affects the label; fingerprints, not version ids, drive diffing.
func GenerateVersionID() string {
	return versionIDAt(time.Now().UTC())
}

func versionIDAt(t time.Time) string {
	return t.Format("2006-01-02_15-04-05")
}
