package snapshot

import "github.com/dgnsrekt/questvox/internal/catalog"

// DiffType classifies one quest relative to the previous snapshot.
type DiffType int

// Classification of a quest in a diff. Every quest id appearing in either the
// old snapshot or the current catalog gets exactly one of these.
const (
	DiffNew DiffType = iota
	DiffChanged
	DiffRemoved
	DiffUnchanged
)

// String implements fmt.Stringer.
func (t DiffType) String() string {
	switch t {
	case DiffNew:
		return "new"
	case DiffChanged:
		return "changed"
	case DiffRemoved:
		return "removed"
	case DiffUnchanged:
		return "unchanged"
	}
	return "unknown"
}

// DiffEntry is the classification of a single quest.
type DiffEntry struct {
	QuestID        catalog.QuestID
	Type           DiffType
	OldFingerprint string
	NewFingerprint string
	Zone           string
	Category       catalog.Category
	IsMainStory    bool
	IsGroupQuest   bool
}

// DiffResult holds the full classified change-set plus derived counts.
// Entry order is unspecified; callers must treat Entries as a set.
type DiffResult struct {
	Entries []DiffEntry

	New       int
	Changed   int
	Removed   int
	Unchanged int
}

// Total returns the number of classified quests.
func (r *DiffResult) Total() int {
	return len(r.Entries)
}

// NewAndChanged returns the work list for the orchestrator: every quest that
// needs narration generated or regenerated.
func (r *DiffResult) NewAndChanged() []DiffEntry {
	out := make([]DiffEntry, 0, r.New+r.Changed)
	for _, e := range r.Entries {
		if e.Type == DiffNew || e.Type == DiffChanged {
			out = append(out, e)
		}
	}
	return out
}

// WorkIDs returns the quest ids of the New and Changed entries.
func (r *DiffResult) WorkIDs() []catalog.QuestID {
	pending := r.NewAndChanged()
	ids := make([]catalog.QuestID, 0, len(pending))
	for _, e := range pending {
		ids = append(ids, e.QuestID)
	}
	return ids
}

// Diff compares the current catalog entries against an old snapshot. A nil
// old snapshot models the first-ever sync: every current entry is New.
//
// Pure in-memory computation, no I/O, O(N) after the map build. Duplicate
// quest ids within current are a caller contract violation; the last one wins.
func Diff(old *Snapshot, current []Entry) *DiffResult {
	oldEntries := map[catalog.QuestID]Entry{}
	if old != nil {
		oldEntries = old.Entries
	}

	result := &DiffResult{Entries: make([]DiffEntry, 0, len(current))}
	seen := make(map[catalog.QuestID]struct{}, len(current))

	for _, cur := range current {
		seen[cur.QuestID] = struct{}{}

		entry := DiffEntry{
			QuestID:        cur.QuestID,
			NewFingerprint: cur.Fingerprint,
			Zone:           cur.Zone,
			Category:       cur.Category,
			IsMainStory:    cur.IsMainStory,
			IsGroupQuest:   cur.IsGroupQuest,
		}

		prev, existed := oldEntries[cur.QuestID]
		switch {
		case !existed:
			entry.Type = DiffNew
			result.New++
		case prev.Fingerprint != cur.Fingerprint:
			entry.Type = DiffChanged
			entry.OldFingerprint = prev.Fingerprint
			result.Changed++
		default:
			entry.Type = DiffUnchanged
			entry.OldFingerprint = prev.Fingerprint
			result.Unchanged++
		}
		result.Entries = append(result.Entries, entry)
	}

	for id, prev := range oldEntries {
		if _, ok := seen[id]; ok {
			continue
		}
		result.Entries = append(result.Entries, DiffEntry{
			QuestID:        id,
			Type:           DiffRemoved,
			OldFingerprint: prev.Fingerprint,
			Zone:           prev.Zone,
			Category:       prev.Category,
			IsMainStory:    prev.IsMainStory,
			IsGroupQuest:   prev.IsGroupQuest,
		})
		result.Removed++
	}

	return result
}
