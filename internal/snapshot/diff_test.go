package snapshot

import (
	"testing"

	"github.com/dgnsrekt/questvox/internal/catalog"
)

func entryWith(id catalog.QuestID, fp string) Entry {
	return Entry{QuestID: id, Zone: "Westfall", Fingerprint: fp}
}

func classify(t *testing.T, r *DiffResult) map[catalog.QuestID]DiffType {
	t.Helper()
	out := make(map[catalog.QuestID]DiffType, len(r.Entries))
	for _, e := range r.Entries {
		if _, dup := out[e.QuestID]; dup {
			t.Fatalf("quest %d classified twice", e.QuestID)
		}
		out[e.QuestID] = e.Type
	}
	return out
}

func TestDiffFirstSync(t *testing.T) {
	current := []Entry{entryWith(1, "aa"), entryWith(2, "bb")}

	r := Diff(nil, current)
	if r.New != 2 || r.Changed != 0 || r.Removed != 0 || r.Unchanged != 0 {
		t.Fatalf("counts = %d/%d/%d/%d, want 2 new", r.New, r.Changed, r.Removed, r.Unchanged)
	}
	for id, typ := range classify(t, r) {
		if typ != DiffNew {
			t.Errorf("quest %d = %s, want new", id, typ)
		}
	}
}

func TestDiffClassification(t *testing.T) {
	old := New("enUS", []Entry{
		entryWith(1, "aa"), // will be unchanged
		entryWith(2, "bb"), // will change
		entryWith(3, "cc"), // will be removed
	})
	current := []Entry{
		entryWith(1, "aa"),
		entryWith(2, "b2"),
		entryWith(4, "dd"), // new
	}

	r := Diff(old, current)

	if r.New != 1 || r.Changed != 1 || r.Removed != 1 || r.Unchanged != 1 {
		t.Fatalf("counts = new %d changed %d removed %d unchanged %d",
			r.New, r.Changed, r.Removed, r.Unchanged)
	}
	if r.Total() != 4 {
		t.Fatalf("Total() = %d, want 4", r.Total())
	}

	types := classify(t, r)
	want := map[catalog.QuestID]DiffType{
		1: DiffUnchanged,
		2: DiffChanged,
		3: DiffRemoved,
		4: DiffNew,
	}
	for id, typ := range want {
		if types[id] != typ {
			t.Errorf("quest %d = %s, want %s", id, types[id], typ)
		}
	}
}

func TestDiffCarriesFingerprints(t *testing.T) {
	old := New("enUS", []Entry{entryWith(2, "bb")})
	r := Diff(old, []Entry{entryWith(2, "b2")})

	e := r.Entries[0]
	if e.OldFingerprint != "bb" || e.NewFingerprint != "b2" {
		t.Errorf("fingerprints = %q -> %q, want bb -> b2", e.OldFingerprint, e.NewFingerprint)
	}
}

func TestDiffIdempotent(t *testing.T) {
	current := []Entry{entryWith(1, "aa"), entryWith(2, "bb")}
	snap := New("enUS", current)

	r := Diff(snap, current)
	if r.Unchanged != len(current) || r.New != 0 || r.Changed != 0 || r.Removed != 0 {
		t.Errorf("diff against own snapshot not all-unchanged: %+v", r)
	}
	if len(r.NewAndChanged()) != 0 {
		t.Errorf("NewAndChanged() = %d entries, want 0", len(r.NewAndChanged()))
	}
}

func TestWorkIDs(t *testing.T) {
	old := New("enUS", []Entry{entryWith(1, "aa")})
	r := Diff(old, []Entry{entryWith(1, "a2"), entryWith(5, "ee")})

	ids := r.WorkIDs()
	if len(ids) != 2 {
		t.Fatalf("WorkIDs() = %v, want 2 ids", ids)
	}
	seen := map[catalog.QuestID]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	if !seen[1] || !seen[5] {
		t.Errorf("WorkIDs() = %v, want {1, 5}", ids)
	}
}
