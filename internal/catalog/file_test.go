package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

const questJSON = `[
  {"quest_id": 12, "zone": "Westfall", "title": "The Killing Fields", "description": "Harvest the crops."},
  {"quest_id": 9, "zone": "Elwynn Forest", "title": "A Fishy Peril", "description": "Speak with Remy."},
  {"quest_id": 33, "zone": "Elwynn Forest", "title": "Wolves Across the Border", "description": "Bring 8 pelts."}
]`

func writeQuestFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quests.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	fc, err := LoadFile(writeQuestFile(t, questJSON))
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if fc.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", fc.Len())
	}

	q, ok := fc.Get(12)
	if !ok {
		t.Fatal("Get(12) not found")
	}
	if q.Title != "The Killing Fields" || q.Zone != "Westfall" {
		t.Errorf("Get(12) = %+v", q)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadFile(writeQuestFile(t, "{not json")); err == nil {
		t.Error("expected error for malformed file")
	}
}

func TestListAllOrder(t *testing.T) {
	fc, err := LoadFile(writeQuestFile(t, questJSON))
	if err != nil {
		t.Fatal(err)
	}

	var got []QuestID
	for _, r := range fc.ListAll() {
		got = append(got, r.ID)
	}

	// Zone ascending, then id ascending within a zone.
	want := []QuestID{9, 33, 12}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ListAll() order = %v, want %v", got, want)
		}
	}
}

func TestUpdateVoiceFlagsAndSave(t *testing.T) {
	path := writeQuestFile(t, questJSON)
	fc, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	ApplyVoiceFlags(fc, []VoiceFlagUpdate{
		{QuestID: 9, HasMale: true, HasFemale: true},
		{QuestID: 999, HasMale: true}, // unknown ids are ignored
	})
	if err := fc.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	reloaded, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	q, _ := reloaded.Get(9)
	if !q.HasMaleAudio || !q.HasFemaleAudio {
		t.Errorf("voice flags not persisted: %+v", q)
	}
	q, _ = reloaded.Get(12)
	if q.HasMaleAudio || q.HasFemaleAudio {
		t.Errorf("untouched quest gained voice flags: %+v", q)
	}
}
