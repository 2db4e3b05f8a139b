package fingerprint

import (
	"testing"

	"github.com/dgnsrekt/questvox/internal/catalog"
)

func TestComputeDeterministic(t *testing.T) {
	a := Compute("The Collector", "Go to the mine.", "Kill 10 kobolds.", "Well done.")
	b := Compute("The Collector", "Go to the mine.", "Kill 10 kobolds.", "Well done.")
	if a != b {
		t.Errorf("same input produced different fingerprints: %s vs %s", a, b)
	}
	if len(a) != Size {
		t.Errorf("fingerprint length = %d, want %d", len(a), Size)
	}
}

func TestComputeNormalization(t *testing.T) {
	tests := []struct {
		name  string
		a, b  [4]string
		equal bool
	}{
		{
			name:  "case insensitive",
			a:     [4]string{"The Collector", "Go north.", "", ""},
			b:     [4]string{"the collector", "go NORTH.", "", ""},
			equal: true,
		},
		{
			name:  "surrounding whitespace ignored",
			a:     [4]string{"Title", "Desc", "Obj", "Done"},
			b:     [4]string{"  Title  ", "\tDesc\n", " Obj", "Done "},
			equal: true,
		},
		{
			name:  "missing and empty hash the same",
			a:     [4]string{"Title", "Desc", "", ""},
			b:     [4]string{"Title", "Desc", "   ", ""},
			equal: true,
		},
		{
			name:  "content change detected",
			a:     [4]string{"Title", "Go north.", "", ""},
			b:     [4]string{"Title", "Go south.", "", ""},
			equal: false,
		},
		{
			name:  "objectives participate",
			a:     [4]string{"Title", "Desc", "Kill 10.", ""},
			b:     [4]string{"Title", "Desc", "Kill 12.", ""},
			equal: false,
		},
		{
			name:  "field boundaries are unambiguous",
			a:     [4]string{"ab", "c", "", ""},
			b:     [4]string{"a", "bc", "", ""},
			equal: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa := Compute(tt.a[0], tt.a[1], tt.a[2], tt.a[3])
			fb := Compute(tt.b[0], tt.b[1], tt.b[2], tt.b[3])
			if (fa == fb) != tt.equal {
				t.Errorf("Compute(%v) = %s, Compute(%v) = %s, want equal=%v",
					tt.a, fa, tt.b, fb, tt.equal)
			}
		})
	}
}

func TestForQuestUsesAllTextFields(t *testing.T) {
	base := catalog.QuestRecord{
		ID:             7,
		Title:          "The Collector",
		Description:    "Go to the mine.",
		Objectives:     "Kill 10 kobolds.",
		CompletionText: "Well done.",
	}

	if ForQuest(base) != Compute(base.Title, base.Description, base.Objectives, base.CompletionText) {
		t.Error("ForQuest disagrees with Compute over the same fields")
	}

	changed := base
	changed.CompletionText = "Splendid."
	if ForQuest(base) == ForQuest(changed) {
		t.Error("completion text change did not change the fingerprint")
	}

	// Non-text fields must not affect the fingerprint.
	flagged := base
	flagged.IsMainStory = true
	flagged.Zone = "Elsewhere"
	flagged.HasMaleAudio = true
	if ForQuest(base) != ForQuest(flagged) {
		t.Error("non-text field change altered the fingerprint")
	}
}
