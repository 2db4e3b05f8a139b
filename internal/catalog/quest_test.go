package catalog

import "testing"

func TestNarrationText(t *testing.T) {
	tests := []struct {
		name  string
		quest QuestRecord
		want  string
	}{
		{
			name:  "title and description",
			quest: QuestRecord{Title: "The Collector", Description: "Go to the mine."},
			want:  "The Collector. Go to the mine.",
		},
		{
			name:  "description only",
			quest: QuestRecord{Description: "Go to the mine."},
			want:  "Go to the mine.",
		},
		{
			name:  "title only",
			quest: QuestRecord{Title: "The Collector"},
			want:  "The Collector",
		},
		{
			name:  "whitespace-only fields count as empty",
			quest: QuestRecord{Title: "  ", Description: "\t"},
			want:  "",
		},
		{
			name: "objectives and completion are not narrated",
			quest: QuestRecord{
				Title:          "The Collector",
				Description:    "Go to the mine.",
				Objectives:     "Kill 10 kobolds.",
				CompletionText: "Well done.",
			},
			want: "The Collector. Go to the mine.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.quest.NarrationText(); got != tt.want {
				t.Errorf("NarrationText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	q := QuestRecord{ID: 42, Title: "The Collector"}
	if got := q.Label(); got != "quest 42: The Collector" {
		t.Errorf("Label() = %q", got)
	}

	untitled := QuestRecord{ID: 7}
	if got := untitled.Label(); got != "quest 7" {
		t.Errorf("Label() = %q", got)
	}
}
