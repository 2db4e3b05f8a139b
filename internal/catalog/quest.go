// Package catalog defines the quest record model the sync engine consumes.
//
// The engine never owns the catalog. A desktop browser, a relational import,
// or a flat-file export supplies QuestRecord values; the engine reads them,
// fingerprints them, and hands voice-flag updates back as plain data.
package catalog

import (
	"fmt"
	"strings"
)

// QuestID uniquely identifies a quest across all catalog sources.
type QuestID int64

// Category describes the broad type of a quest.
type Category string

// Known quest categories. Catalog sources may carry others; the engine treats
// the category as an opaque label and only copies it into snapshots.
const (
	CategoryStandard Category = "standard"
	CategoryDungeon  Category = "dungeon"
	CategoryRaid     Category = "raid"
	CategoryPvP      Category = "pvp"
	CategoryWorld    Category = "world"
)

// QuestRecord is an immutable view of one quest's narratable content.
//
// HasMaleAudio and HasFemaleAudio are presentation hints derived by the
// engine, never sources of truth; the audio presence index owns that answer.
type QuestRecord struct {
	ID             QuestID  `json:"quest_id"`
	Zone           string   `json:"zone"`
	Category       Category `json:"category"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Objectives     string   `json:"objectives"`
	CompletionText string   `json:"completion"`
	IsMainStory    bool     `json:"is_main_story"`
	IsGroupQuest   bool     `json:"is_group_quest"`
	HasMaleAudio   bool     `json:"has_male_audio,omitempty"`
	HasFemaleAudio bool     `json:"has_female_audio,omitempty"`
}

// NarrationText assembles the text spoken for this quest: the title followed
// by the description, or the description alone when the quest has no title.
// Objectives and completion text participate in change detection but are not
// read aloud.
func (q QuestRecord) NarrationText() string {
	title := strings.TrimSpace(q.Title)
	desc := strings.TrimSpace(q.Description)
	if title == "" {
		return desc
	}
	if desc == "" {
		return title
	}
	return fmt.Sprintf("%s. %s", title, desc)
}

// Label returns a short human-readable identifier for progress reporting.
func (q QuestRecord) Label() string {
	if q.Title == "" {
		return fmt.Sprintf("quest %d", q.ID)
	}
	return fmt.Sprintf("quest %d: %s", q.ID, q.Title)
}
