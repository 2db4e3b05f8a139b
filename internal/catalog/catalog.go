package catalog

// Catalog is the engine's read boundary to the quest store. Implementations
// are expected to enforce quest id uniqueness; the engine does not.
type Catalog interface {
	// ListAll returns a copy of every quest record currently in the catalog.
	ListAll() []QuestRecord

	// UpdateVoiceFlags records whether audio exists for each voice of a quest.
	// The flags are presentation hints only.
	UpdateVoiceFlags(id QuestID, hasMale, hasFemale bool)
}

// VoiceFlagUpdate is a voice-flag change returned by the orchestrator for the
// caller to apply to its own store. The engine never writes into a live
// catalog itself.
type VoiceFlagUpdate struct {
	QuestID   QuestID
	HasMale   bool
	HasFemale bool
}

// ApplyVoiceFlags applies a set of updates to a catalog.
func ApplyVoiceFlags(c Catalog, updates []VoiceFlagUpdate) {
	for _, u := range updates {
		c.UpdateVoiceFlags(u.QuestID, u.HasMale, u.HasFemale)
	}
}
