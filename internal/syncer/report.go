package syncer

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dgnsrekt/questvox/internal/catalog"
	"github.com/dgnsrekt/questvox/internal/voice"
)

// State is the lifecycle state of a batch run.
type State int

// Batch run states. Failed is reserved for fatal setup conditions detected
// before the loop starts; per-item failures never produce it.
const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateCancelled
	StateFailed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// MarshalJSON implements json.Marshaler.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ItemError records one failed generation attempt. The item stays in
// New/Changed state until a later run succeeds, so every entry here is
// retryable.
type ItemError struct {
	QuestID catalog.QuestID `json:"quest_id"`
	Voice   voice.Gender    `json:"voice"`
	Error   string          `json:"error"`
}

// Report is the result of one batch run. RunBatch always returns one, partial
// or complete, except for fatal setup errors.
type Report struct {
	RunID    string `json:"run_id"`
	Language string `json:"language"`
	State    State  `json:"state"`

	Total     int `json:"total"`
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`

	FailedItems []ItemError `json:"failed_items,omitempty"`
	Cancelled   bool        `json:"cancelled"`

	BytesWritten    int64     `json:"bytes_written"`
	SnapshotVersion string    `json:"snapshot_version,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`

	// PersistenceError records a post-batch snapshot/metadata/index write
	// failure. The generated audio is intact; the next run re-diffs from the
	// previous snapshot.
	PersistenceError string `json:"persistence_error,omitempty"`

	// VoiceFlags are the derived presence-hint updates for the caller to
	// apply to its own catalog.
	VoiceFlags []catalog.VoiceFlagUpdate `json:"-"`
}

// Duration returns the wall-clock duration of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Summary returns a one-line human-readable summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("%s: %d processed, %d succeeded, %d skipped, %d failed, %s written in %s",
		r.State, r.Processed, r.Succeeded, r.Skipped, r.Failed,
		humanize.Bytes(uint64(r.BytesWritten)), r.Duration().Round(time.Millisecond))
}

// Dump writes the report as indented JSON, for post-run inspection.
func (r *Report) Dump(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Progress is an advisory progress update emitted after each item.
type Progress struct {
	Processed int
	Total     int
	Current   string
}

// ProgressFunc receives progress updates. It must be fast; slow sinks delay
// the batch but can never fail it.
type ProgressFunc func(Progress)
