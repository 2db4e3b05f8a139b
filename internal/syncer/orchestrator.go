// Package syncer drives the selective batch pipeline: it walks a work list,
// generates narration per requested voice for every quest that needs it,
// skips what is already voiced, and persists the new snapshot and metadata
// when a run completes cleanly.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/questvox/internal/audioindex"
	"github.com/dgnsrekt/questvox/internal/catalog"
	"github.com/dgnsrekt/questvox/internal/snapshot"
	"github.com/dgnsrekt/questvox/internal/voice"
)

// Fatal setup errors. These abort a batch before any item is attempted;
// everything else is per-item data in the report.
var (
	ErrBatchRunning         = errors.New("a batch is already running")
	ErrNoBackend            = errors.New("no narration backend configured")
	ErrOutputRootUnwritable = errors.New("audio output root is not writable")
	ErrNoVoices             = errors.New("no voices requested")
)

// VoiceSet selects which narration tracks a batch generates.
type VoiceSet struct {
	Male   bool
	Female bool
}

// Genders returns the selected tracks in stable order.
func (v VoiceSet) Genders() []voice.Gender {
	var out []voice.Gender
	if v.Male {
		out = append(out, voice.Male)
	}
	if v.Female {
		out = append(out, voice.Female)
	}
	return out
}

// Batch describes one sync run. Items and Catalog are plain copies taken at
// batch start; the orchestrator never holds a reference into the caller's
// mutable store.
type Batch struct {
	// Items is the work list, processed in the order supplied.
	Items []catalog.QuestRecord

	// Catalog is the full current catalog. The completion snapshot is built
	// from it, so Unchanged quests stay represented for the next diff.
	Catalog []catalog.QuestRecord

	// Voices selects the narration tracks to generate.
	Voices VoiceSet

	// Regenerate lists quests whose content changed since the last snapshot.
	// Their existing audio is stale and is overwritten; the presence skip only
	// applies to quests outside this set.
	Regenerate map[catalog.QuestID]bool

	// Force regenerates audio even when the index and filesystem say it
	// already exists.
	Force bool

	// Progress, if set, receives an advisory update after each item.
	Progress ProgressFunc
}

// Config wires an orchestrator.
type Config struct {
	Backend    voice.Backend
	Index      *audioindex.Index
	Snapshots  *snapshot.Store
	Meta       *snapshot.MetaStore
	OutputRoot string
	Language   string

	// VoiceIDs maps each narration track to the backend's voice identifier.
	VoiceIDs map[voice.Gender]string

	// AudioExt is the extension of written audio files. Defaults to "mp3".
	AudioExt string

	// Delay paces backend calls between items, a courtesy to rate-limited
	// providers. Zero disables pacing; tests leave it zero.
	Delay time.Duration

	// IndexPath, if set, is where the warm-start index file is persisted on
	// clean completion.
	IndexPath string

	Logger *log.Logger
}

// Orchestrator runs batches sequentially, one narration call in flight at a
// time. Construct one per sync session with New.
type Orchestrator struct {
	backend    voice.Backend
	index      *audioindex.Index
	snapshots  *snapshot.Store
	meta       *snapshot.MetaStore
	outputRoot string
	language   string
	voiceIDs   map[voice.Gender]string
	audioExt   string
	limiter    *rate.Limiter
	indexPath  string
	logger     *log.Logger

	running atomic.Bool
}

// New creates an orchestrator. Backend presence and configuration are checked
// at batch start, not here, so a UI can construct the engine before the user
// finishes entering credentials.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Index == nil {
		return nil, errors.New("syncer: audio index is required")
	}
	if cfg.OutputRoot == "" {
		return nil, errors.New("syncer: output root is required")
	}
	if cfg.Language == "" {
		return nil, errors.New("syncer: language code is required")
	}

	o := &Orchestrator{
		backend:    cfg.Backend,
		index:      cfg.Index,
		snapshots:  cfg.Snapshots,
		meta:       cfg.Meta,
		outputRoot: cfg.OutputRoot,
		language:   cfg.Language,
		voiceIDs:   cfg.VoiceIDs,
		audioExt:   cfg.AudioExt,
		indexPath:  cfg.IndexPath,
		logger:     cfg.Logger,
	}
	if o.audioExt == "" {
		o.audioExt = "mp3"
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	if cfg.Delay > 0 {
		o.limiter = rate.NewLimiter(rate.Every(cfg.Delay), 1)
	}
	return o, nil
}

// Running reports whether a batch is currently executing. Callers use it to
// serialize rescans against live batches.
func (o *Orchestrator) Running() bool {
	return o.running.Load()
}

// RescanIndex rebuilds the audio presence index from the output tree. It
// refuses to run while a batch is active.
func (o *Orchestrator) RescanIndex() (int, error) {
	if o.running.Load() {
		return 0, ErrBatchRunning
	}
	return o.index.Rescan(o.outputRoot)
}

// RunBatch executes one sync run. It returns an error only for fatal setup
// conditions detected before the loop; every per-item failure is converted to
// report data and the batch continues.
func (o *Orchestrator) RunBatch(ctx context.Context, batch Batch) (*Report, error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, ErrBatchRunning
	}
	defer o.running.Store(false)

	genders := batch.Voices.Genders()
	if err := o.preflight(genders); err != nil {
		return nil, err
	}

	report := &Report{
		RunID:     uuid.NewString(),
		Language:  o.language,
		State:     StateRunning,
		Total:     len(batch.Items),
		StartedAt: time.Now().UTC(),
	}
	o.logger.Info("batch started",
		"run", report.RunID, "items", report.Total, "voices", len(genders), "force", batch.Force)

	for _, item := range batch.Items {
		// Cancellation is cooperative and checked at item boundaries only; an
		// in-flight backend call is allowed to complete.
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}
		if o.limiter != nil && report.Processed > 0 {
			if err := o.limiter.Wait(ctx); err != nil {
				report.Cancelled = true
				break
			}
		}

		force := batch.Force || batch.Regenerate[item.ID]
		o.processItem(ctx, item, genders, force, report)
		report.Processed++
		o.reportProgress(batch.Progress, Progress{
			Processed: report.Processed,
			Total:     report.Total,
			Current:   item.Label(),
		})
	}

	report.FinishedAt = time.Now().UTC()

	if report.Cancelled {
		// Completed items keep their effects; snapshot and metadata stay
		// untouched so retried work is still classified as pending.
		report.State = StateCancelled
		o.logger.Info("batch cancelled", "run", report.RunID, "summary", report.Summary())
		return report, nil
	}

	report.State = StateCompleted
	o.finalize(batch, report)
	o.logger.Info("batch completed", "run", report.RunID, "summary", report.Summary())
	return report, nil
}

// preflight detects conditions that make the whole batch meaningless, once,
// before any item is attempted.
func (o *Orchestrator) preflight(genders []voice.Gender) error {
	if len(genders) == 0 {
		return ErrNoVoices
	}
	if o.backend == nil || !o.backend.IsConfigured() {
		return ErrNoBackend
	}

	for _, g := range genders {
		dir := filepath.Join(o.outputRoot, string(g))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrOutputRootUnwritable, err)
		}
		probe := filepath.Join(dir, fmt.Sprintf(".probe_%d", time.Now().UnixNano()))
		f, err := os.Create(probe)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrOutputRootUnwritable, err)
		}
		f.Close() //nolint:errcheck,gosec
		os.Remove(probe)
	}
	return nil
}

// processItem generates or skips every requested voice of one quest. A
// failure on one voice never aborts the batch or the other voice.
func (o *Orchestrator) processItem(ctx context.Context, item catalog.QuestRecord, genders []voice.Gender, force bool, report *Report) {
	text := item.NarrationText()

	for _, g := range genders {
		if !force && o.alreadyVoiced(item.ID, g) {
			report.Skipped++
			o.logger.Debug("skipped", "quest", item.ID, "voice", g)
			continue
		}

		// Quests with no narratable text are skipped, not failed; imports
		// with incomplete fields are common.
		if text == "" {
			report.Skipped++
			o.logger.Debug("skipped empty", "quest", item.ID, "voice", g)
			continue
		}

		data, err := o.backend.Generate(ctx, text, o.voiceIDs[g])
		if err != nil {
			report.Failed++
			report.FailedItems = append(report.FailedItems, ItemError{
				QuestID: item.ID,
				Voice:   g,
				Error:   err.Error(),
			})
			o.logger.Warn("generation failed", "quest", item.ID, "voice", g, "err", err)
			continue
		}

		path := audioindex.AudioPath(o.outputRoot, g, item.ID, o.audioExt)
		if err := writeFileAtomic(path, data); err != nil {
			report.Failed++
			report.FailedItems = append(report.FailedItems, ItemError{
				QuestID: item.ID,
				Voice:   g,
				Error:   err.Error(),
			})
			o.logger.Warn("write failed", "quest", item.ID, "voice", g, "err", err)
			continue
		}

		// Each item's effects commit independently: file first, then index. A
		// crash between items loses only in-flight progress.
		o.index.Upsert(item.ID, g, path)
		report.Succeeded++
		report.BytesWritten += int64(len(data))
	}

	report.VoiceFlags = append(report.VoiceFlags, catalog.VoiceFlagUpdate{
		QuestID:   item.ID,
		HasMale:   o.alreadyVoiced(item.ID, voice.Male),
		HasFemale: o.alreadyVoiced(item.ID, voice.Female),
	})
}

// alreadyVoiced implements the skip rule: an index entry alone is not enough,
// the underlying file must still exist. A dangling entry is dropped so the
// item regenerates.
func (o *Orchestrator) alreadyVoiced(id catalog.QuestID, g voice.Gender) bool {
	entry, ok := o.index.Get(id, g)
	if !ok {
		return false
	}
	if _, err := os.Stat(entry.FilePath); err != nil {
		o.index.Remove(id, g)
		return false
	}
	return true
}

// finalize persists the completion-side state: warm-start index, a full
// snapshot of the current catalog, and the advisory sync metadata. Failures
// here are recorded in the report, not raised; the audio already written is
// intact and the next run simply re-diffs against the old snapshot.
func (o *Orchestrator) finalize(batch Batch, report *Report) {
	if o.indexPath != "" {
		if err := o.index.Save(o.indexPath); err != nil {
			o.logger.Warn("could not persist audio index", "err", err)
		}
	}

	if o.snapshots == nil {
		return
	}

	snap := snapshot.New(o.language, snapshot.BuildEntries(batch.Catalog))
	if err := o.snapshots.Save(snap); err != nil {
		report.PersistenceError = err.Error()
		o.logger.Error("could not save snapshot", "err", err)
		return
	}
	report.SnapshotVersion = snap.VersionID

	if o.meta != nil {
		meta := snapshot.Metadata{
			LastDataVersion:   snap.VersionID,
			LastSyncAt:        report.FinishedAt,
			Language:          o.language,
			TotalQuestsVoiced: o.index.Len(),
			AudioPackVersion:  snap.VersionID,
		}
		if err := o.meta.Save(meta); err != nil {
			report.PersistenceError = err.Error()
			o.logger.Error("could not save sync metadata", "err", err)
		}
	}
}

// reportProgress delivers an update without letting a panicking or slow sink
// take down the batch.
func (o *Orchestrator) reportProgress(fn ProgressFunc, p Progress) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			o.logger.Warn("progress sink panicked", "err", r)
		}
	}()
	fn(p)
}

func writeFileAtomic(path string, data []byte) error {
	tempPath := path + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	closeErr := file.Close()

	if err != nil {
		os.Remove(tempPath)
		return err
	}
	if closeErr != nil {
		os.Remove(tempPath)
		return closeErr
	}

	return os.Rename(tempPath, path)
}
