package download

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/tapedeck/tapedeck-go/internal/catalog"
	"github.com/tapedeck/tapedeck-go/internal/config"
	apperrors "github.com/tapedeck/tapedeck-go/internal/errors"
	"github.com/tapedeck/tapedeck-go/internal/monitoring"
	"github.com/tapedeck/tapedeck-go/internal/resolver"
	"github.com/tapedeck/tapedeck-go/internal/storage"
	"github.com/tapedeck/tapedeck-go/internal/store"
)

const maxTaskRetries = 3

// persistEvery throttles mid-transfer progress writes to the store.
const persistEvery = 1 << 20 // 1 MiB

// Library records which recording of a show is available offline. The
// pointer survives restarts independently of the task records.
type Library interface {
	SetDownloadedRecording(showID, recordingID string) error
	ClearDownloadedRecording(showID string) error
}

// Tagger embeds metadata into a completed file.
type Tagger interface {
	TagFile(ctx context.Context, path string, track catalog.Track) error
}

// ProgressNotifier receives aggregate show progress updates.
type ProgressNotifier interface {
	NotifyShowProgress(p ShowProgress)
}

// Orchestrator coordinates per-show track downloads: a bounded number of
// concurrent transfers per show, persistent per-track tasks, pause/resume
// with transport resume state, and recovery after a crash or restart.
type Orchestrator struct {
	cfg       *config.DownloadConfig
	cat       catalog.Client
	tasks     *store.TaskStore
	storage   *storage.Manager
	transport Transport
	library   Library
	tagger    Tagger
	notifier  ProgressNotifier
	limiter   *rate.Limiter
	resolver  *resolver.Resolver
	formats   []string
	logger    *zap.Logger

	mu        sync.Mutex
	shows     map[string]*showJob
	baseCtx   context.Context
	cancelAll context.CancelFunc
	started   bool
}

// showJob is the in-memory state of one show's download.
type showJob struct {
	showID      string
	recordingID string

	queue   []*store.TaskRecord // waiting, FIFO
	active  map[string]context.CancelFunc
	records map[string]*store.TaskRecord // every task by id
	order   []string                     // record iteration order
	tracks  map[string]catalog.Track     // task id to catalog metadata, best effort

	paused    bool
	cancelled bool
	wg        sync.WaitGroup
}

// Deps bundles the orchestrator's collaborators. Library, Tagger, Notifier,
// Limiter and Resolver are optional; an empty FormatPriority falls back to
// the default priority list.
type Deps struct {
	Catalog        catalog.Client
	Tasks          *store.TaskStore
	Storage        *storage.Manager
	Transport      Transport
	Library        Library
	Tagger         Tagger
	Notifier       ProgressNotifier
	Limiter        *rate.Limiter
	Resolver       *resolver.Resolver
	FormatPriority []string
	Logger         *zap.Logger
}

// NewOrchestrator builds an orchestrator. Call Start before queueing work.
func NewOrchestrator(cfg *config.DownloadConfig, deps Deps) (*Orchestrator, error) {
	if deps.Catalog == nil || deps.Tasks == nil || deps.Storage == nil || deps.Transport == nil {
		return nil, apperrors.NewValidationError("orchestrator requires catalog, task store, storage and transport")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		cfg:       cfg,
		cat:       deps.Catalog,
		tasks:     deps.Tasks,
		storage:   deps.Storage,
		transport: deps.Transport,
		library:   deps.Library,
		tagger:    deps.Tagger,
		notifier:  deps.Notifier,
		limiter:   deps.Limiter,
		resolver:  deps.Resolver,
		formats:   deps.FormatPriority,
		logger:    logger,
		shows:     make(map[string]*showJob),
	}, nil
}

// Start recovers persisted tasks and resumes interrupted shows. Tasks left
// in the downloading state by a crash are demoted to pending; shows with
// pending work pick up where they left off, paused shows stay paused.
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return nil
	}
	o.started = true
	o.baseCtx, o.cancelAll = context.WithCancel(context.Background())
	o.mu.Unlock()

	recs, err := o.tasks.GetAll()
	if err != nil {
		return fmt.Errorf("failed to load persisted tasks: %w", err)
	}

	byShow := make(map[string][]*store.TaskRecord)
	var showOrder []string
	for _, rec := range recs {
		if rec.State == store.TaskDownloading {
			rec.State = store.TaskPending
			if err := o.tasks.Update(rec); err != nil {
				o.logger.Warn("Failed to demote interrupted task",
					zap.String("task", rec.ID), zap.Error(err))
			}
		}
		if _, ok := byShow[rec.ShowID]; !ok {
			showOrder = append(showOrder, rec.ShowID)
		}
		byShow[rec.ShowID] = append(byShow[rec.ShowID], rec)
	}

	for _, showID := range showOrder {
		o.recoverShow(showID, byShow[showID])
	}
	return nil
}

// Stop cancels all transfers and waits for them to persist their state.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.cancelAll != nil {
		o.cancelAll()
	}
	jobs := make([]*showJob, 0, len(o.shows))
	for _, job := range o.shows {
		jobs = append(jobs, job)
	}
	o.mu.Unlock()

	for _, job := range jobs {
		job.wg.Wait()
	}
}

// DownloadShow queues every track of a show recording. An empty recordingID
// selects the show's preferred recording; a non-empty one is used as given.
// Tracks already completed or in flight are left alone, so calling this twice
// is harmless.
func (o *Orchestrator) DownloadShow(ctx context.Context, showID, recordingID string) error {
	rec := &catalog.Recording{ID: recordingID, ShowID: showID}
	if recordingID == "" {
		best, err := o.cat.BestRecording(ctx, showID)
		if err != nil {
			return err
		}
		rec = best
	}

	allTracks, err := o.cat.GetTracks(ctx, rec.ID)
	if err != nil {
		return err
	}
	if len(allTracks) == 0 {
		return apperrors.NewNoTracksFound(rec.ID)
	}

	priority := o.formats
	if len(priority) == 0 {
		priority = catalog.DefaultFormatPriority
	}
	format, err := catalog.SelectFormat(priority, allTracks)
	if err != nil {
		return err
	}
	tracks := catalog.FilterByFormat(allTracks, format)

	// Resolve redirects once up front so resumed Range requests hit the
	// final delivery URL directly.
	urls := make([]string, len(tracks))
	for i, t := range tracks {
		urls[i] = t.URL
	}
	if o.resolver != nil {
		urls = o.resolver.ResolveAll(ctx, urls)
	}

	recs := make([]*store.TaskRecord, 0, len(tracks))
	for i, t := range tracks {
		recs = append(recs, &store.TaskRecord{
			ID:            store.TaskID(t.ShowID, t.RecordingID, t.Filename),
			ShowID:        t.ShowID,
			RecordingID:   t.RecordingID,
			TrackFilename: t.Filename,
			RemoteURL:     urls[i],
			State:         store.TaskPending,
		})
	}
	if err := o.tasks.AddBatch(recs); err != nil {
		return fmt.Errorf("failed to persist download tasks: %w", err)
	}

	// Re-read so a repeated request sees existing task state instead of
	// resetting it.
	persisted, err := o.tasks.GetByShow(showID)
	if err != nil {
		return fmt.Errorf("failed to read back download tasks: %w", err)
	}

	o.mu.Lock()
	job, ok := o.shows[showID]
	if !ok {
		job = newShowJob(showID, rec.ID)
		o.shows[showID] = job
	}
	job.paused = false
	job.cancelled = false
	for _, t := range tracks {
		job.tracks[store.TaskID(t.ShowID, t.RecordingID, t.Filename)] = t
	}
	for _, pr := range persisted {
		if _, known := job.records[pr.ID]; known {
			continue
		}
		job.records[pr.ID] = pr
		job.order = append(job.order, pr.ID)
		if pr.State == store.TaskPending || pr.State == store.TaskPaused || pr.State == store.TaskFailed {
			pr.State = store.TaskPending
			job.queue = append(job.queue, pr)
		}
	}
	requeueStoppedLocked(job)
	o.dispatchLocked(job)
	o.mu.Unlock()

	o.logger.Info("Show download queued",
		zap.String("show", showID),
		zap.String("recording", rec.ID),
		zap.String("format", format),
		zap.Int("tracks", len(tracks)))
	o.publishProgress(showID)
	return nil
}

// PauseShow suspends a show's transfers. In-flight transfers stop and
// persist their resume state; queued tracks wait.
func (o *Orchestrator) PauseShow(showID string) error {
	o.mu.Lock()
	job, ok := o.shows[showID]
	if !ok {
		o.mu.Unlock()
		return apperrors.NewNoRecordingFound(showID)
	}
	job.paused = true
	cancels := drainCancelsLocked(job)
	for _, rec := range job.queue {
		rec.State = store.TaskPaused
	}
	queued := append([]*store.TaskRecord(nil), job.queue...)
	o.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	for _, rec := range queued {
		if err := o.tasks.Update(rec); err != nil {
			o.logger.Warn("Failed to persist paused task",
				zap.String("task", rec.ID), zap.Error(err))
		}
	}

	o.logger.Info("Show download paused", zap.String("show", showID))
	o.publishProgress(showID)
	return nil
}

// ResumeShow restarts a paused or partially failed show.
func (o *Orchestrator) ResumeShow(showID string) error {
	o.mu.Lock()
	job, ok := o.shows[showID]
	if !ok {
		o.mu.Unlock()
		// The show may only exist in the store (paused before a restart).
		recs, err := o.tasks.GetByShow(showID)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			return apperrors.NewNoRecordingFound(showID)
		}
		o.recoverShow(showID, recs)
		o.mu.Lock()
		job = o.shows[showID]
		if job == nil {
			o.mu.Unlock()
			return nil
		}
	}

	job.paused = false
	job.cancelled = false
	requeued := requeueStoppedLocked(job)
	o.hydrateTracks(job)
	o.dispatchLocked(job)
	o.mu.Unlock()

	for _, rec := range requeued {
		if err := o.tasks.Update(rec); err != nil {
			o.logger.Warn("Failed to persist resumed task",
				zap.String("task", rec.ID), zap.Error(err))
		}
	}

	o.logger.Info("Show download resumed", zap.String("show", showID))
	o.publishProgress(showID)
	return nil
}

// CancelShow aborts a show's download and removes its task records, partial
// files and any completed tracks.
func (o *Orchestrator) CancelShow(showID string) error {
	o.mu.Lock()
	job, ok := o.shows[showID]
	var cancels []context.CancelFunc
	if ok {
		job.cancelled = true
		job.queue = nil
		cancels = drainCancelsLocked(job)
	}
	o.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	if ok {
		job.wg.Wait()
	}

	o.mu.Lock()
	delete(o.shows, showID)
	o.mu.Unlock()

	if err := o.tasks.DeleteShow(showID); err != nil {
		return err
	}
	if err := o.storage.DeleteShow(showID); err != nil {
		return err
	}
	if o.library != nil {
		if err := o.library.ClearDownloadedRecording(showID); err != nil {
			o.logger.Warn("Failed to clear library pointer",
				zap.String("show", showID), zap.Error(err))
		}
	}

	o.logger.Info("Show download cancelled", zap.String("show", showID))
	return nil
}

// RemoveShow deletes a downloaded show. Same teardown as CancelShow; the
// distinction is intent, not mechanics.
func (o *Orchestrator) RemoveShow(showID string) error {
	return o.CancelShow(showID)
}

// Progress returns the aggregate progress of one show.
func (o *Orchestrator) Progress(showID string) ShowProgress {
	o.mu.Lock()
	job, ok := o.shows[showID]
	if ok {
		recs := snapshotRecordsLocked(job)
		o.mu.Unlock()
		return ComputeProgress(showID, recs)
	}
	o.mu.Unlock()

	recs, err := o.tasks.GetByShow(showID)
	if err != nil {
		o.logger.Warn("Failed to read task records for progress",
			zap.String("show", showID), zap.Error(err))
		return ShowProgress{ShowID: showID, Status: StatusNotDownloaded}
	}
	return ComputeProgress(showID, recs)
}

// AllProgress returns the aggregate progress of every known show.
func (o *Orchestrator) AllProgress() []ShowProgress {
	o.mu.Lock()
	ids := make([]string, 0, len(o.shows))
	for id := range o.shows {
		ids = append(ids, id)
	}
	o.mu.Unlock()

	out := make([]ShowProgress, 0, len(ids))
	for _, id := range ids {
		out = append(out, o.Progress(id))
	}
	return out
}

// recoverShow rebuilds a show's in-memory job from persisted records. Shows
// with runnable work resume immediately; fully paused shows wait for an
// explicit resume.
func (o *Orchestrator) recoverShow(showID string, recs []*store.TaskRecord) {
	recordingID := ""
	if len(recs) > 0 {
		recordingID = recs[0].RecordingID
	}

	job := newShowJob(showID, recordingID)
	runnable := false
	anyPaused := false
	for _, rec := range recs {
		job.records[rec.ID] = rec
		job.order = append(job.order, rec.ID)
		switch rec.State {
		case store.TaskPending:
			job.queue = append(job.queue, rec)
			runnable = true
		case store.TaskPaused:
			anyPaused = true
		}
	}
	job.paused = !runnable && anyPaused

	o.mu.Lock()
	if _, exists := o.shows[showID]; exists {
		o.mu.Unlock()
		return
	}
	o.shows[showID] = job
	if runnable && !job.paused {
		o.hydrateTracks(job)
		o.dispatchLocked(job)
	}
	o.mu.Unlock()

	if runnable {
		o.logger.Info("Recovered interrupted show download",
			zap.String("show", showID),
			zap.Int("tasks", len(recs)))
	}
}

// hydrateTracks re-fetches catalog metadata for tagging after recovery.
// Failure is harmless, completed files just go untagged.
func (o *Orchestrator) hydrateTracks(job *showJob) {
	if o.tagger == nil || job.recordingID == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		tracks, err := o.cat.GetTracks(ctx, job.recordingID)
		if err != nil {
			o.logger.Debug("Track metadata refetch failed",
				zap.String("recording", job.recordingID), zap.Error(err))
			return
		}
		o.mu.Lock()
		for _, t := range tracks {
			id := store.TaskID(t.ShowID, t.RecordingID, t.Filename)
			if _, ok := job.records[id]; ok {
				job.tracks[id] = t
			}
		}
		o.mu.Unlock()
	}()
}

// dispatchLocked fills the show's concurrency budget from its queue.
// Caller holds o.mu.
func (o *Orchestrator) dispatchLocked(job *showJob) {
	limit := o.cfg.ConcurrentPerShow
	if limit <= 0 {
		limit = 2
	}
	for !job.paused && !job.cancelled && len(job.active) < limit && len(job.queue) > 0 {
		rec := job.queue[0]
		job.queue = job.queue[1:]
		rec.State = store.TaskDownloading

		ctx, cancel := context.WithCancel(o.baseCtx)
		job.active[rec.ID] = cancel
		job.wg.Add(1)
		track := job.tracks[rec.ID]
		go o.runTask(ctx, job, rec, track)
	}
}

// runTask drives one track transfer to a terminal or suspended state.
func (o *Orchestrator) runTask(ctx context.Context, job *showJob, rec *store.TaskRecord, track catalog.Track) {
	defer job.wg.Done()

	monitoring.ActiveTransfers.Inc()
	defer monitoring.ActiveTransfers.Dec()

	if err := o.tasks.Update(rec); err != nil {
		o.logger.Warn("Failed to persist downloading state",
			zap.String("task", rec.ID), zap.Error(err))
	}

	tempPath := o.storage.TempPath(rec.ShowID, rec.RecordingID, rec.TrackFilename)
	var lastPersisted int64
	req := &TransferRequest{
		URL:         rec.RemoteURL,
		Destination: tempPath,
		ResumeToken: rec.ResumeToken,
		Limiter:     o.limiter,
		Progress: func(downloaded, total int64) {
			o.mu.Lock()
			delta := downloaded - rec.BytesDownloaded
			rec.BytesDownloaded = downloaded
			if total > 0 {
				rec.TotalBytes = total
			}
			persist := downloaded-lastPersisted >= persistEvery
			if persist {
				lastPersisted = downloaded
			}
			o.mu.Unlock()

			if delta > 0 {
				monitoring.TransferBytesTotal.Add(float64(delta))
			}
			if persist {
				o.mu.Lock()
				snapshot := *rec
				o.mu.Unlock()
				if err := o.tasks.Update(&snapshot); err == nil {
					o.publishProgress(rec.ShowID)
				}
			}
		},
	}

	result, err := o.transport.Start(ctx, req)

	o.mu.Lock()
	delete(job.active, rec.ID)
	if result != nil {
		rec.BytesDownloaded = result.BytesDownloaded
		if result.TotalBytes > 0 {
			rec.TotalBytes = result.TotalBytes
		}
	}
	paused := job.paused
	cancelled := job.cancelled
	o.mu.Unlock()

	switch {
	case err == nil:
		o.finishTask(ctx, job, rec, track, tempPath)
	case cancelled:
		// Records and files are being torn down, nothing to persist.
	case ctx.Err() != nil && paused:
		o.suspendTask(rec, result, store.TaskPaused)
		monitoring.TransfersTotal.WithLabelValues("paused").Inc()
	case ctx.Err() != nil:
		// Shutdown, or a resume landed while this transfer was still
		// unwinding from a pause. Keep the resume state either way.
		o.suspendTask(rec, result, store.TaskPending)
	default:
		o.failTask(job, rec, result, err)
	}

	if err != nil && ctx.Err() != nil && !cancelled {
		o.requeueIfRunnable(job, rec)
	}

	o.mu.Lock()
	o.dispatchLocked(job)
	o.mu.Unlock()
	o.publishProgress(rec.ShowID)
}

func (o *Orchestrator) finishTask(ctx context.Context, job *showJob, rec *store.TaskRecord, track catalog.Track, tempPath string) {
	finalPath, err := o.storage.MoveToStorage(tempPath, rec.ShowID, rec.RecordingID, rec.TrackFilename)
	if err != nil {
		o.failTask(job, rec, nil, apperrors.NewFileSystemError("failed to store completed track", err))
		return
	}

	if o.tagger != nil && track.Filename != "" {
		if err := o.tagger.TagFile(ctx, finalPath, track); err != nil {
			o.logger.Warn("Failed to tag completed track",
				zap.String("task", rec.ID), zap.Error(err))
		}
	}

	now := time.Now()
	o.mu.Lock()
	rec.State = store.TaskCompleted
	rec.ResumeToken = nil
	rec.ErrorMessage = ""
	rec.CompletedAt = &now
	showDone := allCompletedLocked(job)
	o.mu.Unlock()

	if err := o.tasks.Update(rec); err != nil {
		o.logger.Warn("Failed to persist completed task",
			zap.String("task", rec.ID), zap.Error(err))
	}
	monitoring.TransfersTotal.WithLabelValues("completed").Inc()

	o.logger.Info("Track download completed",
		zap.String("task", rec.ID),
		zap.Int64("bytes", rec.BytesDownloaded))

	if showDone {
		if o.library != nil {
			if err := o.library.SetDownloadedRecording(job.showID, job.recordingID); err != nil {
				o.logger.Warn("Failed to record downloaded recording",
					zap.String("show", job.showID), zap.Error(err))
			}
		}
		o.logger.Info("Show download completed", zap.String("show", job.showID))
	}
}

// requeueIfRunnable returns a suspended record to the queue when its show
// became runnable again before the cancelled transfer finished unwinding
// (a resume arriving inside the cancellation window). Without it the record
// would sit in a stopped state that no later dispatch or requeue sees.
func (o *Orchestrator) requeueIfRunnable(job *showJob, rec *store.TaskRecord) {
	o.mu.Lock()
	requeue := !job.paused && !job.cancelled && o.baseCtx.Err() == nil
	if _, active := job.active[rec.ID]; active {
		// A resume already put the record back in flight.
		requeue = false
	}
	for _, queued := range job.queue {
		if queued.ID == rec.ID {
			requeue = false
			break
		}
	}
	if requeue {
		rec.State = store.TaskPending
		job.queue = append(job.queue, rec)
	}
	o.mu.Unlock()

	if !requeue {
		return
	}
	if err := o.tasks.Update(rec); err != nil {
		o.logger.Warn("Failed to persist requeued task",
			zap.String("task", rec.ID), zap.Error(err))
	}
}

func (o *Orchestrator) suspendTask(rec *store.TaskRecord, result *TransferResult, state store.TaskState) {
	o.mu.Lock()
	rec.State = state
	if result != nil && result.ResumeToken != nil {
		rec.ResumeToken = result.ResumeToken
	}
	o.mu.Unlock()

	if err := o.tasks.Update(rec); err != nil {
		o.logger.Warn("Failed to persist suspended task",
			zap.String("task", rec.ID), zap.Error(err))
	}
}

func (o *Orchestrator) failTask(job *showJob, rec *store.TaskRecord, result *TransferResult, err error) {
	o.mu.Lock()
	rec.RetryCount++
	if result != nil && result.ResumeToken != nil {
		rec.ResumeToken = result.ResumeToken
	}
	retry := rec.RetryCount < maxTaskRetries && apperrors.IsRetryable(err) && !job.paused && !job.cancelled
	if retry {
		rec.State = store.TaskPending
		rec.ErrorMessage = err.Error()
		job.queue = append(job.queue, rec)
	} else {
		rec.State = store.TaskFailed
		rec.ErrorMessage = err.Error()
	}
	o.mu.Unlock()

	if persistErr := o.tasks.Update(rec); persistErr != nil {
		o.logger.Warn("Failed to persist failed task",
			zap.String("task", rec.ID), zap.Error(persistErr))
	}

	if retry {
		o.logger.Warn("Track download failed, will retry",
			zap.String("task", rec.ID),
			zap.Int("attempt", rec.RetryCount),
			zap.Error(err))
		return
	}

	monitoring.TransfersTotal.WithLabelValues("failed").Inc()
	monitoring.ErrorsTotal.WithLabelValues(string(apperrors.GetErrorType(err))).Inc()
	o.logger.Error("Track download failed",
		zap.String("task", rec.ID),
		zap.Error(err))
}

func (o *Orchestrator) publishProgress(showID string) {
	if o.notifier == nil {
		return
	}
	o.notifier.NotifyShowProgress(o.Progress(showID))
}

func newShowJob(showID, recordingID string) *showJob {
	return &showJob{
		showID:      showID,
		recordingID: recordingID,
		active:      make(map[string]context.CancelFunc),
		records:     make(map[string]*store.TaskRecord),
		tracks:      make(map[string]catalog.Track),
	}
}

// drainCancelsLocked collects the job's active cancel funcs. Caller holds
// o.mu; the funcs must be invoked after unlock. Each task removes itself
// from the active set as it winds down.
func drainCancelsLocked(job *showJob) []context.CancelFunc {
	cancels := make([]context.CancelFunc, 0, len(job.active))
	for _, cancel := range job.active {
		cancels = append(cancels, cancel)
	}
	return cancels
}

// requeueStoppedLocked moves paused and failed records back to the queue.
func requeueStoppedLocked(job *showJob) []*store.TaskRecord {
	var requeued []*store.TaskRecord
	queued := make(map[string]bool, len(job.queue))
	for _, rec := range job.queue {
		queued[rec.ID] = true
	}
	for _, id := range job.order {
		rec := job.records[id]
		if queued[id] {
			if rec.State == store.TaskPaused {
				rec.State = store.TaskPending
				requeued = append(requeued, rec)
			}
			continue
		}
		if rec.State == store.TaskPaused || rec.State == store.TaskFailed {
			rec.State = store.TaskPending
			rec.RetryCount = 0
			job.queue = append(job.queue, rec)
			requeued = append(requeued, rec)
		}
	}
	return requeued
}

func snapshotRecordsLocked(job *showJob) []*store.TaskRecord {
	recs := make([]*store.TaskRecord, 0, len(job.order))
	for _, id := range job.order {
		snapshot := *job.records[id]
		recs = append(recs, &snapshot)
	}
	return recs
}

func allCompletedLocked(job *showJob) bool {
	if len(job.records) == 0 {
		return false
	}
	for _, rec := range job.records {
		if rec.State != store.TaskCompleted {
			return false
		}
	}
	return true
}
