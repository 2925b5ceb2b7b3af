package player

import (
	"context"
	stderrors "errors"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tapedeck/tapedeck-go/internal/catalog"
	apperrors "github.com/tapedeck/tapedeck-go/internal/errors"
	"github.com/tapedeck/tapedeck-go/internal/monitoring"
	"github.com/tapedeck/tapedeck-go/internal/resolver"
)

// LocalSource answers whether a track has a local copy that playback should
// prefer over the network.
type LocalSource interface {
	LocalTrackURL(t catalog.Track) (string, bool)
}

// Notifier receives engine events. All methods are called outside the
// engine's lock, so implementations may call back into the engine.
type Notifier interface {
	NotifyState(state State)
	NotifyTrack(index int, track catalog.Track)
	NotifyProgress(position, duration time.Duration)
	NotifyTrackCompleted(index int)
}

// Options configures a queue engine.
type Options struct {
	Resolver     *resolver.Resolver
	LocalSource  LocalSource
	Notifier     Notifier
	Logger       *zap.Logger
	PollInterval time.Duration
}

// Engine drives gapless queue playback over a Pipeline.
//
// The engine keeps the full track list and the pipeline keeps only URLs.
// Because Load resets the pipeline's internal queue asynchronously, the
// remainder of a new queue is parked in pending and committed to the
// pipeline only after the pipeline confirms the head item started. Without
// the deferral the reset would silently drop everything queued behind the
// head and playback would stop after one track.
type Engine struct {
	pipeline Pipeline
	resolve  *resolver.Resolver
	local    LocalSource
	logger   *zap.Logger

	pollInterval time.Duration

	mu            sync.Mutex
	notifier      Notifier
	tracks        []catalog.Track
	resolved      []string
	current       int
	state         State
	lastErr       error
	pending       []string
	awaitingStart bool
	retries       int
	generation    int
	pollStop      chan struct{}
}

// NewEngine builds an engine over the given pipeline and registers itself as
// the pipeline's listener.
func NewEngine(p Pipeline, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	e := &Engine{
		pipeline:     p,
		resolve:      opts.Resolver,
		local:        opts.LocalSource,
		notifier:     opts.Notifier,
		logger:       logger,
		pollInterval: interval,
		current:      -1,
		state:        StateIdle,
	}
	p.SetListener(e)
	return e
}

// SetNotifier replaces the event sink. Call before playback starts.
func (e *Engine) SetNotifier(n Notifier) {
	e.mu.Lock()
	e.notifier = n
	e.mu.Unlock()
}

// LoadQueue replaces the queue with tracks and starts playback at startAt.
// Every track URL is resolved up front so that gapless transitions deep in
// the queue never hit a redirect hop mid-handoff.
func (e *Engine) LoadQueue(ctx context.Context, tracks []catalog.Track, startAt int) error {
	if len(tracks) == 0 {
		return apperrors.NewValidationError("cannot load an empty queue")
	}
	if startAt < 0 {
		startAt = 0
	}
	if startAt >= len(tracks) {
		startAt = len(tracks) - 1
	}

	e.setState(StateLoading)

	resolved := e.resolveTracks(ctx, tracks)
	if err := ctx.Err(); err != nil {
		e.setState(StateIdle)
		return err
	}

	e.mu.Lock()
	e.generation++
	e.tracks = append([]catalog.Track(nil), tracks...)
	e.resolved = resolved
	e.current = startAt
	e.pending = append([]string(nil), resolved[startAt+1:]...)
	e.awaitingStart = true
	e.retries = 0
	e.lastErr = nil
	e.state = StateBuffering
	track := e.tracks[startAt]
	e.startPollLocked()
	e.mu.Unlock()

	e.pipeline.Load(resolved[startAt])

	e.notifyTrack(startAt, track)
	e.notifyState(StateBuffering)
	return nil
}

// Next moves to the following track. Returns false at the end of the queue.
func (e *Engine) Next() bool {
	e.mu.Lock()
	ok := e.current >= 0 && e.current+1 < len(e.tracks)
	if !ok {
		e.mu.Unlock()
		return false
	}
	url, track, index := e.jumpLocked(e.current + 1)
	e.mu.Unlock()

	e.pipeline.Load(url)
	e.notifyTrack(index, track)
	e.notifyState(StateBuffering)
	return true
}

// Previous moves to the preceding track. Returns false at the head.
func (e *Engine) Previous() bool {
	e.mu.Lock()
	ok := e.current > 0
	if !ok {
		e.mu.Unlock()
		return false
	}
	url, track, index := e.jumpLocked(e.current - 1)
	e.mu.Unlock()

	e.pipeline.Load(url)
	e.notifyTrack(index, track)
	e.notifyState(StateBuffering)
	return true
}

// SkipTo jumps to an arbitrary queue index.
func (e *Engine) SkipTo(index int) bool {
	e.mu.Lock()
	if index < 0 || index >= len(e.tracks) {
		e.mu.Unlock()
		return false
	}
	url, track, idx := e.jumpLocked(index)
	e.mu.Unlock()

	e.pipeline.Load(url)
	e.notifyTrack(idx, track)
	e.notifyState(StateBuffering)
	return true
}

// jumpLocked repositions the queue on index and arms the deferred commit.
func (e *Engine) jumpLocked(index int) (string, catalog.Track, int) {
	e.current = index
	e.pending = append([]string(nil), e.resolved[index+1:]...)
	e.awaitingStart = true
	e.retries = 0
	e.state = StateBuffering
	e.startPollLocked()
	return e.resolved[index], e.tracks[index], index
}

// Append adds a track to the end of the queue.
func (e *Engine) Append(ctx context.Context, track catalog.Track) {
	url := e.resolveOne(ctx, track)

	e.mu.Lock()
	wasEmpty := len(e.tracks) == 0
	e.tracks = append(e.tracks, track)
	e.resolved = append(e.resolved, url)
	enqueue := false
	switch {
	case wasEmpty:
		// Nothing playing, the track waits for an explicit LoadQueue or SkipTo.
	case e.awaitingStart:
		e.pending = append(e.pending, url)
	default:
		enqueue = true
	}
	e.mu.Unlock()

	if enqueue {
		e.pipeline.Enqueue([]string{url})
	}
}

// InsertNext places a track immediately after the current one. The pipeline's
// internal order catches up on the next engine-driven transition.
func (e *Engine) InsertNext(ctx context.Context, track catalog.Track) {
	url := e.resolveOne(ctx, track)

	e.mu.Lock()
	if len(e.tracks) == 0 || e.current < 0 {
		e.tracks = append(e.tracks, track)
		e.resolved = append(e.resolved, url)
		e.mu.Unlock()
		return
	}
	at := e.current + 1
	e.tracks = append(e.tracks[:at], append([]catalog.Track{track}, e.tracks[at:]...)...)
	e.resolved = append(e.resolved[:at], append([]string{url}, e.resolved[at:]...)...)
	if e.awaitingStart {
		e.pending = append([]string(nil), e.resolved[e.current+1:]...)
	}
	e.mu.Unlock()
}

// Remove deletes the track at index. The current track cannot be removed.
func (e *Engine) Remove(index int) bool {
	e.mu.Lock()
	if index < 0 || index >= len(e.tracks) || index == e.current {
		e.mu.Unlock()
		return false
	}
	e.tracks = append(e.tracks[:index], e.tracks[index+1:]...)
	e.resolved = append(e.resolved[:index], e.resolved[index+1:]...)
	if index < e.current {
		e.current--
	}
	if e.awaitingStart {
		e.pending = append([]string(nil), e.resolved[e.current+1:]...)
	}
	e.mu.Unlock()
	return true
}

// Play resumes playback of the current track.
func (e *Engine) Play() {
	e.mu.Lock()
	if len(e.tracks) == 0 {
		e.mu.Unlock()
		return
	}
	changed := e.state != StatePlaying
	e.state = StatePlaying
	e.startPollLocked()
	e.mu.Unlock()

	e.pipeline.Play()
	if changed {
		e.notifyState(StatePlaying)
	}
}

// Pause suspends playback, keeping position.
func (e *Engine) Pause() {
	e.mu.Lock()
	if len(e.tracks) == 0 {
		e.mu.Unlock()
		return
	}
	changed := e.state != StatePaused
	e.state = StatePaused
	e.stopPollLocked()
	e.mu.Unlock()

	e.pipeline.Pause()
	if changed {
		e.notifyState(StatePaused)
	}
}

// Seek repositions within the current track.
func (e *Engine) Seek(pos time.Duration) {
	if pos < 0 {
		pos = 0
	}
	e.pipeline.Seek(pos)
}

// Stop halts playback and clears the queue.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.generation++
	e.tracks = nil
	e.resolved = nil
	e.pending = nil
	e.awaitingStart = false
	e.current = -1
	e.retries = 0
	e.lastErr = nil
	e.state = StateIdle
	e.stopPollLocked()
	e.mu.Unlock()

	e.pipeline.Stop()
	e.notifyState(StateIdle)
}

// Progress returns the current position and duration.
func (e *Engine) Progress() (pos, duration time.Duration) {
	return e.pipeline.Position()
}

// State returns the current playback state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Err returns the error that put the engine into StateError, if any.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// CurrentIndex returns the queue position, or -1 when no queue is loaded.
func (e *Engine) CurrentIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// CurrentTrack returns the track at the queue position.
func (e *Engine) CurrentTrack() (catalog.Track, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current < 0 || e.current >= len(e.tracks) {
		return catalog.Track{}, false
	}
	return e.tracks[e.current], true
}

// Tracks returns a copy of the queue.
func (e *Engine) Tracks() []catalog.Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]catalog.Track(nil), e.tracks...)
}

// QueueLength returns the number of queued tracks.
func (e *Engine) QueueLength() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tracks)
}

// HasNext reports whether a following track exists.
func (e *Engine) HasNext() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current >= 0 && e.current+1 < len(e.tracks)
}

// HasPrevious reports whether a preceding track exists.
func (e *Engine) HasPrevious() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current > 0
}

// ItemStarted implements Listener.
func (e *Engine) ItemStarted(url string) {
	e.mu.Lock()
	if len(e.tracks) == 0 {
		e.mu.Unlock()
		return
	}

	var toEnqueue []string
	var fire []func()

	if e.awaitingStart && e.current >= 0 && url == e.resolved[e.current] {
		// The pipeline reset finished; commit the deferred remainder now.
		e.awaitingStart = false
		toEnqueue = e.pending
		e.pending = nil
	} else if k := e.indexOfURLLocked(url); k >= 0 && k != e.current {
		// The pipeline advanced on its own (gapless handoff). Resync and
		// report the finished track exactly once.
		completed := e.current
		index, track := k, e.tracks[k]
		e.current = k
		fire = append(fire,
			func() { e.notifyTrackCompleted(completed) },
			func() { e.notifyTrack(index, track) },
		)
	}

	e.retries = 0
	changed := e.state != StatePlaying
	e.state = StatePlaying
	e.startPollLocked()
	e.mu.Unlock()

	if len(toEnqueue) > 0 {
		e.pipeline.Enqueue(toEnqueue)
	}
	for _, f := range fire {
		f()
	}
	if changed {
		e.notifyState(StatePlaying)
	}
}

// PipelineBuffering implements Listener.
func (e *Engine) PipelineBuffering() {
	e.mu.Lock()
	if len(e.tracks) == 0 {
		e.mu.Unlock()
		return
	}
	changed := e.state != StateBuffering
	e.state = StateBuffering
	e.mu.Unlock()

	if changed {
		e.notifyState(StateBuffering)
	}
}

// PlaybackEnded implements Listener.
func (e *Engine) PlaybackEnded() {
	e.mu.Lock()
	if len(e.tracks) == 0 {
		e.mu.Unlock()
		return
	}
	completed := e.current
	e.state = StateEnded
	e.awaitingStart = false
	e.pending = nil
	e.stopPollLocked()
	e.mu.Unlock()

	if completed >= 0 {
		e.notifyTrackCompleted(completed)
	}
	e.notifyState(StateEnded)
}

// PipelineError implements Listener. Transient failures reload the current
// track on a short schedule; anything else surfaces as StateError.
func (e *Engine) PipelineError(err error) {
	e.mu.Lock()
	if len(e.tracks) == 0 || e.current < 0 {
		e.mu.Unlock()
		return
	}

	if retryablePipelineError(err) && e.retries < len(apperrors.PlaybackRetrySchedule) {
		delay := apperrors.PlaybackRetrySchedule[e.retries]
		e.retries++
		attempt := e.retries
		gen := e.generation
		cur := e.current
		url := e.resolved[cur]
		e.mu.Unlock()

		monitoring.PlaybackRetries.Inc()
		e.logger.Warn("Playback failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))

		time.AfterFunc(delay, func() {
			e.mu.Lock()
			// The retry is stale if the queue was reloaded or the user moved on.
			if gen != e.generation || cur != e.current {
				e.mu.Unlock()
				return
			}
			e.awaitingStart = true
			e.pending = append([]string(nil), e.resolved[e.current+1:]...)
			e.state = StateBuffering
			e.mu.Unlock()
			e.pipeline.Load(url)
		})
		return
	}

	e.retries = 0
	e.lastErr = apperrors.NewEngineError("playback failed", err)
	e.state = StateError
	e.stopPollLocked()
	e.mu.Unlock()

	e.logger.Error("Playback failed", zap.Error(err))
	e.notifyState(StateError)
}

func (e *Engine) indexOfURLLocked(url string) int {
	for i, u := range e.resolved {
		if u == url {
			return i
		}
	}
	return -1
}

// resolveTracks maps tracks to playable URLs: local files win, the rest go
// through the redirect resolver concurrently, order preserved.
func (e *Engine) resolveTracks(ctx context.Context, tracks []catalog.Track) []string {
	resolved := make([]string, len(tracks))
	var remoteIdx []int
	var remoteURLs []string
	for i, t := range tracks {
		if e.local != nil {
			if u, ok := e.local.LocalTrackURL(t); ok {
				resolved[i] = u
				continue
			}
		}
		remoteIdx = append(remoteIdx, i)
		remoteURLs = append(remoteURLs, t.URL)
	}
	if len(remoteURLs) > 0 {
		finals := remoteURLs
		if e.resolve != nil {
			finals = e.resolve.ResolveAll(ctx, remoteURLs)
		}
		for j, u := range finals {
			resolved[remoteIdx[j]] = u
		}
	}
	return resolved
}

func (e *Engine) resolveOne(ctx context.Context, track catalog.Track) string {
	if e.local != nil {
		if u, ok := e.local.LocalTrackURL(track); ok {
			return u
		}
	}
	if e.resolve != nil {
		return e.resolve.Resolve(ctx, track.URL)
	}
	return track.URL
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	changed := e.state != s
	e.state = s
	e.mu.Unlock()
	if changed {
		e.notifyState(s)
	}
}

func (e *Engine) startPollLocked() {
	if e.pollStop != nil {
		return
	}
	stop := make(chan struct{})
	e.pollStop = stop
	go e.pollLoop(stop)
}

func (e *Engine) stopPollLocked() {
	if e.pollStop != nil {
		close(e.pollStop)
		e.pollStop = nil
	}
}

func (e *Engine) pollLoop(stop chan struct{}) {
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			pos, dur := e.pipeline.Position()
			e.notifyProgress(pos, dur)
		}
	}
}

func (e *Engine) currentNotifier() Notifier {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.notifier
}

func (e *Engine) notifyState(s State) {
	monitoring.PlaybackTransitions.WithLabelValues(s.String()).Inc()
	if n := e.currentNotifier(); n != nil {
		n.NotifyState(s)
	}
}

func (e *Engine) notifyTrack(index int, track catalog.Track) {
	if n := e.currentNotifier(); n != nil {
		n.NotifyTrack(index, track)
	}
}

func (e *Engine) notifyProgress(pos, dur time.Duration) {
	if n := e.currentNotifier(); n != nil {
		n.NotifyProgress(pos, dur)
	}
}

func (e *Engine) notifyTrackCompleted(index int) {
	if n := e.currentNotifier(); n != nil {
		n.NotifyTrackCompleted(index)
	}
}

func retryablePipelineError(err error) bool {
	if apperrors.IsRetryable(err) {
		return true
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}
	return stderrors.Is(err, context.DeadlineExceeded)
}
