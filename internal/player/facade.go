package player

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tapedeck/tapedeck-go/internal/catalog"
	"github.com/tapedeck/tapedeck-go/internal/config"
)

// NowPlaying is the metadata snapshot published to the platform's now-playing
// surface (lock screen, system media controls).
type NowPlaying struct {
	Title    string
	Subtitle string
	Album    string
	Artwork  []byte
	Position time.Duration
	Duration time.Duration
	Rate     float64
}

// SessionPublisher pushes now-playing metadata and command availability to
// the platform.
type SessionPublisher interface {
	PublishNowPlaying(np NowPlaying)
	SetCommandsEnabled(hasNext, hasPrevious bool)
	Clear()
}

// Commands is the set of remote-control commands the facade accepts.
type Commands interface {
	Play()
	Pause()
	TogglePlayPause()
	Next()
	Previous()
	SeekTo(pos time.Duration)
	SkipForward()
	SkipBackward()
}

// CommandReceiver wires platform media commands to a Commands sink.
type CommandReceiver interface {
	Attach(c Commands)
	Detach()
}

// AudioSession models platform audio session activation.
type AudioSession interface {
	Activate() error
	Deactivate() error
}

// ArtworkProvider supplies show artwork for the now-playing surface.
type ArtworkProvider interface {
	Artwork(ctx context.Context, showID string) ([]byte, error)
}

// Facade sits between the queue engine and the platform surfaces: it accepts
// remote commands, handles interruptions and output-device changes, and keeps
// the now-playing metadata current. It is the engine's Notifier and forwards
// every event to an optional downstream Notifier for the UI.
type Facade struct {
	engine  *Engine
	session SessionPublisher
	remote  CommandReceiver
	audio   AudioSession
	artwork ArtworkProvider
	cat     catalog.Client
	logger  *zap.Logger

	prevThreshold time.Duration
	skipInterval  time.Duration

	mu          sync.Mutex
	downstream  Notifier
	interrupted bool
	artShowID   string
	artData     []byte
	showCache   map[string]*catalog.Show
}

// FacadeDeps bundles the platform seams the facade drives. Session and
// Receiver are required; the rest are optional.
type FacadeDeps struct {
	Session  SessionPublisher
	Receiver CommandReceiver
	Audio    AudioSession
	Artwork  ArtworkProvider
	Catalog  catalog.Client
	Notifier Notifier
	Logger   *zap.Logger
}

// NewFacade attaches the facade to the engine and the platform seams.
func NewFacade(engine *Engine, cfg *config.PlaybackConfig, deps FacadeDeps) *Facade {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Facade{
		engine:        engine,
		session:       deps.Session,
		remote:        deps.Receiver,
		audio:         deps.Audio,
		artwork:       deps.Artwork,
		cat:           deps.Catalog,
		logger:        logger,
		downstream:    deps.Notifier,
		prevThreshold: time.Duration(cfg.PreviousThresholdSec) * time.Second,
		skipInterval:  time.Duration(cfg.SkipIntervalSec) * time.Second,
		showCache:     make(map[string]*catalog.Show),
	}
	engine.SetNotifier(f)
	f.remote.Attach(f)
	return f
}

// SetNotifier replaces the downstream event sink.
func (f *Facade) SetNotifier(n Notifier) {
	f.mu.Lock()
	f.downstream = n
	f.mu.Unlock()
}

// Close detaches from the platform surfaces and deactivates the session.
func (f *Facade) Close() {
	f.remote.Detach()
	f.session.Clear()
	if f.audio != nil {
		if err := f.audio.Deactivate(); err != nil {
			f.logger.Warn("Failed to deactivate audio session", zap.Error(err))
		}
	}
}

// Play implements Commands.
func (f *Facade) Play() {
	if f.audio != nil {
		if err := f.audio.Activate(); err != nil {
			f.logger.Warn("Failed to activate audio session", zap.Error(err))
			return
		}
	}
	f.engine.Play()
}

// Pause implements Commands.
func (f *Facade) Pause() {
	f.engine.Pause()
}

// TogglePlayPause implements Commands. The decision comes from the engine's
// state, not a shadow flag, so it never drifts from reality.
func (f *Facade) TogglePlayPause() {
	if f.engine.State().IsPlaying() {
		f.engine.Pause()
		return
	}
	f.Play()
}

// Next implements Commands.
func (f *Facade) Next() {
	f.engine.Next()
}

// Previous implements Commands. Deep into a track it restarts the track;
// near the start it goes to the previous one.
func (f *Facade) Previous() {
	pos, _ := f.engine.Progress()
	if pos > f.prevThreshold || !f.engine.HasPrevious() {
		f.engine.Seek(0)
		return
	}
	f.engine.Previous()
}

// SeekTo implements Commands.
func (f *Facade) SeekTo(pos time.Duration) {
	f.engine.Seek(pos)
}

// SkipForward implements Commands.
func (f *Facade) SkipForward() {
	pos, dur := f.engine.Progress()
	target := pos + f.skipInterval
	if dur > 0 && target > dur {
		target = dur
	}
	f.engine.Seek(target)
}

// SkipBackward implements Commands.
func (f *Facade) SkipBackward() {
	pos, _ := f.engine.Progress()
	f.engine.Seek(pos - f.skipInterval)
}

// InterruptionBegan handles the start of an audio interruption (a call, a
// navigation prompt). Playback pauses; the platform decides later whether it
// should resume.
func (f *Facade) InterruptionBegan() {
	f.mu.Lock()
	f.interrupted = true
	f.mu.Unlock()

	if f.engine.State().IsPlaying() {
		f.engine.Pause()
	}
}

// InterruptionEnded handles the end of an interruption.
func (f *Facade) InterruptionEnded(shouldResume bool) {
	f.mu.Lock()
	wasInterrupted := f.interrupted
	f.interrupted = false
	f.mu.Unlock()

	if !wasInterrupted || !shouldResume {
		return
	}
	f.Play()
}

// OutputDeviceRemoved handles the audio route going away (headphones
// unplugged). Playback pauses and stays paused.
func (f *Facade) OutputDeviceRemoved() {
	f.engine.Pause()
}

// NotifyState implements Notifier.
func (f *Facade) NotifyState(state State) {
	f.publishNowPlaying()
	if n := f.currentDownstream(); n != nil {
		n.NotifyState(state)
	}
}

// NotifyTrack implements Notifier.
func (f *Facade) NotifyTrack(index int, track catalog.Track) {
	f.publishNowPlaying()
	go f.refreshShowMetadata(track.ShowID)
	if n := f.currentDownstream(); n != nil {
		n.NotifyTrack(index, track)
	}
}

// NotifyProgress implements Notifier.
func (f *Facade) NotifyProgress(position, duration time.Duration) {
	f.publishNowPlaying()
	if n := f.currentDownstream(); n != nil {
		n.NotifyProgress(position, duration)
	}
}

// NotifyTrackCompleted implements Notifier.
func (f *Facade) NotifyTrackCompleted(index int) {
	if n := f.currentDownstream(); n != nil {
		n.NotifyTrackCompleted(index)
	}
}

func (f *Facade) currentDownstream() Notifier {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.downstream
}

func (f *Facade) publishNowPlaying() {
	track, ok := f.engine.CurrentTrack()
	if !ok {
		f.session.Clear()
		return
	}

	pos, dur := f.engine.Progress()
	if dur == 0 {
		dur = track.Duration
	}
	rate := 0.0
	if f.engine.State() == StatePlaying {
		rate = 1.0
	}

	np := NowPlaying{
		Title:    track.Title,
		Subtitle: track.ShowID,
		Position: pos,
		Duration: dur,
		Rate:     rate,
	}

	f.mu.Lock()
	if show, ok := f.showCache[track.ShowID]; ok {
		np.Subtitle = show.Artist
		np.Album = show.Date + ", " + show.Venue
	}
	if f.artShowID == track.ShowID {
		np.Artwork = f.artData
	}
	f.mu.Unlock()

	f.session.PublishNowPlaying(np)
	f.session.SetCommandsEnabled(f.engine.HasNext(), f.engine.HasPrevious())
}

// refreshShowMetadata fetches show details and artwork in the background and
// republishes once they arrive.
func (f *Facade) refreshShowMetadata(showID string) {
	f.mu.Lock()
	_, haveShow := f.showCache[showID]
	haveArt := f.artShowID == showID && f.artData != nil
	f.mu.Unlock()
	if haveShow && haveArt {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	changed := false
	if !haveShow && f.cat != nil {
		show, err := f.cat.GetShow(ctx, showID)
		if err != nil {
			f.logger.Debug("Show lookup for now-playing failed",
				zap.String("show_id", showID), zap.Error(err))
		} else {
			f.mu.Lock()
			f.showCache[showID] = show
			f.mu.Unlock()
			changed = true
		}
	}

	if !haveArt && f.artwork != nil {
		data, err := f.artwork.Artwork(ctx, showID)
		if err != nil {
			f.logger.Debug("Artwork fetch for now-playing failed",
				zap.String("show_id", showID), zap.Error(err))
		} else if len(data) > 0 {
			f.mu.Lock()
			f.artShowID = showID
			f.artData = data
			f.mu.Unlock()
			changed = true
		}
	}

	if changed {
		// Only republish if the user has not moved on to another show.
		if track, ok := f.engine.CurrentTrack(); ok && track.ShowID == showID {
			f.publishNowPlaying()
		}
	}
}
