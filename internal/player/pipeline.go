package player

import "time"

// Pipeline abstracts the platform audio pipeline underneath the queue engine.
//
// Calls are asynchronous fire-and-continue. Load replaces the pipeline's
// internal queue and begins playback of the given URL; the replacement is an
// internal, asynchronous reset, so anything enqueued before the pipeline
// reports the new item as started is silently discarded. The engine therefore
// defers Enqueue until after the matching ItemStarted callback.
type Pipeline interface {
	// Load resets the internal queue and starts playing url.
	Load(url string)

	// Enqueue appends urls to the internal queue for gapless transitions.
	Enqueue(urls []string)

	Play()
	Pause()
	Stop()
	Seek(pos time.Duration)

	// Position returns the current playback position and the current item's
	// duration.
	Position() (pos, duration time.Duration)

	// SetListener registers the callback sink. Callbacks arrive on arbitrary
	// goroutines.
	SetListener(l Listener)
}

// Listener receives pipeline callbacks.
type Listener interface {
	// ItemStarted fires when the pipeline begins playing an item, whether
	// asked to or via its own gapless advance.
	ItemStarted(url string)

	// PipelineBuffering fires when playback stalls on I/O.
	PipelineBuffering()

	// PlaybackEnded fires when the internal queue drains after the last item
	// finishes normally.
	PlaybackEnded()

	// PipelineError fires on a playback failure of the current item.
	PipelineError(err error)
}
