package player

// State represents the externally observable playback state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateBuffering
	StatePlaying
	StatePaused
	StateEnded
	StateError
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateBuffering:
		return "buffering"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// IsPlaying reports whether playback is active or about to be: loading and
// buffering count, so a toggle during startup lands on pause.
func (s State) IsPlaying() bool {
	return s == StatePlaying || s == StateBuffering || s == StateLoading
}
