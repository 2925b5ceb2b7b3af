package catalog

import "context"

// Client is the remote catalog collaborator. Implementations fetch show,
// recording and track metadata; the wire protocol is theirs to define.
type Client interface {
	// GetShow returns display metadata for a show.
	GetShow(ctx context.Context, showID string) (*Show, error)

	// GetRecordings returns the candidate recordings of a show.
	GetRecordings(ctx context.Context, showID string) ([]Recording, error)

	// BestRecording selects the preferred recording of a show.
	BestRecording(ctx context.Context, showID string) (*Recording, error)

	// GetTracks returns the ordered track list of a recording, across all
	// available formats.
	GetTracks(ctx context.Context, recordingID string) ([]Track, error)
}
