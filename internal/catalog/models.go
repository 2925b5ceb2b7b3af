package catalog

import "time"

// Show is a single performance event, identified by date and venue. A show
// aggregates one or more recordings.
type Show struct {
	ID         string `json:"id"`
	Artist     string `json:"artist"`
	Date       string `json:"date"`
	Venue      string `json:"venue"`
	City       string `json:"city"`
	ArtworkURL string `json:"artwork_url,omitempty"`
}

// Recording is one specific taped capture of a show, containing an ordered
// track list in one or more formats.
type Recording struct {
	ID      string   `json:"id"`
	ShowID  string   `json:"show_id"`
	Source  string   `json:"source"` // soundboard, audience, matrix
	Formats []string `json:"formats"`
}

// Track identifies one file of a recording plus its display metadata.
// Immutable once fetched from the catalog.
type Track struct {
	ShowID      string        `json:"show_id"`
	RecordingID string        `json:"recording_id"`
	Filename    string        `json:"filename"`
	URL         string        `json:"url"` // logical, pre-redirect
	Title       string        `json:"title"`
	Format      string        `json:"format"`
	Duration    time.Duration `json:"duration,omitempty"`
}

// Identifier returns the stable identity of a track across the catalog,
// download store and storage layout.
func (t Track) Identifier() string {
	return t.ShowID + "/" + t.RecordingID + "/" + t.Filename
}
