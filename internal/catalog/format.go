package catalog

import (
	"github.com/tapedeck/tapedeck-go/internal/errors"
)

// DefaultFormatPriority orders formats by playback compatibility: the widest
// compatibility lossy format first.
var DefaultFormatPriority = []string{"VBR MP3", "MP3", "Ogg Vorbis"}

// SelectFormat picks the first format from the priority list that appears in
// the track set. Returns a format error when none match.
func SelectFormat(priority []string, tracks []Track) (string, error) {
	if len(priority) == 0 {
		priority = DefaultFormatPriority
	}

	available := make(map[string]bool, len(tracks))
	var names []string
	for _, t := range tracks {
		if !available[t.Format] {
			available[t.Format] = true
			names = append(names, t.Format)
		}
	}

	for _, f := range priority {
		if available[f] {
			return f, nil
		}
	}

	return "", errors.NewNoSupportedFormat(names)
}

// FilterByFormat returns the ordered sub-list of tracks in the given format.
func FilterByFormat(tracks []Track, format string) []Track {
	var out []Track
	for _, t := range tracks {
		if t.Format == format {
			out = append(out, t)
		}
	}
	return out
}
