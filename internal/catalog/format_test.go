package catalog

import (
	"testing"

	"github.com/tapedeck/tapedeck-go/internal/errors"
)

func tracksWithFormats(formats ...string) []Track {
	var out []Track
	for i, f := range formats {
		out = append(out, Track{
			ShowID:      "1977-05-08",
			RecordingID: "sbd.miller",
			Filename:    "t" + string(rune('a'+i)),
			Format:      f,
		})
	}
	return out
}

func TestSelectFormat_PriorityOrder(t *testing.T) {
	priority := []string{"VBR MP3", "MP3", "Ogg Vorbis"}

	tracks := tracksWithFormats("MP3", "FLAC", "MP3")
	got, err := SelectFormat(priority, tracks)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "MP3" {
		t.Errorf("Expected MP3, got %s", got)
	}

	tracks = tracksWithFormats("Ogg Vorbis", "VBR MP3", "FLAC")
	got, err = SelectFormat(priority, tracks)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "VBR MP3" {
		t.Errorf("Expected VBR MP3, got %s", got)
	}
}

func TestSelectFormat_NoSupportedFormat(t *testing.T) {
	priority := []string{"VBR MP3", "MP3", "Ogg Vorbis"}

	_, err := SelectFormat(priority, tracksWithFormats("FLAC"))
	if err == nil {
		t.Fatal("Expected error for FLAC-only recording")
	}
	if !errors.IsFormatError(err) {
		t.Errorf("Expected format error, got %v", err)
	}
}

func TestFilterByFormat_PreservesOrder(t *testing.T) {
	tracks := []Track{
		{Filename: "01.mp3", Format: "MP3"},
		{Filename: "01.flac", Format: "FLAC"},
		{Filename: "02.mp3", Format: "MP3"},
	}

	got := FilterByFormat(tracks, "MP3")
	if len(got) != 2 {
		t.Fatalf("Expected 2 tracks, got %d", len(got))
	}
	if got[0].Filename != "01.mp3" || got[1].Filename != "02.mp3" {
		t.Errorf("Filter broke track order: %v", got)
	}
}
