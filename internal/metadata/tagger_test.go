package metadata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"

	"github.com/tapedeck/tapedeck-go/internal/catalog"
)

type stubCatalog struct {
	show *catalog.Show
}

func (c *stubCatalog) GetShow(_ context.Context, showID string) (*catalog.Show, error) {
	if c.show != nil {
		return c.show, nil
	}
	return &catalog.Show{ID: showID}, nil
}

func (c *stubCatalog) GetRecordings(context.Context, string) ([]catalog.Recording, error) {
	return nil, nil
}

func (c *stubCatalog) BestRecording(context.Context, string) (*catalog.Recording, error) {
	return nil, nil
}

func (c *stubCatalog) GetTracks(context.Context, string) ([]catalog.Track, error) {
	return nil, nil
}

func TestTrackNumberFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     int
	}{
		{"05 Scarlet Begonias.mp3", 5},
		{"01.mp3", 1},
		{"gd77-05-08d1t03.mp3", 3},
		{"gd77-05-08d2t11.flac", 11},
		{"encore.mp3", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := TrackNumberFromFilename(tt.filename); got != tt.want {
			t.Errorf("TrackNumberFromFilename(%q) = %d, want %d", tt.filename, got, tt.want)
		}
	}
}

func TestShowAlbumTitle(t *testing.T) {
	show := &catalog.Show{
		Date:  "1977-05-08",
		Venue: "Barton Hall",
		City:  "Ithaca, NY",
	}
	want := "1977-05-08 Barton Hall Ithaca, NY"
	if got := showAlbumTitle(show); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestTagger_TagMP3(t *testing.T) {
	path := filepath.Join(t.TempDir(), "03 Estimated Prophet.mp3")
	// A tagless file is enough; the tag gets prepended on save.
	if err := os.WriteFile(path, make([]byte, 4096), 0644); err != nil {
		t.Fatal(err)
	}

	tagger := NewTagger(&stubCatalog{show: &catalog.Show{
		ID:     "1977-05-08",
		Artist: "Grateful Dead",
		Date:   "1977-05-08",
		Venue:  "Barton Hall",
	}}, nil, nil)

	track := catalog.Track{
		ShowID:      "1977-05-08",
		RecordingID: "sbd",
		Filename:    "03 Estimated Prophet.mp3",
		Title:       "Estimated Prophet",
	}
	if err := tagger.TagFile(context.Background(), path, track); err != nil {
		t.Fatalf("Failed to tag file: %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("Failed to reopen tagged file: %v", err)
	}
	defer tag.Close()

	if got := tag.Title(); got != "Estimated Prophet" {
		t.Errorf("Expected title 'Estimated Prophet', got %q", got)
	}
	if got := tag.Artist(); got != "Grateful Dead" {
		t.Errorf("Expected artist 'Grateful Dead', got %q", got)
	}
	if got := tag.Year(); got != "1977" {
		t.Errorf("Expected year 1977, got %q", got)
	}
}

func TestTagger_SkipsUnsupportedContainer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "01.ogg")
	if err := os.WriteFile(path, []byte("OggS"), 0644); err != nil {
		t.Fatal(err)
	}

	tagger := NewTagger(&stubCatalog{}, nil, nil)
	err := tagger.TagFile(context.Background(), path, catalog.Track{Filename: "01.ogg"})
	if err != nil {
		t.Errorf("Unsupported containers must be skipped silently, got %v", err)
	}
}
