package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/shows/1977-05-08", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Show{
			ID:     "1977-05-08",
			Artist: "Grateful Dead",
			Date:   "1977-05-08",
			Venue:  "Barton Hall",
		})
	})
	mux.HandleFunc("/shows/1977-05-08/recordings", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Recording{
			{ID: "aud1", ShowID: "1977-05-08", Source: "audience", Formats: []string{"VBR MP3"}},
			{ID: "flac-only", ShowID: "1977-05-08", Source: "soundboard", Formats: []string{"FLAC"}},
			{ID: "sbd1", ShowID: "1977-05-08", Source: "soundboard", Formats: []string{"VBR MP3", "Ogg Vorbis"}},
		})
	})
	mux.HandleFunc("/recordings/sbd1/tracks", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Track{
			{ShowID: "1977-05-08", RecordingID: "sbd1", Filename: "01.mp3", Format: "VBR MP3"},
			{ShowID: "1977-05-08", RecordingID: "sbd1", Filename: "02.mp3", Format: "VBR MP3"},
		})
	})
	return httptest.NewServer(mux)
}

func TestHTTPClient_GetShow(t *testing.T) {
	server := newCatalogServer(t)
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	show, err := client.GetShow(context.Background(), "1977-05-08")
	if err != nil {
		t.Fatalf("Failed to get show: %v", err)
	}
	if show.Venue != "Barton Hall" {
		t.Errorf("Expected Barton Hall, got %s", show.Venue)
	}
}

func TestHTTPClient_BestRecordingPrefersSupportedSoundboard(t *testing.T) {
	server := newCatalogServer(t)
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	rec, err := client.BestRecording(context.Background(), "1977-05-08")
	if err != nil {
		t.Fatalf("Failed to pick recording: %v", err)
	}
	// The FLAC-only soundboard is unusable; the playable soundboard wins
	// over the earlier audience recording.
	if rec.ID != "sbd1" {
		t.Errorf("Expected sbd1, got %s", rec.ID)
	}
}

func TestHTTPClient_GetTracks(t *testing.T) {
	server := newCatalogServer(t)
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	tracks, err := client.GetTracks(context.Background(), "sbd1")
	if err != nil {
		t.Fatalf("Failed to get tracks: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("Expected 2 tracks, got %d", len(tracks))
	}
}

func TestHTTPClient_NotFound(t *testing.T) {
	server := newCatalogServer(t)
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	if _, err := client.GetShow(context.Background(), "1999-12-31"); err == nil {
		t.Error("Expected an error for an unknown show")
	}
}
