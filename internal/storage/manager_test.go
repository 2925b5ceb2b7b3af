package storage

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/tapedeck/tapedeck-go/internal/catalog"
)

func setupManager(t *testing.T) *Manager {
	t.Helper()
	base := t.TempDir()
	m, err := NewManager(base, filepath.Join(base, "tmp"), zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	return m
}

func writeTemp(t *testing.T, m *Manager, showID, recID, filename, content string) string {
	t.Helper()
	path := m.TempPath(showID, recID, filename)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMoveToStorage_AndLookup(t *testing.T) {
	m := setupManager(t)

	temp := writeTemp(t, m, "1977-05-08", "sbd.miller", "01.mp3", "audio bytes")

	dest, err := m.MoveToStorage(temp, "1977-05-08", "sbd.miller", "01.mp3")
	if err != nil {
		t.Fatalf("MoveToStorage failed: %v", err)
	}

	if _, err := os.Stat(temp); !os.IsNotExist(err) {
		t.Error("Temp file should be gone after move")
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "audio bytes" {
		t.Errorf("Moved content mismatch: %v %q", err, data)
	}

	if !m.IsTrackDownloaded("1977-05-08", "sbd.miller", "01.mp3") {
		t.Error("Track should report as downloaded")
	}
	if m.IsTrackDownloaded("1977-05-08", "sbd.miller", "02.mp3") {
		t.Error("Missing track should not report as downloaded")
	}

	url, ok := m.LocalTrackURL(catalog.Track{ShowID: "1977-05-08", RecordingID: "sbd.miller", Filename: "01.mp3"})
	if !ok {
		t.Fatal("Expected a local URL for the downloaded track")
	}
	if url != "file://"+dest {
		t.Errorf("Unexpected local URL %s", url)
	}
}

func TestDeleteShow(t *testing.T) {
	m := setupManager(t)

	for _, f := range []string{"01.mp3", "02.mp3"} {
		temp := writeTemp(t, m, "1977-05-08", "sbd", f, "x")
		if _, err := m.MoveToStorage(temp, "1977-05-08", "sbd", f); err != nil {
			t.Fatal(err)
		}
	}
	// Leftover partial for the same show
	writeTemp(t, m, "1977-05-08", "sbd", "03.mp3", "partial")
	// Another show stays untouched
	temp := writeTemp(t, m, "1972-08-27", "aud", "01.mp3", "keep")
	if _, err := m.MoveToStorage(temp, "1972-08-27", "aud", "01.mp3"); err != nil {
		t.Fatal(err)
	}

	if err := m.DeleteShow("1977-05-08"); err != nil {
		t.Fatalf("DeleteShow failed: %v", err)
	}

	if m.IsTrackDownloaded("1977-05-08", "sbd", "01.mp3") {
		t.Error("Deleted show track still reported downloaded")
	}
	if _, err := os.Stat(m.TempPath("1977-05-08", "sbd", "03.mp3")); !os.IsNotExist(err) {
		t.Error("Show partials should be swept on delete")
	}
	if !m.IsTrackDownloaded("1972-08-27", "aud", "01.mp3") {
		t.Error("Other show must survive DeleteShow")
	}
}

func TestStorageUsed(t *testing.T) {
	m := setupManager(t)

	temp := writeTemp(t, m, "s1", "r1", "a.mp3", "12345")
	if _, err := m.MoveToStorage(temp, "s1", "r1", "a.mp3"); err != nil {
		t.Fatal(err)
	}
	temp = writeTemp(t, m, "s2", "r1", "b.mp3", "1234567890")
	if _, err := m.MoveToStorage(temp, "s2", "r1", "b.mp3"); err != nil {
		t.Fatal(err)
	}

	total, err := m.TotalStorageUsed()
	if err != nil {
		t.Fatalf("TotalStorageUsed failed: %v", err)
	}
	if total != 15 {
		t.Errorf("Expected 15 bytes total, got %d", total)
	}

	show, err := m.ShowStorageUsed("s1")
	if err != nil {
		t.Fatalf("ShowStorageUsed failed: %v", err)
	}
	if show != 5 {
		t.Errorf("Expected 5 bytes for s1, got %d", show)
	}
}

func TestDeleteAll(t *testing.T) {
	m := setupManager(t)

	temp := writeTemp(t, m, "s1", "r1", "a.mp3", "12345")
	if _, err := m.MoveToStorage(temp, "s1", "r1", "a.mp3"); err != nil {
		t.Fatal(err)
	}

	if err := m.DeleteAll(); err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}

	total, err := m.TotalStorageUsed()
	if err != nil {
		t.Fatalf("TotalStorageUsed failed: %v", err)
	}
	if total != 0 {
		t.Errorf("Expected empty storage, got %d bytes", total)
	}
}

func TestSanitize_PathSegments(t *testing.T) {
	m := setupManager(t)

	path := m.TrackPath("../evil", "a/b", "c:d.mp3")
	for _, part := range []string{"..", "a/b", "c:d"} {
		if filepath.Base(path) == part {
			t.Errorf("Sanitize failed to neutralize %q", part)
		}
	}
}
