package store

import (
	"path/filepath"
	"testing"
)

func setupLibraryStore(t *testing.T) *LibraryStore {
	t.Helper()
	db, err := InitDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewLibraryStore(db)
}

func TestLibraryStore_SetAndGet(t *testing.T) {
	ls := setupLibraryStore(t)

	if err := ls.SetDownloadedRecording("1977-05-08", "sbd"); err != nil {
		t.Fatalf("Failed to set: %v", err)
	}

	rec, ok, err := ls.GetDownloadedRecording("1977-05-08")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || rec != "sbd" {
		t.Errorf("Expected sbd, got %q %v", rec, ok)
	}

	// Replacing the recording overwrites, not duplicates.
	if err := ls.SetDownloadedRecording("1977-05-08", "aud1"); err != nil {
		t.Fatal(err)
	}
	rec, _, err = ls.GetDownloadedRecording("1977-05-08")
	if err != nil {
		t.Fatal(err)
	}
	if rec != "aud1" {
		t.Errorf("Expected aud1 after replace, got %q", rec)
	}
}

func TestLibraryStore_Clear(t *testing.T) {
	ls := setupLibraryStore(t)

	if err := ls.SetDownloadedRecording("1977-05-08", "sbd"); err != nil {
		t.Fatal(err)
	}
	if err := ls.ClearDownloadedRecording("1977-05-08"); err != nil {
		t.Fatalf("Failed to clear: %v", err)
	}

	_, ok, err := ls.GetDownloadedRecording("1977-05-08")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("Expected no recording after clear")
	}
}

func TestLibraryStore_ListDownloaded(t *testing.T) {
	ls := setupLibraryStore(t)

	shows := map[string]string{
		"1977-05-08": "sbd",
		"1972-08-27": "aud1",
	}
	for show, rec := range shows {
		if err := ls.SetDownloadedRecording(show, rec); err != nil {
			t.Fatal(err)
		}
	}

	got, err := ls.ListDownloaded()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got["1977-05-08"] != "sbd" || got["1972-08-27"] != "aud1" {
		t.Errorf("Unexpected list: %v", got)
	}
}
