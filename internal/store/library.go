package store

import (
	"database/sql"
	"fmt"
)

// LibraryStore persists which recording of each show is available offline.
// The download orchestrator writes it on show completion and removal.
type LibraryStore struct {
	db *sql.DB
}

// NewLibraryStore creates a new LibraryStore
func NewLibraryStore(db *sql.DB) *LibraryStore {
	return &LibraryStore{db: db}
}

// SetDownloadedRecording records a show's offline recording
func (ls *LibraryStore) SetDownloadedRecording(showID, recordingID string) error {
	_, err := ls.db.Exec(
		"INSERT OR REPLACE INTO downloaded_recordings (show_id, recording_id) VALUES (?, ?)",
		showID, recordingID,
	)
	if err != nil {
		return fmt.Errorf("failed to record downloaded recording: %w", err)
	}
	return nil
}

// ClearDownloadedRecording removes a show's offline pointer
func (ls *LibraryStore) ClearDownloadedRecording(showID string) error {
	_, err := ls.db.Exec("DELETE FROM downloaded_recordings WHERE show_id = ?", showID)
	if err != nil {
		return fmt.Errorf("failed to clear downloaded recording: %w", err)
	}
	return nil
}

// GetDownloadedRecording returns the offline recording id for a show
func (ls *LibraryStore) GetDownloadedRecording(showID string) (string, bool, error) {
	var recordingID string
	err := ls.db.QueryRow(
		"SELECT recording_id FROM downloaded_recordings WHERE show_id = ?",
		showID,
	).Scan(&recordingID)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get downloaded recording: %w", err)
	}
	return recordingID, true, nil
}

// ListDownloaded returns every show with an offline recording
func (ls *LibraryStore) ListDownloaded() (map[string]string, error) {
	rows, err := ls.db.Query("SELECT show_id, recording_id FROM downloaded_recordings ORDER BY show_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list downloaded recordings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var showID, recordingID string
		if err := rows.Scan(&showID, &recordingID); err != nil {
			return nil, fmt.Errorf("failed to scan downloaded recording: %w", err)
		}
		out[showID] = recordingID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}
