package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// TaskState is the persisted state of one track download.
type TaskState string

const (
	TaskPending     TaskState = "pending"
	TaskDownloading TaskState = "downloading"
	TaskPaused      TaskState = "paused"
	TaskCompleted   TaskState = "completed"
	TaskFailed      TaskState = "failed"
)

// Terminal reports whether the state needs no further work short of an
// explicit resume or removal.
func (s TaskState) Terminal() bool {
	return s == TaskCompleted
}

// TaskRecord is one persisted per-track download task. Records survive
// process restarts; the orchestrator owns all mutations.
type TaskRecord struct {
	ID              string     `json:"id"`
	ShowID          string     `json:"show_id"`
	RecordingID     string     `json:"recording_id"`
	TrackFilename   string     `json:"track_filename"`
	RemoteURL       string     `json:"-"`
	State           TaskState  `json:"state"`
	BytesDownloaded int64      `json:"bytes_downloaded"`
	TotalBytes      int64      `json:"total_bytes"`
	ResumeToken     []byte     `json:"-"` // opaque transport state, never interpreted here
	ErrorMessage    string     `json:"error_message,omitempty"`
	RetryCount      int        `json:"retry_count"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// TaskID builds the stable primary key for a track download.
func TaskID(showID, recordingID, filename string) string {
	return showID + "/" + recordingID + "/" + filename
}

// TaskStore manages download task records in the database
type TaskStore struct {
	db      *sql.DB
	batchMu sync.Mutex // serialize batch operations
}

// NewTaskStore creates a new TaskStore
func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskColumns = `id, show_id, recording_id, track_filename, remote_url, state,
       bytes_downloaded, total_bytes, resume_token, error_message, retry_count,
       created_at, updated_at, completed_at`

// Add adds a new task record
func (ts *TaskStore) Add(rec *TaskRecord) error {
	query := `
		INSERT INTO download_tasks (
			id, show_id, recording_id, track_filename, remote_url, state,
			bytes_downloaded, total_bytes, resume_token, error_message, retry_count,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	_, err := ts.db.Exec(
		query,
		rec.ID,
		rec.ShowID,
		rec.RecordingID,
		rec.TrackFilename,
		rec.RemoteURL,
		rec.State,
		rec.BytesDownloaded,
		rec.TotalBytes,
		rec.ResumeToken,
		rec.ErrorMessage,
		rec.RetryCount,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add task record: %w", err)
	}

	return nil
}

// AddBatch adds multiple task records in a single transaction
func (ts *TaskStore) AddBatch(recs []*TaskRecord) error {
	if len(recs) == 0 {
		return nil
	}

	ts.batchMu.Lock()
	defer ts.batchMu.Unlock()

	tx, err := ts.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT OR IGNORE INTO download_tasks (
			id, show_id, recording_id, track_filename, remote_url, state,
			bytes_downloaded, total_bytes, resume_token, error_message, retry_count,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, rec := range recs {
		rec.CreatedAt = now
		rec.UpdatedAt = now

		_, err := stmt.Exec(
			rec.ID,
			rec.ShowID,
			rec.RecordingID,
			rec.TrackFilename,
			rec.RemoteURL,
			rec.State,
			rec.BytesDownloaded,
			rec.TotalBytes,
			rec.ResumeToken,
			rec.ErrorMessage,
			rec.RetryCount,
			rec.CreatedAt,
			rec.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to add task record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Update updates an existing task record
func (ts *TaskStore) Update(rec *TaskRecord) error {
	query := `
		UPDATE download_tasks
		SET state = ?, bytes_downloaded = ?, total_bytes = ?, resume_token = ?,
		    error_message = ?, retry_count = ?, updated_at = ?, completed_at = ?
		WHERE id = ?
	`

	rec.UpdatedAt = time.Now()

	result, err := ts.db.Exec(
		query,
		rec.State,
		rec.BytesDownloaded,
		rec.TotalBytes,
		rec.ResumeToken,
		rec.ErrorMessage,
		rec.RetryCount,
		rec.UpdatedAt,
		rec.CompletedAt,
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err == nil && rowsAffected == 0 {
		return fmt.Errorf("update affected 0 rows for task %s", rec.ID)
	}

	return nil
}

// Get retrieves a task record by ID
func (ts *TaskStore) Get(id string) (*TaskRecord, error) {
	query := "SELECT " + taskColumns + " FROM download_tasks WHERE id = ?"

	row := ts.db.QueryRow(query, id)
	rec, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task record not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task record: %w", err)
	}

	return rec, nil
}

// GetByShow retrieves all task records for a show in creation order
func (ts *TaskStore) GetByShow(showID string) ([]*TaskRecord, error) {
	query := "SELECT " + taskColumns + ` FROM download_tasks
		WHERE show_id = ?
		ORDER BY created_at ASC, id ASC`

	rows, err := ts.db.Query(query, showID)
	if err != nil {
		return nil, fmt.Errorf("failed to get show tasks: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// GetNonCompleted retrieves a show's tasks that still need work
func (ts *TaskStore) GetNonCompleted(showID string) ([]*TaskRecord, error) {
	query := "SELECT " + taskColumns + ` FROM download_tasks
		WHERE show_id = ? AND state != 'completed'
		ORDER BY created_at ASC, id ASC`

	rows, err := ts.db.Query(query, showID)
	if err != nil {
		return nil, fmt.Errorf("failed to get non-completed tasks: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// GetAll retrieves every task record, grouped by show in creation order
func (ts *TaskStore) GetAll() ([]*TaskRecord, error) {
	query := "SELECT " + taskColumns + ` FROM download_tasks
		ORDER BY show_id ASC, created_at ASC, id ASC`

	rows, err := ts.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all tasks: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// DeleteShow removes all task records for a show
func (ts *TaskStore) DeleteShow(showID string) error {
	_, err := ts.db.Exec("DELETE FROM download_tasks WHERE show_id = ?", showID)
	if err != nil {
		return fmt.Errorf("failed to delete show tasks: %w", err)
	}
	return nil
}

// CountByState returns the number of a show's tasks in the given state
func (ts *TaskStore) CountByState(showID string, state TaskState) (int, error) {
	var count int
	err := ts.db.QueryRow(
		"SELECT COUNT(*) FROM download_tasks WHERE show_id = ? AND state = ?",
		showID, state,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*TaskRecord, error) {
	rec := &TaskRecord{}
	var completedAt sql.NullTime
	var errorMessage sql.NullString
	var resumeToken []byte

	err := row.Scan(
		&rec.ID,
		&rec.ShowID,
		&rec.RecordingID,
		&rec.TrackFilename,
		&rec.RemoteURL,
		&rec.State,
		&rec.BytesDownloaded,
		&rec.TotalBytes,
		&resumeToken,
		&errorMessage,
		&rec.RetryCount,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		rec.CompletedAt = &completedAt.Time
	}
	if errorMessage.Valid {
		rec.ErrorMessage = errorMessage.String
	}
	if len(resumeToken) > 0 {
		rec.ResumeToken = resumeToken
	}

	return rec, nil
}

func scanTasks(rows *sql.Rows) ([]*TaskRecord, error) {
	recs := []*TaskRecord{}

	for rows.Next() {
		rec, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task record: %w", err)
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return recs, nil
}
