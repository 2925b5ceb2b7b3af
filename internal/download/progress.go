package download

import "github.com/tapedeck/tapedeck-go/internal/store"

// Status is the aggregate download status of a show.
type Status string

const (
	StatusNotDownloaded Status = "not_downloaded"
	StatusQueued        Status = "queued"
	StatusDownloading   Status = "downloading"
	StatusPaused        Status = "paused"
	StatusCompleted     Status = "completed"
	StatusFailed        Status = "failed"
)

// ShowProgress is the aggregate view of one show's download.
type ShowProgress struct {
	ShowID          string  `json:"show_id"`
	Status          Status  `json:"status"`
	Fraction        float64 `json:"fraction"`
	CompletedTracks int     `json:"completed_tracks"`
	TotalTracks     int     `json:"total_tracks"`
	BytesDownloaded int64   `json:"bytes_downloaded"`
	TotalBytes      int64   `json:"total_bytes"`
}

// ComputeProgress folds a show's task records into one aggregate. Status
// precedence: all completed wins, then any failure, then active work, then
// queued work, then paused. The fraction is the unweighted mean of per-track
// fractions, so every track counts the same regardless of file size.
func ComputeProgress(showID string, recs []*store.TaskRecord) ShowProgress {
	p := ShowProgress{
		ShowID:      showID,
		Status:      StatusNotDownloaded,
		TotalTracks: len(recs),
	}
	if len(recs) == 0 {
		return p
	}

	var sum float64
	var anyFailed, anyDownloading, anyPending, anyPaused bool

	for _, rec := range recs {
		p.BytesDownloaded += rec.BytesDownloaded
		p.TotalBytes += rec.TotalBytes

		switch rec.State {
		case store.TaskCompleted:
			p.CompletedTracks++
			sum += 1.0
			continue
		case store.TaskFailed:
			anyFailed = true
		case store.TaskDownloading:
			anyDownloading = true
		case store.TaskPending:
			anyPending = true
		case store.TaskPaused:
			anyPaused = true
		}

		if rec.TotalBytes > 0 {
			sum += float64(rec.BytesDownloaded) / float64(rec.TotalBytes)
		}
	}

	p.Fraction = sum / float64(len(recs))

	switch {
	case p.CompletedTracks == len(recs):
		p.Status = StatusCompleted
		p.Fraction = 1.0
	case anyFailed:
		p.Status = StatusFailed
	case anyDownloading:
		p.Status = StatusDownloading
	case anyPending:
		p.Status = StatusQueued
	case anyPaused:
		p.Status = StatusPaused
	}

	return p
}
