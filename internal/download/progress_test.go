package download

import (
	"math"
	"testing"

	"github.com/tapedeck/tapedeck-go/internal/store"
)

func rec(state store.TaskState, downloaded, total int64) *store.TaskRecord {
	return &store.TaskRecord{
		State:           state,
		BytesDownloaded: downloaded,
		TotalBytes:      total,
	}
}

func TestComputeProgress_StatusPrecedence(t *testing.T) {
	tests := []struct {
		name string
		recs []*store.TaskRecord
		want Status
	}{
		{
			name: "no records",
			recs: nil,
			want: StatusNotDownloaded,
		},
		{
			name: "all completed",
			recs: []*store.TaskRecord{
				rec(store.TaskCompleted, 100, 100),
				rec(store.TaskCompleted, 200, 200),
			},
			want: StatusCompleted,
		},
		{
			name: "failure wins over active work",
			recs: []*store.TaskRecord{
				rec(store.TaskCompleted, 100, 100),
				rec(store.TaskFailed, 10, 100),
				rec(store.TaskDownloading, 50, 100),
			},
			want: StatusFailed,
		},
		{
			name: "downloading wins over queued",
			recs: []*store.TaskRecord{
				rec(store.TaskDownloading, 50, 100),
				rec(store.TaskPending, 0, 0),
			},
			want: StatusDownloading,
		},
		{
			name: "queued without active work",
			recs: []*store.TaskRecord{
				rec(store.TaskCompleted, 100, 100),
				rec(store.TaskPending, 0, 0),
			},
			want: StatusQueued,
		},
		{
			name: "fully paused",
			recs: []*store.TaskRecord{
				rec(store.TaskPaused, 50, 100),
				rec(store.TaskPaused, 0, 100),
			},
			want: StatusPaused,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeProgress("1977-05-08", tt.recs)
			if got.Status != tt.want {
				t.Errorf("Expected status %s, got %s", tt.want, got.Status)
			}
		})
	}
}

func TestComputeProgress_UnweightedMean(t *testing.T) {
	// A tiny completed track counts the same as a huge half-done one.
	recs := []*store.TaskRecord{
		rec(store.TaskCompleted, 10, 10),
		rec(store.TaskDownloading, 500_000, 1_000_000),
	}

	p := ComputeProgress("1977-05-08", recs)
	if math.Abs(p.Fraction-0.75) > 1e-9 {
		t.Errorf("Expected fraction 0.75, got %v", p.Fraction)
	}
	if p.CompletedTracks != 1 || p.TotalTracks != 2 {
		t.Errorf("Expected 1/2 tracks, got %d/%d", p.CompletedTracks, p.TotalTracks)
	}
}

func TestComputeProgress_UnknownSizeCountsAsZero(t *testing.T) {
	recs := []*store.TaskRecord{
		rec(store.TaskCompleted, 100, 100),
		rec(store.TaskDownloading, 4096, 0), // size not yet known
	}

	p := ComputeProgress("1977-05-08", recs)
	if math.Abs(p.Fraction-0.5) > 1e-9 {
		t.Errorf("Expected fraction 0.5, got %v", p.Fraction)
	}
}

func TestComputeProgress_CompletedPinsToOne(t *testing.T) {
	// Byte counts can drift; a fully completed show still reports exactly 1.
	recs := []*store.TaskRecord{
		rec(store.TaskCompleted, 90, 100),
	}

	p := ComputeProgress("1977-05-08", recs)
	if p.Fraction != 1.0 {
		t.Errorf("Expected fraction 1.0, got %v", p.Fraction)
	}
}
