package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransfersTotal tracks finished track transfers by terminal state
	TransfersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapedeck_transfers_total",
			Help: "Total number of finished track transfers",
		},
		[]string{"state"},
	)

	// ActiveTransfers tracks the number of in-flight track transfers
	ActiveTransfers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tapedeck_active_transfers",
			Help: "Number of in-flight track transfers",
		},
	)

	// TransferBytesTotal tracks total bytes downloaded
	TransferBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tapedeck_transfer_bytes_total",
			Help: "Total bytes downloaded",
		},
	)

	// PlaybackTransitions tracks playback state transitions
	PlaybackTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapedeck_playback_transitions_total",
			Help: "Total number of playback state transitions",
		},
		[]string{"state"},
	)

	// PlaybackRetries tracks transient playback error retries
	PlaybackRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tapedeck_playback_retries_total",
			Help: "Total number of playback retries after transient errors",
		},
	)

	// ResolveDuration tracks redirect resolution duration
	ResolveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tapedeck_resolve_duration_seconds",
			Help:    "Redirect resolution duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ResolveFailures tracks redirect probes that degraded to the original URL
	ResolveFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tapedeck_resolve_failures_total",
			Help: "Redirect probes that fell back to the original URL",
		},
	)

	// ErrorsTotal tracks errors by type
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapedeck_errors_total",
			Help: "Total number of errors",
		},
		[]string{"type"},
	)
)
