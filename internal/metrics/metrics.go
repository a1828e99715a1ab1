// Package metrics defines the prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesTicked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "beyondwords_frames_total",
			Help: "Total number of narrative frame ticks",
		},
	)

	PhaseTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beyondwords_phase_transitions_total",
			Help: "Phase entries by phase and chapter",
		},
		[]string{"phase", "chapter"},
	)

	HoldsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beyondwords_holds_completed_total",
			Help: "Gesture holds that reached the full duration",
		},
		[]string{"chapter"},
	)

	NarrativesCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "beyondwords_narratives_completed_total",
			Help: "Number of times the completion signal fired",
		},
	)

	DetectLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "beyondwords_detect_latency_seconds",
			Help:    "Time spent in hand detection per camera frame",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 8),
		},
	)

	HandsDetected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "beyondwords_hands_detected",
			Help: "Hands seen in the latest camera frame",
		},
	)

	AdapterErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beyondwords_adapter_errors_total",
			Help: "Errors caught at an adapter boundary",
		},
		[]string{"adapter"},
	)

	JournalDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "beyondwords_journal_dropped_total",
			Help: "Journal events dropped because the writer fell behind",
		},
	)

	WSClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "beyondwords_ws_clients",
			Help: "Connected renderer clients",
		},
	)
)

// Adapter labels for AdapterErrors.
const (
	AdapterCamera   = "camera"
	AdapterDetector = "detector"
	AdapterAudio    = "audio"
	AdapterSink     = "sink"
	AdapterJournal  = "journal"
	AdapterHook     = "hook"
)
