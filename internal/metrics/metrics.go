// Package metrics exposes the handful of counters worth watching on a
// household server: is the gate being hammered, and how often does remote
// playback fail over to local files.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GateOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "burrow_gate_outcomes_total",
		Help: "Access gate outcomes by path (challenge, hold) and result.",
	}, []string{"path", "outcome"})

	PlaybackFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "burrow_playback_fallbacks_total",
		Help: "Remote playback errors recovered by switching to a local file.",
	})

	PlaybackLocalFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "burrow_playback_local_failures_total",
		Help: "Local fallback errors; these leave a video unavailable.",
	})

	LibraryMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "burrow_library_mutations_total",
		Help: "Library mutations by operation (add, remove, reset).",
	}, []string{"op"})

	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "burrow_sessions_active",
		Help: "Navigation sessions currently tracked.",
	})
)
