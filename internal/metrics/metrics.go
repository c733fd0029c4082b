// Package metrics exposes the service counters on the Prometheus default
// registry, served by the web server on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchesSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "topspin",
		Name:      "matches_submitted_total",
		Help:      "Matches recorded on the ladder.",
	})

	MatchesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "topspin",
		Name:      "matches_deleted_total",
		Help:      "Matches retroactively removed from the ladder.",
	})

	LootboxesOpened = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "topspin",
		Name:      "lootboxes_opened_total",
		Help:      "Lootboxes opened by players.",
	})

	replays = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "topspin",
		Name:      "replays_total",
		Help:      "Full rating-history replays performed.",
	})

	replayDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "topspin",
		Name:      "replay_duration_seconds",
		Help:      "Wall time of a full rating-history replay.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
	})
)

// ObserveReplay records one completed replay pass.
func ObserveReplay(d time.Duration) {
	replays.Inc()
	replayDuration.Observe(d.Seconds())
}
