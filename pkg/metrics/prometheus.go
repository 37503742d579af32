// Package metrics provides Prometheus metrics for the ingestion engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Unit labels for unit_failures_total.
const (
	UnitGame   = "game"
	UnitTeam   = "team"
	UnitPlayer = "player"
	UnitSink   = "sink"
)

// Manager owns the engine's collectors. Each Manager has its own registry
// unless WithRegistry is given, so tests can build as many as they like.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	gamesLedgered   prometheus.Counter
	gamesDuplicate  prometheus.Counter
	gamesSkipped    *prometheus.CounterVec
	unitFailures    *prometheus.CounterVec
	gameProcessing  prometheus.Histogram
	playersUpserted prometheus.Counter
	playersPruned   prometheus.Counter
	rowsEmitted     *prometheus.CounterVec
	upstreamFetches *prometheus.CounterVec
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "faceoff",
		subsystem:        "ingest",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}

	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.gamesLedgered = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "games_ledgered_total",
		Help:      "Games written to the ledger",
	})

	m.gamesDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "games_already_processed_total",
		Help:      "Games skipped because the ledger already held them",
	})

	m.gamesSkipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "games_skipped_total",
		Help:      "Games skipped by classification, by reason",
	}, []string{"reason"})

	m.unitFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "unit_failures_total",
		Help:      "Failed processing units (game, team, player, sink)",
	}, []string{"unit"})

	m.gameProcessing = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "game_processing_seconds",
		Help:      "Wall time spent on one game from box score fetch to ledger write",
		Buckets:   m.histogramBuckets,
	})

	m.playersUpserted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "players_upserted_total",
		Help:      "Active players written to the players table",
	})

	m.playersPruned = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "players_pruned_total",
		Help:      "Inactive players removed from the players table",
	})

	m.rowsEmitted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feature_rows_emitted_total",
		Help:      "Feature rows handed to a sink",
	}, []string{"sink"})

	m.upstreamFetches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "upstream",
		Name:      "fetches_total",
		Help:      "Upstream fetches by operation and outcome",
	}, []string{"op", "outcome"})
}

func (m *Manager) GameLedgered() { m.gamesLedgered.Inc() }
func (m *Manager) GameAlreadyProcessed() { m.gamesDuplicate.Inc() }
func (m *Manager) GameSkipped(reason string) { m.gamesSkipped.WithLabelValues(reason).Inc() }
func (m *Manager) UnitFailed(unit string) { m.unitFailures.WithLabelValues(unit).Inc() }
func (m *Manager) PlayerUpserted() { m.playersUpserted.Inc() }
func (m *Manager) PlayerPruned() { m.playersPruned.Inc() }
func (m *Manager) RowEmitted(sink string) { m.rowsEmitted.WithLabelValues(sink).Inc() }

// ObserveGame records how long one game took.
func (m *Manager) ObserveGame(d time.Duration) {
	m.gameProcessing.Observe(d.Seconds())
}

// UpstreamFetch counts one upstream call. outcome is "ok" or "error".
func (m *Manager) UpstreamFetch(op, outcome string) {
	m.upstreamFetches.WithLabelValues(op, outcome).Inc()
}

// Registry exposes the underlying registry.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
