// Package metrics defines the prometheus collectors for the crowd engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FanoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crowdsense_signal_fanouts_total",
		Help: "Total number of signal collector fan-out rounds.",
	})
	CollectorFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crowdsense_collector_fallbacks_total",
		Help: "Total number of collector runs that degraded to their fallback score.",
	}, []string{"signal"})
	CollectorDeadlines = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crowdsense_collector_deadlines_total",
		Help: "Total number of collectors cut off by the fan-out deadline.",
	}, []string{"signal"})

	FreshnessHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crowdsense_freshness_hits_total",
		Help: "Total number of current-crowd requests served from a fresh reading without recomputation.",
	})
	ReadingsStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crowdsense_readings_stored_total",
		Help: "Total number of observed crowd readings persisted.",
	})

	RefreshCycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "crowdsense_refresh_cycle_duration_seconds",
		Help:    "Duration of a full batch refresh cycle across all places.",
		Buckets: []float64{0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
	})
	RefreshPlaces = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crowdsense_refresh_places_total",
		Help: "Per-place batch refresh outcomes.",
	}, []string{"result"})

	ForecastBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crowdsense_forecast_batches_total",
		Help: "Forecast batch generation outcomes.",
	}, []string{"result"})

	IngestReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crowdsense_ingest_messages_received_total",
		Help: "Total number of MQTT sensor messages received.",
	})
	IngestStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crowdsense_ingest_messages_stored_total",
		Help: "Total number of sensor readings successfully inserted.",
	})
	IngestFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crowdsense_ingest_messages_failed_total",
		Help: "Total number of sensor messages rejected or failed to store.",
	})
)
