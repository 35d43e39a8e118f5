// Package signals contains the per-source collectors and the concurrent
// fan-out that joins them into one signal set. Collectors never return
// errors: a source that fails or has no data degrades to its documented
// fallback (or is marked absent for sensors) so one bad source cannot block
// the others.
package signals

import (
	"context"
	"time"

	"crowd-intelligence-api/crowd"
	"crowd-intelligence-api/metrics"
	"crowd-intelligence-api/models"
	"crowd-intelligence-api/providers"
)

// Signal identifies one collector class.
type Signal string

const (
	SignalPopularity Signal = "live-popularity"
	SignalWeather    Signal = "weather"
	SignalEvent      Signal = "event"
	SignalSensor     Signal = "sensor"
	SignalSocial     Signal = "social-trend"
)

// DefaultTimeout bounds a single collector's work; each collector enforces
// it inside Collect.
const DefaultTimeout = 5 * time.Second

// Result is one collector's contribution. A nil Score means the signal is
// absent this round and must be excluded from the weighting.
type Result struct {
	Signal     Signal
	Score      *float64
	Historic   *float64                   // popularity sub-component
	EventNames []string                   // event collector
	Weather    *providers.WeatherSnapshot // weather collector
	FellBack   bool
}

// Collector fetches one signal class for a place.
type Collector interface {
	Signal() Signal
	Collect(ctx context.Context, place models.Place) Result
	// Fallback is the deterministic degraded result, used when the fan-out
	// deadline expires before the collector reports.
	Fallback() Result
}

// Set is the joined output of one fan-out round.
type Set struct {
	Signals    crowd.Signals
	EventNames []string
	Weather    *providers.WeatherSnapshot
}

func (s *Set) apply(r Result) {
	switch r.Signal {
	case SignalPopularity:
		s.Signals.Live = r.Score
		s.Signals.Historic = r.Historic
	case SignalWeather:
		s.Signals.Weather = r.Score
		s.Weather = r.Weather
	case SignalEvent:
		s.Signals.Event = r.Score
		s.EventNames = r.EventNames
	case SignalSensor:
		s.Signals.Sensor = r.Score
	case SignalSocial:
		s.Signals.Social = r.Score
	}
}

// CollectAll fans out to every collector in parallel and joins the results.
// Total latency is bounded by overallTimeout: any collector still pending at
// the deadline contributes its fallback instead. Scores in the returned set
// always come from this single round.
func CollectAll(ctx context.Context, place models.Place, collectors []Collector, overallTimeout time.Duration) Set {
	metrics.FanoutsTotal.Inc()

	results := make(chan Result, len(collectors))
	for _, c := range collectors {
		go func(c Collector) {
			results <- c.Collect(ctx, place)
		}(c)
	}

	var set Set
	seen := make(map[Signal]bool, len(collectors))
	deadline := time.After(overallTimeout)

	pending := len(collectors)
loop:
	for pending > 0 {
		select {
		case r := <-results:
			set.apply(r)
			seen[r.Signal] = true
			pending--
		case <-deadline:
			break loop
		}
	}

	for _, c := range collectors {
		if !seen[c.Signal()] {
			metrics.CollectorDeadlines.WithLabelValues(string(c.Signal())).Inc()
			set.apply(c.Fallback())
		}
	}

	return set
}

func score(v float64) *float64 { return &v }
