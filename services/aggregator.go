package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crowd-intelligence-api/crowd"
	"crowd-intelligence-api/metrics"
	"crowd-intelligence-api/models"
	"crowd-intelligence-api/signals"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	// FreshnessWindow is how long an observed reading is served as "current"
	// without triggering recomputation.
	FreshnessWindow = 15 * time.Minute

	// FanoutTimeout bounds one whole collector fan-out round.
	FanoutTimeout = 8 * time.Second
)

// ErrPlaceNotFound covers unknown and inactive places alike.
var ErrPlaceNotFound = errors.New("place not found")

// PlaceStore is the read contract against the marketplace location service.
type PlaceStore interface {
	Get(ctx context.Context, id string) (*models.Place, error)
	ListScored(ctx context.Context, filter models.PlaceFilter) ([]models.Place, error)
}

// ReadingStore persists and queries crowd readings and weather snapshots.
type ReadingStore interface {
	Insert(ctx context.Context, reading *models.CrowdReading) error
	LatestObserved(ctx context.Context, placeID string) (*models.CrowdReading, error)
	ListObserved(ctx context.Context, placeID string, limit int, before *time.Time) ([]models.CrowdReading, error)
	HourlyAverage(ctx context.Context, placeID string, weekday time.Weekday, hour int, since time.Time) (float64, int, error)
	InsertWeatherSnapshot(ctx context.Context, snapshot *models.WeatherSnapshot) error
}

// Aggregator owns the observed side of the engine: signal fan-out, index
// calculation, persistence and the freshness contract.
type Aggregator struct {
	places     PlaceStore
	readings   ReadingStore
	collectors []signals.Collector
	group      singleflight.Group
	now        func() time.Time
}

func NewAggregator(places PlaceStore, readings ReadingStore, collectors []signals.Collector) *Aggregator {
	return &Aggregator{
		places:     places,
		readings:   readings,
		collectors: collectors,
		now:        time.Now,
	}
}

// GetCurrent serves the freshest crowd reading for a place, recomputing only
// when the latest observed reading is older than the freshness window.
// Concurrent callers hitting the same stale place share a single
// recomputation via singleflight instead of issuing duplicate fan-outs.
func (a *Aggregator) GetCurrent(ctx context.Context, placeID string) (*models.CrowdReading, error) {
	place, err := a.lookup(ctx, placeID)
	if err != nil {
		return nil, err
	}

	latest, err := a.readings.LatestObserved(ctx, placeID)
	if err != nil {
		return nil, fmt.Errorf("load latest reading: %w", err)
	}
	if a.fresh(latest) {
		metrics.FreshnessHits.Inc()
		return latest, nil
	}

	v, err, _ := a.group.Do(placeID, func() (interface{}, error) {
		// Re-check after acquiring the flight: the previous holder may have
		// just written a fresh reading.
		latest, err := a.readings.LatestObserved(ctx, placeID)
		if err != nil {
			return nil, fmt.Errorf("load latest reading: %w", err)
		}
		if a.fresh(latest) {
			metrics.FreshnessHits.Inc()
			return latest, nil
		}
		return a.compute(ctx, *place)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.CrowdReading), nil
}

// Refresh recomputes unconditionally; used by the scheduler to keep the
// cache warm.
func (a *Aggregator) Refresh(ctx context.Context, placeID string) (*models.CrowdReading, error) {
	place, err := a.lookup(ctx, placeID)
	if err != nil {
		return nil, err
	}
	return a.compute(ctx, *place)
}

// RefreshAll walks every active scored place sequentially, recomputing each.
// One failing place is logged and skipped; the batch never aborts. Returns
// (refreshed, failed) counts.
func (a *Aggregator) RefreshAll(ctx context.Context) (int, int) {
	start := a.now()
	defer func() {
		metrics.RefreshCycleDuration.Observe(time.Since(start).Seconds())
	}()

	places, err := a.places.ListScored(ctx, models.PlaceFilter{})
	if err != nil {
		log.Error().Err(err).Msg("refresh cycle: listing places failed")
		return 0, 0
	}

	var refreshed, failed int
	for _, place := range places {
		if ctx.Err() != nil {
			break
		}
		if _, err := a.compute(ctx, place); err != nil {
			failed++
			metrics.RefreshPlaces.WithLabelValues("failed").Inc()
			log.Warn().Err(err).Str("place_id", place.ID).Msg("refresh cycle: place failed")
			continue
		}
		refreshed++
		metrics.RefreshPlaces.WithLabelValues("ok").Inc()
	}

	log.Info().
		Int("refreshed", refreshed).
		Int("failed", failed).
		Dur("took", time.Since(start)).
		Msg("refresh cycle completed")
	return refreshed, failed
}

func (a *Aggregator) lookup(ctx context.Context, placeID string) (*models.Place, error) {
	place, err := a.places.Get(ctx, placeID)
	if err != nil {
		return nil, fmt.Errorf("load place: %w", err)
	}
	if place == nil || !place.Active {
		return nil, ErrPlaceNotFound
	}
	return place, nil
}

func (a *Aggregator) fresh(reading *models.CrowdReading) bool {
	return reading != nil && a.now().Sub(reading.RecordedAt) < FreshnessWindow
}

// compute runs one fan-out round, scores it and persists the reading plus
// the ambient weather snapshot. All values in the stored reading come from
// this single round.
func (a *Aggregator) compute(ctx context.Context, place models.Place) (*models.CrowdReading, error) {
	set := signals.CollectAll(ctx, place, a.collectors, FanoutTimeout)
	index, level := crowd.ComputeIndex(set.Signals)
	now := a.now().UTC()

	reading := &models.CrowdReading{
		ID:            uuid.NewString(),
		PlaceID:       place.ID,
		CrowdIndex:    index,
		CrowdLevel:    string(level),
		LiveScore:     set.Signals.Live,
		HistoricScore: set.Signals.Historic,
		WeatherScore:  set.Signals.Weather,
		EventScore:    set.Signals.Event,
		SensorScore:   set.Signals.Sensor,
		SocialScore:   set.Signals.Social,
		ActiveEvents:  set.EventNames,
		IsPrediction:  false,
		RecordedAt:    now,
	}
	if set.Weather != nil {
		reading.TempC = &set.Weather.TempC
		reading.PrecipMM = &set.Weather.PrecipMM
		reading.WindSpeedKMH = &set.Weather.WindSpeedKMH
		reading.WeatherCondition = &set.Weather.Condition
	}

	if err := a.readings.Insert(ctx, reading); err != nil {
		return nil, fmt.Errorf("persist reading: %w", err)
	}
	metrics.ReadingsStored.Inc()

	if set.Weather != nil {
		snapshot := &models.WeatherSnapshot{
			ID:            uuid.NewString(),
			PlaceID:       place.ID,
			TempC:         set.Weather.TempC,
			FeelsLikeC:    set.Weather.FeelsLikeC,
			Humidity:      set.Weather.Humidity,
			WindSpeedKMH:  set.Weather.WindSpeedKMH,
			CloudCoverPct: set.Weather.CloudCoverPct,
			PrecipMM:      set.Weather.PrecipMM,
			Condition:     set.Weather.Condition,
			Icon:          set.Weather.Icon,
			RecordedAt:    now,
		}
		// The reading is already stored; a lost weather snapshot only thins
		// future pattern learning.
		if err := a.readings.InsertWeatherSnapshot(ctx, snapshot); err != nil {
			log.Warn().Err(err).Str("place_id", place.ID).Msg("weather snapshot insert failed")
		}
	}

	return reading, nil
}
