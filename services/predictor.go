package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"crowd-intelligence-api/crowd"
	"crowd-intelligence-api/metrics"
	"crowd-intelligence-api/models"
	"crowd-intelligence-api/providers"
	"crowd-intelligence-api/signals"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// ForecastStaleness is how long a generated batch is served before
	// regeneration.
	ForecastStaleness = time.Hour

	// HistoricalLookback is the rolling window the hourly pattern is learned
	// from.
	HistoricalLookback = 30 * 24 * time.Hour

	// NeutralHistorical stands in when no matching history exists for an
	// hour slot.
	NeutralHistorical = 50

	hoursPerDay = 24
)

// PredictionWeights blends the four forecast components.
var PredictionWeights = struct {
	Historical float64
	Weather    float64
	Event      float64
	Trend      float64
}{
	Historical: 0.5,
	Weather:    0.2,
	Event:      0.2,
	Trend:      0.1,
}

// ForecastStore persists forecast batches.
type ForecastStore interface {
	Batch(ctx context.Context, placeID string, date time.Time) ([]models.Forecast, error)
	ReplaceBatch(ctx context.Context, placeID string, date time.Time, rows []models.Forecast) error
}

// ForecastSummary accompanies a batch in API responses.
type ForecastSummary struct {
	BestHour    int       `json:"best_hour"`
	PeakHour    int       `json:"peak_hour"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Predictor builds the 24-hour forecast per place by blending historical
// hourly patterns, forecast weather, scheduled events and the time-of-day
// trend curve.
type Predictor struct {
	places    PlaceStore
	readings  ReadingStore
	forecasts ForecastStore
	events    signals.EventStore
	weather   providers.WeatherProvider
	now       func() time.Time
}

func NewPredictor(places PlaceStore, readings ReadingStore, forecasts ForecastStore, events signals.EventStore, weather providers.WeatherProvider) *Predictor {
	return &Predictor{
		places:    places,
		readings:  readings,
		forecasts: forecasts,
		events:    events,
		weather:   weather,
		now:       time.Now,
	}
}

// GetPredictions returns the 24 forecast rows for a place and date,
// regenerating them when missing, incomplete or older than the staleness
// window. On regeneration failure a previous complete batch stays servable.
func (p *Predictor) GetPredictions(ctx context.Context, placeID string, date time.Time) ([]models.Forecast, *ForecastSummary, error) {
	place, err := p.lookup(ctx, placeID)
	if err != nil {
		return nil, nil, err
	}
	date = forecastDate(date)

	existing, err := p.forecasts.Batch(ctx, placeID, date)
	if err != nil {
		return nil, nil, fmt.Errorf("load forecast batch: %w", err)
	}
	if len(existing) == hoursPerDay && p.now().Sub(existing[0].GeneratedAt) < ForecastStaleness {
		return existing, summarize(existing), nil
	}

	rows, err := p.generate(ctx, *place, date)
	if err == nil {
		err = p.forecasts.ReplaceBatch(ctx, placeID, date, rows)
	}
	if err != nil {
		metrics.ForecastBatches.WithLabelValues("failed").Inc()
		if len(existing) == hoursPerDay {
			// Stale regeneration failure: keep serving the previous batch.
			log.Warn().Err(err).Str("place_id", placeID).Msg("forecast regeneration failed, serving previous batch")
			return existing, summarize(existing), nil
		}
		return nil, nil, fmt.Errorf("generate forecast: %w", err)
	}

	metrics.ForecastBatches.WithLabelValues("ok").Inc()
	return rows, summarize(rows), nil
}

// Regenerate rebuilds a place's batch unconditionally; used by the daily
// scheduler job.
func (p *Predictor) Regenerate(ctx context.Context, placeID string, date time.Time) error {
	place, err := p.lookup(ctx, placeID)
	if err != nil {
		return err
	}
	date = forecastDate(date)

	rows, err := p.generate(ctx, *place, date)
	if err != nil {
		return err
	}
	return p.forecasts.ReplaceBatch(ctx, placeID, date, rows)
}

// RegenerateAll rebuilds forecasts for every active scored place. Per-place
// failures are logged and skipped. Returns (generated, failed) counts.
func (p *Predictor) RegenerateAll(ctx context.Context, date time.Time) (int, int) {
	places, err := p.places.ListScored(ctx, models.PlaceFilter{})
	if err != nil {
		log.Error().Err(err).Msg("forecast batch: listing places failed")
		return 0, 0
	}

	var generated, failed int
	for _, place := range places {
		if ctx.Err() != nil {
			break
		}
		if err := p.Regenerate(ctx, place.ID, date); err != nil {
			failed++
			metrics.ForecastBatches.WithLabelValues("failed").Inc()
			log.Warn().Err(err).Str("place_id", place.ID).Msg("forecast batch: place failed")
			continue
		}
		generated++
		metrics.ForecastBatches.WithLabelValues("ok").Inc()
	}

	log.Info().
		Int("generated", generated).
		Int("failed", failed).
		Str("date", date.Format("2006-01-02")).
		Msg("forecast batch completed")
	return generated, failed
}

func (p *Predictor) lookup(ctx context.Context, placeID string) (*models.Place, error) {
	place, err := p.places.Get(ctx, placeID)
	if err != nil {
		return nil, fmt.Errorf("load place: %w", err)
	}
	if place == nil || !place.Active {
		return nil, ErrPlaceNotFound
	}
	return place, nil
}

func (p *Predictor) generate(ctx context.Context, place models.Place, date time.Time) ([]models.Forecast, error) {
	// Forecast weather is best-effort: an unavailable provider degrades each
	// hour's weather component to the temperate baseline.
	buckets, err := p.weather.Forecast(ctx, place.Lat, place.Lng, place.Category)
	if err != nil {
		log.Warn().Err(err).Str("place_id", place.ID).Msg("forecast weather unavailable, using baseline")
		buckets = nil
	}

	generatedAt := p.now().UTC()
	since := generatedAt.Add(-HistoricalLookback)
	weekday := date.Weekday()

	rows := make([]models.Forecast, 0, hoursPerDay)
	bestHour := 0
	bestIndex := math.MaxInt

	for hour := 0; hour < hoursPerDay; hour++ {
		historical, samples, err := p.readings.HourlyAverage(ctx, place.ID, weekday, hour, since)
		if err != nil {
			return nil, fmt.Errorf("hourly average for hour %d: %w", hour, err)
		}
		if samples == 0 {
			historical = NeutralHistorical
		}

		weather := float64(crowd.NeutralWeatherScore)
		// 3-hour buckets: hour 0-2 -> bucket 0, 3-5 -> bucket 1, and so on.
		if bucket := hour / 3; bucket < len(buckets) {
			weather = crowd.WeatherScore(crowd.WeatherInput{
				TempC:         buckets[bucket].TempC,
				PrecipMM:      buckets[bucket].PrecipMM,
				WindSpeedKMH:  buckets[bucket].WindSpeedKMH,
				CloudCoverPct: buckets[bucket].CloudCoverPct,
			}, place.Category)
		}

		slotStart := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, time.UTC)
		slotEnd := slotStart.Add(time.Hour)
		eventScore := 0.0
		if active, err := p.events.ActiveEventsAt(ctx, place.ID, slotStart, slotEnd); err == nil {
			eventScore = crowd.EventScore(len(active))
		} else {
			log.Warn().Err(err).Str("place_id", place.ID).Int("hour", hour).Msg("event lookup failed, scoring zero events")
		}

		trend := crowd.TrendScore(hour, weekday)

		value := PredictionWeights.Historical*historical +
			PredictionWeights.Weather*weather +
			PredictionWeights.Event*eventScore +
			PredictionWeights.Trend*trend
		index := int(math.Round(math.Max(0, math.Min(100, value))))

		rows = append(rows, models.Forecast{
			ID:                  uuid.NewString(),
			PlaceID:             place.ID,
			TargetDate:          date,
			Hour:                hour,
			PredictedIndex:      index,
			PredictedLevel:      string(crowd.LevelForIndex(index)),
			Confidence:          confidenceFor(samples),
			HistoricalComponent: historical,
			WeatherComponent:    weather,
			EventComponent:      eventScore,
			TrendComponent:      trend,
			GeneratedAt:         generatedAt,
		})

		// First occurrence wins on ties.
		if index < bestIndex {
			bestIndex = index
			bestHour = hour
		}
	}

	rows[bestHour].IsBestHour = true
	return rows, nil
}

// confidenceFor scales with the historical sample count for the slot, capped
// well below certainty.
func confidenceFor(samples int) float64 {
	return math.Min(0.95, 0.35+0.02*float64(samples))
}

func summarize(rows []models.Forecast) *ForecastSummary {
	s := &ForecastSummary{GeneratedAt: rows[0].GeneratedAt}
	peak := -1
	for _, row := range rows {
		if row.IsBestHour {
			s.BestHour = row.Hour
		}
		if row.PredictedIndex > peak {
			peak = row.PredictedIndex
			s.PeakHour = row.Hour
		}
	}
	return s
}

func forecastDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
