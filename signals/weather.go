package signals

import (
	"context"
	"time"

	"crowd-intelligence-api/crowd"
	"crowd-intelligence-api/metrics"
	"crowd-intelligence-api/models"
	"crowd-intelligence-api/providers"

	"github.com/rs/zerolog/log"
)

// WeatherCollector converts current conditions into crowd pressure. On
// provider failure it degrades to the temperate baseline and reports no
// snapshot, so no bogus weather gets persisted.
type WeatherCollector struct {
	provider providers.WeatherProvider
	timeout  time.Duration
}

func NewWeatherCollector(provider providers.WeatherProvider) *WeatherCollector {
	return &WeatherCollector{provider: provider, timeout: DefaultTimeout}
}

func (c *WeatherCollector) Signal() Signal { return SignalWeather }

func (c *WeatherCollector) Collect(ctx context.Context, place models.Place) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	snap, err := c.provider.Current(ctx, place.Lat, place.Lng, place.Category)
	if err != nil {
		metrics.CollectorFallbacks.WithLabelValues(string(c.Signal())).Inc()
		log.Warn().Err(err).Str("place_id", place.ID).Msg("weather provider unavailable, using baseline")
		return c.Fallback()
	}

	value := crowd.WeatherScore(crowd.WeatherInput{
		TempC:         snap.TempC,
		PrecipMM:      snap.PrecipMM,
		WindSpeedKMH:  snap.WindSpeedKMH,
		CloudCoverPct: snap.CloudCoverPct,
	}, place.Category)

	return Result{
		Signal:  c.Signal(),
		Score:   score(value),
		Weather: snap,
	}
}

func (c *WeatherCollector) Fallback() Result {
	return Result{
		Signal:   c.Signal(),
		Score:    score(crowd.NeutralWeatherScore),
		FellBack: true,
	}
}
