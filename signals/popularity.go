package signals

import (
	"context"
	"time"

	"crowd-intelligence-api/metrics"
	"crowd-intelligence-api/models"
	"crowd-intelligence-api/providers"

	"github.com/rs/zerolog/log"
)

// NeutralPopularityScore is the degraded value for both the live and
// historic sub-scores when the popularity feed is unavailable.
const NeutralPopularityScore = 50

// PopularityCollector wraps the live-popularity feed. It contributes two
// sub-scores: the live busyness and the venue's historic baseline for this
// time slot.
type PopularityCollector struct {
	provider providers.PopularityProvider
	timeout  time.Duration
}

func NewPopularityCollector(provider providers.PopularityProvider) *PopularityCollector {
	return &PopularityCollector{provider: provider, timeout: DefaultTimeout}
}

func (c *PopularityCollector) Signal() Signal { return SignalPopularity }

func (c *PopularityCollector) Collect(ctx context.Context, place models.Place) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.provider.Popularity(ctx, place.Name, place.Lat, place.Lng)
	if err != nil {
		metrics.CollectorFallbacks.WithLabelValues(string(c.Signal())).Inc()
		log.Warn().Err(err).Str("place_id", place.ID).Msg("popularity feed unavailable, using neutral score")
		return c.Fallback()
	}

	return Result{
		Signal:   c.Signal(),
		Score:    score(clampScore(res.LiveScore)),
		Historic: score(clampScore(res.HistoricScore)),
	}
}

func (c *PopularityCollector) Fallback() Result {
	return Result{
		Signal:   c.Signal(),
		Score:    score(NeutralPopularityScore),
		Historic: score(NeutralPopularityScore),
		FellBack: true,
	}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
