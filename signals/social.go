package signals

import (
	"context"
	"time"

	"crowd-intelligence-api/metrics"
	"crowd-intelligence-api/models"
	"crowd-intelligence-api/providers"

	"github.com/rs/zerolog/log"
)

// SocialCollector scores trend velocity around a venue. Quiet social chatter
// is a real zero, so the fallback is 0 rather than absent.
type SocialCollector struct {
	provider providers.SocialProvider
	timeout  time.Duration
}

func NewSocialCollector(provider providers.SocialProvider) *SocialCollector {
	return &SocialCollector{provider: provider, timeout: DefaultTimeout}
}

func (c *SocialCollector) Signal() Signal { return SignalSocial }

func (c *SocialCollector) Collect(ctx context.Context, place models.Place) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.provider.Trends(ctx, place.Name, nil)
	if err != nil {
		metrics.CollectorFallbacks.WithLabelValues(string(c.Signal())).Inc()
		log.Warn().Err(err).Str("place_id", place.ID).Msg("social trends unavailable, scoring zero")
		return c.Fallback()
	}

	return Result{
		Signal: c.Signal(),
		Score:  score(clampScore(res.Score)),
	}
}

func (c *SocialCollector) Fallback() Result {
	return Result{
		Signal:   c.Signal(),
		Score:    score(0),
		FellBack: true,
	}
}
