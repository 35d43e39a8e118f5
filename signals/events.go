package signals

import (
	"context"
	"time"

	"crowd-intelligence-api/crowd"
	"crowd-intelligence-api/metrics"
	"crowd-intelligence-api/models"

	"github.com/rs/zerolog/log"
)

// EventStore is the slice of the marketplace event service this collector
// needs. Returns events overlapping [from, to].
type EventStore interface {
	ActiveEventsAt(ctx context.Context, placeID string, from, to time.Time) ([]models.Event, error)
}

// EventCollector scores scheduled events active right now. No events means a
// genuine zero, not an absent signal.
type EventCollector struct {
	events  EventStore
	timeout time.Duration
	now     func() time.Time
}

func NewEventCollector(events EventStore) *EventCollector {
	return &EventCollector{events: events, timeout: DefaultTimeout, now: time.Now}
}

func (c *EventCollector) Signal() Signal { return SignalEvent }

func (c *EventCollector) Collect(ctx context.Context, place models.Place) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	now := c.now()
	active, err := c.events.ActiveEventsAt(ctx, place.ID, now, now)
	if err != nil {
		metrics.CollectorFallbacks.WithLabelValues(string(c.Signal())).Inc()
		log.Warn().Err(err).Str("place_id", place.ID).Msg("event store unavailable, scoring zero events")
		return c.Fallback()
	}

	names := make([]string, 0, len(active))
	for _, e := range active {
		names = append(names, e.Name)
	}

	return Result{
		Signal:     c.Signal(),
		Score:      score(crowd.EventScore(len(active))),
		EventNames: names,
	}
}

func (c *EventCollector) Fallback() Result {
	return Result{
		Signal:   c.Signal(),
		Score:    score(0),
		FellBack: true,
	}
}
