// Package scheduler drives the two background jobs: keeping current readings
// warm on a short interval and regenerating next-day forecasts once daily.
// Both reuse the same orchestration paths the request handlers use and both
// continue past per-place failures.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Refresher is the warm-cache side (the aggregator).
type Refresher interface {
	RefreshAll(ctx context.Context) (int, int)
}

// Forecaster is the daily prediction side (the predictor).
type Forecaster interface {
	RegenerateAll(ctx context.Context, date time.Time) (int, int)
}

type Scheduler struct {
	refresher       Refresher
	forecaster      Forecaster
	refreshInterval time.Duration
	forecastHour    int
	now             func() time.Time
}

func New(refresher Refresher, forecaster Forecaster, refreshInterval time.Duration, forecastHour int) *Scheduler {
	return &Scheduler{
		refresher:       refresher,
		forecaster:      forecaster,
		refreshInterval: refreshInterval,
		forecastHour:    forecastHour,
		now:             time.Now,
	}
}

// Run blocks until ctx is cancelled, driving both periodic jobs.
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.refreshLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		s.forecastLoop(ctx)
	}()
	wg.Wait()
}

func (s *Scheduler) refreshLoop(ctx context.Context) {
	log.Info().Dur("interval", s.refreshInterval).Msg("refresh loop running")

	// First cycle immediately so restarts don't leave the map cold.
	s.refresher.RefreshAll(ctx)

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.refresher.RefreshAll(ctx)
		case <-ctx.Done():
			log.Info().Msg("refresh loop shutting down")
			return
		}
	}
}

func (s *Scheduler) forecastLoop(ctx context.Context) {
	log.Info().Int("hour", s.forecastHour).Msg("daily forecast loop running")

	for {
		wait := time.Until(s.nextForecastRun())
		timer := time.NewTimer(wait)

		select {
		case <-timer.C:
			tomorrow := s.now().AddDate(0, 0, 1)
			s.forecaster.RegenerateAll(ctx, tomorrow)
		case <-ctx.Done():
			timer.Stop()
			log.Info().Msg("daily forecast loop shutting down")
			return
		}
	}
}

// nextForecastRun is the next occurrence of the configured local hour.
func (s *Scheduler) nextForecastRun() time.Time {
	now := s.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.forecastHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
