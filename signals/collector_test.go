package signals

import (
	"context"
	"errors"
	"testing"
	"time"

	"crowd-intelligence-api/models"
	"crowd-intelligence-api/providers"
)

type stubCollector struct {
	signal   Signal
	result   Result
	fallback Result
	delay    time.Duration
}

func (s *stubCollector) Signal() Signal { return s.signal }

func (s *stubCollector) Collect(ctx context.Context, place models.Place) Result {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
		}
	}
	return s.result
}

func (s *stubCollector) Fallback() Result { return s.fallback }

func TestCollectAllJoinsAllSignals(t *testing.T) {
	collectors := []Collector{
		&stubCollector{
			signal: SignalPopularity,
			result: Result{Signal: SignalPopularity, Score: score(80), Historic: score(60)},
		},
		&stubCollector{
			signal: SignalWeather,
			result: Result{Signal: SignalWeather, Score: score(70)},
		},
		&stubCollector{
			signal: SignalEvent,
			result: Result{Signal: SignalEvent, Score: score(30), EventNames: []string{"Festival"}},
		},
		&stubCollector{
			signal: SignalSensor,
			result: Result{Signal: SignalSensor, Score: score(40)},
		},
		&stubCollector{
			signal: SignalSocial,
			result: Result{Signal: SignalSocial, Score: score(20)},
		},
	}

	set := CollectAll(context.Background(), testPlace(), collectors, time.Second)

	if set.Signals.Live == nil || *set.Signals.Live != 80 {
		t.Errorf("live = %v, want 80", set.Signals.Live)
	}
	if set.Signals.Historic == nil || *set.Signals.Historic != 60 {
		t.Errorf("historic = %v, want 60", set.Signals.Historic)
	}
	if set.Signals.Weather == nil || *set.Signals.Weather != 70 {
		t.Errorf("weather = %v, want 70", set.Signals.Weather)
	}
	if set.Signals.Event == nil || *set.Signals.Event != 30 {
		t.Errorf("event = %v, want 30", set.Signals.Event)
	}
	if set.Signals.Sensor == nil || *set.Signals.Sensor != 40 {
		t.Errorf("sensor = %v, want 40", set.Signals.Sensor)
	}
	if set.Signals.Social == nil || *set.Signals.Social != 20 {
		t.Errorf("social = %v, want 20", set.Signals.Social)
	}
	if len(set.EventNames) != 1 || set.EventNames[0] != "Festival" {
		t.Errorf("event names = %v, want [Festival]", set.EventNames)
	}
}

func TestCollectAllDeadlineAppliesFallback(t *testing.T) {
	collectors := []Collector{
		&stubCollector{
			signal: SignalWeather,
			result: Result{Signal: SignalWeather, Score: score(70)},
		},
		&stubCollector{
			signal:   SignalPopularity,
			delay:    time.Second,
			result:   Result{Signal: SignalPopularity, Score: score(99)},
			fallback: Result{Signal: SignalPopularity, Score: score(50), Historic: score(50), FellBack: true},
		},
	}

	set := CollectAll(context.Background(), testPlace(), collectors, 30*time.Millisecond)

	if set.Signals.Weather == nil || *set.Signals.Weather != 70 {
		t.Errorf("fast collector result lost: weather = %v", set.Signals.Weather)
	}
	if set.Signals.Live == nil || *set.Signals.Live != 50 {
		t.Errorf("slow collector should contribute its fallback: live = %v", set.Signals.Live)
	}
}

type fakePopularityProvider struct {
	res *providers.PopularityResult
	err error
}

func (f *fakePopularityProvider) Popularity(ctx context.Context, name string, lat, lng float64) (*providers.PopularityResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

func TestPopularityCollectorFallback(t *testing.T) {
	c := NewPopularityCollector(&fakePopularityProvider{err: errors.New("upstream 503")})
	res := c.Collect(context.Background(), testPlace())

	if res.Score == nil || *res.Score != NeutralPopularityScore {
		t.Errorf("score = %v, want neutral %d", res.Score, NeutralPopularityScore)
	}
	if res.Historic == nil || *res.Historic != NeutralPopularityScore {
		t.Errorf("historic = %v, want neutral %d", res.Historic, NeutralPopularityScore)
	}
	if !res.FellBack {
		t.Error("result should be marked as fallback")
	}
}

func TestPopularityCollectorClampsScores(t *testing.T) {
	c := NewPopularityCollector(&fakePopularityProvider{
		res: &providers.PopularityResult{LiveScore: 140, HistoricScore: -20},
	})
	res := c.Collect(context.Background(), testPlace())

	if res.Score == nil || *res.Score != 100 {
		t.Errorf("live = %v, want clamped 100", res.Score)
	}
	if res.Historic == nil || *res.Historic != 0 {
		t.Errorf("historic = %v, want clamped 0", res.Historic)
	}
}
