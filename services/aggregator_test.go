package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"crowd-intelligence-api/models"
	"crowd-intelligence-api/signals"
)

type memPlaces struct {
	byID map[string]*models.Place
	list []models.Place
	err  error
}

func (m *memPlaces) Get(ctx context.Context, id string) (*models.Place, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byID[id], nil
}

func (m *memPlaces) ListScored(ctx context.Context, filter models.PlaceFilter) ([]models.Place, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.list, nil
}

type memReadings struct {
	latest        map[string]*models.CrowdReading
	inserted      []*models.CrowdReading
	hourlyAvg     map[int]float64
	hourlySamples map[int]int
	hourlyCalls   int32
	failInsertFor map[string]bool
	hourlyErr     error
	latestErr     error
}

func newMemReadings() *memReadings {
	return &memReadings{
		latest:        make(map[string]*models.CrowdReading),
		hourlyAvg:     make(map[int]float64),
		hourlySamples: make(map[int]int),
		failInsertFor: make(map[string]bool),
	}
}

func (m *memReadings) Insert(ctx context.Context, reading *models.CrowdReading) error {
	if m.failInsertFor[reading.PlaceID] {
		return errors.New("insert failed")
	}
	m.inserted = append(m.inserted, reading)
	m.latest[reading.PlaceID] = reading
	return nil
}

func (m *memReadings) LatestObserved(ctx context.Context, placeID string) (*models.CrowdReading, error) {
	if m.latestErr != nil {
		return nil, m.latestErr
	}
	return m.latest[placeID], nil
}

func (m *memReadings) ListObserved(ctx context.Context, placeID string, limit int, before *time.Time) ([]models.CrowdReading, error) {
	return nil, nil
}

func (m *memReadings) HourlyAverage(ctx context.Context, placeID string, weekday time.Weekday, hour int, since time.Time) (float64, int, error) {
	atomic.AddInt32(&m.hourlyCalls, 1)
	if m.hourlyErr != nil {
		return 0, 0, m.hourlyErr
	}
	return m.hourlyAvg[hour], m.hourlySamples[hour], nil
}

func (m *memReadings) InsertWeatherSnapshot(ctx context.Context, snapshot *models.WeatherSnapshot) error {
	return nil
}

type countingCollector struct {
	signal signals.Signal
	value  float64
	calls  int32
}

func (c *countingCollector) Signal() signals.Signal { return c.signal }

func (c *countingCollector) Collect(ctx context.Context, place models.Place) signals.Result {
	atomic.AddInt32(&c.calls, 1)
	v := c.value
	return signals.Result{Signal: c.signal, Score: &v}
}

func (c *countingCollector) Fallback() signals.Result {
	v := c.value
	return signals.Result{Signal: c.signal, Score: &v, FellBack: true}
}

func activePlace(id string) *models.Place {
	return &models.Place{ID: id, Name: "Place " + id, Category: "cafe", Lat: 45.8, Lng: 16.0, Active: true}
}

func newTestAggregator(places *memPlaces, readings *memReadings, collectors []signals.Collector, now time.Time) *Aggregator {
	a := NewAggregator(places, readings, collectors)
	a.now = func() time.Time { return now }
	return a
}

func TestGetCurrentServesFreshReadingWithoutFanout(t *testing.T) {
	now := time.Now().UTC()
	places := &memPlaces{byID: map[string]*models.Place{"p1": activePlace("p1")}}
	readings := newMemReadings()
	readings.latest["p1"] = &models.CrowdReading{
		ID: "r1", PlaceID: "p1", CrowdIndex: 42, CrowdLevel: "MODERATE",
		RecordedAt: now.Add(-5 * time.Minute),
	}
	collector := &countingCollector{signal: signals.SignalPopularity, value: 90}
	agg := newTestAggregator(places, readings, []signals.Collector{collector}, now)

	got, err := agg.GetCurrent(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetCurrent: %v", err)
	}
	if got.ID != "r1" {
		t.Errorf("served reading %s, want cached r1", got.ID)
	}
	if n := atomic.LoadInt32(&collector.calls); n != 0 {
		t.Errorf("fresh reading triggered %d collector calls, want 0", n)
	}
	if len(readings.inserted) != 0 {
		t.Errorf("fresh reading caused %d inserts, want 0", len(readings.inserted))
	}
}

func TestGetCurrentRecomputesStaleReading(t *testing.T) {
	now := time.Now().UTC()
	places := &memPlaces{byID: map[string]*models.Place{"p1": activePlace("p1")}}
	readings := newMemReadings()
	readings.latest["p1"] = &models.CrowdReading{
		ID: "r1", PlaceID: "p1", CrowdIndex: 42, CrowdLevel: "MODERATE",
		RecordedAt: now.Add(-20 * time.Minute),
	}
	collector := &countingCollector{signal: signals.SignalPopularity, value: 90}
	agg := newTestAggregator(places, readings, []signals.Collector{collector}, now)

	got, err := agg.GetCurrent(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetCurrent: %v", err)
	}
	if got.ID == "r1" {
		t.Error("stale reading was served instead of recomputed")
	}
	if got.CrowdIndex != 90 {
		t.Errorf("crowd index = %d, want 90 from the live signal", got.CrowdIndex)
	}
	if len(readings.inserted) != 1 {
		t.Fatalf("recompute stored %d readings, want 1", len(readings.inserted))
	}

	// The stored reading is now fresh: a second call reuses it.
	again, err := agg.GetCurrent(context.Background(), "p1")
	if err != nil {
		t.Fatalf("second GetCurrent: %v", err)
	}
	if again.ID != got.ID {
		t.Error("second call within the freshness window recomputed again")
	}
	if n := atomic.LoadInt32(&collector.calls); n != 1 {
		t.Errorf("collector called %d times across both requests, want 1", n)
	}
}

func TestGetCurrentUnknownPlace(t *testing.T) {
	places := &memPlaces{byID: map[string]*models.Place{}}
	agg := newTestAggregator(places, newMemReadings(), nil, time.Now())

	if _, err := agg.GetCurrent(context.Background(), "nope"); !errors.Is(err, ErrPlaceNotFound) {
		t.Errorf("err = %v, want ErrPlaceNotFound", err)
	}
}

func TestGetCurrentInactivePlace(t *testing.T) {
	inactive := activePlace("p1")
	inactive.Active = false
	places := &memPlaces{byID: map[string]*models.Place{"p1": inactive}}
	agg := newTestAggregator(places, newMemReadings(), nil, time.Now())

	if _, err := agg.GetCurrent(context.Background(), "p1"); !errors.Is(err, ErrPlaceNotFound) {
		t.Errorf("err = %v, want ErrPlaceNotFound", err)
	}
}

func TestRefreshAllContinuesPastFailingPlace(t *testing.T) {
	now := time.Now().UTC()
	places := &memPlaces{
		list: []models.Place{*activePlace("a"), *activePlace("b"), *activePlace("c")},
	}
	readings := newMemReadings()
	readings.failInsertFor["b"] = true
	collector := &countingCollector{signal: signals.SignalPopularity, value: 55}
	agg := newTestAggregator(places, readings, []signals.Collector{collector}, now)

	refreshed, failed := agg.RefreshAll(context.Background())
	if refreshed != 2 || failed != 1 {
		t.Errorf("refreshed=%d failed=%d, want 2 and 1", refreshed, failed)
	}
	if readings.latest["a"] == nil || readings.latest["c"] == nil {
		t.Error("places a and c should still receive fresh readings")
	}
	if readings.latest["b"] != nil {
		t.Error("place b should have no stored reading")
	}
}

func TestRefreshStoresSignalBreakdown(t *testing.T) {
	now := time.Now().UTC()
	places := &memPlaces{byID: map[string]*models.Place{"p1": activePlace("p1")}}
	readings := newMemReadings()
	collectors := []signals.Collector{
		&countingCollector{signal: signals.SignalPopularity, value: 80},
		&countingCollector{signal: signals.SignalEvent, value: 30},
	}
	agg := newTestAggregator(places, readings, collectors, now)

	got, err := agg.Refresh(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got.LiveScore == nil || *got.LiveScore != 80 {
		t.Errorf("live score = %v, want 80", got.LiveScore)
	}
	if got.EventScore == nil || *got.EventScore != 30 {
		t.Errorf("event score = %v, want 30", got.EventScore)
	}
	if got.IsPrediction {
		t.Error("observed reading must not be flagged as prediction")
	}
	if got.RecordedAt != now.UTC() {
		t.Errorf("recorded at %v, want %v", got.RecordedAt, now.UTC())
	}
}
