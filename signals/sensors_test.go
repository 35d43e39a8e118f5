package signals

import (
	"context"
	"errors"
	"testing"
	"time"

	"crowd-intelligence-api/models"
)

type fakeSensorStore struct {
	sensors  []models.Sensor
	readings map[string][]models.SensorReading
	err      error
}

func (f *fakeSensorStore) SensorsFor(ctx context.Context, placeID string) ([]models.Sensor, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sensors, nil
}

func (f *fakeSensorStore) RecentReadings(ctx context.Context, sensorID string, since time.Time) ([]models.SensorReading, error) {
	var fresh []models.SensorReading
	for _, r := range f.readings[sensorID] {
		if !r.RecordedAt.Before(since) {
			fresh = append(fresh, r)
		}
	}
	return fresh, nil
}

func TestSensorCollectorAveragesFreshReadings(t *testing.T) {
	now := time.Now()
	store := &fakeSensorStore{
		sensors: []models.Sensor{
			{ID: "s1", Capacity: 100, Active: true},
			{ID: "s2", Capacity: 200, Active: true},
		},
		readings: map[string][]models.SensorReading{
			"s1": {{SensorID: "s1", Count: 50, RecordedAt: now.Add(-time.Minute)}},
			"s2": {{SensorID: "s2", Count: 100, RecordedAt: now.Add(-2 * time.Minute)}},
		},
	}
	c := NewSensorCollector(store)

	res := c.Collect(context.Background(), testPlace())
	if res.Score == nil {
		t.Fatal("expected sensor signal present")
	}
	// s1 at 50/100 and s2 at 100/200 both read 50% occupancy.
	if *res.Score != 50 {
		t.Errorf("score = %v, want 50", *res.Score)
	}
}

func TestSensorCollectorLatestReadingWins(t *testing.T) {
	now := time.Now()
	store := &fakeSensorStore{
		sensors: []models.Sensor{{ID: "s1", Capacity: 100, Active: true}},
		readings: map[string][]models.SensorReading{
			"s1": {
				{SensorID: "s1", Count: 10, RecordedAt: now.Add(-4 * time.Minute)},
				{SensorID: "s1", Count: 80, RecordedAt: now.Add(-time.Minute)},
			},
		},
	}
	c := NewSensorCollector(store)

	res := c.Collect(context.Background(), testPlace())
	if res.Score == nil || *res.Score != 80 {
		t.Errorf("score = %v, want 80 (latest reading)", res.Score)
	}
}

func TestSensorCollectorAbsentWithoutFreshReadings(t *testing.T) {
	store := &fakeSensorStore{
		sensors: []models.Sensor{{ID: "s1", Capacity: 100, Active: true}},
		readings: map[string][]models.SensorReading{
			"s1": {{SensorID: "s1", Count: 50, RecordedAt: time.Now().Add(-time.Hour)}},
		},
	}
	c := NewSensorCollector(store)

	res := c.Collect(context.Background(), testPlace())
	if res.Score != nil {
		t.Errorf("stale readings should yield an absent signal, got %v", *res.Score)
	}
}

func TestSensorCollectorSkipsInactiveAndZeroCapacity(t *testing.T) {
	now := time.Now()
	store := &fakeSensorStore{
		sensors: []models.Sensor{
			{ID: "s1", Capacity: 100, Active: false},
			{ID: "s2", Capacity: 0, Active: true},
			{ID: "s3", Capacity: 100, Active: true},
		},
		readings: map[string][]models.SensorReading{
			"s1": {{SensorID: "s1", Count: 100, RecordedAt: now}},
			"s2": {{SensorID: "s2", Count: 100, RecordedAt: now}},
			"s3": {{SensorID: "s3", Count: 25, RecordedAt: now}},
		},
	}
	c := NewSensorCollector(store)

	res := c.Collect(context.Background(), testPlace())
	if res.Score == nil || *res.Score != 25 {
		t.Errorf("score = %v, want 25 from the only eligible sensor", res.Score)
	}
}

func TestSensorCollectorAbsentOnStoreError(t *testing.T) {
	c := NewSensorCollector(&fakeSensorStore{err: errors.New("db down")})

	res := c.Collect(context.Background(), testPlace())
	if res.Score != nil {
		t.Error("store error should yield an absent signal, not a score")
	}
}

func TestSensorCollectorOccupancyClamped(t *testing.T) {
	store := &fakeSensorStore{
		sensors: []models.Sensor{{ID: "s1", Capacity: 100, Active: true}},
		readings: map[string][]models.SensorReading{
			"s1": {{SensorID: "s1", Count: 180, RecordedAt: time.Now()}},
		},
	}
	c := NewSensorCollector(store)

	res := c.Collect(context.Background(), testPlace())
	if res.Score == nil || *res.Score != 100 {
		t.Errorf("score = %v, want clamped 100", res.Score)
	}
}
