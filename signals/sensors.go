package signals

import (
	"context"
	"time"

	"crowd-intelligence-api/metrics"
	"crowd-intelligence-api/models"

	"github.com/rs/zerolog/log"
)

// SensorRecencyWindow bounds how old a sensor reading may be to count as
// ground truth.
const SensorRecencyWindow = 5 * time.Minute

// SensorStore is the slice of the device registry this collector needs.
type SensorStore interface {
	SensorsFor(ctx context.Context, placeID string) ([]models.Sensor, error)
	RecentReadings(ctx context.Context, sensorID string, since time.Time) ([]models.SensorReading, error)
}

// SensorCollector averages occupancy across active sensors with a fresh
// reading. With no fresh readings the signal is absent, never zero: an idle
// sensor must not pretend the place is empty.
type SensorCollector struct {
	sensors SensorStore
	timeout time.Duration
	now     func() time.Time
}

func NewSensorCollector(sensors SensorStore) *SensorCollector {
	return &SensorCollector{sensors: sensors, timeout: DefaultTimeout, now: time.Now}
}

func (c *SensorCollector) Signal() Signal { return SignalSensor }

func (c *SensorCollector) Collect(ctx context.Context, place models.Place) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	sensors, err := c.sensors.SensorsFor(ctx, place.ID)
	if err != nil {
		metrics.CollectorFallbacks.WithLabelValues(string(c.Signal())).Inc()
		log.Warn().Err(err).Str("place_id", place.ID).Msg("sensor store unavailable, signal absent")
		return c.Fallback()
	}

	cutoff := c.now().Add(-SensorRecencyWindow)
	var sum float64
	var counted int

	for _, s := range sensors {
		if !s.Active || s.Capacity <= 0 {
			continue
		}
		readings, err := c.sensors.RecentReadings(ctx, s.ID, cutoff)
		if err != nil || len(readings) == 0 {
			continue
		}
		// Latest reading wins per sensor.
		latest := readings[0]
		for _, r := range readings[1:] {
			if r.RecordedAt.After(latest.RecordedAt) {
				latest = r
			}
		}
		occupancy := float64(latest.Count) / float64(s.Capacity) * 100
		sum += clampScore(occupancy)
		counted++
	}

	if counted == 0 {
		return c.Fallback()
	}

	return Result{
		Signal: c.Signal(),
		Score:  score(sum / float64(counted)),
	}
}

// Fallback marks the sensor signal absent; the calculator excludes it from
// the weighting entirely.
func (c *SensorCollector) Fallback() Result {
	return Result{Signal: c.Signal()}
}
