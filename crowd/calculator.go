// Package crowd implements the pure crowd index calculation: weighted signal
// blending, level bucketing and the presentation color map. Nothing in here
// touches the network or the database.
package crowd

import "math"

// Level is the discrete crowd bucket derived from the index.
type Level string

const (
	LevelQuiet    Level = "QUIET"
	LevelModerate Level = "MODERATE"
	LevelBusy     Level = "BUSY"
	LevelVeryBusy Level = "VERY_BUSY"
)

// Threshold maps the lowest index of a bucket to its level.
type Threshold struct {
	MinIndex int
	Level    Level
}

// LevelThresholds is the single source of truth for index→level bucketing.
// Entries are ordered by MinIndex ascending.
var LevelThresholds = []Threshold{
	{MinIndex: 0, Level: LevelQuiet},
	{MinIndex: 25, Level: LevelModerate},
	{MinIndex: 50, Level: LevelBusy},
	{MinIndex: 75, Level: LevelVeryBusy},
}

// LevelColors maps levels to hex colors for map display. Presentation only,
// not part of the scoring contract.
var LevelColors = map[Level]string{
	LevelQuiet:    "#2ecc71",
	LevelModerate: "#f1c40f",
	LevelBusy:     "#e67e22",
	LevelVeryBusy: "#e74c3c",
}

// LevelForIndex returns the level bucket for an index. Monotonic
// non-decreasing in the index.
func LevelForIndex(index int) Level {
	level := LevelThresholds[0].Level
	for _, t := range LevelThresholds {
		if index >= t.MinIndex {
			level = t.Level
		}
	}
	return level
}

// ColorForIndex is a convenience for heatmap points.
func ColorForIndex(index int) string {
	return LevelColors[LevelForIndex(index)]
}

// Signals is the typed record of per-source scores. A nil field means the
// signal was unavailable this round; missing signals are excluded from the
// weighting instead of being treated as zero crowd.
type Signals struct {
	Live     *float64
	Historic *float64
	Weather  *float64
	Event    *float64
	Social   *float64
	Sensor   *float64
}

// EstimateWeights are the relative weights of the non-sensor signals,
// renormalized over whichever signals are actually present.
var EstimateWeights = struct {
	Live     float64
	Historic float64
	Weather  float64
	Event    float64
	Social   float64
}{
	Live:     0.35,
	Historic: 0.15,
	Weather:  0.20,
	Event:    0.20,
	Social:   0.10,
}

const (
	// SensorWeight is how much sensor ground truth dominates the estimate
	// when both are available.
	SensorWeight = 0.65

	// NeutralIndex is returned when no signal at all is present.
	NeutralIndex = 50
)

// ComputeIndex blends the available signals into a crowd index in [0, 100]
// and its level. Sensor data, when present, dominates via a distinct branch;
// otherwise the estimate is the renormalized weighted mean of the present
// non-sensor signals.
func ComputeIndex(s Signals) (int, Level) {
	estimate, hasEstimate := weightedEstimate(s)

	var value float64
	switch {
	case s.Sensor != nil && hasEstimate:
		value = SensorWeight*(*s.Sensor) + (1-SensorWeight)*estimate
	case s.Sensor != nil:
		value = *s.Sensor
	case hasEstimate:
		value = estimate
	default:
		value = NeutralIndex
	}

	index := int(math.Round(clamp(value)))
	return index, LevelForIndex(index)
}

func weightedEstimate(s Signals) (float64, bool) {
	var sum, weights float64

	add := func(score *float64, weight float64) {
		if score == nil {
			return
		}
		sum += clamp(*score) * weight
		weights += weight
	}

	add(s.Live, EstimateWeights.Live)
	add(s.Historic, EstimateWeights.Historic)
	add(s.Weather, EstimateWeights.Weather)
	add(s.Event, EstimateWeights.Event)
	add(s.Social, EstimateWeights.Social)

	if weights == 0 {
		return 0, false
	}
	return sum / weights, true
}

func clamp(v float64) float64 {
	return math.Max(0.0, math.Min(100.0, v))
}
