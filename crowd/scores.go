package crowd

import (
	"math"
	"time"
)

const (
	// EventPoints is the contribution of one concurrently active event.
	EventPoints = 30

	// NeutralWeatherScore is the temperate-baseline fallback used when no
	// weather data is available.
	NeutralWeatherScore = 50
)

// EventScore converts a count of concurrently active events into a 0-100
// pressure score: each event adds EventPoints, capped at 100.
func EventScore(activeEvents int) float64 {
	if activeEvents <= 0 {
		return 0
	}
	return math.Min(100, float64(activeEvents)*EventPoints)
}

// WeatherInput carries the observation fields the score depends on.
type WeatherInput struct {
	TempC         float64
	PrecipMM      float64
	WindSpeedKMH  float64
	CloudCoverPct float64
}

// WeatherScore converts ambient weather into crowd pressure: pleasant weather
// pulls people out, rain and cold keep them home. Outdoor categories react
// more strongly in both directions.
func WeatherScore(w WeatherInput, category string) float64 {
	score := float64(NeutralWeatherScore)

	switch {
	case w.TempC >= 22 && w.TempC <= 30:
		score += 25
	case w.TempC >= 16 && w.TempC < 22:
		score += 10
	case w.TempC > 30:
		score += 5
	case w.TempC < 8:
		score -= 25
	default:
		score -= 10
	}

	if w.PrecipMM > 0 {
		score -= math.Min(40, w.PrecipMM*8)
	}
	if w.WindSpeedKMH > 30 {
		score -= 10
	}
	if w.CloudCoverPct > 75 {
		score -= 5
	}

	if outdoorCategory(category) {
		score = NeutralWeatherScore + (score-NeutralWeatherScore)*1.3
	}

	return clamp(score)
}

func outdoorCategory(category string) bool {
	switch category {
	case "beach", "park":
		return true
	}
	return false
}

// trendCurve is the fixed time-of-day baseline: midday and evening elevated,
// small hours near-empty.
var trendCurve = [24]float64{
	15, 15, 15, 15, 15, 15, // 00-05
	20, 40, 40, 40, 40, // 06-10
	70, 70, 70, 70, // 11-14
	50, 50, 50, 50, // 15-18
	75, 75, 75, 75, 75, // 19-23
}

// WeekendMultiplier scales the trend curve on Friday, Saturday and Sunday.
const WeekendMultiplier = 1.3

// TrendScore is the time-of-day/day-of-week baseline pressure for an hour,
// clamped to 100.
func TrendScore(hour int, weekday time.Weekday) float64 {
	if hour < 0 || hour > 23 {
		return 0
	}
	score := trendCurve[hour]
	if weekday == time.Friday || weekday == time.Saturday || weekday == time.Sunday {
		score *= WeekendMultiplier
	}
	return math.Min(100, score)
}
