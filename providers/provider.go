// Package providers holds the outbound HTTP clients for the external data
// sources the signal collectors draw from. Every client enforces its own
// request timeout and sits behind a circuit breaker, so a misbehaving
// upstream degrades to collector fallbacks instead of stalling aggregation.
package providers

import (
	"context"
	"time"
)

// WeatherSnapshot is a normalized observation or forecast bucket.
type WeatherSnapshot struct {
	TempC         float64   `json:"temp_c"`
	FeelsLikeC    float64   `json:"feels_like_c"`
	Humidity      int       `json:"humidity"`
	WindSpeedKMH  float64   `json:"wind_speed_kmh"`
	CloudCoverPct float64   `json:"cloud_cover_pct"`
	PrecipMM      float64   `json:"precip_mm"`
	Condition     string    `json:"condition"`
	Icon          string    `json:"icon"`
	ObservedAt    time.Time `json:"observed_at"`
}

// WeatherProvider serves current conditions and a coarse multi-hour forecast.
// Forecast buckets cover 3 hours each, starting at midnight of the target day.
type WeatherProvider interface {
	Current(ctx context.Context, lat, lng float64, category string) (*WeatherSnapshot, error)
	Forecast(ctx context.Context, lat, lng float64, category string) ([]WeatherSnapshot, error)
}

// PopularityResult carries the live and historic busyness estimates for a
// venue as reported by the popularity feed.
type PopularityResult struct {
	LiveScore     float64 `json:"live_score"`
	HistoricScore float64 `json:"historic_score"`
}

type PopularityProvider interface {
	Popularity(ctx context.Context, name string, lat, lng float64) (*PopularityResult, error)
}

// TrendResult is the social-trend velocity signal for a venue.
type TrendResult struct {
	Score    float64 `json:"score"`
	Mentions int     `json:"mentions"`
}

type SocialProvider interface {
	Trends(ctx context.Context, name string, hashtags []string) (*TrendResult, error)
}
