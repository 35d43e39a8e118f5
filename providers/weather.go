package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"crowd-intelligence-api/config"

	gobreaker "github.com/sony/gobreaker/v2"
)

// WeatherClient talks to the weather API over HTTP.
type WeatherClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[any]
}

func NewWeatherClient(cfg config.ProviderConfig) *WeatherClient {
	return &WeatherClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    newHTTPClient(cfg),
		cb:      newBreaker("weather-api"),
	}
}

func (c *WeatherClient) Current(ctx context.Context, lat, lng float64, category string) (*WeatherSnapshot, error) {
	result, err := c.cb.Execute(func() (any, error) {
		var out WeatherSnapshot
		if err := getJSON(ctx, c.http, c.endpoint("current", lat, lng, category), &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("weather current: %w", err)
	}
	return result.(*WeatherSnapshot), nil
}

func (c *WeatherClient) Forecast(ctx context.Context, lat, lng float64, category string) ([]WeatherSnapshot, error) {
	result, err := c.cb.Execute(func() (any, error) {
		var out struct {
			Buckets []WeatherSnapshot `json:"buckets"`
		}
		if err := getJSON(ctx, c.http, c.endpoint("forecast", lat, lng, category), &out); err != nil {
			return nil, err
		}
		return out.Buckets, nil
	})
	if err != nil {
		return nil, fmt.Errorf("weather forecast: %w", err)
	}
	return result.([]WeatherSnapshot), nil
}

func (c *WeatherClient) endpoint(path string, lat, lng float64, category string) string {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("lng", strconv.FormatFloat(lng, 'f', 6, 64))
	q.Set("category", category)
	q.Set("key", c.apiKey)
	return fmt.Sprintf("%s/%s?%s", c.baseURL, path, q.Encode())
}
