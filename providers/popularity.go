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

// PopularityClient fetches live/historic venue busyness from the popularity
// feed.
type PopularityClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[any]
}

func NewPopularityClient(cfg config.ProviderConfig) *PopularityClient {
	return &PopularityClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    newHTTPClient(cfg),
		cb:      newBreaker("popularity-api"),
	}
}

func (c *PopularityClient) Popularity(ctx context.Context, name string, lat, lng float64) (*PopularityResult, error) {
	q := url.Values{}
	q.Set("name", name)
	q.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("lng", strconv.FormatFloat(lng, 'f', 6, 64))
	q.Set("key", c.apiKey)
	endpoint := fmt.Sprintf("%s/popularity?%s", c.baseURL, q.Encode())

	result, err := c.cb.Execute(func() (any, error) {
		var out PopularityResult
		if err := getJSON(ctx, c.http, endpoint, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("popularity: %w", err)
	}
	return result.(*PopularityResult), nil
}
