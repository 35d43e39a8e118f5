package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"crowd-intelligence-api/config"

	gobreaker "github.com/sony/gobreaker/v2"
)

// SocialClient fetches trend velocity for a venue from the social listening
// service.
type SocialClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[any]
}

func NewSocialClient(cfg config.ProviderConfig) *SocialClient {
	return &SocialClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    newHTTPClient(cfg),
		cb:      newBreaker("social-api"),
	}
}

func (c *SocialClient) Trends(ctx context.Context, name string, hashtags []string) (*TrendResult, error) {
	q := url.Values{}
	q.Set("query", name)
	if len(hashtags) > 0 {
		q.Set("hashtags", strings.Join(hashtags, ","))
	}
	q.Set("key", c.apiKey)
	endpoint := fmt.Sprintf("%s/trends?%s", c.baseURL, q.Encode())

	result, err := c.cb.Execute(func() (any, error) {
		var out TrendResult
		if err := getJSON(ctx, c.http, endpoint, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("social trends: %w", err)
	}
	return result.(*TrendResult), nil
}
