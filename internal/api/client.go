package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"weekendly/internal/domain/activity"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 4 << 20
)

// ResponseCache stores raw catalog responses keyed by endpoint and params.
type ResponseCache interface {
	CacheAPIResponse(ctx context.Context, endpoint string, params map[string]string, payload []byte, ttl time.Duration) error
	CachedAPIResponse(ctx context.Context, endpoint string, params map[string]string) ([]byte, error)
}

// Client fetches activity catalogs from the remote API. It implements
// activity.Fetcher and fills the API response cache on successful fetches.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      ResponseCache
	cacheTTL   time.Duration
	logger     *slog.Logger
}

// NewClient creates a catalog client. cache may be nil to disable response
// caching.
func NewClient(baseURL string, timeout time.Duration, cache ResponseCache, cacheTTL time.Duration, logger *slog.Logger) *Client {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	if cacheTTL == 0 {
		cacheTTL = activity.APISourceTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

type activitiesResponse struct {
	Activities []activity.Activity `json:"activities"`
}

// FetchActivities retrieves and normalizes a category's catalog. A live
// cached response for the same endpoint+params is served without a request.
func (c *Client) FetchActivities(ctx context.Context, category activity.Category) ([]activity.Activity, error) {
	const endpoint = "/activities"
	params := map[string]string{"category": string(category)}

	if c.cache != nil {
		if payload, err := c.cache.CachedAPIResponse(ctx, endpoint, params); err == nil {
			if acts, err := decodeActivities(payload); err == nil {
				return normalize(acts, category), nil
			}
		}
	}

	reqURL := fmt.Sprintf("%s%s?category=%s", c.baseURL, endpoint, url.QueryEscape(string(category)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog request failed: status %d", resp.StatusCode)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading catalog response: %w", err)
	}

	acts, err := decodeActivities(payload)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.CacheAPIResponse(ctx, endpoint, params, payload, c.cacheTTL); err != nil {
			c.logger.Warn("failed to cache catalog response", "category", category, "error", err)
		}
	}

	return normalize(acts, category), nil
}

func decodeActivities(payload []byte) ([]activity.Activity, error) {
	var resp activitiesResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("decoding catalog response: %w", err)
	}
	return resp.Activities, nil
}

// normalize drops malformed entries and pins the category the caller asked
// for, so shape drift in the remote catalog never reaches storage.
func normalize(acts []activity.Activity, category activity.Category) []activity.Activity {
	out := make([]activity.Activity, 0, len(acts))
	for _, a := range acts {
		if a.ID == "" || a.Name == "" || a.Duration <= 0 {
			continue
		}
		a.Category = category
		out = append(out, a)
	}
	return out
}

// Ping checks reachability of the catalog API. Used as the connectivity probe.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("building health request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("health check failed: status %d", resp.StatusCode)
	}
	return nil
}
