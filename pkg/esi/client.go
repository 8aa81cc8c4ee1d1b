// Package esi provides the ESI side of the pipeline: killmail detail
// hydration and bulk name resolution, backed by the shared response cache.
package esi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/evelooter/looter/pkg/ratelimit"
)

// Prometheus metrics for ESI requests.
var (
	esiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "esi_requests_total",
		Help: "Total ESI requests by endpoint and status",
	}, []string{"endpoint", "status"})

	esiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "esi_request_duration_seconds",
		Help:    "ESI request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})
)

// DefaultBaseURL is the production ESI host (Tranquility).
const DefaultBaseURL = "https://esi.evetech.net"

// Config holds the ESI client configuration.
type Config struct {
	// BaseURL of the ESI API (no trailing slash).
	BaseURL string

	// UserAgent header (REQUIRED by ESI).
	// Format: "AppName/Version (contact@example.com)"
	UserAgent string

	// Timeout per request. The upstream has no SLA; 15s keeps a stuck
	// connection from stalling a whole hydration batch.
	Timeout time.Duration

	// Tracker gates requests on the shared ESI error budget. Optional.
	Tracker *ratelimit.Tracker
}

// Client is a thin ESI HTTP client used by the hydrator and resolver.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	tracker    *ratelimit.Tracker
	logger     zerolog.Logger
}

// NewClient creates an ESI client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		tracker:    cfg.Tracker,
		logger:     log.With().Str("component", "esi-client").Logger(),
	}, nil
}

// allowBatch consults the error budget tracker before a request batch.
func (c *Client) allowBatch() bool {
	if c.tracker == nil {
		return true
	}
	return c.tracker.ShouldAllowRequest()
}

// FetchKillmail fetches the detail record for one kill. On a non-2xx
// response the status code is returned with a zero Killmail and a nil
// error; the caller decides whether the status is fatal.
func (c *Client) FetchKillmail(ctx context.Context, ref KillRef) (Killmail, int, error) {
	url := fmt.Sprintf("%s/v1/killmails/%d/%s/?datasource=tranquility", c.baseURL, ref.ID, ref.Hash)

	start := time.Now()
	defer func() {
		esiRequestDuration.WithLabelValues("killmails").Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Killmail{}, 0, fmt.Errorf("create killmail request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		esiRequestsTotal.WithLabelValues("killmails", "network_error").Inc()
		return Killmail{}, 0, err
	}
	defer resp.Body.Close()

	c.updateTracker(resp.Header)
	esiRequestsTotal.WithLabelValues("killmails", fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Killmail{}, resp.StatusCode, nil
	}

	var km Killmail
	if err := json.NewDecoder(resp.Body).Decode(&km); err != nil {
		return Killmail{}, 0, fmt.Errorf("parse killmail %d: %w", ref.ID, err)
	}
	km.KillmailID = ref.ID

	return km, resp.StatusCode, nil
}

// PostNames resolves a chunk of entity IDs via the bulk names endpoint.
// The chunk must not exceed the upstream limit of 1000 IDs. Non-2xx
// statuses are returned to the caller rather than turned into errors.
func (c *Client) PostNames(ctx context.Context, ids []int64) ([]NameEntry, int, error) {
	url := fmt.Sprintf("%s/v1/universe/names/?datasource=tranquility", c.baseURL)

	start := time.Now()
	defer func() {
		esiRequestDuration.WithLabelValues("universe_names").Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(ids)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal name ids: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("create names request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		esiRequestsTotal.WithLabelValues("universe_names", "network_error").Inc()
		return nil, 0, err
	}
	defer resp.Body.Close()

	c.updateTracker(resp.Header)
	esiRequestsTotal.WithLabelValues("universe_names", fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, nil
	}

	var entries []NameEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, 0, fmt.Errorf("parse name entries: %w", err)
	}

	return entries, resp.StatusCode, nil
}

func (c *Client) updateTracker(headers http.Header) {
	if c.tracker == nil {
		return
	}
	if err := c.tracker.UpdateFromHeaders(headers); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to update error budget from headers")
	}
}
