package zkb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for zKillboard list requests.
var (
	zkbRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zkb_requests_total",
		Help: "Total zKillboard list requests by status",
	}, []string{"status"})

	zkbRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "zkb_request_duration_seconds",
		Help:    "zKillboard list request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	})
)

// ListError is returned when the zKillboard list endpoint answers with a
// non-success status. It aborts the whole fetch.
type ListError struct {
	Page   int
	Status int
}

func (e *ListError) Error() string {
	return fmt.Sprintf("zKillboard error on page %d: status %d", e.Page, e.Status)
}

// DefaultBaseURL is the production zKillboard API host.
const DefaultBaseURL = "https://zkillboard.com"

// Config holds the list client configuration.
type Config struct {
	// BaseURL of the zKillboard API (no trailing slash).
	BaseURL string

	// UserAgent header (zKillboard requires an identifying agent).
	UserAgent string

	// Timeout per list request.
	Timeout time.Duration
}

// Client fetches kill list pages from zKillboard.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     zerolog.Logger
}

// NewClient creates a zKillboard list client.
func NewClient(cfg Config) *Client {
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
		logger:     log.With().Str("component", "zkb-client").Logger(),
	}
}

// FetchPage fetches one list page (1-indexed) for the given entity.
// An empty slice with a nil error means the upstream has no more data.
func (c *Client) FetchPage(ctx context.Context, ref EntityRef, page int) ([]KillSummary, error) {
	url := fmt.Sprintf("%s/api/%s/%d/", c.baseURL, ref.APIParam(), ref.ID)
	if page > 1 {
		url = fmt.Sprintf("%s/api/%s/%d/page/%d/", c.baseURL, ref.APIParam(), ref.ID, page)
	}

	c.logger.Info().
		Int("page", page).
		Str("url", url).
		Msg("Fetching kill list page")

	start := time.Now()
	defer func() {
		zkbRequestDuration.Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create list request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		zkbRequestsTotal.WithLabelValues("network_error").Inc()
		return nil, fmt.Errorf("fetch page %d: %w", page, err)
	}
	defer resp.Body.Close()

	zkbRequestsTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ListError{Page: page, Status: resp.StatusCode}
	}

	var summaries []KillSummary
	if err := json.NewDecoder(resp.Body).Decode(&summaries); err != nil {
		return nil, fmt.Errorf("parse list page %d: %w", page, err)
	}

	return summaries, nil
}
