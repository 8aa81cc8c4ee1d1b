package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for error budget tracking.
var (
	esiErrorsRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "esi_errors_remaining",
		Help: "Number of errors remaining in current ESI rate limit window",
	})

	esiRateLimitBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "esi_rate_limit_blocks_total",
		Help: "Total number of request batches blocked due to critical error limit",
	})

	esiRateLimitThrottlesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "esi_rate_limit_throttles_total",
		Help: "Total number of request batches throttled due to warning error limit",
	})
)

// Tracker holds the error budget state for this process. All pipeline
// invocations share one tracker; access is mutex guarded.
type Tracker struct {
	mu     sync.Mutex
	state  State
	logger zerolog.Logger

	// throttleDelay is the pause applied in the warning band.
	throttleDelay time.Duration
}

// NewTracker creates a tracker that assumes a healthy budget until the
// first ESI response headers arrive.
func NewTracker(logger zerolog.Logger) *Tracker {
	return &Tracker{
		state: State{
			ErrorsRemaining: 100,
			ResetAt:         time.Now().Add(60 * time.Second),
			LastUpdate:      time.Now(),
			IsHealthy:       true,
		},
		logger:        logger,
		throttleDelay: 1 * time.Second,
	}
}

// GetState returns a copy of the current error budget state.
func (t *Tracker) GetState() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// UpdateFromHeaders parses ESI error limit headers and updates the state.
// Responses without the headers (non-ESI upstreams) are ignored.
func (t *Tracker) UpdateFromHeaders(headers http.Header) error {
	remainStr := headers.Get("X-ESI-Error-Limit-Remain")
	if remainStr == "" {
		return nil
	}

	remain, err := strconv.Atoi(remainStr)
	if err != nil {
		return err
	}

	resetSeconds := 60
	if resetStr := headers.Get("X-ESI-Error-Limit-Reset"); resetStr != "" {
		if v, err := strconv.Atoi(resetStr); err == nil {
			resetSeconds = v
		}
	}

	now := time.Now()
	state := State{
		ErrorsRemaining: remain,
		ResetAt:         now.Add(time.Duration(resetSeconds) * time.Second),
		LastUpdate:      now,
	}
	state.UpdateHealth()

	t.mu.Lock()
	t.state = state
	t.mu.Unlock()

	esiErrorsRemaining.Set(float64(remain))

	if state.NeedsCriticalBlock() {
		t.logger.Error().
			Int("errors_remaining", remain).
			Time("reset_at", state.ResetAt).
			Msg("ESI error limit CRITICAL - requests will be blocked")
	} else if state.NeedsThrottling() {
		t.logger.Warn().
			Int("errors_remaining", remain).
			Time("reset_at", state.ResetAt).
			Msg("ESI error limit WARNING - requests will be throttled")
	}

	return nil
}

// ShouldAllowRequest checks whether an ESI request batch may proceed.
// Returns false when the error budget is critical. In the warning band the
// call sleeps briefly to slow the request rate, then allows the batch.
func (t *Tracker) ShouldAllowRequest() bool {
	state := t.GetState()

	if state.NeedsCriticalBlock() {
		t.logger.Error().
			Int("errors_remaining", state.ErrorsRemaining).
			Dur("wait_duration", state.TimeUntilReset()).
			Msg("ESI error limit critical - blocking request")

		esiRateLimitBlocksTotal.Inc()
		return false
	}

	if state.NeedsThrottling() {
		t.logger.Warn().
			Int("errors_remaining", state.ErrorsRemaining).
			Msg("ESI error limit warning - throttling request")

		esiRateLimitThrottlesTotal.Inc()
		time.Sleep(t.throttleDelay)
	}

	return true
}
