// Package ratelimit tracks the ESI error budget and gates outgoing requests.
// It monitors the X-ESI-Error-Limit-Remain and X-ESI-Error-Limit-Reset
// headers to stop the pipeline before ESI starts rejecting the IP.
package ratelimit

import (
	"time"
)

// Thresholds for error budget decisions.
const (
	// ErrorThresholdCritical blocks all requests when errors remaining falls below this value.
	ErrorThresholdCritical = 5

	// ErrorThresholdWarning applies throttling when errors remaining falls below this value.
	ErrorThresholdWarning = 20

	// ErrorThresholdHealthy indicates normal operation.
	ErrorThresholdHealthy = 50
)

// State is the most recently observed ESI error budget.
type State struct {
	// ErrorsRemaining is the number of errors allowed before ESI blocks requests,
	// from the X-ESI-Error-Limit-Remain header.
	ErrorsRemaining int

	// ResetAt is when the error limit window resets, derived from the
	// X-ESI-Error-Limit-Reset header (seconds until reset).
	ResetAt time.Time

	// LastUpdate is when this state was last refreshed from headers.
	LastUpdate time.Time

	// IsHealthy is true when ErrorsRemaining >= ErrorThresholdHealthy.
	IsHealthy bool
}

// IsStale returns true if the state is older than maxAge.
func (s *State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// NeedsCriticalBlock returns true if requests should be blocked outright.
func (s *State) NeedsCriticalBlock() bool {
	return s.ErrorsRemaining < ErrorThresholdCritical
}

// NeedsThrottling returns true if requests should be slowed down.
func (s *State) NeedsThrottling() bool {
	return s.ErrorsRemaining < ErrorThresholdWarning && !s.NeedsCriticalBlock()
}

// TimeUntilReset returns the duration until the error limit resets.
// Returns 0 if the reset time has already passed.
func (s *State) TimeUntilReset() time.Duration {
	d := time.Until(s.ResetAt)
	if d < 0 {
		return 0
	}
	return d
}

// UpdateHealth recomputes IsHealthy from ErrorsRemaining.
func (s *State) UpdateHealth() {
	s.IsHealthy = s.ErrorsRemaining >= ErrorThresholdHealthy
}
