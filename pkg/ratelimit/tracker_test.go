package ratelimit

import (
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestTracker() *Tracker {
	tr := NewTracker(zerolog.Nop())
	tr.throttleDelay = time.Millisecond
	return tr
}

func TestTrackerStartsHealthy(t *testing.T) {
	tr := newTestTracker()

	state := tr.GetState()
	if !state.IsHealthy {
		t.Error("new tracker not healthy")
	}
	if !tr.ShouldAllowRequest() {
		t.Error("new tracker blocks requests")
	}
}

func TestTrackerUpdateFromHeaders(t *testing.T) {
	tr := newTestTracker()

	headers := http.Header{}
	headers.Set("X-ESI-Error-Limit-Remain", "42")
	headers.Set("X-ESI-Error-Limit-Reset", "30")

	if err := tr.UpdateFromHeaders(headers); err != nil {
		t.Fatalf("UpdateFromHeaders: %v", err)
	}

	state := tr.GetState()
	if state.ErrorsRemaining != 42 {
		t.Errorf("ErrorsRemaining = %d, want 42", state.ErrorsRemaining)
	}
	if state.IsHealthy {
		t.Error("IsHealthy = true with 42 remaining")
	}
	if until := state.TimeUntilReset(); until > 30*time.Second {
		t.Errorf("TimeUntilReset() = %v, want <= 30s", until)
	}
}

func TestTrackerIgnoresMissingHeaders(t *testing.T) {
	tr := newTestTracker()

	if err := tr.UpdateFromHeaders(http.Header{}); err != nil {
		t.Fatalf("UpdateFromHeaders: %v", err)
	}

	if state := tr.GetState(); state.ErrorsRemaining != 100 {
		t.Errorf("ErrorsRemaining changed to %d on headerless response", state.ErrorsRemaining)
	}
}

func TestTrackerRejectsMalformedRemain(t *testing.T) {
	tr := newTestTracker()

	headers := http.Header{}
	headers.Set("X-ESI-Error-Limit-Remain", "not a number")

	if err := tr.UpdateFromHeaders(headers); err == nil {
		t.Error("UpdateFromHeaders accepted malformed header")
	}
}

func TestTrackerBlocksWhenCritical(t *testing.T) {
	tr := newTestTracker()

	headers := http.Header{}
	headers.Set("X-ESI-Error-Limit-Remain", "2")
	headers.Set("X-ESI-Error-Limit-Reset", "45")
	if err := tr.UpdateFromHeaders(headers); err != nil {
		t.Fatalf("UpdateFromHeaders: %v", err)
	}

	if tr.ShouldAllowRequest() {
		t.Error("request allowed with 2 errors remaining")
	}
}

func TestTrackerThrottlesInWarningBand(t *testing.T) {
	tr := newTestTracker()

	headers := http.Header{}
	headers.Set("X-ESI-Error-Limit-Remain", "10")
	if err := tr.UpdateFromHeaders(headers); err != nil {
		t.Fatalf("UpdateFromHeaders: %v", err)
	}

	// Throttled batches are still allowed, just delayed.
	if !tr.ShouldAllowRequest() {
		t.Error("request blocked in warning band")
	}
}
