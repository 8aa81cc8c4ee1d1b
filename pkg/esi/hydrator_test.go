package esi_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/evelooter/looter/internal/testutil"
	"github.com/evelooter/looter/pkg/cache"
	"github.com/evelooter/looter/pkg/esi"
)

func newTestClient(t *testing.T, baseURL string) *esi.Client {
	t.Helper()
	client, err := esi.NewClient(esi.Config{
		BaseURL:   baseURL,
		UserAgent: "looter-test/1.0 (test@example.com)",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestHydrate_MergesSuccesses(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()

	mock.SetResponse(testutil.KillmailPath(1, "aaa"), testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       testutil.KillmailJSON(1, "2026-08-20T12:00:00Z", 30000142, 90001, 98001, 587, 90002, 90003),
	})
	mock.SetResponse(testutil.KillmailPath(2, "bbb"), testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       testutil.KillmailJSON(2, "2026-08-21T08:30:00Z", 30000144, 90004, 98002, 670, 90002),
	})

	store := cache.NewMemoryStore()
	h := esi.NewHydrator(newTestClient(t, mock.URL()), store, 4)

	ctx := context.Background()
	refs := []esi.KillRef{{ID: 1, Hash: "aaa"}, {ID: 2, Hash: "bbb"}}
	if err := h.Hydrate(ctx, refs); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}

	km, ok := store.GetDetail(ctx, 1)
	if !ok {
		t.Fatal("detail 1 not cached")
	}
	if km.SolarSystemID != 30000142 {
		t.Errorf("SolarSystemID = %d", km.SolarSystemID)
	}
	if len(km.Attackers) != 2 {
		t.Errorf("attackers = %d, want 2", len(km.Attackers))
	}
	if !store.ContainsDetail(ctx, 2) {
		t.Error("detail 2 not cached")
	}
}

func TestHydrate_Idempotent(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()

	path := testutil.KillmailPath(1, "aaa")
	mock.SetResponse(path, testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       testutil.KillmailJSON(1, "2026-08-20T12:00:00Z", 30000142, 90001, 98001, 587),
	})

	store := cache.NewMemoryStore()
	h := esi.NewHydrator(newTestClient(t, mock.URL()), store, 4)

	ctx := context.Background()
	refs := []esi.KillRef{{ID: 1, Hash: "aaa"}}

	if err := h.Hydrate(ctx, refs); err != nil {
		t.Fatalf("first Hydrate: %v", err)
	}
	first, _ := store.GetDetail(ctx, 1)

	// The second pass must be served from the cache without a request.
	if err := h.Hydrate(ctx, refs); err != nil {
		t.Fatalf("second Hydrate: %v", err)
	}
	second, _ := store.GetDetail(ctx, 1)

	if mock.RequestCount(path) != 1 {
		t.Errorf("requests = %d, want 1", mock.RequestCount(path))
	}
	if first.KillmailTime != second.KillmailTime {
		t.Errorf("cached detail changed between passes")
	}
}

func TestHydrate_RateLimitAbortsButKeepsSuccesses(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()

	mock.SetResponse(testutil.KillmailPath(1, "aaa"), testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       testutil.KillmailJSON(1, "2026-08-20T12:00:00Z", 30000142, 90001, 98001, 587),
	})
	mock.SetResponse(testutil.KillmailPath(2, "bbb"), testutil.NewRateLimitResponse())

	store := cache.NewMemoryStore()
	h := esi.NewHydrator(newTestClient(t, mock.URL()), store, 4)

	ctx := context.Background()
	err := h.Hydrate(ctx, []esi.KillRef{{ID: 1, Hash: "aaa"}, {ID: 2, Hash: "bbb"}})

	var rl *esi.RateLimitedError
	if !errors.As(err, &rl) {
		t.Fatalf("error = %v, want RateLimitedError", err)
	}
	if rl.Status != http.StatusTooManyRequests {
		t.Errorf("Status = %d, want 429", rl.Status)
	}

	// The success obtained in the same batch must still be cached.
	if !store.ContainsDetail(ctx, 1) {
		t.Error("successful hydration from aborted batch was not cached")
	}
	if store.ContainsDetail(ctx, 2) {
		t.Error("rate-limited fetch must not be cached")
	}
}

func TestHydrate_Status420Aborts(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()

	mock.SetResponse(testutil.KillmailPath(1, "aaa"), testutil.MockResponse{
		StatusCode: 420,
		Body:       `{"error": "error limited"}`,
	})

	store := cache.NewMemoryStore()
	h := esi.NewHydrator(newTestClient(t, mock.URL()), store, 4)

	err := h.Hydrate(context.Background(), []esi.KillRef{{ID: 1, Hash: "aaa"}})

	var rl *esi.RateLimitedError
	if !errors.As(err, &rl) {
		t.Fatalf("error = %v, want RateLimitedError", err)
	}
	if rl.Status != 420 {
		t.Errorf("Status = %d, want 420", rl.Status)
	}
}

func TestHydrate_BadBodyIsSoftMiss(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()

	mock.SetResponse(testutil.KillmailPath(1, "aaa"), testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"killmail_time": 12345`,
	})

	store := cache.NewMemoryStore()
	h := esi.NewHydrator(newTestClient(t, mock.URL()), store, 4)

	if err := h.Hydrate(context.Background(), []esi.KillRef{{ID: 1, Hash: "aaa"}}); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if store.ContainsDetail(context.Background(), 1) {
		t.Error("unparseable detail must not be cached")
	}
}

func TestHydrate_ServerErrorIsSoftMiss(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()

	mock.SetResponse(testutil.KillmailPath(1, "aaa"), testutil.NewServerErrorResponse())
	mock.SetResponse(testutil.KillmailPath(2, "bbb"), testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       testutil.KillmailJSON(2, "2026-08-21T08:30:00Z", 30000144, 90004, 98002, 670),
	})

	store := cache.NewMemoryStore()
	h := esi.NewHydrator(newTestClient(t, mock.URL()), store, 4)

	ctx := context.Background()
	if err := h.Hydrate(ctx, []esi.KillRef{{ID: 1, Hash: "aaa"}, {ID: 2, Hash: "bbb"}}); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}

	if store.ContainsDetail(ctx, 1) {
		t.Error("failed fetch must not be cached")
	}
	if !store.ContainsDetail(ctx, 2) {
		t.Error("sibling success must be cached")
	}
}
