// Package testutil provides configurable mock upstream servers for tests:
// a fake zKillboard list endpoint and a fake ESI detail/names endpoint.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior of one mocked endpoint path.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockUpstream is a configurable fake upstream HTTP server. One instance
// stands in for zKillboard or ESI depending on the paths registered.
type MockUpstream struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	requestCount map[string]int
}

// NewMockUpstream creates a mock upstream server. Unregistered paths
// answer 404.
func NewMockUpstream() *MockUpstream {
	mock := &MockUpstream{
		handlers:     make(map[string]http.HandlerFunc),
		requestCount: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount[r.URL.Path]++
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if !exists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		handler(w, r)
	}))

	return mock
}

// URL returns the mock server base URL.
func (m *MockUpstream) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockUpstream) Close() {
	m.server.Close()
}

// SetHandler registers a custom handler for a path.
func (m *MockUpstream) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse registers a static response for a path.
func (m *MockUpstream) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// RequestCount returns how many requests hit a path.
func (m *MockUpstream) RequestCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount[path]
}

// TotalRequests returns the number of requests across all paths.
func (m *MockUpstream) TotalRequests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, n := range m.requestCount {
		total += n
	}
	return total
}

// ListPath returns the zKillboard list path for an entity, page 1.
func ListPath(kindParam string, id int64) string {
	return fmt.Sprintf("/api/%s/%d/", kindParam, id)
}

// ListPagePath returns the zKillboard list path for a later page.
func ListPagePath(kindParam string, id int64, page int) string {
	return fmt.Sprintf("/api/%s/%d/page/%d/", kindParam, id, page)
}

// KillmailPath returns the ESI detail path for a kill.
func KillmailPath(id int64, hash string) string {
	return fmt.Sprintf("/v1/killmails/%d/%s/", id, hash)
}

// NamesPath is the ESI bulk name-resolution path.
const NamesPath = "/v1/universe/names/"

// SummaryJSON renders one zKillboard list entry.
func SummaryJSON(id int64, hash string, droppedValue float64) string {
	return fmt.Sprintf(`{"killmail_id": %d, "zkb": {"locationID": 0, "hash": %q, "fittedValue": 0, "droppedValue": %g, "destroyedValue": 0, "totalValue": %g}}`,
		id, hash, droppedValue, droppedValue)
}

// KillmailJSON renders an ESI killmail detail body with one victim and
// the given attacker character IDs.
func KillmailJSON(id int64, killTime string, systemID, victimCharID, victimCorpID, shipTypeID int64, attackerIDs ...int64) string {
	attackers := ""
	for i, aid := range attackerIDs {
		if i > 0 {
			attackers += ","
		}
		attackers += fmt.Sprintf(`{"character_id": %d, "corporation_id": 0, "final_blow": %t}`, aid, i == 0)
	}
	return fmt.Sprintf(`{"killmail_id": %d, "killmail_time": %q, "solar_system_id": %d, "victim": {"character_id": %d, "corporation_id": %d, "ship_type_id": %d}, "attackers": [%s]}`,
		id, killTime, systemID, victimCharID, victimCorpID, shipTypeID, attackers)
}

// NameEntryJSON renders one bulk name-resolution entry.
func NameEntryJSON(id int64, name, category string) string {
	return fmt.Sprintf(`{"id": %d, "name": %q, "category": %q}`, id, name, category)
}

// NewRateLimitResponse creates a 429 Too Many Requests response with
// healthy-enough budget headers so the tracker does not also trip.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": "Rate limit exceeded"}`,
		Headers: map[string]string{
			"X-ESI-Error-Limit-Remain": "50",
			"X-ESI-Error-Limit-Reset":  "30",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers: map[string]string{
			"X-ESI-Error-Limit-Remain": "95",
			"X-ESI-Error-Limit-Reset":  "60",
		},
	}
}
