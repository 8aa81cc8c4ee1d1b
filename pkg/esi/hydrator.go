package esi

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultMaxConcurrency bounds parallel detail fetches within one batch.
const DefaultMaxConcurrency = 8

// Hydrator fetches killmail detail records for list-page batches and
// merges every success into the shared detail cache.
type Hydrator struct {
	client *Client
	cache  DetailCache
	limit  int
	logger zerolog.Logger
}

// NewHydrator creates a hydrator. maxConcurrency <= 0 selects the default.
func NewHydrator(client *Client, cache DetailCache, maxConcurrency int) *Hydrator {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	return &Hydrator{
		client: client,
		cache:  cache,
		limit:  maxConcurrency,
		logger: log.With().Str("component", "hydrator").Logger(),
	}
}

// fetchOutcome is the result of one detail fetch within a batch.
// Exactly one of ok / status / neither (silent miss) applies.
type fetchOutcome struct {
	id     int64
	detail Killmail
	ok     bool
	status int
}

// Hydrate fetches detail records for every ref not already cached. All
// fetches of a batch run concurrently, bounded by the configured limit,
// and are joined before any outcome is inspected. Individual failures are
// soft misses; a 429 or 420 from any fetch returns RateLimitedError after
// the successful subset has been merged into the cache, so already-paid
// requests are not wasted.
func (h *Hydrator) Hydrate(ctx context.Context, refs []KillRef) error {
	toFetch := make([]KillRef, 0, len(refs))
	for _, ref := range refs {
		if !h.cache.ContainsDetail(ctx, ref.ID) {
			toFetch = append(toFetch, ref)
		}
	}

	if len(toFetch) == 0 {
		return nil
	}

	if !h.client.allowBatch() {
		return &RateLimitedError{Status: 429}
	}

	h.logger.Info().
		Int("count", len(toFetch)).
		Int("cached", len(refs)-len(toFetch)).
		Msg("Hydrating kill details from ESI")

	outcomes := make([]fetchOutcome, len(toFetch))
	sem := make(chan struct{}, h.limit)
	var wg sync.WaitGroup

	for i, ref := range toFetch {
		wg.Add(1)
		go func(i int, ref KillRef) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			outcomes[i] = h.fetchOne(ctx, ref)
		}(i, ref)
	}
	wg.Wait()

	// The rate-limit scan runs over the full joined batch; merging still
	// happens so the successes of an aborted batch stay cached.
	rateLimited := 0
	for _, out := range outcomes {
		if isRateLimitStatus(out.status) {
			rateLimited = out.status
		} else if out.status >= 500 {
			h.logger.Warn().
				Int64("killmail_id", out.id).
				Int("status", out.status).
				Msg("ESI server error on detail fetch")
		}
	}

	merged := 0
	for _, out := range outcomes {
		if out.ok {
			h.cache.PutDetail(ctx, out.id, out.detail)
			merged++
		}
	}

	if rateLimited != 0 {
		h.logger.Error().
			Int("status", rateLimited).
			Int("merged", merged).
			Msg("ESI rate limit triggered, aborting fetch")
		return &RateLimitedError{Status: rateLimited}
	}

	h.logger.Debug().
		Int("merged", merged).
		Int("requested", len(toFetch)).
		Msg("Hydration batch complete")

	return nil
}

// fetchOne performs a single detail fetch and classifies the outcome.
// Network errors and unparseable bodies are silent misses.
func (h *Hydrator) fetchOne(ctx context.Context, ref KillRef) fetchOutcome {
	km, status, err := h.client.FetchKillmail(ctx, ref)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("killmail_id", ref.ID).
			Msg("Detail fetch failed")
		return fetchOutcome{id: ref.ID}
	}
	if status < 200 || status >= 300 {
		return fetchOutcome{id: ref.ID, status: status}
	}
	return fetchOutcome{id: ref.ID, detail: km, ok: true}
}
