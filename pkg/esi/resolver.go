package esi

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NameChunkSize is the upstream limit on IDs per bulk name lookup.
const NameChunkSize = 1000

// Resolver populates the name cache for every entity referenced by a set
// of hydrated killmails.
type Resolver struct {
	client *Client
	cache  NameCache
	logger zerolog.Logger
}

// NewResolver creates a name resolver.
func NewResolver(client *Client, cache NameCache) *Resolver {
	return &Resolver{
		client: client,
		cache:  cache,
		logger: log.With().Str("component", "name-resolver").Logger(),
	}
}

// Resolve collects every unresolved entity ID referenced by the given
// killmails and resolves them in chunks. Chunks run sequentially; a failed
// chunk is logged and skipped, the affected names simply stay unresolved.
// A 429 or 420 from any chunk aborts with RateLimitedError.
func (r *Resolver) Resolve(ctx context.Context, kills []Killmail) error {
	ids := r.unresolvedIDs(ctx, kills)
	if len(ids) == 0 {
		return nil
	}

	r.logger.Info().
		Int("count", len(ids)).
		Msg("Resolving entity names via ESI")

	for start := 0; start < len(ids); start += NameChunkSize {
		end := start + NameChunkSize
		if end > len(ids) {
			end = len(ids)
		}

		if !r.client.allowBatch() {
			return &RateLimitedError{Status: 429}
		}

		entries, status, err := r.client.PostNames(ctx, ids[start:end])
		if err != nil {
			r.logger.Error().Err(err).Msg("Failed to contact name resolution endpoint")
			continue
		}
		if isRateLimitStatus(status) {
			r.logger.Error().
				Int("status", status).
				Msg("ESI rate limit triggered during name resolution")
			return &RateLimitedError{Status: status}
		}
		if status < 200 || status >= 300 {
			r.logger.Warn().
				Int("status", status).
				Msg("Name resolution chunk failed")
			continue
		}

		for _, entry := range entries {
			r.cache.PutName(ctx, entry.ID, entry.Name)
		}
	}

	return nil
}

// unresolvedIDs scans the killmails for victim character, victim
// corporation, victim ship type, solar system and attacker character IDs
// that are not yet in the name cache.
func (r *Resolver) unresolvedIDs(ctx context.Context, kills []Killmail) []int64 {
	seen := make(map[int64]bool)
	var ids []int64

	add := func(id int64) {
		if id == 0 || seen[id] {
			return
		}
		seen[id] = true
		if !r.cache.ContainsName(ctx, id) {
			ids = append(ids, id)
		}
	}

	for _, km := range kills {
		add(km.Victim.CharacterID)
		add(km.Victim.CorporationID)
		add(km.Victim.ShipTypeID)
		add(km.SolarSystemID)
		for _, att := range km.Attackers {
			add(att.CharacterID)
		}
	}

	return ids
}
