package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/evelooter/looter/pkg/cache"
	"github.com/evelooter/looter/pkg/esi"
	"github.com/evelooter/looter/pkg/zkb"
)

// Config holds the pagination parameters of the fetcher.
type Config struct {
	// MaxPages is the hard cap on list pages per fetch.
	MaxPages int

	// PageDelay is the pause between list pages, per upstream pacing
	// expectations.
	PageDelay time.Duration
}

// DefaultConfig returns the pagination defaults.
func DefaultConfig() Config {
	return Config{
		MaxPages:  10,
		PageDelay: 200 * time.Millisecond,
	}
}

// Fetcher is the inbound surface of the pipeline. One Fetcher serves many
// concurrent invocations; the cache is the only state they share.
type Fetcher struct {
	list     *zkb.Client
	hydrator *esi.Hydrator
	resolver *esi.Resolver
	cache    cache.Store
	config   Config
	logger   zerolog.Logger
}

// NewFetcher wires the pipeline components together.
func NewFetcher(list *zkb.Client, hydrator *esi.Hydrator, resolver *esi.Resolver, store cache.Store, cfg Config) *Fetcher {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 10
	}
	return &Fetcher{
		list:     list,
		hydrator: hydrator,
		resolver: resolver,
		cache:    store,
		config:   cfg,
		logger:   log.With().Str("component", "pipeline").Logger(),
	}
}

// Fetch runs one full pipeline invocation: parse the link, page through
// the kill list hydrating each page, resolve names and assemble the
// output records. The cutoff only decides when pagination may stop; the
// hard time-window filter is the caller's concern.
func (f *Fetcher) Fetch(ctx context.Context, userLink string, cutoff time.Time) ([]Killmail, error) {
	ref, err := zkb.ParseLink(userLink)
	if err != nil {
		return nil, err
	}

	summaries, err := f.paginate(ctx, ref, cutoff)
	if err != nil {
		return nil, err
	}

	f.logger.Info().
		Int("total", len(summaries)).
		Msg("Kill list fetch complete")

	// Zero-value kills carry nothing to split, drop them before the
	// name-resolution pass so their participants are never looked up.
	worthwhile := summaries[:0:0]
	for _, s := range summaries {
		if s.ZKB.DroppedValue > 0 {
			worthwhile = append(worthwhile, s)
		}
	}

	details := f.cachedDetails(ctx, worthwhile)
	if err := f.resolver.Resolve(ctx, details); err != nil {
		return nil, err
	}

	return f.assemble(ctx, worthwhile), nil
}

// paginate drives the list fetch. Hydration runs inside the loop because
// the stopping rule needs the timestamps of the page just fetched: the
// upstream list is reverse-chronological, so once the oldest hydrated kill
// of a page predates the cutoff, no later page can be in range.
func (f *Fetcher) paginate(ctx context.Context, ref zkb.EntityRef, cutoff time.Time) ([]zkb.KillSummary, error) {
	var all []zkb.KillSummary

	for page := 1; page <= f.config.MaxPages; page++ {
		summaries, err := f.list.FetchPage(ctx, ref, page)
		if err != nil {
			return nil, err
		}
		if len(summaries) == 0 {
			f.logger.Info().Int("page", page).Msg("Empty page, stopping fetch")
			break
		}

		refs := make([]esi.KillRef, len(summaries))
		for i, s := range summaries {
			refs[i] = esi.KillRef{ID: s.KillmailID, Hash: s.ZKB.Hash}
		}
		if err := f.hydrator.Hydrate(ctx, refs); err != nil {
			return nil, err
		}

		oldest, resolved := f.oldestInBatch(ctx, summaries)

		// All summaries are kept regardless of the stop decision; the
		// cutoff is a stopping heuristic, not a filter.
		all = append(all, summaries...)

		if resolved && oldest.Before(cutoff) {
			f.logger.Info().
				Time("oldest", oldest).
				Time("cutoff", cutoff).
				Int("page", page).
				Msg("Reached kills older than cutoff, stopping fetch")
			break
		}

		if page < f.config.MaxPages && f.config.PageDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.config.PageDelay):
			}
		}
	}

	return all, nil
}

// oldestInBatch returns the minimum detail timestamp among the page's
// summaries whose detail is cached, and whether any were resolved at all.
func (f *Fetcher) oldestInBatch(ctx context.Context, summaries []zkb.KillSummary) (time.Time, bool) {
	oldest := time.Now().UTC()
	resolved := false

	for _, s := range summaries {
		km, ok := f.cache.GetDetail(ctx, s.KillmailID)
		if !ok {
			continue
		}
		resolved = true
		if t, err := km.Time(); err == nil && t.Before(oldest) {
			oldest = t
		}
	}

	return oldest, resolved
}

// cachedDetails returns the detail records present in the cache for the
// given summaries, in summary order.
func (f *Fetcher) cachedDetails(ctx context.Context, summaries []zkb.KillSummary) []esi.Killmail {
	details := make([]esi.Killmail, 0, len(summaries))
	for _, s := range summaries {
		if km, ok := f.cache.GetDetail(ctx, s.KillmailID); ok {
			details = append(details, km)
		}
	}
	return details
}
