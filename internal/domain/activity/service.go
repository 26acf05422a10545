package activity

import (
	"context"
	"log/slog"
	"sort"
)

const defaultSearchLimit = 20

// Service resolves activities for a category through the ordered tier chain:
// fresh memory cache, network, durable cache, bundled static data.
type Service struct {
	tiers   []tier
	mem     *memoryCache
	net     ConnectivityReporter
	catalog *StaticCatalog
	logger  *slog.Logger
}

// NewService creates a retrieval service. fetcher and store may be nil, in
// which case the corresponding tiers are omitted from the chain.
func NewService(fetcher Fetcher, store CacheStore, net ConnectivityReporter, catalog *StaticCatalog, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	mem := newMemoryCache(FreshnessWindow, nil)

	tiers := []tier{&memoryTier{mem: mem}}
	if fetcher != nil {
		tiers = append(tiers, &networkTier{
			fetcher: fetcher,
			net:     net,
			store:   store,
			mem:     mem,
			logger:  logger,
		})
	}
	if store != nil {
		tiers = append(tiers, &cacheTier{store: store, mem: mem, logger: logger})
	}
	tiers = append(tiers, &staticTier{catalog: catalog})

	return &Service{
		tiers:   tiers,
		mem:     mem,
		net:     net,
		catalog: catalog,
		logger:  logger,
	}
}

// Get resolves a category's activities, applying the optional substring filter
// and offset/limit paging. The static bundle guarantees a non-error result.
func (s *Service) Get(ctx context.Context, category Category, opts QueryOptions) (Result, error) {
	if !category.Valid() {
		return Result{}, ErrInvalidCategory
	}

	var (
		acts     []Activity
		servedBy string
	)
	for _, t := range s.tiers {
		if opts.ForceRefresh && t.name() == "memory" {
			continue
		}
		fetched, err := t.fetch(ctx, category)
		if err != nil {
			s.logger.Debug("retrieval tier fell through",
				"tier", t.name(), "category", category, "error", err)
			continue
		}
		acts = fetched
		servedBy = t.name()
		break
	}

	filtered := acts
	if opts.SearchQuery != "" {
		filtered = nil
		for _, a := range acts {
			if matchesQuery(a, opts.SearchQuery) {
				filtered = append(filtered, a)
			}
		}
	}

	total := len(filtered)
	offset := opts.Offset
	if offset > total {
		offset = total
	}
	page := filtered[offset:]
	if opts.Limit > 0 && len(page) > opts.Limit {
		page = page[:opts.Limit]
	}

	offline := s.net != nil && !s.net.Online()
	return Result{
		Activities: page,
		Total:      total,
		HasMore:    offset+len(page) < total,
		FromCache:  servedBy == "memory" || servedBy == "cache",
		Offline:    offline,
	}, nil
}

// Search fans Get out across categories, ranks hits by weighted substring
// match, and truncates to the limit.
func (s *Service) Search(ctx context.Context, query string, opts SearchOptions) ([]Activity, error) {
	categories := opts.Categories
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	type scored struct {
		act   Activity
		score int
	}
	var hits []scored
	seen := make(map[string]bool)

	for _, category := range categories {
		res, err := s.Get(ctx, category, QueryOptions{SearchQuery: query})
		if err != nil {
			return nil, err
		}
		for _, a := range res.Activities {
			if seen[a.ID] {
				continue
			}
			seen[a.ID] = true
			hits = append(hits, scored{act: a, score: scoreActivity(a, query)})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > limit {
		hits = hits[:limit]
	}

	out := make([]Activity, len(hits))
	for i, h := range hits {
		out[i] = h.act
	}
	return out, nil
}

// PrefetchForOffline forces a refresh per category so the durable cache is
// warm before connectivity is lost. Per-category failures are logged and
// skipped; the remaining categories are still fetched.
func (s *Service) PrefetchForOffline(ctx context.Context, categories []Category) {
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	for _, category := range categories {
		if _, err := s.Get(ctx, category, QueryOptions{ForceRefresh: true}); err != nil {
			s.logger.Warn("prefetch failed", "category", category, "error", err)
		}
	}
}
