package activity

import "context"

// CacheStore is the durable activity cache consumed by the retrieval tiers.
type CacheStore interface {
	CacheActivities(ctx context.Context, acts []Activity, category Category, source Source) error
	CachedActivities(ctx context.Context, category Category) ([]Activity, error)
}

// Fetcher retrieves a category's catalog over the network.
type Fetcher interface {
	FetchActivities(ctx context.Context, category Category) ([]Activity, error)
}

// ConnectivityReporter reports current connectivity state.
type ConnectivityReporter interface {
	Online() bool
}
