package activity

// QueryOptions provides paging and freshness options for Get.
type QueryOptions struct {
	Limit        int
	Offset       int
	ForceRefresh bool
	SearchQuery  string
}

// SearchOptions provides options for cross-category search.
type SearchOptions struct {
	Categories []Category
	Limit      int
}

// Result is a page of activities plus the flags callers need to render
// cache/offline state.
type Result struct {
	Activities []Activity `json:"activities"`
	Total      int        `json:"total"`
	HasMore    bool       `json:"has_more"`
	FromCache  bool       `json:"from_cache"`
	Offline    bool       `json:"offline"`
}
