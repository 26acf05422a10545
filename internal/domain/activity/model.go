package activity

import "time"

// Category classifies a catalog activity by mood/theme.
type Category string

const (
	CategoryAdventurous Category = "adventurous"
	CategoryRelaxing    Category = "relaxing"
	CategorySocial      Category = "social"
	CategoryCreative    Category = "creative"
	CategoryActive      Category = "active"
	CategoryFoodie      Category = "foodie"
)

// DefaultCategories is the category set used for search fan-out and prefetch.
var DefaultCategories = []Category{
	CategoryAdventurous,
	CategoryRelaxing,
	CategorySocial,
	CategoryCreative,
	CategoryActive,
	CategoryFoodie,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryAdventurous, CategoryRelaxing, CategorySocial,
		CategoryCreative, CategoryActive, CategoryFoodie:
		return true
	}
	return false
}

// CostTier represents the rough price band of an activity.
type CostTier string

const (
	CostFree   CostTier = "free"
	CostLow    CostTier = "low"
	CostMedium CostTier = "medium"
	CostHigh   CostTier = "high"
)

// Difficulty represents the effort level of an activity.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyModerate Difficulty = "moderate"
	DifficultyHard     Difficulty = "hard"
)

// Source tags where a cached catalog entry came from.
type Source string

const (
	SourceAPI   Source = "api"
	SourceLocal Source = "local"
)

// Cache TTLs per source. Network-sourced entries go stale quickly; the
// bundled/local set is long-lived.
const (
	APISourceTTL   = 24 * time.Hour
	LocalSourceTTL = 7 * 24 * time.Hour
)

// TTLForSource returns the cache lifetime for entries from the given source.
func TTLForSource(src Source) time.Duration {
	if src == SourceAPI {
		return APISourceTTL
	}
	return LocalSourceTTL
}

// Activity is a catalog item. Instances are immutable once created; stale
// copies are replaced or expired, never edited in place.
type Activity struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Category         Category   `json:"category"`
	Duration         int        `json:"duration"` // minutes, > 0
	Mood             string     `json:"mood"`
	Icon             string     `json:"icon"`
	Color            string     `json:"color"`
	Indoor           bool       `json:"indoor"`
	Cost             CostTier   `json:"cost"`
	Difficulty       Difficulty `json:"difficulty"`
	Tags             []string   `json:"tags,omitempty"`
	Location         *string    `json:"location,omitempty"`
	WeatherDependent bool       `json:"weather_dependent"`
}

// CachedActivity is an Activity as held by the durable cache, along with its
// provenance and expiry metadata.
type CachedActivity struct {
	Activity
	Source    Source    `json:"source"`
	CachedAt  time.Time `json:"cached_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
