package activity

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed data/activities.json
var staticData []byte

// StaticCatalog is the bundled fallback dataset. It is the base case of the
// retrieval chain: always available, never empty for a known category.
type StaticCatalog struct {
	activities []Activity
}

// NewStaticCatalog parses the bundled dataset.
func NewStaticCatalog() (*StaticCatalog, error) {
	var acts []Activity
	if err := json.Unmarshal(staticData, &acts); err != nil {
		return nil, fmt.Errorf("parsing bundled activities: %w", err)
	}
	return &StaticCatalog{activities: acts}, nil
}

// ForCategory returns the bundled activities for a category, or the whole
// set when category is empty.
func (c *StaticCatalog) ForCategory(category Category) []Activity {
	if category == "" {
		out := make([]Activity, len(c.activities))
		copy(out, c.activities)
		return out
	}
	var out []Activity
	for _, a := range c.activities {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// All returns every bundled activity.
func (c *StaticCatalog) All() []Activity {
	return c.ForCategory("")
}
