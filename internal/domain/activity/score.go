package activity

import "strings"

// Match weights for search ranking.
const (
	nameMatchScore        = 10
	descriptionMatchScore = 5
	tagMatchScore         = 3
)

// scoreActivity returns the relevance of a for query. Zero means no match.
func scoreActivity(a Activity, query string) int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}

	score := 0
	if strings.Contains(strings.ToLower(a.Name), q) {
		score += nameMatchScore
	}
	if strings.Contains(strings.ToLower(a.Description), q) {
		score += descriptionMatchScore
	}
	for _, tag := range a.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			score += tagMatchScore
		}
	}
	return score
}

// matchesQuery reports whether a matches the substring filter.
func matchesQuery(a Activity, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return scoreActivity(a, query) > 0
}
