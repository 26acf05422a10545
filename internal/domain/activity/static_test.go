package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticCatalogLoads(t *testing.T) {
	catalog, err := NewStaticCatalog()
	require.NoError(t, err)

	all := catalog.All()
	require.NotEmpty(t, all)
	for _, act := range all {
		assert.NotEmpty(t, act.ID)
		assert.NotEmpty(t, act.Name)
		assert.Greater(t, act.Duration, 0, "activity %q needs a duration", act.Name)
		assert.True(t, act.Category.Valid(), "activity %q has unknown category %q", act.Name, act.Category)
	}
}

func TestStaticCatalogCoversEveryCategory(t *testing.T) {
	catalog, err := NewStaticCatalog()
	require.NoError(t, err)

	for _, category := range DefaultCategories {
		assert.NotEmpty(t, catalog.ForCategory(category), "no bundled activities for %s", category)
	}
	assert.Empty(t, catalog.ForCategory(Category("unknown")))
}
