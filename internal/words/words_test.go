package words

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoadsAllCategories(t *testing.T) {
	require.NoError(t, Init())

	for _, cat := range Categories() {
		list, ok := List(cat)
		require.True(t, ok, "category %q", cat)
		assert.NotEmpty(t, list, "category %q", cat)
		for _, w := range list {
			assert.GreaterOrEqual(t, utf8.RuneCountInString(w), minEntryLength, "word %q", w)
		}
	}
}

func TestListUnknownCategory(t *testing.T) {
	require.NoError(t, Init())
	_, ok := List("planets")
	assert.False(t, ok)
	assert.False(t, IsCategory("planets"))
	assert.True(t, IsCategory("cities"))
}

func TestStatsMatchesLists(t *testing.T) {
	require.NoError(t, Init())
	stats := Stats()
	for _, cat := range Categories() {
		list, _ := List(cat)
		assert.Equal(t, len(list), stats[cat], "category %q", cat)
	}
}

func TestFilterEntriesDropsJunk(t *testing.T) {
	got := filterEntries([]string{"Moscow", "", "a", "# comment", "Oslo"})
	assert.Equal(t, []string{"Moscow", "Oslo"}, got)
}
