package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleTagTwiceRestoresSelection(t *testing.T) {
	s := New()
	s.ToggleTag("go")
	before := s.Tags()

	s.ToggleTag("rust")
	s.ToggleTag("rust")

	assert.Equal(t, before, s.Tags())
	assert.True(t, s.Selected("go"))
	assert.False(t, s.Selected("rust"))
}

func TestKeyIgnoresTagOrder(t *testing.T) {
	a := New()
	a.ToggleTag("go")
	a.ToggleTag("rust")

	b := New()
	b.ToggleTag("rust")
	b.ToggleTag("go")

	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, []string{"go", "rust"}, a.Key().TagSlugs())
	assert.Equal(t, []string{"rust", "go"}, b.Tags())
}

func TestToggleTagIgnoresInvalidSlugs(t *testing.T) {
	s := New()
	empty := s.Key()

	s.ToggleTag("")
	s.ToggleTag("go,rust")

	assert.Empty(t, s.Tags())
	assert.False(t, s.Active())
	assert.Equal(t, empty, s.Key())

	s.ToggleTag("go")
	s.ToggleTag("rust")
	other := New()
	other.ToggleTag("go,rust")
	assert.NotEqual(t, s.Key(), other.Key())
}

func TestKeyChangesOnEveryField(t *testing.T) {
	s := New()
	base := s.Key()

	s.SetSearch("raft")
	afterSearch := s.Key()
	assert.NotEqual(t, base, afterSearch)

	s.SetSort(SortPopular)
	afterSort := s.Key()
	assert.NotEqual(t, afterSearch, afterSort)

	s.ToggleTag("go")
	assert.NotEqual(t, afterSort, s.Key())
}

func TestClearResetsToDefaults(t *testing.T) {
	s := New()
	s.ToggleTag("go")
	s.SetSearch("x")
	s.SetSort(SortTrending)
	require.True(t, s.Active())

	s.Clear()

	assert.Equal(t, Key{Sort: SortNewest}, s.Key())
	assert.False(t, s.Active())
	assert.Empty(t, s.Tags())
}

func TestParseSort(t *testing.T) {
	got, err := ParseSort("trending")
	require.NoError(t, err)
	assert.Equal(t, SortTrending, got)

	got, err = ParseSort("")
	require.NoError(t, err)
	assert.Equal(t, SortNewest, got)

	_, err = ParseSort("oldest")
	assert.Error(t, err)
}

func TestSortNextCycles(t *testing.T) {
	assert.Equal(t, SortPopular, SortNewest.Next())
	assert.Equal(t, SortTrending, SortPopular.Next())
	assert.Equal(t, SortNewest, SortTrending.Next())
}
