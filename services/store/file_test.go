package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ymurakami/suumowatcher/internal/scraper"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func listing(url string, rent int) scraper.Listing {
	return scraper.Listing{
		ID:   scraper.ExtractListingID(url),
		Name: "テスト物件",
		Rent: rent,
		URL:  url,
	}
}

func TestLoadMissingPartitionIsEmpty(t *testing.T) {
	s := newTestFileStore(t)

	listings, err := s.Load("never-seen")
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestLoadCorruptPartitionIsEmpty(t *testing.T) {
	s := newTestFileStore(t)

	path := s.partitionPath("broken")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	listings, err := s.Load("broken")
	require.NoError(t, err)
	assert.Empty(t, listings)

	// The corrupt file is preserved for inspection, not deleted.
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}

func TestMergeAndLoadRoundtrip(t *testing.T) {
	s := newTestFileStore(t)

	a := listing("https://suumo.jp/chintai/jnc_000000000001/", 8)
	b := listing("https://suumo.jp/chintai/jnc_000000000002/", 9)

	require.NoError(t, s.Merge("Shibuya-1K", []scraper.Listing{a, b}))

	loaded, err := s.Load("Shibuya-1K")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, a.URL, loaded[0].URL)
	assert.Equal(t, b.URL, loaded[1].URL)
}

func TestMergeCollapsesDuplicateURLsLastSeenWins(t *testing.T) {
	s := newTestFileStore(t)

	old := listing("https://suumo.jp/chintai/jnc_000000000001/", 8)
	require.NoError(t, s.Merge("dup", []scraper.Listing{old}))

	updated := old
	updated.Rent = 9
	require.NoError(t, s.Merge("dup", []scraper.Listing{updated}))

	loaded, err := s.Load("dup")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, 9, loaded[0].Rent)
}

func TestMergeEmptySliceIsNoop(t *testing.T) {
	s := newTestFileStore(t)

	require.NoError(t, s.Merge("empty", nil))

	_, err := os.Stat(s.partitionPath("empty"))
	assert.True(t, os.IsNotExist(err))
}

func TestMergeLeavesNoTempFiles(t *testing.T) {
	s := newTestFileStore(t)

	require.NoError(t, s.Merge("tmpcheck", []scraper.Listing{
		listing("https://suumo.jp/chintai/jnc_000000000001/", 8),
	}))

	entries, err := os.ReadDir(s.basePath)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.Contains(e.Name(), ".tmp"), "leftover temp file: %s", e.Name())
	}
}

func TestPartitionIsolation(t *testing.T) {
	s := newTestFileStore(t)

	require.NoError(t, s.Merge("tokyo", []scraper.Listing{
		listing("https://suumo.jp/chintai/jnc_000000000001/", 8),
	}))
	require.NoError(t, s.Merge("osaka", []scraper.Listing{
		listing("https://suumo.jp/chintai/jnc_000000000002/", 6),
	}))

	tokyo, err := s.Load("tokyo")
	require.NoError(t, err)
	osaka, err := s.Load("osaka")
	require.NoError(t, err)

	require.Len(t, tokyo, 1)
	require.Len(t, osaka, 1)
	assert.NotEqual(t, tokyo[0].URL, osaka[0].URL)
}

func TestSanitizeName(t *testing.T) {
	s := newTestFileStore(t)

	require.NoError(t, s.Merge(`Shibuya/1K: "cheap"`, []scraper.Listing{
		listing("https://suumo.jp/chintai/jnc_000000000001/", 8),
	}))

	assert.Equal(t,
		filepath.Join(s.basePath, "Shibuya_1K___cheap_.json"),
		s.partitionPath(`Shibuya/1K: "cheap"`))

	loaded, err := s.Load(`Shibuya/1K: "cheap"`)
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}
