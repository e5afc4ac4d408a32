package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meraroom/meraroom-server/internal/domain"
	"github.com/meraroom/meraroom-server/internal/seed"
)

func setupTestIndex(t *testing.T) *SearchIndex {
	t.Helper()
	index, err := NewSearchIndex(Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	rooms, err := seed.Default()
	require.NoError(t, err)
	require.NoError(t, index.IndexRooms(context.Background(), rooms))
	return index
}

func hitIDs(r *SearchResult) []string {
	ids := make([]string, len(r.Hits))
	for i, h := range r.Hits {
		ids[i] = h.ID
	}
	return ids
}

func TestSearchIndex_DocumentCount(t *testing.T) {
	index := setupTestIndex(t)
	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestSearch_MatchAll(t *testing.T) {
	index := setupTestIndex(t)
	res, err := index.Search(context.Background(), SearchParams{})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), res.Total)
	assert.ElementsMatch(t, []string{"1", "2", "3"}, hitIDs(res))
}

func TestSearch_ByLocation(t *testing.T) {
	index := setupTestIndex(t)
	res, err := index.Search(context.Background(), SearchParams{Query: "Mumbai"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, "3", res.Hits[0].ID)
	assert.Equal(t, "Bandra West, Mumbai", res.Hits[0].Location)
	assert.Equal(t, int64(18000), res.Hits[0].Price)
}

func TestSearch_TitleStemmingAndFuzzy(t *testing.T) {
	index := setupTestIndex(t)

	res, err := index.Search(context.Background(), SearchParams{Query: "studios"})
	require.NoError(t, err)
	assert.Contains(t, hitIDs(res), "1")

	res, err = index.Search(context.Background(), SearchParams{Query: "stud1o"})
	require.NoError(t, err)
	assert.Contains(t, hitIDs(res), "1")
}

func TestSearch_DescriptionOnly(t *testing.T) {
	index := setupTestIndex(t)
	res, err := index.Search(context.Background(), SearchParams{Query: "balcony"})
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, hitIDs(res))
}

func TestSearch_AmenityAndPriceFilters(t *testing.T) {
	index := setupTestIndex(t)

	res, err := index.Search(context.Background(), SearchParams{Amenities: []string{"Wifi", "AC"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, hitIDs(res))

	lo, hi := int64(18000), int64(22000)
	res, err = index.Search(context.Background(), SearchParams{MinPrice: &lo, MaxPrice: &hi})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"2", "3"}, hitIDs(res))

	res, err = index.Search(context.Background(), SearchParams{Query: "Mumbai", MaxPrice: &lo, Amenities: []string{"Sea View"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, hitIDs(res))
}

func TestSearch_Limit(t *testing.T) {
	index := setupTestIndex(t)
	res, err := index.Search(context.Background(), SearchParams{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, res.Hits, 2)
	assert.Equal(t, uint64(3), res.Total)
}

func TestIndexRoom_Replaces(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.IndexRoom(ctx, &domain.Room{ID: "9", Title: "Penthouse", Location: "Juhu, Mumbai", Price: 90000}))
	require.NoError(t, index.IndexRoom(ctx, &domain.Room{ID: "9", Title: "Penthouse", Location: "Juhu, Mumbai", Price: 95000}))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)

	res, err := index.Search(ctx, SearchParams{Query: "penthouse"})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, int64(95000), res.Hits[0].Price)
}

func TestIndexRoom_CanceledContext(t *testing.T) {
	index := setupTestIndex(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, index.IndexRoom(ctx, &domain.Room{ID: "9"}))
}
