package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_ActiveFilterCount(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  int
	}{
		{name: "cleared", query: Query{}, want: 0},
		{name: "search does not count", query: Query{Search: "mumbai"}, want: 0},
		{name: "min only", query: Query{MinPrice: Price(0)}, want: 1},
		{name: "both bounds", query: Query{MinPrice: Price(1), MaxPrice: Price(2)}, want: 2},
		{name: "amenities count each", query: Query{Amenities: []string{"Wifi", "AC", "Gym"}}, want: 3},
		{name: "non default sort", query: Query{Sort: SortNewest}, want: 1},
		{name: "everything", query: Query{Search: "x", MinPrice: Price(1), MaxPrice: Price(2), Amenities: []string{"Wifi"}, Sort: SortPriceLowHigh}, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.ActiveFilterCount())
		})
	}
}

func TestQuery_CountZeroOnlyWhenCleared(t *testing.T) {
	q := Query{Search: "kept"}
	assert.Equal(t, 0, q.ActiveFilterCount())
	assert.True(t, q.WithSearch("").Equal(q.Cleared()))

	q = q.WithSort(SortPriceHighLow).ToggleAmenity("AC")
	assert.NotZero(t, q.ActiveFilterCount())

	cleared := q.Cleared()
	assert.Zero(t, cleared.ActiveFilterCount())
	assert.Empty(t, cleared.Search)
	assert.False(t, cleared.ShowClear())
}

func TestQuery_ShowClear(t *testing.T) {
	assert.False(t, Query{}.ShowClear())
	assert.True(t, Query{Search: "a"}.ShowClear())
	assert.True(t, Query{Sort: SortNewest}.ShowClear())
}

func TestQuery_ToggleAmenityKeepsOrder(t *testing.T) {
	q := Query{}.ToggleAmenity("Wifi").ToggleAmenity("Gym").ToggleAmenity("AC")
	assert.Equal(t, []string{"Wifi", "Gym", "AC"}, q.Amenities)

	q2 := q.ToggleAmenity("Gym")
	assert.Equal(t, []string{"Wifi", "AC"}, q2.Amenities)
	assert.Equal(t, []string{"Wifi", "Gym", "AC"}, q.Amenities, "toggle must not alias the receiver")
}

func TestQuery_PriceBoundsAreCopied(t *testing.T) {
	p := Price(100)
	q := Query{}.WithMinPrice(p)
	*p = 999
	require.NotNil(t, q.MinPrice)
	assert.Equal(t, int64(100), *q.MinPrice)

	assert.Nil(t, q.WithMinPrice(nil).MinPrice)
}

func TestQuery_Validate(t *testing.T) {
	assert.NoError(t, Query{MinPrice: Price(0)}.Validate())
	assert.Error(t, Query{MinPrice: Price(-1)}.Validate())
	assert.Error(t, Query{MaxPrice: Price(-5)}.Validate())
	assert.Error(t, Query{Sort: SortOption(42)}.Validate())
}

func TestParseSortOption(t *testing.T) {
	for _, name := range SortOptionNames {
		opt, err := ParseSortOption(name)
		require.NoError(t, err)
		assert.Equal(t, name, opt.String())
	}

	opt, err := ParseSortOption("")
	require.NoError(t, err)
	assert.Equal(t, SortRelevance, opt)

	opt, err = ParseSortOption("price_low_high")
	require.NoError(t, err)
	assert.Equal(t, SortPriceLowHigh, opt)

	_, err = ParseSortOption("CHEAPEST")
	assert.Error(t, err)
}
