package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meraroom/meraroom-server/internal/catalog"
	"github.com/meraroom/meraroom-server/internal/domain"
)

func TestNewRoom_CoverImageFallback(t *testing.T) {
	r := NewRoom(domain.Room{ID: "42", Title: "Bare Room"}, false)

	assert.Equal(t, domain.PlaceholderImage("42"), r.CoverImage)
	assert.NotNil(t, r.Amenities)
	assert.NotNil(t, r.Images)
	assert.False(t, r.Saved)
}

func TestNewRoom_UsesFirstImage(t *testing.T) {
	r := NewRoom(domain.Room{ID: "1", Images: []string{"a.jpg", "b.jpg"}}, true)

	assert.Equal(t, "a.jpg", r.CoverImage)
	assert.True(t, r.Saved)
}

func TestNewSession(t *testing.T) {
	c := catalog.New(
		domain.Room{ID: "1", Title: "Sunny Studio", Price: 15000, Amenities: []string{"Wifi", "AC"}},
		domain.Room{ID: "2", Title: "Cozy 1BHK", Price: 22000, Amenities: []string{"Parking"}},
	)
	s := catalog.Reduce(catalog.NewState(c),
		catalog.ToggleSaved{RoomID: "2"},
		catalog.SetMinPrice{Price: catalog.Price(20000)},
		catalog.SelectRoom{Room: domain.Room{ID: "2", Title: "Cozy 1BHK", Price: 22000}},
	)

	got := NewSession("sess-1", 7, catalog.Derive(s))

	assert.Equal(t, "sess-1", got.ID)
	assert.Equal(t, uint64(7), got.Version)
	assert.Equal(t, "ROOM_DETAIL", got.Screen)
	assert.Equal(t, "light", got.Theme)
	assert.Equal(t, "RELEVANCE", got.Query.Sort)
	require.NotNil(t, got.Query.MinPrice)
	assert.Equal(t, int64(20000), *got.Query.MinPrice)
	assert.Empty(t, got.Query.Amenities)
	assert.NotNil(t, got.Query.Amenities)

	require.Len(t, got.Rooms, 1)
	assert.True(t, got.Rooms[0].Saved)
	require.Len(t, got.SavedRooms, 1)
	assert.Equal(t, "2", got.SavedRooms[0].ID)
	assert.Equal(t, 1, got.ActiveFilterCount)

	require.NotNil(t, got.SelectedRoom)
	assert.Equal(t, "2", got.SelectedRoom.ID)
	assert.True(t, got.SelectedRoom.Saved)
	assert.Equal(t, "2", got.Chat.RoomID)
	assert.NotNil(t, got.Chat.Messages)
	assert.Equal(t, 2, got.CatalogSize)
}
