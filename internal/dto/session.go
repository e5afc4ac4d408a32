package dto

import (
	"slices"

	"github.com/meraroom/meraroom-server/internal/catalog"
	"github.com/meraroom/meraroom-server/internal/domain"
)

// Query is the client-facing query state.
type Query struct {
	Search    string   `json:"search"`
	MinPrice  *int64   `json:"min_price,omitempty"`
	MaxPrice  *int64   `json:"max_price,omitempty"`
	Amenities []string `json:"amenities"`
	Sort      string   `json:"sort"`
}

// Chat is the assistant conversation about the open room.
type Chat struct {
	RoomID   string                `json:"room_id,omitempty"`
	Messages []catalog.ChatMessage `json:"messages"`
	Pending  bool                  `json:"pending"`
}

// Draft is the post-room form's generated description.
type Draft struct {
	Description string `json:"description,omitempty"`
	Pending     bool   `json:"pending"`
}

// Session is everything a client needs to render one session's screen.
type Session struct {
	ID                string          `json:"id"`
	Version           uint64          `json:"version"`
	Screen            string          `json:"screen"`
	Theme             string          `json:"theme"`
	User              *domain.Profile `json:"user,omitempty"`
	Query             Query           `json:"query"`
	Rooms             []Room          `json:"rooms"`
	SavedRooms        []Room          `json:"saved_rooms"`
	SavedIDs          []string        `json:"saved_ids"`
	ActiveFilterCount int             `json:"active_filter_count"`
	ShowClearFilters  bool            `json:"show_clear_filters"`
	SelectedRoom      *Room           `json:"selected_room,omitempty"`
	Chat              Chat            `json:"chat"`
	Draft             Draft           `json:"draft"`
	CatalogSize       int             `json:"catalog_size"`
}

// NewSession converts a derived view.
func NewSession(id string, version uint64, v catalog.View) Session {
	s := Session{
		ID:      id,
		Version: version,
		Screen:  v.Screen.String(),
		Theme:   v.Theme.String(),
		User:    v.User,
		Query: Query{
			Search:    v.Query.Search,
			MinPrice:  v.Query.MinPrice,
			MaxPrice:  v.Query.MaxPrice,
			Amenities: nonNil(v.Query.Amenities),
			Sort:      v.Query.Sort.String(),
		},
		Rooms:             NewRooms(v.Visible, v.SavedIDs),
		SavedRooms:        NewRooms(v.Saved, v.SavedIDs),
		SavedIDs:          nonNil(v.SavedIDs),
		ActiveFilterCount: v.ActiveFilterCount,
		ShowClearFilters:  v.ShowClear,
		Chat: Chat{
			RoomID:   v.Chat.RoomID,
			Messages: nonNil(v.Chat.Messages),
			Pending:  v.Chat.Asking(),
		},
		Draft: Draft{
			Description: v.Draft.Description,
			Pending:     v.Draft.Describing(),
		},
		CatalogSize: v.CatalogSize,
	}
	if v.Detail != nil {
		room := NewRoom(*v.Detail, slices.Contains(v.SavedIDs, v.Detail.ID))
		s.SelectedRoom = &room
	}
	return s
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return slices.Clone(s)
}
