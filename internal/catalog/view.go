package catalog

import "github.com/meraroom/meraroom-server/internal/domain"

// View is everything a client needs to render the current screen.
type View struct {
	Screen            Screen
	Query             Query
	Visible           []domain.Room
	Saved             []domain.Room
	SavedIDs          []string
	ActiveFilterCount int
	ShowClear         bool
	Detail            *domain.Room
	User              *domain.Profile
	Theme             Theme
	Chat              Chat
	Draft             Draft
	CatalogSize       int
}

// Derive projects a state into its view.
func Derive(s State) View {
	v := View{
		Screen:            s.Nav.Screen,
		Query:             s.Query,
		Visible:           Visible(s.Catalog, s.Query),
		Saved:             SavedRooms(s.Catalog, s.Saved),
		SavedIDs:          s.Saved.IDs(),
		ActiveFilterCount: s.Query.ActiveFilterCount(),
		ShowClear:         s.Query.ShowClear(),
		User:              s.Nav.User,
		Theme:             s.Theme,
		Chat:              s.Chat,
		Draft:             s.Draft,
		CatalogSize:       s.Catalog.Len(),
	}
	if room, ok := s.Nav.DetailRoom(); ok {
		v.Detail = &room
	}
	return v
}
