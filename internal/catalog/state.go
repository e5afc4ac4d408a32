package catalog

import (
	"slices"
	"strings"

	"github.com/meraroom/meraroom-server/internal/domain"
)

// Theme is the light/dark display preference.
type Theme int

// Themes.
const (
	ThemeLight Theme = iota
	ThemeDark
)

func (t Theme) String() string {
	if t == ThemeDark {
		return "dark"
	}
	return "light"
}

// MarshalText implements encoding.TextMarshaler.
func (t Theme) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ChatRole marks who authored a chat message.
type ChatRole string

// Chat roles.
const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "ai"
)

// ChatMessage is one line of the room detail assistant chat.
type ChatMessage struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}

// Chat is the assistant conversation about the room on the detail screen.
// At most one question is outstanding at a time.
type Chat struct {
	RoomID      string
	Messages    []ChatMessage
	PendingTask string
}

// Asking reports whether an answer is outstanding.
func (c Chat) Asking() bool { return c.PendingTask != "" }

// Draft is the assistant-written description held by the post-room form.
type Draft struct {
	Description string
	PendingTask string
}

// Describing reports whether a description is being generated.
func (d Draft) Describing() bool { return d.PendingTask != "" }

// State is the whole application state for one user.
type State struct {
	Catalog Catalog
	Query   Query
	Saved   SavedSet
	Nav     Navigation
	Theme   Theme
	Chat    Chat
	Draft   Draft
}

// NewState returns the initial state: home screen, cleared query, nothing saved.
func NewState(c Catalog) State {
	return State{Catalog: c, Saved: NewSavedSet()}
}

// Event is a discrete state change. Events are applied one at a time by Reduce.
type Event interface {
	apply(State) State
}

// Reduce applies events in order and returns the resulting state.
// It never mutates s.
func Reduce(s State, events ...Event) State {
	for _, e := range events {
		s = e.apply(s)
	}
	return s
}

// withNav installs a new navigation state and resets per-screen data that
// belongs to a screen being left.
func (s State) withNav(n Navigation) State {
	if s.Nav.Screen != ScreenPostRoom || n.Screen != ScreenPostRoom {
		s.Draft = Draft{}
	}
	if room, ok := n.DetailRoom(); !ok || room.ID != s.Chat.RoomID {
		s.Chat = Chat{}
	}
	s.Nav = n
	return s
}

// Navigate moves to a screen. Navigating to ScreenRoomDetail does not
// restore a previous selection.
type Navigate struct{ Screen Screen }

func (e Navigate) apply(s State) State { return s.withNav(s.Nav.Navigate(e.Screen)) }

// SelectRoom opens the detail screen for a room.
type SelectRoom struct{ Room domain.Room }

func (e SelectRoom) apply(s State) State {
	s = s.withNav(s.Nav.SelectRoom(e.Room))
	s.Chat = Chat{RoomID: e.Room.ID}
	return s
}

// PostRoom prepends a freshly posted room and returns home.
type PostRoom struct{ Room domain.Room }

func (e PostRoom) apply(s State) State {
	s.Catalog = s.Catalog.Prepend(e.Room)
	return s.withNav(s.Nav.Navigate(ScreenHome))
}

// Login attaches a signed-in user and returns home.
type Login struct{ User domain.Profile }

func (e Login) apply(s State) State { return s.withNav(s.Nav.Login(e.User)) }

// Logout detaches the user and returns home.
type Logout struct{}

func (Logout) apply(s State) State { return s.withNav(s.Nav.Logout()) }

// ToggleSaved flips a room's saved membership.
type ToggleSaved struct{ RoomID string }

func (e ToggleSaved) apply(s State) State {
	s.Saved = s.Saved.Toggle(e.RoomID)
	return s
}

// SetSearch replaces the search text.
type SetSearch struct{ Text string }

func (e SetSearch) apply(s State) State {
	s.Query = s.Query.WithSearch(e.Text)
	return s
}

// SetMinPrice replaces the lower price bound; nil clears it.
type SetMinPrice struct{ Price *int64 }

func (e SetMinPrice) apply(s State) State {
	s.Query = s.Query.WithMinPrice(e.Price)
	return s
}

// SetMaxPrice replaces the upper price bound; nil clears it.
type SetMaxPrice struct{ Price *int64 }

func (e SetMaxPrice) apply(s State) State {
	s.Query = s.Query.WithMaxPrice(e.Price)
	return s
}

// SetSort replaces the sort option.
type SetSort struct{ Sort SortOption }

func (e SetSort) apply(s State) State {
	s.Query = s.Query.WithSort(e.Sort)
	return s
}

// ToggleAmenity selects or deselects an amenity filter.
type ToggleAmenity struct{ Amenity string }

func (e ToggleAmenity) apply(s State) State {
	s.Query = s.Query.ToggleAmenity(e.Amenity)
	return s
}

// ReplaceQuery swaps in a whole query.
type ReplaceQuery struct{ Query Query }

func (e ReplaceQuery) apply(s State) State {
	q := e.Query
	q.MinPrice = clonePrice(q.MinPrice)
	q.MaxPrice = clonePrice(q.MaxPrice)
	q.Amenities = slices.Clone(q.Amenities)
	s.Query = q
	return s
}

// ClearFilters resets the query, search text included.
type ClearFilters struct{}

func (ClearFilters) apply(s State) State {
	s.Query = s.Query.Cleared()
	return s
}

// ToggleTheme flips between light and dark.
type ToggleTheme struct{}

func (ToggleTheme) apply(s State) State {
	if s.Theme == ThemeDark {
		s.Theme = ThemeLight
	} else {
		s.Theme = ThemeDark
	}
	return s
}

// SyncCatalog replaces the catalog with a newer snapshot of the shared one.
type SyncCatalog struct{ Catalog Catalog }

func (e SyncCatalog) apply(s State) State {
	s.Catalog = e.Catalog
	return s
}

// DescriptionRequested marks a description generation as outstanding.
// Ignored unless the post-room form is open and idle.
type DescriptionRequested struct{ TaskID string }

func (e DescriptionRequested) apply(s State) State {
	if s.Nav.Screen != ScreenPostRoom || s.Draft.Describing() || e.TaskID == "" {
		return s
	}
	s.Draft.PendingTask = e.TaskID
	return s
}

// DescriptionReady delivers generated text. Results for a task that is no
// longer outstanding are dropped.
type DescriptionReady struct {
	TaskID string
	Text   string
}

func (e DescriptionReady) apply(s State) State {
	if !s.Draft.Describing() || s.Draft.PendingTask != e.TaskID {
		return s
	}
	s.Draft = Draft{Description: e.Text}
	return s
}

// QuestionAsked records a user question about the room on screen. Ignored
// when the question is blank, another answer is outstanding or the room is
// no longer on screen.
type QuestionAsked struct {
	TaskID   string
	RoomID   string
	Question string
}

func (e QuestionAsked) apply(s State) State {
	room, ok := s.Nav.DetailRoom()
	q := strings.TrimSpace(e.Question)
	if !ok || room.ID != e.RoomID || q == "" || s.Chat.Asking() || e.TaskID == "" {
		return s
	}
	s.Chat = Chat{
		RoomID:      room.ID,
		Messages:    append(slices.Clone(s.Chat.Messages), ChatMessage{Role: ChatRoleUser, Text: q}),
		PendingTask: e.TaskID,
	}
	return s
}

// AnswerReady delivers an assistant answer. Answers for a task that is no
// longer outstanding are dropped.
type AnswerReady struct {
	TaskID string
	RoomID string
	Answer string
}

func (e AnswerReady) apply(s State) State {
	if !s.Chat.Asking() || s.Chat.PendingTask != e.TaskID || s.Chat.RoomID != e.RoomID {
		return s
	}
	s.Chat = Chat{
		RoomID:   s.Chat.RoomID,
		Messages: append(slices.Clone(s.Chat.Messages), ChatMessage{Role: ChatRoleAssistant, Text: e.Answer}),
	}
	return s
}
