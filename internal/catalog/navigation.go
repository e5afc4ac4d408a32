package catalog

import (
	"fmt"
	"strings"

	"github.com/meraroom/meraroom-server/internal/domain"
)

// Screen identifies the active screen.
type Screen int

// Screens. ScreenHome is the zero value and the initial screen.
const (
	ScreenHome Screen = iota
	ScreenSaved
	ScreenMap
	ScreenPostRoom
	ScreenLogin
	ScreenRoomDetail
)

var screenNames = map[Screen]string{
	ScreenHome:       "HOME",
	ScreenSaved:      "SAVED",
	ScreenMap:        "MAP",
	ScreenPostRoom:   "POST_ROOM",
	ScreenLogin:      "LOGIN",
	ScreenRoomDetail: "ROOM_DETAIL",
}

// ScreenNames lists the wire names of every screen.
var ScreenNames = []string{"HOME", "SAVED", "MAP", "POST_ROOM", "LOGIN", "ROOM_DETAIL"}

func (s Screen) String() string {
	if name, ok := screenNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Screen(%d)", int(s))
}

// ParseScreen converts a wire name into a Screen, case-insensitively.
func ParseScreen(s string) (Screen, error) {
	for sc, name := range screenNames {
		if strings.EqualFold(name, s) {
			return sc, nil
		}
	}
	return ScreenHome, fmt.Errorf("unknown screen %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Screen) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Screen) UnmarshalText(b []byte) error {
	v, err := ParseScreen(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Navigation is the active screen plus the data screens need.
// No screen requires a signed-in user.
type Navigation struct {
	Screen   Screen
	Selected *domain.Room
	User     *domain.Profile
}

// Navigate moves to target and drops any selected room. Reaching
// ScreenRoomDetail this way leaves nothing to display.
func (n Navigation) Navigate(target Screen) Navigation {
	n.Screen = target
	n.Selected = nil
	return n
}

// SelectRoom attaches room and opens its detail screen.
func (n Navigation) SelectRoom(room domain.Room) Navigation {
	r := room.Clone()
	n.Selected = &r
	n.Screen = ScreenRoomDetail
	return n
}

// Login records the signed-in user and returns home.
func (n Navigation) Login(user domain.Profile) Navigation {
	n = n.Navigate(ScreenHome)
	n.User = &user
	return n
}

// Logout forgets the user and returns home.
func (n Navigation) Logout() Navigation {
	n = n.Navigate(ScreenHome)
	n.User = nil
	return n
}

// DetailRoom returns the room the detail screen should render. It reports
// false unless the detail screen is active with a selection, in which case
// the screen renders nothing.
func (n Navigation) DetailRoom() (domain.Room, bool) {
	if n.Screen != ScreenRoomDetail || n.Selected == nil {
		return domain.Room{}, false
	}
	return *n.Selected, true
}

// SignedIn reports whether a user is attached.
func (n Navigation) SignedIn() bool { return n.User != nil }
