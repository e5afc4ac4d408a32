package domain

import (
	"time"

	"github.com/meraroom/meraroom-server/internal/color"
)

// User is a registered account. Only the auth boundary persists users.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash,omitempty"` // never serialized to clients
	DisplayName  string    `json:"display_name"`
	CreatedAt    time.Time `json:"created_at"`
	LastLoginAt  time.Time `json:"last_login_at"`
}

// Profile is the public view of the signed-in user carried in navigation state.
type Profile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarColor string `json:"avatar_color"`
}

// Profile returns the public projection of the account.
func (u *User) Profile() Profile {
	name := u.DisplayName
	if name == "" {
		name = u.Username
	}
	return Profile{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: name,
		AvatarColor: color.Avatar(u.Username),
	}
}
