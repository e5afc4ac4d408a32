// Package dto provides Data Transfer Objects for API responses and SSE events.
//
// DTOs carry the display fields a client needs to render a screen without a
// second round trip.
package dto

import (
	"slices"

	"github.com/meraroom/meraroom-server/internal/domain"
)

// Room is the client-facing representation of a listing.
type Room struct {
	domain.Room

	// Denormalized for rendering.
	CoverImage string `json:"cover_image"`
	Saved      bool   `json:"saved"`
}

// NewRoom converts a domain room. Nil slices become empty so clients never
// see null arrays.
func NewRoom(r domain.Room, saved bool) Room {
	r = r.Clone()
	if r.Amenities == nil {
		r.Amenities = []string{}
	}
	if r.Images == nil {
		r.Images = []string{}
	}
	return Room{Room: r, CoverImage: r.CoverImage(), Saved: saved}
}

// NewRooms converts a list of rooms, marking those whose id is in saved.
func NewRooms(rooms []domain.Room, saved []string) []Room {
	out := make([]Room, len(rooms))
	for i, r := range rooms {
		out[i] = NewRoom(r, slices.Contains(saved, r.ID))
	}
	return out
}
