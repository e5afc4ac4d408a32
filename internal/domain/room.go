package domain

import (
	"fmt"
	"slices"
)

// Room is a single rental listing. Rooms are immutable once posted.
type Room struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Location    string   `json:"location" yaml:"location"`
	Price       int64    `json:"price" yaml:"price"`
	Amenities   []string `json:"amenities" yaml:"amenities"`
	Images      []string `json:"images" yaml:"images"`
	OwnerNumber string   `json:"owner_number" yaml:"owner_number"`
	OwnerUPI    string   `json:"owner_upi" yaml:"owner_upi"`
}

// HasAmenity reports whether the room lists the exact amenity tag.
func (r *Room) HasAmenity(amenity string) bool {
	return slices.Contains(r.Amenities, amenity)
}

// CoverImage returns the first image, or a placeholder keyed on the room id
// when the listing has none.
func (r *Room) CoverImage() string {
	if len(r.Images) > 0 {
		return r.Images[0]
	}
	return PlaceholderImage(r.ID)
}

// Clone returns a deep copy so callers can't alias the catalog's slices.
func (r Room) Clone() Room {
	r.Amenities = slices.Clone(r.Amenities)
	r.Images = slices.Clone(r.Images)
	return r
}

// PlaceholderImage builds the stock image URL used for rooms without photos.
func PlaceholderImage(seed string) string {
	return fmt.Sprintf("https://picsum.photos/800/600?random=%s", seed)
}
