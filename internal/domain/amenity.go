package domain

import "slices"

// Amenities is the fixed set of amenity tags offered by the filter panel and
// the posting form, in display order.
var Amenities = []string{
	"Wifi",
	"AC",
	"Kitchen",
	"Parking",
	"Security",
	"Gym",
	"Sea View",
	"Lift",
	"Maid",
}

// IsKnownAmenity reports whether tag is one of the offered amenities.
// Rooms may still carry free-text tags outside this list.
func IsKnownAmenity(tag string) bool {
	return slices.Contains(Amenities, tag)
}
