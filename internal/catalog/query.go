package catalog

import (
	"fmt"
	"slices"
	"strings"
)

// SortOption selects the ordering of the visible list.
type SortOption int

// Sort options. The zero value is SortRelevance, which keeps filtered order.
const (
	SortRelevance SortOption = iota
	SortPriceLowHigh
	SortPriceHighLow
	SortNewest
)

var sortNames = map[SortOption]string{
	SortRelevance:    "RELEVANCE",
	SortPriceLowHigh: "PRICE_LOW_HIGH",
	SortPriceHighLow: "PRICE_HIGH_LOW",
	SortNewest:       "NEWEST",
}

// SortOptionNames lists the wire names of every sort option.
var SortOptionNames = []string{"RELEVANCE", "PRICE_LOW_HIGH", "PRICE_HIGH_LOW", "NEWEST"}

func (o SortOption) String() string {
	if name, ok := sortNames[o]; ok {
		return name
	}
	return fmt.Sprintf("SortOption(%d)", int(o))
}

// ParseSortOption converts a wire name into a SortOption. The empty string
// maps to SortRelevance. Matching is case-insensitive.
func ParseSortOption(s string) (SortOption, error) {
	if s == "" {
		return SortRelevance, nil
	}
	for opt, name := range sortNames {
		if strings.EqualFold(name, s) {
			return opt, nil
		}
	}
	return SortRelevance, fmt.Errorf("unknown sort option %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (o SortOption) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *SortOption) UnmarshalText(b []byte) error {
	v, err := ParseSortOption(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// Query is the user's search, filter and sort selection.
// A nil price bound means unbounded on that side, never zero.
// The zero value is the cleared query.
type Query struct {
	Search    string
	MinPrice  *int64
	MaxPrice  *int64
	Amenities []string // selection order
	Sort      SortOption
}

// WithSearch returns q with the search text replaced. Text is kept verbatim.
func (q Query) WithSearch(text string) Query {
	q.Search = text
	return q
}

// WithMinPrice returns q with the lower bound replaced; nil clears it.
func (q Query) WithMinPrice(p *int64) Query {
	q.MinPrice = clonePrice(p)
	return q
}

// WithMaxPrice returns q with the upper bound replaced; nil clears it.
func (q Query) WithMaxPrice(p *int64) Query {
	q.MaxPrice = clonePrice(p)
	return q
}

// WithSort returns q with the sort option replaced.
func (q Query) WithSort(o SortOption) Query {
	q.Sort = o
	return q
}

// ToggleAmenity selects the amenity if unselected, otherwise deselects it.
func (q Query) ToggleAmenity(amenity string) Query {
	if i := slices.Index(q.Amenities, amenity); i >= 0 {
		q.Amenities = slices.Delete(slices.Clone(q.Amenities), i, i+1)
		return q
	}
	q.Amenities = append(slices.Clone(q.Amenities), amenity)
	return q
}

// Cleared returns the default query, search text included.
func (q Query) Cleared() Query {
	return Query{}
}

// ActiveFilterCount counts set price bounds, selected amenities and a
// non-default sort. Search text never counts.
func (q Query) ActiveFilterCount() int {
	n := len(q.Amenities)
	if q.MinPrice != nil {
		n++
	}
	if q.MaxPrice != nil {
		n++
	}
	if q.Sort != SortRelevance {
		n++
	}
	return n
}

// ShowClear reports whether the "clear filters" affordance applies.
func (q Query) ShowClear() bool {
	return q.ActiveFilterCount() > 0 || q.Search != ""
}

// Validate rejects negative price bounds and unknown sort options.
func (q Query) Validate() error {
	if q.MinPrice != nil && *q.MinPrice < 0 {
		return fmt.Errorf("min price must not be negative")
	}
	if q.MaxPrice != nil && *q.MaxPrice < 0 {
		return fmt.Errorf("max price must not be negative")
	}
	if _, ok := sortNames[q.Sort]; !ok {
		return fmt.Errorf("unknown sort option %d", int(q.Sort))
	}
	return nil
}

// Equal compares two queries field by field. Amenity order matters.
func (q Query) Equal(other Query) bool {
	return q.Search == other.Search &&
		pricesEqual(q.MinPrice, other.MinPrice) &&
		pricesEqual(q.MaxPrice, other.MaxPrice) &&
		slices.Equal(q.Amenities, other.Amenities) &&
		q.Sort == other.Sort
}

// Price is a convenience for building optional bounds.
func Price(v int64) *int64 { return &v }

func clonePrice(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func pricesEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
