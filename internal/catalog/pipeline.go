package catalog

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/meraroom/meraroom-server/internal/domain"
)

// Visible runs the filter-sort pipeline over the whole catalog.
func Visible(c Catalog, q Query) []domain.Room {
	return Apply(c.rooms, q)
}

// Apply filters rooms by q and sorts the survivors with a stable sort.
// The input slice is never modified.
func Apply(rooms []domain.Room, q Query) []domain.Room {
	m := newMatcher(q)
	out := make([]domain.Room, 0, len(rooms))
	for i := range rooms {
		if m.match(&rooms[i]) {
			out = append(out, rooms[i])
		}
	}
	sortRooms(out, q.Sort)
	return out
}

// Matches reports whether a single room passes all four predicates of q.
func Matches(room *domain.Room, q Query) bool {
	return newMatcher(q).match(room)
}

type matcher struct {
	q      Query
	lower  cases.Caser
	needle string
}

func newMatcher(q Query) *matcher {
	// Casers carry state, so each pipeline run gets its own.
	lower := cases.Lower(language.Und)
	return &matcher{q: q, lower: lower, needle: lower.String(q.Search)}
}

func (m *matcher) match(r *domain.Room) bool {
	return m.matchText(r) && m.matchPrice(r) && m.matchAmenities(r)
}

func (m *matcher) matchText(r *domain.Room) bool {
	if m.needle == "" {
		return true
	}
	return strings.Contains(m.lower.String(r.Title), m.needle) ||
		strings.Contains(m.lower.String(r.Location), m.needle)
}

func (m *matcher) matchPrice(r *domain.Room) bool {
	if m.q.MinPrice != nil && r.Price < *m.q.MinPrice {
		return false
	}
	if m.q.MaxPrice != nil && r.Price > *m.q.MaxPrice {
		return false
	}
	return true
}

func (m *matcher) matchAmenities(r *domain.Room) bool {
	for _, a := range m.q.Amenities {
		if !r.HasAmenity(a) {
			return false
		}
	}
	return true
}

func sortRooms(rooms []domain.Room, opt SortOption) {
	switch opt {
	case SortPriceLowHigh:
		slices.SortStableFunc(rooms, func(a, b domain.Room) int { return cmp.Compare(a.Price, b.Price) })
	case SortPriceHighLow:
		slices.SortStableFunc(rooms, func(a, b domain.Room) int { return cmp.Compare(b.Price, a.Price) })
	case SortNewest:
		slices.SortStableFunc(rooms, compareNewest)
	}
}

// compareNewest orders by numeric id, highest first. Ids that don't parse
// as integers compare equal to each other and sort after numeric ids.
func compareNewest(a, b domain.Room) int {
	av, aErr := strconv.ParseInt(a.ID, 10, 64)
	bv, bErr := strconv.ParseInt(b.ID, 10, 64)
	switch {
	case aErr != nil && bErr != nil:
		return 0
	case aErr != nil:
		return 1
	case bErr != nil:
		return -1
	}
	return cmp.Compare(bv, av)
}
