package catalog

import (
	"slices"

	"github.com/meraroom/meraroom-server/internal/domain"
)

// SavedSet is the set of room ids a user has marked as favorites.
// The zero value is an empty set. Toggle never mutates the receiver.
type SavedSet struct {
	ids map[string]struct{}
}

// NewSavedSet builds a set from ids.
func NewSavedSet(ids ...string) SavedSet {
	s := SavedSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Toggle removes id if present, otherwise adds it.
func (s SavedSet) Toggle(id string) SavedSet {
	next := make(map[string]struct{}, len(s.ids)+1)
	for k := range s.ids {
		next[k] = struct{}{}
	}
	if _, ok := next[id]; ok {
		delete(next, id)
	} else {
		next[id] = struct{}{}
	}
	return SavedSet{ids: next}
}

// IsSaved reports membership.
func (s SavedSet) IsSaved(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of saved ids, dangling ones included.
func (s SavedSet) Len() int { return len(s.ids) }

// IDs returns the saved ids sorted lexically.
func (s SavedSet) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Equal reports whether both sets hold the same ids.
func (s SavedSet) Equal(other SavedSet) bool {
	if len(s.ids) != len(other.ids) {
		return false
	}
	for id := range s.ids {
		if !other.IsSaved(id) {
			return false
		}
	}
	return true
}

// SavedRooms returns the catalog rooms whose id is saved, in catalog order.
// It ignores the query entirely, and ids with no matching room are skipped.
func SavedRooms(c Catalog, s SavedSet) []domain.Room {
	out := make([]domain.Room, 0, s.Len())
	for _, r := range c.rooms {
		if s.IsSaved(r.ID) {
			out = append(out, r)
		}
	}
	return out
}
