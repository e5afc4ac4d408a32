// Package catalog is the room catalog view engine: the immutable catalog,
// the saved-set, the query state, the filter-sort pipeline and the
// navigation state machine, tied together by a reducer over State.
//
// Everything in this package is a pure value transformation. Callers own
// serialization of events (see internal/session).
package catalog

import (
	"slices"

	"github.com/meraroom/meraroom-server/internal/domain"
)

// Catalog is an ordered, newest-first collection of rooms.
// The zero value is an empty catalog. Catalog values are never mutated;
// every change returns a new Catalog.
type Catalog struct {
	rooms []domain.Room
}

// New builds a catalog in the given order. Later duplicates of an id are dropped.
func New(rooms ...domain.Room) Catalog {
	out := make([]domain.Room, 0, len(rooms))
	seen := make(map[string]struct{}, len(rooms))
	for _, r := range rooms {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r.Clone())
	}
	return Catalog{rooms: out}
}

// Prepend returns a catalog with room at the front. Room ids are immutable,
// so prepending an id that is already present returns c unchanged.
func (c Catalog) Prepend(room domain.Room) Catalog {
	if c.Contains(room.ID) {
		return c
	}
	rooms := make([]domain.Room, 0, len(c.rooms)+1)
	rooms = append(rooms, room.Clone())
	rooms = append(rooms, c.rooms...)
	return Catalog{rooms: rooms}
}

// Len returns the number of rooms.
func (c Catalog) Len() int { return len(c.rooms) }

// All returns the rooms in catalog order. The returned slice is a copy.
func (c Catalog) All() []domain.Room {
	return slices.Clone(c.rooms)
}

// Get looks a room up by id.
func (c Catalog) Get(id string) (domain.Room, bool) {
	i := c.index(id)
	if i < 0 {
		return domain.Room{}, false
	}
	return c.rooms[i], true
}

// Contains reports whether a room with id is in the catalog.
func (c Catalog) Contains(id string) bool {
	return c.index(id) >= 0
}

func (c Catalog) index(id string) int {
	return slices.IndexFunc(c.rooms, func(r domain.Room) bool { return r.ID == id })
}
