// Package search provides full-text search over room listings using Bleve.
// The index is memory-only and rebuilt from the catalog at startup.
package search

import (
	"strings"

	"github.com/meraroom/meraroom-server/internal/domain"
)

// RoomDocument is the indexed projection of a room.
type RoomDocument struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Location    string   `json:"location"`
	Description string   `json:"description,omitempty"`
	Amenities   []string `json:"amenities,omitempty"`
	Price       int64    `json:"price"`
}

// NewRoomDocument builds the document for room.
func NewRoomDocument(room *domain.Room) *RoomDocument {
	return &RoomDocument{
		ID:          room.ID,
		Title:       room.Title,
		Location:    room.Location,
		Description: room.Description,
		Amenities:   append([]string(nil), room.Amenities...),
		Price:       room.Price,
	}
}

// ToMap converts the document to a map whose keys match the index mapping.
// Bleve would otherwise use the capitalized Go field names.
func (d *RoomDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":       d.ID,
		"title":    d.Title,
		"location": d.Location,
		"price":    float64(d.Price),
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if len(d.Amenities) > 0 {
		// Keyword analyzer: one lower-cased term per tag.
		tags := make([]string, len(d.Amenities))
		for i, a := range d.Amenities {
			tags[i] = strings.ToLower(a)
		}
		m["amenities"] = tags
	}
	return m
}
