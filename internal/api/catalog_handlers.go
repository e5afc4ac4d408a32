package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/meraroom/meraroom-server/internal/dto"
	"github.com/meraroom/meraroom-server/internal/search"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listAmenities",
		Method:      http.MethodGet,
		Path:        "/api/v1/amenities",
		Summary:     "List amenities",
		Description: "Returns the amenity tags offered as filters, in display order",
		Tags:        []string{"Catalog"},
	}, s.handleListAmenities)

	huma.Register(s.api, huma.Operation{
		OperationID: "listRooms",
		Method:      http.MethodGet,
		Path:        "/api/v1/rooms",
		Summary:     "List rooms",
		Description: "Returns the whole catalog, newest first",
		Tags:        []string{"Catalog"},
	}, s.handleListRooms)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchRooms",
		Method:      http.MethodGet,
		Path:        "/api/v1/rooms/search",
		Summary:     "Search rooms",
		Description: "Full-text search over titles, locations, descriptions and amenities, ranked by relevance",
		Tags:        []string{"Catalog"},
	}, s.handleSearchRooms)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRoom",
		Method:      http.MethodGet,
		Path:        "/api/v1/rooms/{id}",
		Summary:     "Get room",
		Description: "Returns a room by ID",
		Tags:        []string{"Catalog"},
	}, s.handleGetRoom)
}

// === DTOs ===

// AmenitiesOutput wraps the amenity list for Huma.
type AmenitiesOutput struct {
	Body struct {
		Amenities []string `json:"amenities" doc:"Amenity tags"`
	}
}

// RoomsResponse contains a list of rooms.
type RoomsResponse struct {
	Rooms []dto.Room `json:"rooms" doc:"Rooms in catalog order"`
	Total int        `json:"total" doc:"Number of rooms"`
}

// RoomsOutput wraps a room list for Huma.
type RoomsOutput struct {
	Body RoomsResponse
}

// SearchRoomsInput contains search parameters.
type SearchRoomsInput struct {
	Query string `query:"q" doc:"Search text"`
	Limit int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Maximum results"`
}

// GetRoomInput identifies a room.
type GetRoomInput struct {
	ID string `path:"id" doc:"Room ID"`
}

// RoomOutput wraps a single room for Huma.
type RoomOutput struct {
	Body dto.Room
}

// === Handlers ===

func (s *Server) handleListAmenities(_ context.Context, _ *struct{}) (*AmenitiesOutput, error) {
	out := &AmenitiesOutput{}
	out.Body.Amenities = s.services.Catalog.Amenities()
	return out, nil
}

func (s *Server) handleListRooms(ctx context.Context, _ *struct{}) (*RoomsOutput, error) {
	rooms := s.services.Catalog.List(ctx)
	return &RoomsOutput{Body: RoomsResponse{
		Rooms: dto.NewRooms(rooms, nil),
		Total: len(rooms),
	}}, nil
}

func (s *Server) handleSearchRooms(ctx context.Context, input *SearchRoomsInput) (*RoomsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = search.DefaultLimit
	}
	rooms, err := s.services.Catalog.Search(ctx, input.Query, limit)
	if err != nil {
		return nil, err
	}
	return &RoomsOutput{Body: RoomsResponse{
		Rooms: dto.NewRooms(rooms, nil),
		Total: len(rooms),
	}}, nil
}

func (s *Server) handleGetRoom(ctx context.Context, input *GetRoomInput) (*RoomOutput, error) {
	room, err := s.services.Catalog.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &RoomOutput{Body: dto.NewRoom(*room, false)}, nil
}
