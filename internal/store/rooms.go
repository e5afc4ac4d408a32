package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/meraroom/meraroom-server/internal/domain"
	"github.com/meraroom/meraroom-server/internal/sse"
)

const roomPrefix = "room:"

func (s *Store) initRooms() {
	s.Rooms = NewEntity[domain.Room](s, roomPrefix).
		WithIndex("id", func(r *domain.Room) []string {
			return []string{r.ID}
		})
}

// orderKey inverts the insert sequence so that ascending key order is
// newest-first.
func orderKey(seq uint64) string {
	return fmt.Sprintf("%016x", math.MaxUint64-seq)
}

// PrependRoom adds a room at the front of the catalog and indexes it for
// search. Room ids must be unique. Nothing is emitted; callers announce the
// room with AnnounceRoom once every read path can see it.
func (s *Store) PrependRoom(ctx context.Context, room *domain.Room) error {
	return s.insertRoom(ctx, room)
}

// AnnounceRoom emits a room.posted event.
func (s *Store) AnnounceRoom(room *domain.Room) {
	s.eventEmitter.Emit(sse.NewRoomPostedEvent(room))
}

// SeedRooms loads rooms given in catalog order, so rooms[0] ends up first.
// Seeding emits no events.
func (s *Store) SeedRooms(ctx context.Context, rooms []domain.Room) error {
	for _, r := range slices.Backward(rooms) {
		if err := s.insertRoom(ctx, &r); err != nil {
			return fmt.Errorf("seed room %s: %w", r.ID, err)
		}
	}
	s.logger.Info("catalog seeded", slog.Int("rooms", len(rooms)))
	return nil
}

func (s *Store) insertRoom(ctx context.Context, room *domain.Room) error {
	if room.ID == "" {
		return ErrInvalidInput.WithMessage("room id is required")
	}
	if room.Price < 0 {
		return ErrInvalidInput.WithMessage("room price must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.seq + 1
	if err := s.Rooms.Create(ctx, orderKey(next), room); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return ErrAlreadyExists.WithMessage(fmt.Sprintf("room %s already exists", room.ID))
		}
		return fmt.Errorf("create room: %w", err)
	}
	s.seq = next

	// The catalog is authoritative; a failed index update only degrades search.
	if err := s.searchIndexer.IndexRoom(ctx, room); err != nil {
		s.logger.Warn("failed to index room", slog.String("room_id", room.ID), slog.String("error", err.Error()))
	}
	return nil
}

// GetRoom looks a room up by id.
func (s *Store) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	room, err := s.Rooms.GetByIndex(ctx, "id", id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound.WithMessage(fmt.Sprintf("room %s not found", id))
	}
	return room, err
}

// ListRooms returns every room, newest first.
func (s *Store) ListRooms(ctx context.Context) ([]domain.Room, error) {
	var rooms []domain.Room
	for room, err := range s.Rooms.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list rooms: %w", err)
		}
		rooms = append(rooms, *room)
	}
	return rooms, nil
}

// RoomCount returns the number of rooms inserted so far.
func (s *Store) RoomCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(s.seq)
}
