package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/meraroom/meraroom-server/internal/catalog"
	"github.com/meraroom/meraroom-server/internal/domain"
	domainerrors "github.com/meraroom/meraroom-server/internal/errors"
	"github.com/meraroom/meraroom-server/internal/id"
	"github.com/meraroom/meraroom-server/internal/search"
	"github.com/meraroom/meraroom-server/internal/store"
	"github.com/meraroom/meraroom-server/internal/validation"
)

// CatalogService owns the shared room catalog. The badger store is the
// source of truth; an immutable snapshot is kept for lock-free reads.
type CatalogService struct {
	store     *store.Store
	index     *search.SearchIndex
	ids       *id.RoomSequence
	validator *validation.Validator
	logger    *slog.Logger

	// Serializes posts so the snapshot order matches the store order.
	mu       sync.Mutex
	snapshot atomic.Pointer[catalog.Catalog]
}

// NewCatalogService creates a catalog service over an empty or seeded store.
// index may be nil, in which case Search is unavailable.
func NewCatalogService(
	st *store.Store,
	index *search.SearchIndex,
	ids *id.RoomSequence,
	v *validation.Validator,
	logger *slog.Logger,
) *CatalogService {
	s := &CatalogService{
		store:     st,
		index:     index,
		ids:       ids,
		validator: v,
		logger:    logger,
	}
	empty := catalog.New()
	s.snapshot.Store(&empty)
	if index != nil {
		st.SetSearchIndexer(index)
	}
	return s
}

// PostRoomRequest is the post-room form. Features is the comma separated
// amenity list typed by the owner.
type PostRoomRequest struct {
	Title       string   `json:"title" validate:"notblank,max=120"`
	Description string   `json:"description,omitempty" validate:"max=2000"`
	Location    string   `json:"location,omitempty" validate:"max=200"`
	Price       *int64   `json:"price" validate:"required,gte=0"`
	Features    string   `json:"features,omitempty" validate:"max=500"`
	Images      []string `json:"images,omitempty" validate:"max=10"`
	OwnerNumber string   `json:"owner_number,omitempty" validate:"max=32"`
	OwnerUPI    string   `json:"owner_upi,omitempty" validate:"max=64"`
}

// Seed inserts rooms given in catalog order and refreshes the snapshot.
func (s *CatalogService) Seed(ctx context.Context, rooms []domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SeedRooms(ctx, rooms); err != nil {
		return err
	}
	for _, r := range rooms {
		s.ids.Observe(r.ID)
	}
	return s.refreshLocked(ctx)
}

// AddListings publishes rooms the catalog does not hold yet, such as
// entries appended to the seed file while running. Known ids are skipped,
// so existing rooms are never changed or removed. New rooms are prepended
// in reverse so the first one given ends up first.
func (s *CatalogService) AddListings(ctx context.Context, rooms []domain.Room) ([]domain.Room, error) {
	s.mu.Lock()

	snap := s.Snapshot()
	var added []domain.Room
	for _, r := range slices.Backward(rooms) {
		if snap.Contains(r.ID) {
			continue
		}
		if err := s.store.PrependRoom(ctx, &r); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				continue
			}
			s.mu.Unlock()
			return nil, fmt.Errorf("add room %s: %w", r.ID, err)
		}
		s.ids.Observe(r.ID)
		snap = snap.Prepend(r)
		added = append(added, r)
	}
	s.snapshot.Store(&snap)
	s.mu.Unlock()

	for i := range added {
		s.store.AnnounceRoom(&added[i])
	}
	if len(added) > 0 {
		s.logger.Info("listings added", slog.Int("rooms", len(added)), slog.Int("catalog_size", snap.Len()))
	}
	slices.Reverse(added)
	return added, nil
}

func (s *CatalogService) refreshLocked(ctx context.Context) error {
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return err
	}
	c := catalog.New(rooms...)
	s.snapshot.Store(&c)
	return nil
}

// Snapshot returns the current catalog. It implements session.CatalogSource.
func (s *CatalogService) Snapshot() catalog.Catalog {
	return *s.snapshot.Load()
}

// List returns every room, newest first.
func (s *CatalogService) List(_ context.Context) []domain.Room {
	return s.Snapshot().All()
}

// Get returns one room.
func (s *CatalogService) Get(_ context.Context, roomID string) (*domain.Room, error) {
	room, ok := s.Snapshot().Get(roomID)
	if !ok {
		return nil, domainerrors.NotFoundf("room %s not found", roomID)
	}
	return &room, nil
}

// Amenities returns the amenity tags offered as filters.
func (s *CatalogService) Amenities() []string {
	return append([]string(nil), domain.Amenities...)
}

// Search ranks rooms by relevance to text.
func (s *CatalogService) Search(ctx context.Context, text string, limit int) ([]domain.Room, error) {
	if s.index == nil {
		return nil, domainerrors.Internal("search is not available")
	}
	res, err := s.index.Search(ctx, search.SearchParams{Query: text, Limit: limit})
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "search failed")
	}

	snap := s.Snapshot()
	rooms := make([]domain.Room, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if room, ok := snap.Get(hit.ID); ok {
			rooms = append(rooms, room)
		}
	}
	return rooms, nil
}

// Post validates the form, assigns an id and prepends the room.
func (s *CatalogService) Post(ctx context.Context, req PostRoomRequest) (*domain.Room, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	roomID := s.ids.Next()
	room := &domain.Room{
		ID:          roomID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Location:    strings.TrimSpace(req.Location),
		Price:       *req.Price,
		Amenities:   splitFeatures(req.Features),
		Images:      nonEmpty(req.Images),
		OwnerNumber: strings.TrimSpace(req.OwnerNumber),
		OwnerUPI:    strings.TrimSpace(req.OwnerUPI),
	}
	if len(room.Images) == 0 {
		room.Images = []string{domain.PlaceholderImage(roomID)}
	}

	if err := s.store.PrependRoom(ctx, room); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists(fmt.Sprintf("room %s already exists", roomID))
		}
		return nil, fmt.Errorf("prepend room: %w", err)
	}

	next := s.Snapshot().Prepend(*room)
	s.snapshot.Store(&next)
	s.store.AnnounceRoom(room)

	s.logger.Info("room posted",
		slog.String("room_id", room.ID),
		slog.Int64("price", room.Price),
		slog.Int("catalog_size", next.Len()))
	return room, nil
}

// splitFeatures turns "Wifi, AC,,Kitchen " into [Wifi AC Kitchen].
func splitFeatures(csv string) []string {
	var out []string
	for f := range strings.SplitSeq(csv, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
