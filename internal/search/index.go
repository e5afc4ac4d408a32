package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/meraroom/meraroom-server/internal/domain"
)

// SearchIndex wraps a memory-only Bleve index of rooms.
// All public methods are safe for concurrent use.
type SearchIndex struct {
	index  bleve.Index
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	Logger *slog.Logger // uses discard if nil
}

// NewSearchIndex creates an empty in-memory index.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	logger.Info("created in-memory search index")
	return &SearchIndex{index: index, logger: logger}, nil
}

// Close closes the index and releases resources.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexRoom adds or replaces a room. It implements store.SearchIndexer.
func (s *SearchIndex) IndexRoom(ctx context.Context, room *domain.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(room.ID, NewRoomDocument(room).ToMap())
}

// IndexRooms indexes rooms in one batch.
func (s *SearchIndex) IndexRooms(ctx context.Context, rooms []domain.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch := s.index.NewBatch()
	for i := range rooms {
		if err := batch.Index(rooms[i].ID, NewRoomDocument(&rooms[i]).ToMap()); err != nil {
			return fmt.Errorf("batch index %s: %w", rooms[i].ID, err)
		}
	}
	if err := s.index.Batch(batch); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	s.logger.Debug("indexed rooms", slog.Int("count", len(rooms)))
	return nil
}

// DocumentCount returns the total number of indexed rooms.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}
