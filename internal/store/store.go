// Package store holds the room catalog in an in-memory Badger database.
// Nothing is written to disk: the catalog lives for the life of the process.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/meraroom/meraroom-server/internal/domain"
)

// EventEmitter broadcasts store changes without depending on the SSE package internals.
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter drops every event.
type NoopEmitter struct{}

// Emit implements EventEmitter.Emit as a no-op.
func (NoopEmitter) Emit(_ any) {}

// NewNoopEmitter creates a no-op emitter for tests.
func NewNoopEmitter() EventEmitter {
	return NoopEmitter{}
}

// SearchIndexer keeps the full-text index in step with the catalog.
type SearchIndexer interface {
	IndexRoom(ctx context.Context, room *domain.Room) error
}

// NoopSearchIndexer is a no-op indexer for tests.
type NoopSearchIndexer struct{}

// IndexRoom is a no-op.
func (NoopSearchIndexer) IndexRoom(context.Context, *domain.Room) error { return nil }

// Store wraps an in-memory Badger instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	eventEmitter EventEmitter

	// Set via SetSearchIndexer after creation; the index is built from the store.
	searchIndexer SearchIndexer

	// Serializes room inserts so order keys are assigned without gaps.
	mu  sync.Mutex
	seq uint64

	Rooms *Entity[domain.Room]
}

// New opens an empty in-memory store.
func New(logger *slog.Logger, emitter EventEmitter) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if emitter == nil {
		emitter = NewNoopEmitter()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Store{
		db:            db,
		logger:        logger,
		eventEmitter:  emitter,
		searchIndexer: NoopSearchIndexer{},
	}
	s.initRooms()

	logger.Info("in-memory catalog store opened")
	return s, nil
}

// Close releases the database.
func (s *Store) Close() error {
	s.logger.Info("closing catalog store")
	return s.db.Close()
}

// SetSearchIndexer installs the indexer used for rooms inserted from now on.
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchIndexer = indexer
}
