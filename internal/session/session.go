// Package session runs one single-writer event loop per client session.
//
// HTTP handlers and assistant tasks never touch session state directly:
// they submit catalog events to the session inbox and the loop applies
// them one batch at a time through catalog.Reduce.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/meraroom/meraroom-server/internal/catalog"
)

// ErrClosed is returned when dispatching to a session that has shut down.
var ErrClosed = errors.New("session closed")

// CatalogSource supplies the current shared catalog.
type CatalogSource interface {
	Snapshot() catalog.Catalog
}

// ChangeFunc is called from the loop after every applied batch.
type ChangeFunc func(sessionID string, snap Snapshot)

// Snapshot is a consistent read of a session's state.
type Snapshot struct {
	State   catalog.State
	Version uint64
}

// View derives the render model for the snapshot.
func (s Snapshot) View() catalog.View { return catalog.Derive(s.State) }

type request struct {
	events []catalog.Event
	reply  chan Snapshot
}

// Session owns one user's catalog.State.
type Session struct {
	ID        string
	CreatedAt time.Time

	inbox  chan request
	done   chan struct{}
	closed sync.Once
	wg     sync.WaitGroup

	source   CatalogSource
	onChange ChangeFunc
	logger   *slog.Logger

	current    atomic.Pointer[Snapshot]
	lastActive atomic.Int64 // unix nanos
}

func newSession(id string, now time.Time, source CatalogSource, onChange ChangeFunc, logger *slog.Logger) *Session {
	s := &Session{
		ID:        id,
		CreatedAt: now,
		inbox:     make(chan request, 16),
		done:      make(chan struct{}),
		source:    source,
		onChange:  onChange,
		logger:    logger.With(slog.String("session_id", id)),
	}
	s.current.Store(&Snapshot{State: catalog.NewState(source.Snapshot())})
	s.lastActive.Store(now.UnixNano())

	s.wg.Add(1)
	go s.run()
	return s
}

func (s *Session) run() {
	defer s.wg.Done()
	for {
		select {
		case req := <-s.inbox:
			req.reply <- s.apply(req.events)
		case <-s.done:
			return
		}
	}
}

// apply runs on the loop goroutine only. The shared catalog is synced
// before each batch so every event sees the latest listings.
func (s *Session) apply(events []catalog.Event) Snapshot {
	prev := s.current.Load()
	batch := make([]catalog.Event, 0, len(events)+1)
	batch = append(batch, catalog.SyncCatalog{Catalog: s.source.Snapshot()})
	batch = append(batch, events...)

	next := &Snapshot{
		State:   catalog.Reduce(prev.State, batch...),
		Version: prev.Version + 1,
	}
	s.current.Store(next)

	if s.onChange != nil {
		s.onChange(s.ID, *next)
	}
	return *next
}

// Dispatch applies events in order and returns the resulting snapshot.
// It blocks until the loop has applied them or ctx is done.
func (s *Session) Dispatch(ctx context.Context, events ...catalog.Event) (Snapshot, error) {
	s.touch()
	req := request{events: events, reply: make(chan Snapshot, 1)}

	select {
	case s.inbox <- req:
	case <-s.done:
		return Snapshot{}, ErrClosed
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}

	select {
	case snap := <-req.reply:
		return snap, nil
	case <-s.done:
		return Snapshot{}, ErrClosed
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// Snapshot returns the latest applied state without going through the loop.
// The shared catalog is refreshed into the copy so reads see new listings.
func (s *Session) Snapshot() Snapshot {
	s.touch()
	snap := *s.current.Load()
	snap.State = catalog.Reduce(snap.State, catalog.SyncCatalog{Catalog: s.source.Snapshot()})
	return snap
}

// LastActive returns when the session was last read or written.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

// Close stops the loop. Pending and later dispatches fail with ErrClosed.
func (s *Session) Close() {
	s.closed.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}
