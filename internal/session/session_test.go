package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meraroom/meraroom-server/internal/catalog"
	"github.com/meraroom/meraroom-server/internal/domain"
	domainerrors "github.com/meraroom/meraroom-server/internal/errors"
)

type fixedSource struct {
	mu sync.Mutex
	c  catalog.Catalog
}

func (f *fixedSource) Snapshot() catalog.Catalog {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.c
}

func (f *fixedSource) prepend(r domain.Room) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c = f.c.Prepend(r)
}

func newSource() *fixedSource {
	return &fixedSource{c: catalog.New(
		domain.Room{ID: "1", Title: "Sunny Studio", Price: 15000, Amenities: []string{"Wifi", "AC"}},
		domain.Room{ID: "2", Title: "Cozy 1BHK", Price: 22000, Amenities: []string{"Parking"}},
	)}
}

func newTestManager(t *testing.T, opts Options) (*Manager, *fixedSource) {
	t.Helper()
	src := newSource()
	m := NewManager(src, opts, slog.New(slog.DiscardHandler))
	t.Cleanup(m.Shutdown)
	return m, src
}

func TestSession_DispatchAppliesInOrder(t *testing.T) {
	m, _ := newTestManager(t, Options{})
	s, err := m.Create()
	require.NoError(t, err)

	snap, err := s.Dispatch(context.Background(),
		catalog.SetMinPrice{Price: catalog.Price(20000)},
		catalog.ToggleSaved{RoomID: "1"},
		catalog.Navigate{Screen: catalog.ScreenSaved},
	)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Version)

	view := snap.View()
	assert.Equal(t, catalog.ScreenSaved, view.Screen)
	require.Len(t, view.Visible, 1)
	assert.Equal(t, "2", view.Visible[0].ID)
	require.Len(t, view.Saved, 1)
	assert.Equal(t, "1", view.Saved[0].ID)
	assert.Equal(t, 1, view.ActiveFilterCount)

	assert.Equal(t, snap.Version, s.Snapshot().Version)
}

func TestSession_SyncsSharedCatalog(t *testing.T) {
	m, src := newTestManager(t, Options{})
	s, err := m.Create()
	require.NoError(t, err)

	src.prepend(domain.Room{ID: "3", Title: "Shared Room", Price: 18000})

	assert.Equal(t, 3, s.Snapshot().View().CatalogSize)

	snap, err := s.Dispatch(context.Background(), catalog.SetSort{Sort: catalog.SortNewest})
	require.NoError(t, err)
	ids := []string{}
	for _, r := range snap.View().Visible {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"3", "2", "1"}, ids)
}

func TestSession_ConcurrentDispatchIsSerialized(t *testing.T) {
	m, _ := newTestManager(t, Options{})
	s, err := m.Create()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			_, err := s.Dispatch(context.Background(), catalog.ToggleTheme{})
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.Equal(t, uint64(50), snap.Version)
	// An even number of toggles lands back on light.
	assert.Equal(t, catalog.ThemeLight, snap.State.Theme)
}

func TestSession_OnChange(t *testing.T) {
	var calls atomic.Int32
	var lastVersion atomic.Uint64
	m, _ := newTestManager(t, Options{OnChange: func(sid string, snap Snapshot) {
		calls.Add(1)
		lastVersion.Store(snap.Version)
	}})
	s, err := m.Create()
	require.NoError(t, err)

	_, err = s.Dispatch(context.Background(), catalog.ToggleSaved{RoomID: "1"})
	require.NoError(t, err)
	_, err = s.Dispatch(context.Background(), catalog.ToggleSaved{RoomID: "1"})
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, uint64(2), lastVersion.Load())
}

func TestSession_DispatchAfterClose(t *testing.T) {
	m, _ := newTestManager(t, Options{})
	s, err := m.Create()
	require.NoError(t, err)

	require.NoError(t, m.Delete(s.ID))
	_, err = s.Dispatch(context.Background(), catalog.ToggleTheme{})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSession_DispatchCanceled(t *testing.T) {
	m, _ := newTestManager(t, Options{})
	s, err := m.Create()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Either the loop wins the race or the context does; both are valid,
	// but a canceled context must never hang.
	done := make(chan struct{})
	go func() {
		_, _ = s.Dispatch(ctx, catalog.ToggleTheme{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatch with canceled context hung")
	}
}

func TestManager_GetAndDelete(t *testing.T) {
	var closed []string
	m, _ := newTestManager(t, Options{OnClose: func(sid string) { closed = append(closed, sid) }})

	s, err := m.Create()
	require.NoError(t, err)
	assert.True(t, m.Exists(s.ID))
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, m.Delete(s.ID))
	assert.False(t, m.Exists(s.ID))
	assert.Equal(t, []string{s.ID}, closed)

	_, err = m.Get(s.ID)
	assert.Equal(t, domainerrors.CodeNotFound, domainerrors.CodeOf(err))
	assert.Equal(t, domainerrors.CodeNotFound, domainerrors.CodeOf(m.Delete(s.ID)))
}

func TestManager_Sweep(t *testing.T) {
	m, _ := newTestManager(t, Options{IdleTTL: time.Hour})

	stale, err := m.Create()
	require.NoError(t, err)
	fresh, err := m.Create()
	require.NoError(t, err)

	stale.lastActive.Store(time.Now().Add(-2 * time.Hour).UnixNano())

	assert.Equal(t, 1, m.Sweep())
	assert.False(t, m.Exists(stale.ID))
	assert.True(t, m.Exists(fresh.ID))
}

func TestManager_ShutdownRejectsCreate(t *testing.T) {
	m, _ := newTestManager(t, Options{})
	s, err := m.Create()
	require.NoError(t, err)

	m.Shutdown()
	assert.Equal(t, 0, m.Len())

	_, err = s.Dispatch(context.Background(), catalog.ToggleTheme{})
	assert.ErrorIs(t, err, ErrClosed)

	_, err = m.Create()
	assert.Error(t, err)
}
