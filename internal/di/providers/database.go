package providers

import (
	"context"
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/meraroom/meraroom-server/internal/config"
	"github.com/meraroom/meraroom-server/internal/logger"
	"github.com/meraroom/meraroom-server/internal/sse"
	"github.com/meraroom/meraroom-server/internal/store"
	"github.com/meraroom/meraroom-server/internal/store/sqlite"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// StoreHandle wraps the room store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the in-memory room store. Posted rooms are announced
// through the SSE manager.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	db, err := store.New(log.Logger, sseHandle.Manager)
	if err != nil {
		return nil, err
	}

	log.Info("Room store initialized")

	return &StoreHandle{Store: db}, nil
}

// UserStoreHandle wraps the account database with shutdown capability.
type UserStoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *UserStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideUserStore opens the sqlite account database under the data path.
func ProvideUserStore(i do.Injector) (*UserStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Data.Path, 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	path := cfg.Data.UsersDBPath()
	db, err := sqlite.Open(path, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("User database initialized", "path", path)

	return &UserStoreHandle{Store: db}, nil
}
