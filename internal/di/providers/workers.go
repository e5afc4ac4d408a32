package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/meraroom/meraroom-server/internal/config"
	"github.com/meraroom/meraroom-server/internal/logger"
	"github.com/meraroom/meraroom-server/internal/seed"
	"github.com/meraroom/meraroom-server/internal/service"
	"github.com/meraroom/meraroom-server/internal/watcher"
)

// SessionSweeperHandle runs the idle-session sweep in the background.
type SessionSweeperHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (h *SessionSweeperHandle) Shutdown() error {
	h.cancel()
	<-h.done
	return nil
}

// ProvideSessionSweeper starts expiring sessions that have been idle longer
// than the manager's TTL.
func ProvideSessionSweeper(i do.Injector) (*SessionSweeperHandle, error) {
	managerHandle := do.MustInvoke[*SessionManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		managerHandle.Run(ctx, sessionSweepInterval)
	}()

	log.Info("Session sweeper started", "interval", sessionSweepInterval)

	return &SessionSweeperHandle{cancel: cancel, done: done}, nil
}

// SeedWatcherHandle publishes rooms appended to the seed file. It is inert
// when no seed file is configured or watching is off.
type SeedWatcherHandle struct {
	watcher *watcher.Watcher
	cancel  context.CancelFunc
	done    chan struct{}
}

// Shutdown implements do.Shutdownable.
func (h *SeedWatcherHandle) Shutdown() error {
	if h.watcher == nil {
		return nil
	}
	h.cancel()
	<-h.done
	return h.watcher.Close()
}

// ProvideSeedWatcher watches cfg.Catalog.SeedFile and hands every settled
// rewrite to CatalogService.AddListings. A file that fails to parse is
// logged and skipped; the catalog keeps what it has.
func ProvideSeedWatcher(i do.Injector) (*SeedWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	catalogService := do.MustInvoke[*service.CatalogService](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Catalog.Seed || cfg.Catalog.SeedFile == "" || !cfg.Catalog.WatchSeed {
		return &SeedWatcherHandle{}, nil
	}

	w, err := watcher.New(cfg.Catalog.SeedFile, log.Logger, watcher.Options{})
	if err != nil {
		return nil, fmt.Errorf("watch seed file: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx, func() { reloadSeed(ctx, cfg.Catalog.SeedFile, catalogService, log) })
	}()

	log.Info("Watching seed file for new listings", "seed_file", cfg.Catalog.SeedFile)
	return &SeedWatcherHandle{watcher: w, cancel: cancel, done: done}, nil
}

func reloadSeed(ctx context.Context, path string, catalogService *service.CatalogService, log *logger.Logger) {
	rooms, err := seed.Load(path)
	if err != nil {
		log.Warn("Seed file reload skipped", "seed_file", path, "error", err)
		return
	}
	if _, err := catalogService.AddListings(ctx, rooms); err != nil {
		log.Error("Seed file reload failed", "seed_file", path, "error", err)
	}
}
