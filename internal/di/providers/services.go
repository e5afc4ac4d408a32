package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/meraroom/meraroom-server/internal/assistant"
	"github.com/meraroom/meraroom-server/internal/auth"
	"github.com/meraroom/meraroom-server/internal/config"
	"github.com/meraroom/meraroom-server/internal/domain"
	"github.com/meraroom/meraroom-server/internal/id"
	"github.com/meraroom/meraroom-server/internal/logger"
	"github.com/meraroom/meraroom-server/internal/seed"
	"github.com/meraroom/meraroom-server/internal/service"
	"github.com/meraroom/meraroom-server/internal/session"
	"github.com/meraroom/meraroom-server/internal/sse"
	"github.com/meraroom/meraroom-server/internal/validation"
)

// ProvideCatalogService provides the room catalog, loaded with the starter
// listings unless seeding is disabled.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	v := do.MustInvoke[*validation.Validator](i)

	svc := service.NewCatalogService(storeHandle.Store, indexHandle.SearchIndex, id.NewRoomSequence(), v, log.Logger)

	if !cfg.Catalog.Seed {
		log.Info("Catalog seeding disabled, starting empty")
		return svc, nil
	}

	rooms, err := loadSeed(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	if err := svc.Seed(context.Background(), rooms); err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}

	docCount, _ := indexHandle.DocumentCount()
	log.Info("Catalog seeded",
		"rooms", len(rooms),
		"indexed", docCount,
		"seed_file", cfg.Catalog.SeedFile,
	)
	return svc, nil
}

func loadSeed(cfg config.CatalogConfig) ([]domain.Room, error) {
	if cfg.SeedFile != "" {
		return seed.Load(cfg.SeedFile)
	}
	return seed.Default()
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	usersHandle := do.MustInvoke[*UserStoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(usersHandle.Store, tokenService, v, log.Logger), nil
}

// ProvideAssistant provides the listing assistant. Without an API key it
// answers every request with placeholder text.
func ProvideAssistant(i do.Injector) (*assistant.Assistant, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Assistant.Enabled() {
		log.Warn("Assistant API key not configured, using placeholder replies")
		return assistant.New(nil, log.Logger), nil
	}

	client := assistant.NewClient(cfg.Assistant, log.Logger)
	log.Info("Assistant configured",
		"model", cfg.Assistant.Model,
		"requests_per_minute", cfg.Assistant.RequestsPerMinute,
	)
	return assistant.New(client, log.Logger), nil
}

// SessionManagerHandle wraps the session manager with shutdown capability.
type SessionManagerHandle struct {
	*session.Manager
}

// Shutdown implements do.Shutdownable.
func (h *SessionManagerHandle) Shutdown() error {
	h.Manager.Shutdown()
	return nil
}

// ProvideSessionManager provides the registry of browsing sessions. Every
// state change is announced to the session's event streams, and ending a
// session closes them.
func ProvideSessionManager(i do.Injector) (*SessionManagerHandle, error) {
	catalogService := do.MustInvoke[*service.CatalogService](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	manager := session.NewManager(catalogService, session.Options{
		IdleTTL: session.DefaultIdleTTL,
		OnChange: func(sessionID string, snap session.Snapshot) {
			sseHandle.Emit(sse.NewSessionUpdatedEvent(sessionID, snap.State.Nav.Screen.String(), snap.Version))
		},
		OnClose: sseHandle.DisconnectSession,
	}, log.Logger)

	return &SessionManagerHandle{Manager: manager}, nil
}

// SessionServiceHandle wraps the session service so pending assistant
// tasks are drained on shutdown.
type SessionServiceHandle struct {
	*service.SessionService
}

// Shutdown implements do.Shutdownable.
func (h *SessionServiceHandle) Shutdown() error {
	h.SessionService.Shutdown()
	return nil
}

// ProvideSessionService provides the per-session operations.
func ProvideSessionService(i do.Injector) (*SessionServiceHandle, error) {
	managerHandle := do.MustInvoke[*SessionManagerHandle](i)
	catalogService := do.MustInvoke[*service.CatalogService](i)
	authService := do.MustInvoke[*service.AuthService](i)
	ai := do.MustInvoke[*assistant.Assistant](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewSessionService(managerHandle.Manager, catalogService, authService, ai, sseHandle.Manager, v, log.Logger)
	return &SessionServiceHandle{SessionService: svc}, nil
}
