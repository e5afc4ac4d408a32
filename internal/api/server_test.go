package api

import (
	"context"
	"encoding/json/v2"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/meraroom/meraroom-server/internal/assistant"
	"github.com/meraroom/meraroom-server/internal/auth"
	"github.com/meraroom/meraroom-server/internal/config"
	"github.com/meraroom/meraroom-server/internal/id"
	"github.com/meraroom/meraroom-server/internal/search"
	"github.com/meraroom/meraroom-server/internal/seed"
	"github.com/meraroom/meraroom-server/internal/service"
	"github.com/meraroom/meraroom-server/internal/session"
	"github.com/meraroom/meraroom-server/internal/sse"
	"github.com/meraroom/meraroom-server/internal/store"
	"github.com/meraroom/meraroom-server/internal/store/sqlite"
	"github.com/meraroom/meraroom-server/internal/validation"
)

// testServer wraps the API server for testing.
type testServer struct {
	*Server
	api        humatest.TestAPI
	sseManager *sse.Manager
}

func defaultServerConfig() config.ServerConfig {
	return config.ServerConfig{AuthRateLimit: 100, AssistantRateLimit: 100}
}

// setupTestServer creates a server over a seeded in-memory catalog, a
// temporary user database and an assistant without an API key.
func setupTestServer(t *testing.T, cfg config.ServerConfig) *testServer {
	t.Helper()
	tmpDir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)
	ctx := context.Background()

	sseManager := sse.NewManager(logger)
	sseCtx, cancel := context.WithCancel(ctx)
	go sseManager.Start(sseCtx)
	t.Cleanup(func() {
		cancel()
		_ = sseManager.Shutdown(context.Background())
	})

	st, err := store.New(logger, sseManager)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	index, err := search.NewSearchIndex(search.Options{Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	users, err := sqlite.Open(filepath.Join(tmpDir, "users.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = users.Close() })

	key, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)
	tokenService, err := auth.NewTokenService(key, 15*time.Minute)
	require.NoError(t, err)

	v := validation.New()
	catalogService := service.NewCatalogService(st, index, id.NewRoomSequence(), v, logger)
	rooms, err := seed.Default()
	require.NoError(t, err)
	require.NoError(t, catalogService.Seed(ctx, rooms))

	authService := service.NewAuthService(users, tokenService, v, logger)

	sessions := session.NewManager(catalogService, session.Options{
		OnClose: sseManager.DisconnectSession,
	}, logger)
	t.Cleanup(sessions.Shutdown)

	sessionService := service.NewSessionService(sessions, catalogService, authService,
		assistant.New(nil, logger), sseManager, v, logger)
	t.Cleanup(sessionService.Shutdown)

	services := &Services{
		Catalog: catalogService,
		Auth:    authService,
		Session: sessionService,
	}

	s := NewServer(services, index, sseManager, cfg, logger)
	t.Cleanup(s.Close)

	return &testServer{
		Server:     s,
		api:        humatest.Wrap(t, s.api),
		sseManager: sseManager,
	}
}

// envelope is the decoded response wrapper.
type envelope[T any] struct {
	Data    T      `json:"data"`
	Details any    `json:"details"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Version int    `json:"v"`
	Success bool   `json:"success"`
}

func decodeEnvelope[T any](t *testing.T, body []byte) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return env
}
