package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meraroom/meraroom-server/internal/assistant"
	"github.com/meraroom/meraroom-server/internal/catalog"
	domainerrors "github.com/meraroom/meraroom-server/internal/errors"
	"github.com/meraroom/meraroom-server/internal/session"
	"github.com/meraroom/meraroom-server/internal/sse"
)

// gatedGenerator replies with reply once release is closed.
type gatedGenerator struct {
	reply   string
	release chan struct{}
}

func newGatedGenerator(reply string) *gatedGenerator {
	return &gatedGenerator{reply: reply, release: make(chan struct{})}
}

func (g *gatedGenerator) Generate(ctx context.Context, _ string) (string, error) {
	select {
	case <-g.release:
		return g.reply, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

type sessionFixture struct {
	svc     *SessionService
	catalog *CatalogService
	emitter *recordingEmitter
}

func setupSessionService(t *testing.T, gen assistant.Generator) *sessionFixture {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	emitter := &recordingEmitter{}

	catalogService := setupCatalogService(t, emitter)
	authService, _ := setupAuthTest(t)

	sessions := session.NewManager(catalogService, session.Options{}, logger)
	t.Cleanup(sessions.Shutdown)

	ai := assistant.New(gen, logger)
	svc := NewSessionService(sessions, catalogService, authService, ai, emitter, catalogService.validator, logger)
	t.Cleanup(svc.Shutdown)
	return &sessionFixture{svc: svc, catalog: catalogService, emitter: emitter}
}

func (f *sessionFixture) create(t *testing.T) string {
	t.Helper()
	view, err := f.svc.Create(context.Background())
	require.NoError(t, err)
	return view.ID
}

func TestSessionService_CreateStartsHome(t *testing.T) {
	f := setupSessionService(t, nil)

	view, err := f.svc.Create(context.Background())
	require.NoError(t, err)
	assert.Equal(t, catalog.ScreenHome, view.View.Screen)
	assert.Equal(t, []string{"1", "2", "3"}, roomIDs(view.View.Visible))
	assert.Zero(t, view.View.ActiveFilterCount)
	assert.True(t, f.svc.Exists(view.ID))
}

func TestSessionService_GetUnknown(t *testing.T) {
	f := setupSessionService(t, nil)

	_, err := f.svc.Get(context.Background(), "sess-missing")
	assert.Equal(t, domainerrors.CodeNotFound, domainerrors.CodeOf(err))
}

func TestSessionService_UpdateQuery(t *testing.T) {
	f := setupSessionService(t, nil)
	ctx := context.Background()
	sid := f.create(t)

	view, err := f.svc.UpdateQuery(ctx, sid, QueryRequest{
		MinPrice: catalog.Price(16000),
		Sort:     "PRICE_HIGH_LOW",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3"}, roomIDs(view.View.Visible))
	assert.Equal(t, 2, view.View.ActiveFilterCount)

	view, err = f.svc.UpdateQuery(ctx, sid, QueryRequest{Search: "bandra"})
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, roomIDs(view.View.Visible))
	assert.Zero(t, view.View.ActiveFilterCount, "search text is not a filter")
}

func TestSessionService_UpdateQueryRejectsBadInput(t *testing.T) {
	f := setupSessionService(t, nil)
	ctx := context.Background()
	sid := f.create(t)

	_, err := f.svc.UpdateQuery(ctx, sid, QueryRequest{Sort: "CHEAPEST"})
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))

	_, err = f.svc.UpdateQuery(ctx, sid, QueryRequest{MinPrice: catalog.Price(-5)})
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))
}

func TestSessionService_AmenitiesAndClear(t *testing.T) {
	f := setupSessionService(t, nil)
	ctx := context.Background()
	sid := f.create(t)

	_, err := f.svc.ToggleAmenity(ctx, sid, "Wifi")
	require.NoError(t, err)
	view, err := f.svc.ToggleAmenity(ctx, sid, "AC")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, roomIDs(view.View.Visible))
	assert.Equal(t, 2, view.View.ActiveFilterCount)
	assert.True(t, view.View.ShowClear)

	_, err = f.svc.ToggleAmenity(ctx, sid, "Helipad")
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))

	view, err = f.svc.ClearFilters(ctx, sid)
	require.NoError(t, err)
	assert.Len(t, view.View.Visible, 3)
	assert.False(t, view.View.ShowClear)
}

func TestSessionService_SavedIgnoresQuery(t *testing.T) {
	f := setupSessionService(t, nil)
	ctx := context.Background()
	sid := f.create(t)

	_, err := f.svc.UpdateQuery(ctx, sid, QueryRequest{Search: "nowhere"})
	require.NoError(t, err)
	_, err = f.svc.ToggleSaved(ctx, sid, "2")
	require.NoError(t, err)
	view, err := f.svc.ToggleSaved(ctx, sid, "1")
	require.NoError(t, err)

	assert.Empty(t, view.View.Visible)
	assert.Equal(t, []string{"1", "2"}, roomIDs(view.View.Saved))

	view, err = f.svc.ToggleSaved(ctx, sid, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, roomIDs(view.View.Saved))
}

func TestSessionService_NavigateDoesNotRestoreSelection(t *testing.T) {
	f := setupSessionService(t, nil)
	ctx := context.Background()
	sid := f.create(t)

	view, err := f.svc.SelectRoom(ctx, sid, "2")
	require.NoError(t, err)
	assert.Equal(t, catalog.ScreenRoomDetail, view.View.Screen)
	require.NotNil(t, view.View.Detail)
	assert.Equal(t, "2", view.View.Detail.ID)

	_, err = f.svc.Navigate(ctx, sid, "HOME")
	require.NoError(t, err)
	view, err = f.svc.Navigate(ctx, sid, "ROOM_DETAIL")
	require.NoError(t, err)
	assert.Nil(t, view.View.Detail)

	_, err = f.svc.Navigate(ctx, sid, "SETTINGS")
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))

	_, err = f.svc.SelectRoom(ctx, sid, "404")
	assert.Equal(t, domainerrors.CodeNotFound, domainerrors.CodeOf(err))
}

func TestSessionService_PostRoomVisibleToOtherSessions(t *testing.T) {
	f := setupSessionService(t, nil)
	ctx := context.Background()
	poster := f.create(t)
	viewer := f.create(t)

	_, err := f.svc.Navigate(ctx, poster, "POST_ROOM")
	require.NoError(t, err)

	room, view, err := f.svc.PostRoom(ctx, poster, PostRoomRequest{Title: "Attic Room", Price: catalog.Price(9000)})
	require.NoError(t, err)
	assert.Equal(t, catalog.ScreenHome, view.View.Screen)
	assert.Equal(t, room.ID, view.View.Visible[0].ID)
	assert.Equal(t, 4, view.View.CatalogSize)

	other, err := f.svc.Get(ctx, viewer)
	require.NoError(t, err)
	assert.Equal(t, room.ID, other.View.Visible[0].ID)
}

func TestSessionService_PostRoomNeedsNoLogin(t *testing.T) {
	f := setupSessionService(t, nil)
	sid := f.create(t)

	_, view, err := f.svc.PostRoom(context.Background(), sid, PostRoomRequest{Title: "Guest Post", Price: catalog.Price(100)})
	require.NoError(t, err)
	assert.Nil(t, view.View.User)
}

func TestSessionService_LoginLogout(t *testing.T) {
	f := setupSessionService(t, nil)
	ctx := context.Background()
	sid := f.create(t)

	_, err := f.svc.auth.Register(ctx, RegisterRequest{Username: "ravi", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.svc.Navigate(ctx, sid, "LOGIN")
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, sid, LoginRequest{Username: "ravi", Password: "nope-nope"})
	assert.Equal(t, domainerrors.CodeBadPassword, domainerrors.CodeOf(err))

	login, err := f.svc.Login(ctx, sid, LoginRequest{Username: "ravi", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Auth.Token)
	require.NotNil(t, login.Session.View.User)
	assert.Equal(t, "ravi", login.Session.View.User.Username)
	assert.Equal(t, catalog.ScreenHome, login.Session.View.Screen)

	view, err := f.svc.Logout(ctx, sid)
	require.NoError(t, err)
	assert.Nil(t, view.View.User)
}

func TestSessionService_ToggleTheme(t *testing.T) {
	f := setupSessionService(t, nil)
	sid := f.create(t)

	view, err := f.svc.ToggleTheme(context.Background(), sid)
	require.NoError(t, err)
	assert.Equal(t, catalog.ThemeDark, view.View.Theme)
}

func TestSessionService_DescribeWithoutKey(t *testing.T) {
	f := setupSessionService(t, nil)
	ctx := context.Background()
	sid := f.create(t)

	req := DescribeRequest{Title: "Studio", Location: "Pune", Features: "Wifi"}

	_, err := f.svc.Describe(ctx, sid, req)
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err), "only the post room form can request a description")

	_, err = f.svc.Navigate(ctx, sid, "POST_ROOM")
	require.NoError(t, err)

	_, err = f.svc.Describe(ctx, sid, DescribeRequest{Title: "Studio"})
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))

	task, err := f.svc.Describe(ctx, sid, req)
	require.NoError(t, err)
	assert.NotEmpty(t, task.TaskID)
	assert.True(t, task.Session.View.Draft.Describing())

	require.Eventually(t, func() bool {
		return len(f.emitter.ofType(sse.EventDescriptionReady)) == 1
	}, time.Second, 10*time.Millisecond)

	view, err := f.svc.Get(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, assistant.DescribeUnavailable, view.View.Draft.Description)
	assert.False(t, view.View.Draft.Describing())

	data := f.emitter.ofType(sse.EventDescriptionReady)[0].Data.(sse.DescriptionReadyEventData)
	assert.Equal(t, task.TaskID, data.TaskID)
	assert.True(t, data.Applied)
}

func TestSessionService_DescribeOnePending(t *testing.T) {
	gen := newGatedGenerator("A bright studio.")
	f := setupSessionService(t, gen)
	ctx := context.Background()
	sid := f.create(t)

	_, err := f.svc.Navigate(ctx, sid, "POST_ROOM")
	require.NoError(t, err)

	req := DescribeRequest{Title: "Studio", Location: "Pune", Features: "Wifi"}
	_, err = f.svc.Describe(ctx, sid, req)
	require.NoError(t, err)

	_, err = f.svc.Describe(ctx, sid, req)
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))

	close(gen.release)
	require.Eventually(t, func() bool {
		view, err := f.svc.Get(ctx, sid)
		return err == nil && view.View.Draft.Description == "A bright studio."
	}, time.Second, 10*time.Millisecond)
}

func TestSessionService_StaleDescriptionDropped(t *testing.T) {
	gen := newGatedGenerator("Too late.")
	f := setupSessionService(t, gen)
	ctx := context.Background()
	sid := f.create(t)

	_, err := f.svc.Navigate(ctx, sid, "POST_ROOM")
	require.NoError(t, err)
	_, err = f.svc.Describe(ctx, sid, DescribeRequest{Title: "Studio", Location: "Pune", Features: "Wifi"})
	require.NoError(t, err)

	_, err = f.svc.Navigate(ctx, sid, "HOME")
	require.NoError(t, err)
	close(gen.release)

	require.Eventually(t, func() bool {
		return len(f.emitter.ofType(sse.EventDescriptionReady)) == 1
	}, time.Second, 10*time.Millisecond)

	data := f.emitter.ofType(sse.EventDescriptionReady)[0].Data.(sse.DescriptionReadyEventData)
	assert.False(t, data.Applied)

	view, err := f.svc.Get(ctx, sid)
	require.NoError(t, err)
	assert.Empty(t, view.View.Draft.Description)
}

func TestSessionService_Ask(t *testing.T) {
	gen := newGatedGenerator("Yes, **Wifi** is included.")
	f := setupSessionService(t, gen)
	ctx := context.Background()
	sid := f.create(t)

	_, err := f.svc.Ask(ctx, sid, AskRequest{Question: "Is there wifi?"})
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err), "no room open")

	_, err = f.svc.SelectRoom(ctx, sid, "1")
	require.NoError(t, err)

	task, err := f.svc.Ask(ctx, sid, AskRequest{Question: "  Is there wifi? "})
	require.NoError(t, err)
	require.Len(t, task.Session.View.Chat.Messages, 1)
	assert.Equal(t, "Is there wifi?", task.Session.View.Chat.Messages[0].Text)
	assert.True(t, task.Session.View.Chat.Asking())

	_, err = f.svc.Ask(ctx, sid, AskRequest{Question: "And parking?"})
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))

	close(gen.release)
	require.Eventually(t, func() bool {
		return len(f.emitter.ofType(sse.EventAnswerReady)) == 1
	}, time.Second, 10*time.Millisecond)

	view, err := f.svc.Get(ctx, sid)
	require.NoError(t, err)
	require.Len(t, view.View.Chat.Messages, 2)
	assert.Equal(t, catalog.ChatRoleAssistant, view.View.Chat.Messages[1].Role)
	assert.Equal(t, "Yes, Wifi is included.", view.View.Chat.Messages[1].Text)

	data := f.emitter.ofType(sse.EventAnswerReady)[0].Data.(sse.AnswerReadyEventData)
	assert.True(t, data.Applied)
	assert.Equal(t, "1", data.RoomID)
}

func TestSessionService_AnswerAfterLeavingRoomDropped(t *testing.T) {
	gen := newGatedGenerator("It has AC.")
	f := setupSessionService(t, gen)
	ctx := context.Background()
	sid := f.create(t)

	_, err := f.svc.SelectRoom(ctx, sid, "1")
	require.NoError(t, err)
	_, err = f.svc.Ask(ctx, sid, AskRequest{Question: "AC?"})
	require.NoError(t, err)

	_, err = f.svc.SelectRoom(ctx, sid, "2")
	require.NoError(t, err)
	close(gen.release)

	require.Eventually(t, func() bool {
		return len(f.emitter.ofType(sse.EventAnswerReady)) == 1
	}, time.Second, 10*time.Millisecond)

	data := f.emitter.ofType(sse.EventAnswerReady)[0].Data.(sse.AnswerReadyEventData)
	assert.False(t, data.Applied)

	view, err := f.svc.Get(ctx, sid)
	require.NoError(t, err)
	assert.Empty(t, view.View.Chat.Messages)
}

func TestSessionService_Delete(t *testing.T) {
	f := setupSessionService(t, nil)
	ctx := context.Background()
	sid := f.create(t)

	require.NoError(t, f.svc.Delete(ctx, sid))
	assert.False(t, f.svc.Exists(sid))

	_, err := f.svc.ToggleTheme(ctx, sid)
	assert.Equal(t, domainerrors.CodeNotFound, domainerrors.CodeOf(err))
}
