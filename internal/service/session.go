package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/meraroom/meraroom-server/internal/assistant"
	"github.com/meraroom/meraroom-server/internal/catalog"
	"github.com/meraroom/meraroom-server/internal/domain"
	domainerrors "github.com/meraroom/meraroom-server/internal/errors"
	"github.com/meraroom/meraroom-server/internal/id"
	"github.com/meraroom/meraroom-server/internal/session"
	"github.com/meraroom/meraroom-server/internal/sse"
	"github.com/meraroom/meraroom-server/internal/store"
	"github.com/meraroom/meraroom-server/internal/validation"
)

// SessionService turns client calls into session events. Every state change
// goes through the session's event loop.
type SessionService struct {
	sessions  *session.Manager
	catalog   *CatalogService
	auth      *AuthService
	assistant *assistant.Assistant
	emitter   store.EventEmitter
	validator *validation.Validator
	logger    *slog.Logger

	// Assistant tasks outlive the request that started them.
	ctx    context.Context
	cancel context.CancelFunc
	tasks  sync.WaitGroup
}

// NewSessionService creates a session service.
func NewSessionService(
	sessions *session.Manager,
	catalogService *CatalogService,
	authService *AuthService,
	ai *assistant.Assistant,
	emitter store.EventEmitter,
	v *validation.Validator,
	logger *slog.Logger,
) *SessionService {
	if emitter == nil {
		emitter = store.NewNoopEmitter()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionService{
		sessions:  sessions,
		catalog:   catalogService,
		auth:      authService,
		assistant: ai,
		emitter:   emitter,
		validator: v,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// SessionView is a session's derived view at a given version.
type SessionView struct {
	ID      string
	Version uint64
	View    catalog.View
}

func newSessionView(sessionID string, snap session.Snapshot) *SessionView {
	return &SessionView{ID: sessionID, Version: snap.Version, View: snap.View()}
}

// QueryRequest replaces the whole query state. Omitted bounds are unbounded.
type QueryRequest struct {
	Search    string   `json:"search,omitempty" validate:"max=200"`
	MinPrice  *int64   `json:"min_price,omitempty" validate:"omitnil,gte=0"`
	MaxPrice  *int64   `json:"max_price,omitempty" validate:"omitnil,gte=0"`
	Amenities []string `json:"amenities,omitempty" validate:"max=20,dive,notblank"`
	Sort      string   `json:"sort,omitempty"`
}

// DescribeRequest asks the assistant to draft a listing description.
type DescribeRequest struct {
	Title    string `json:"title" validate:"notblank"`
	Location string `json:"location" validate:"notblank"`
	Features string `json:"features" validate:"notblank"`
}

// AskRequest asks the assistant about the room on the detail screen.
type AskRequest struct {
	Question string `json:"question" validate:"notblank,max=500"`
}

// TaskView is returned when an assistant task has been accepted.
type TaskView struct {
	TaskID  string
	Session *SessionView
}

// LoginView is a successful session login.
type LoginView struct {
	Auth    *AuthResponse
	Session *SessionView
}

// Create starts a session on the home screen.
func (s *SessionService) Create(_ context.Context) (*SessionView, error) {
	sess, err := s.sessions.Create()
	if err != nil {
		return nil, err
	}
	return newSessionView(sess.ID, sess.Snapshot()), nil
}

// Get returns the current view of a session.
func (s *SessionService) Get(_ context.Context, sessionID string) (*SessionView, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return newSessionView(sess.ID, sess.Snapshot()), nil
}

// Delete ends a session.
func (s *SessionService) Delete(_ context.Context, sessionID string) error {
	return s.sessions.Delete(sessionID)
}

// Exists reports whether a session is live.
func (s *SessionService) Exists(sessionID string) bool {
	return s.sessions.Exists(sessionID)
}

func (s *SessionService) dispatch(ctx context.Context, sessionID string, events ...catalog.Event) (*SessionView, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	snap, err := sess.Dispatch(ctx, events...)
	if errors.Is(err, session.ErrClosed) {
		return nil, domainerrors.NotFoundf("session %s not found", sessionID)
	}
	if err != nil {
		return nil, err
	}
	return newSessionView(sessionID, snap), nil
}

// UpdateQuery replaces the session's query state.
func (s *SessionService) UpdateQuery(ctx context.Context, sessionID string, req QueryRequest) (*SessionView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	sortOpt, err := catalog.ParseSortOption(req.Sort)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}
	q := catalog.Query{
		Search:    req.Search,
		MinPrice:  req.MinPrice,
		MaxPrice:  req.MaxPrice,
		Amenities: dedupe(req.Amenities),
		Sort:      sortOpt,
	}
	if err := q.Validate(); err != nil {
		return nil, domainerrors.Validation(err.Error())
	}
	return s.dispatch(ctx, sessionID, catalog.ReplaceQuery{Query: q})
}

// ToggleAmenity selects or deselects one amenity filter.
func (s *SessionService) ToggleAmenity(ctx context.Context, sessionID, amenity string) (*SessionView, error) {
	if !domain.IsKnownAmenity(amenity) {
		return nil, domainerrors.Validationf("unknown amenity %q", amenity)
	}
	return s.dispatch(ctx, sessionID, catalog.ToggleAmenity{Amenity: amenity})
}

// ClearFilters resets the query, search text included.
func (s *SessionService) ClearFilters(ctx context.Context, sessionID string) (*SessionView, error) {
	return s.dispatch(ctx, sessionID, catalog.ClearFilters{})
}

// ToggleSaved flips a room's saved membership. Unknown ids are accepted;
// the saved view drops ids without a room.
func (s *SessionService) ToggleSaved(ctx context.Context, sessionID, roomID string) (*SessionView, error) {
	if strings.TrimSpace(roomID) == "" {
		return nil, domainerrors.Validation("room id is required")
	}
	return s.dispatch(ctx, sessionID, catalog.ToggleSaved{RoomID: roomID})
}

// Navigate switches screens. ROOM_DETAIL reached this way has no selection.
func (s *SessionService) Navigate(ctx context.Context, sessionID, screen string) (*SessionView, error) {
	target, err := catalog.ParseScreen(screen)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}
	return s.dispatch(ctx, sessionID, catalog.Navigate{Screen: target})
}

// SelectRoom opens the detail screen for a catalog room.
func (s *SessionService) SelectRoom(ctx context.Context, sessionID, roomID string) (*SessionView, error) {
	room, err := s.catalog.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return s.dispatch(ctx, sessionID, catalog.SelectRoom{Room: *room})
}

// PostRoom publishes a room to the shared catalog and returns the poster home.
func (s *SessionService) PostRoom(ctx context.Context, sessionID string, req PostRoomRequest) (*domain.Room, *SessionView, error) {
	if !s.sessions.Exists(sessionID) {
		return nil, nil, domainerrors.NotFoundf("session %s not found", sessionID)
	}
	room, err := s.catalog.Post(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	view, err := s.dispatch(ctx, sessionID, catalog.PostRoom{Room: *room})
	if err != nil {
		return room, nil, err
	}
	return room, view, nil
}

// Login signs in and attaches the user to the session.
func (s *SessionService) Login(ctx context.Context, sessionID string, req LoginRequest) (*LoginView, error) {
	if !s.sessions.Exists(sessionID) {
		return nil, domainerrors.NotFoundf("session %s not found", sessionID)
	}
	resp, user, err := s.auth.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	view, err := s.dispatch(ctx, sessionID, catalog.Login{User: user.Profile()})
	if err != nil {
		return nil, err
	}
	return &LoginView{Auth: resp, Session: view}, nil
}

// Logout detaches the user.
func (s *SessionService) Logout(ctx context.Context, sessionID string) (*SessionView, error) {
	return s.dispatch(ctx, sessionID, catalog.Logout{})
}

// ToggleTheme flips light/dark.
func (s *SessionService) ToggleTheme(ctx context.Context, sessionID string) (*SessionView, error) {
	return s.dispatch(ctx, sessionID, catalog.ToggleTheme{})
}

// Describe starts drafting a description for the post-room form. The
// result arrives later as a session update.
func (s *SessionService) Describe(ctx context.Context, sessionID string, req DescribeRequest) (*TaskView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, domainerrors.ValidationWithDetails(
			"Please fill in Title, Location and Features to generate a description.",
			detailsOf(err))
	}

	taskID := id.Task()
	view, err := s.dispatch(ctx, sessionID, catalog.DescriptionRequested{TaskID: taskID})
	if err != nil {
		return nil, err
	}
	if view.View.Draft.PendingTask != taskID {
		if view.View.Screen != catalog.ScreenPostRoom {
			return nil, domainerrors.Validation("descriptions can only be drafted on the post room screen")
		}
		return nil, domainerrors.Validation("a description is already being generated")
	}

	s.spawn(func(tctx context.Context) {
		text := s.assistant.Describe(tctx, req.Title, req.Location, req.Features)
		s.deliver(tctx, sessionID, taskID, catalog.DescriptionReady{TaskID: taskID, Text: text},
			func(v *SessionView) sse.Event {
				applied := !v.View.Draft.Describing() && v.View.Draft.Description == text
				return sse.NewDescriptionReadyEvent(sessionID, taskID, text, applied)
			})
	})

	return &TaskView{TaskID: taskID, Session: view}, nil
}

// Ask sends a question about the room on the detail screen.
func (s *SessionService) Ask(ctx context.Context, sessionID string, req AskRequest) (*TaskView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	room, ok := sess.Snapshot().State.Nav.DetailRoom()
	if !ok {
		return nil, domainerrors.Validation("no room is open")
	}

	taskID := id.Task()
	view, err := s.dispatch(ctx, sessionID, catalog.QuestionAsked{TaskID: taskID, RoomID: room.ID, Question: req.Question})
	if err != nil {
		return nil, err
	}
	if view.View.Chat.PendingTask != taskID {
		if view.View.Chat.Asking() {
			return nil, domainerrors.Validation("an answer is already pending")
		}
		return nil, domainerrors.Validation("the room is no longer open")
	}

	question := strings.TrimSpace(req.Question)
	s.spawn(func(tctx context.Context) {
		answer := s.assistant.Answer(tctx, &room, question)
		s.deliver(tctx, sessionID, taskID, catalog.AnswerReady{TaskID: taskID, RoomID: room.ID, Answer: answer},
			func(v *SessionView) sse.Event {
				applied := false
				if msgs := v.View.Chat.Messages; !v.View.Chat.Asking() && v.View.Chat.RoomID == room.ID && len(msgs) > 0 {
					last := msgs[len(msgs)-1]
					applied = last.Role == catalog.ChatRoleAssistant && last.Text == answer
				}
				return sse.NewAnswerReadyEvent(sessionID, taskID, room.ID, answer, applied)
			})
	})

	return &TaskView{TaskID: taskID, Session: view}, nil
}

func (s *SessionService) spawn(fn func(ctx context.Context)) {
	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()
		fn(s.ctx)
	}()
}

// deliver feeds a task result back through the session loop. The reducer
// drops results that are no longer relevant.
func (s *SessionService) deliver(ctx context.Context, sessionID, taskID string, result catalog.Event, announce func(*SessionView) sse.Event) {
	view, err := s.dispatch(ctx, sessionID, result)
	if err != nil {
		s.logger.Debug("assistant result discarded",
			slog.String("session_id", sessionID),
			slog.String("task_id", taskID),
			slog.String("reason", err.Error()))
		return
	}
	s.emitter.Emit(announce(view))
}

// Shutdown stops waiting on assistant tasks and drains them.
func (s *SessionService) Shutdown() {
	s.cancel()
	s.tasks.Wait()
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func detailsOf(err error) any {
	var e *domainerrors.Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}
