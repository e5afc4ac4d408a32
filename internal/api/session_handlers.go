package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/meraroom/meraroom-server/internal/dto"
	"github.com/meraroom/meraroom-server/internal/service"
)

func (s *Server) registerSessionRoutes() {
	op := func(id, method, path, summary, description string) huma.Operation {
		return huma.Operation{
			OperationID: id,
			Method:      method,
			Path:        path,
			Summary:     summary,
			Description: description,
			Tags:        []string{"Sessions"},
		}
	}

	create := op("createSession", http.MethodPost, "/api/v1/sessions",
		"Create session", "Starts a browsing session on the home screen")
	create.DefaultStatus = http.StatusCreated
	huma.Register(s.api, create, s.handleCreateSession)

	huma.Register(s.api, op("getSession", http.MethodGet, "/api/v1/sessions/{id}",
		"Get session", "Returns the session's current screen and derived lists"), s.handleGetSession)

	del := op("deleteSession", http.MethodDelete, "/api/v1/sessions/{id}",
		"Delete session", "Ends a session and closes its event streams")
	del.DefaultStatus = http.StatusNoContent
	huma.Register(s.api, del, s.handleDeleteSession)

	huma.Register(s.api, op("updateQuery", http.MethodPut, "/api/v1/sessions/{id}/query",
		"Replace query", "Replaces search text, price bounds, amenity selection and sort order"), s.handleUpdateQuery)

	huma.Register(s.api, op("toggleAmenity", http.MethodPost, "/api/v1/sessions/{id}/query/amenities/{amenity}",
		"Toggle amenity", "Selects the amenity filter, or deselects it when already selected"), s.handleToggleAmenity)

	huma.Register(s.api, op("clearFilters", http.MethodPost, "/api/v1/sessions/{id}/query/clear",
		"Clear filters", "Resets the whole query, search text included"), s.handleClearFilters)

	huma.Register(s.api, op("toggleSaved", http.MethodPost, "/api/v1/sessions/{id}/saved/{roomID}",
		"Toggle saved", "Saves the room, or unsaves it when already saved"), s.handleToggleSaved)

	huma.Register(s.api, op("navigate", http.MethodPost, "/api/v1/sessions/{id}/navigate",
		"Navigate", "Switches screen. ROOM_DETAIL reached this way shows no room."), s.handleNavigate)

	huma.Register(s.api, op("selectRoom", http.MethodPost, "/api/v1/sessions/{id}/rooms/{roomID}/select",
		"Select room", "Opens the detail screen for a room"), s.handleSelectRoom)

	post := op("postRoom", http.MethodPost, "/api/v1/sessions/{id}/rooms",
		"Post room", "Publishes a room at the top of the shared catalog and returns the session home")
	post.DefaultStatus = http.StatusCreated
	huma.Register(s.api, post, s.handlePostRoom)

	login := op("sessionLogin", http.MethodPost, "/api/v1/sessions/{id}/login",
		"Sign in session", "Authenticates and attaches the user to the session")
	login.Middlewares = s.rateLimited(s.authRateLimiter)
	huma.Register(s.api, login, s.handleSessionLogin)

	huma.Register(s.api, op("sessionLogout", http.MethodPost, "/api/v1/sessions/{id}/logout",
		"Sign out session", "Detaches the user from the session"), s.handleSessionLogout)

	huma.Register(s.api, op("toggleTheme", http.MethodPost, "/api/v1/sessions/{id}/theme",
		"Toggle theme", "Switches between light and dark"), s.handleToggleTheme)
}

// === DTOs ===

// SessionInput identifies a session.
type SessionInput struct {
	ID string `path:"id" doc:"Session ID"`
}

// SessionOutput wraps a session view for Huma.
type SessionOutput struct {
	Body dto.Session
}

// UpdateQueryInput wraps the query replacement.
type UpdateQueryInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Body service.QueryRequest
}

// ToggleAmenityInput names the amenity to toggle.
type ToggleAmenityInput struct {
	ID      string `path:"id" doc:"Session ID"`
	Amenity string `path:"amenity" doc:"Amenity tag, e.g. Wifi"`
}

// RoomActionInput names a room within a session.
type RoomActionInput struct {
	ID     string `path:"id" doc:"Session ID"`
	RoomID string `path:"roomID" doc:"Room ID"`
}

// NavigateRequest is the request body for navigation.
type NavigateRequest struct {
	Screen string `json:"screen" enum:"HOME,SAVED,MAP,POST_ROOM,LOGIN,ROOM_DETAIL" doc:"Target screen"`
}

// NavigateInput wraps the navigation request.
type NavigateInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Body NavigateRequest
}

// PostRoomInput wraps the post-room form.
type PostRoomInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Body service.PostRoomRequest
}

// PostRoomResponse contains the new room and the session after posting.
type PostRoomResponse struct {
	Room    dto.Room    `json:"room" doc:"Posted room"`
	Session dto.Session `json:"session" doc:"Session view"`
}

// PostRoomOutput wraps the post-room response.
type PostRoomOutput struct {
	Body PostRoomResponse
}

// SessionLoginInput wraps a session login.
type SessionLoginInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Body service.LoginRequest
}

// SessionLoginResponse contains the token and the signed-in session.
type SessionLoginResponse struct {
	Auth    AuthResponse `json:"auth" doc:"Issued token"`
	Session dto.Session  `json:"session" doc:"Session view"`
}

// SessionLoginOutput wraps the session login response.
type SessionLoginOutput struct {
	Body SessionLoginResponse
}

func sessionBody(v *service.SessionView) dto.Session {
	return dto.NewSession(v.ID, v.Version, v.View)
}

func sessionOutput(v *service.SessionView, err error) (*SessionOutput, error) {
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: sessionBody(v)}, nil
}

// === Handlers ===

func (s *Server) handleCreateSession(ctx context.Context, _ *struct{}) (*SessionOutput, error) {
	return sessionOutput(s.services.Session.Create(ctx))
}

func (s *Server) handleGetSession(ctx context.Context, input *SessionInput) (*SessionOutput, error) {
	return sessionOutput(s.services.Session.Get(ctx, input.ID))
}

func (s *Server) handleDeleteSession(ctx context.Context, input *SessionInput) (*struct{}, error) {
	if err := s.services.Session.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleUpdateQuery(ctx context.Context, input *UpdateQueryInput) (*SessionOutput, error) {
	return sessionOutput(s.services.Session.UpdateQuery(ctx, input.ID, input.Body))
}

func (s *Server) handleToggleAmenity(ctx context.Context, input *ToggleAmenityInput) (*SessionOutput, error) {
	return sessionOutput(s.services.Session.ToggleAmenity(ctx, input.ID, input.Amenity))
}

func (s *Server) handleClearFilters(ctx context.Context, input *SessionInput) (*SessionOutput, error) {
	return sessionOutput(s.services.Session.ClearFilters(ctx, input.ID))
}

func (s *Server) handleToggleSaved(ctx context.Context, input *RoomActionInput) (*SessionOutput, error) {
	return sessionOutput(s.services.Session.ToggleSaved(ctx, input.ID, input.RoomID))
}

func (s *Server) handleNavigate(ctx context.Context, input *NavigateInput) (*SessionOutput, error) {
	return sessionOutput(s.services.Session.Navigate(ctx, input.ID, input.Body.Screen))
}

func (s *Server) handleSelectRoom(ctx context.Context, input *RoomActionInput) (*SessionOutput, error) {
	return sessionOutput(s.services.Session.SelectRoom(ctx, input.ID, input.RoomID))
}

func (s *Server) handlePostRoom(ctx context.Context, input *PostRoomInput) (*PostRoomOutput, error) {
	room, view, err := s.services.Session.PostRoom(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &PostRoomOutput{Body: PostRoomResponse{
		Room:    dto.NewRoom(*room, false),
		Session: sessionBody(view),
	}}, nil
}

func (s *Server) handleSessionLogin(ctx context.Context, input *SessionLoginInput) (*SessionLoginOutput, error) {
	login, err := s.services.Session.Login(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &SessionLoginOutput{Body: SessionLoginResponse{
		Auth:    newAuthResponse(login.Auth),
		Session: sessionBody(login.Session),
	}}, nil
}

func (s *Server) handleSessionLogout(ctx context.Context, input *SessionInput) (*SessionOutput, error) {
	return sessionOutput(s.services.Session.Logout(ctx, input.ID))
}

func (s *Server) handleToggleTheme(ctx context.Context, input *SessionInput) (*SessionOutput, error) {
	return sessionOutput(s.services.Session.ToggleTheme(ctx, input.ID))
}
