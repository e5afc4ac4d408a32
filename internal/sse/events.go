// Package sse implements Server-Sent Events for session and catalog updates.
package sse

import (
	"time"

	"github.com/meraroom/meraroom-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventRoomPosted is broadcast to everyone when a room joins the catalog.
	EventRoomPosted EventType = "catalog.room_posted"

	// EventSessionUpdated tells a session's clients to refetch their view.
	EventSessionUpdated EventType = "session.updated"

	// EventDescriptionReady carries generated text for the post-room form.
	EventDescriptionReady EventType = "assistant.description_ready"
	// EventAnswerReady carries an assistant answer for the room detail chat.
	EventAnswerReady EventType = "assistant.answer_ready"

	// EventHeartbeat keeps idle connections open.
	EventHeartbeat EventType = "heartbeat"
)

// Event is an SSE event. Data is serialized as the event payload.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
	// SessionID limits delivery to one session's clients. Empty broadcasts.
	SessionID string `json:"-"`
}

// RoomPostedEventData is the payload for catalog.room_posted.
type RoomPostedEventData struct {
	Room *domain.Room `json:"room"`
}

// SessionUpdatedEventData is the payload for session.updated.
type SessionUpdatedEventData struct {
	SessionID string `json:"session_id"`
	Screen    string `json:"screen"`
	Version   uint64 `json:"version"`
}

// DescriptionReadyEventData is the payload for assistant.description_ready.
type DescriptionReadyEventData struct {
	TaskID      string `json:"task_id"`
	Description string `json:"description"`
	Applied     bool   `json:"applied"`
}

// AnswerReadyEventData is the payload for assistant.answer_ready.
type AnswerReadyEventData struct {
	TaskID  string `json:"task_id"`
	RoomID  string `json:"room_id"`
	Answer  string `json:"answer"`
	Applied bool   `json:"applied"`
}

// HeartbeatEventData is the payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewRoomPostedEvent creates a catalog.room_posted event.
func NewRoomPostedEvent(room *domain.Room) Event {
	return Event{
		Type:      EventRoomPosted,
		Data:      RoomPostedEventData{Room: room},
		Timestamp: time.Now(),
	}
}

// NewSessionUpdatedEvent creates a session.updated event for one session.
func NewSessionUpdatedEvent(sessionID, screen string, version uint64) Event {
	return Event{
		Type:      EventSessionUpdated,
		Data:      SessionUpdatedEventData{SessionID: sessionID, Screen: screen, Version: version},
		Timestamp: time.Now(),
		SessionID: sessionID,
	}
}

// NewDescriptionReadyEvent creates an assistant.description_ready event.
// applied is false when the result arrived after the form was left.
func NewDescriptionReadyEvent(sessionID, taskID, description string, applied bool) Event {
	return Event{
		Type:      EventDescriptionReady,
		Data:      DescriptionReadyEventData{TaskID: taskID, Description: description, Applied: applied},
		Timestamp: time.Now(),
		SessionID: sessionID,
	}
}

// NewAnswerReadyEvent creates an assistant.answer_ready event.
func NewAnswerReadyEvent(sessionID, taskID, roomID, answer string, applied bool) Event {
	return Event{
		Type:      EventAnswerReady,
		Data:      AnswerReadyEventData{TaskID: taskID, RoomID: roomID, Answer: answer, Applied: applied},
		Timestamp: time.Now(),
		SessionID: sessionID,
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type:      EventHeartbeat,
		Data:      HeartbeatEventData{ServerTime: time.Now()},
		Timestamp: time.Now(),
	}
}
