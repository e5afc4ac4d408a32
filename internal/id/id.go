// Package id generates identifiers: prefixed NanoIDs for accounts and
// sessions, UUIDs for async tasks, and millisecond timestamps for rooms.
package id

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes in use.
const (
	PrefixUser    = "user"
	PrefixSession = "sess"
	PrefixClient  = "client"
)

// Generate creates a prefixed NanoID, e.g. "sess-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if the system is out of entropy.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Task returns a fresh id for an async assistant task.
func Task() string {
	return uuid.NewString()
}

// RoomSequence hands out room ids as decimal Unix millisecond timestamps.
// Ids are strictly increasing even when two rooms are posted within the
// same millisecond, so sorting by numeric id gives posting order.
type RoomSequence struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewRoomSequence returns a sequence driven by the wall clock.
func NewRoomSequence() *RoomSequence {
	return &RoomSequence{now: time.Now}
}

// NewRoomSequenceWithClock is NewRoomSequence with an injectable clock.
func NewRoomSequenceWithClock(now func() time.Time) *RoomSequence {
	return &RoomSequence{now: now}
}

// Observe raises the floor so later ids exceed a known id. Non-numeric ids
// are ignored.
func (s *RoomSequence) Observe(existing string) {
	v, err := strconv.ParseInt(existing, 10, 64)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if v > s.last {
		s.last = v
	}
}

// Next returns the next room id.
func (s *RoomSequence) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := s.now().UnixMilli()
	if ms <= s.last {
		ms = s.last + 1
	}
	s.last = ms
	return strconv.FormatInt(ms, 10)
}
