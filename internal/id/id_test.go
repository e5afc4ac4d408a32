package id

import (
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for range count {
		id, err := Generate(PrefixSession)
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	for _, prefix := range []string{PrefixUser, PrefixSession, PrefixClient} {
		t.Run(prefix, func(t *testing.T) {
			id, err := Generate(prefix)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(id, prefix+"-"))
			assert.Len(t, id, len(prefix)+1+21)
		})
	}
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.True(t, strings.HasPrefix(MustGenerate(PrefixUser), "user-"))
	})
}

func TestTask_IsUUID(t *testing.T) {
	_, err := uuid.Parse(Task())
	assert.NoError(t, err)
	assert.NotEqual(t, Task(), Task())
}

func TestRoomSequence_UsesClock(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	seq := NewRoomSequenceWithClock(func() time.Time { return now })

	assert.Equal(t, "1700000000000", seq.Next())
}

func TestRoomSequence_StrictlyIncreasingWithinMillisecond(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	seq := NewRoomSequenceWithClock(func() time.Time { return now })

	first := seq.Next()
	second := seq.Next()
	third := seq.Next()

	assert.Equal(t, []string{"1700000000000", "1700000000001", "1700000000002"}, []string{first, second, third})
}

func TestRoomSequence_ObserveRaisesFloor(t *testing.T) {
	seq := NewRoomSequenceWithClock(func() time.Time { return time.UnixMilli(10) })
	seq.Observe("500")
	seq.Observe("not-a-number")
	seq.Observe("3")

	assert.Equal(t, "501", seq.Next())
}

func TestRoomSequence_Concurrent(t *testing.T) {
	seq := NewRoomSequence()
	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)
	for range 50 {
		wg.Go(func() {
			id := seq.Next()
			_, err := strconv.ParseInt(id, 10, 64)
			assert.NoError(t, err)
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		})
	}
	wg.Wait()
	assert.Len(t, seen, 50)
}
