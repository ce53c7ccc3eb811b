package entity

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gridmatch-backend/internal/apperror"
)

func newTestRoom(t *testing.T) *Room {
	t.Helper()

	room, err := NewRoom("room-1", "Alpha", playerA, time.Now())
	require.NoError(t, err)

	return room
}

func TestNewRoom(t *testing.T) {
	t.Run("Creates an active room without guest", func(t *testing.T) {
		room, err := NewRoom("room-1", "  Alpha  ", playerA, time.Now())

		require.NoError(t, err)
		assert.Equal(t, "Alpha", room.Name)
		assert.Equal(t, playerA, room.HostPlayerID)
		assert.True(t, room.Active)
		assert.True(t, room.IsAvailable())
		assert.False(t, room.IsReady())
	})

	t.Run("Rejects empty and oversized names", func(t *testing.T) {
		_, err := NewRoom("room-1", "   ", playerA, time.Now())
		require.ErrorIs(t, err, apperror.ErrInvalidRoomName)

		_, err = NewRoom("room-1", strings.Repeat("x", MaxRoomNameLength+1), playerA, time.Now())
		require.ErrorIs(t, err, apperror.ErrInvalidRoomName)
	})
}

func seat(t *testing.T, room *Room, playerID string) {
	t.Helper()

	joined, err := room.Join(playerID)
	require.NoError(t, err)
	require.True(t, joined)
}

func TestRoom_Join(t *testing.T) {
	t.Run("Guest takes the free seat", func(t *testing.T) {
		room := newTestRoom(t)

		joined, err := room.Join(playerB)

		require.NoError(t, err)
		assert.True(t, joined)
		assert.Equal(t, playerB, room.GuestPlayerID)
		assert.True(t, room.IsReady())
		assert.False(t, room.IsAvailable())
	})

	t.Run("Host cannot join own room", func(t *testing.T) {
		room := newTestRoom(t)

		_, err := room.Join(playerA)

		require.ErrorIs(t, err, apperror.ErrSelfJoin)
		assert.Empty(t, room.GuestPlayerID)
	})

	t.Run("Host cannot join own full room either", func(t *testing.T) {
		room := newTestRoom(t)
		seat(t, room, playerB)

		_, err := room.Join(playerA)

		require.ErrorIs(t, err, apperror.ErrSelfJoin)
	})

	t.Run("Third player is rejected when the room is full", func(t *testing.T) {
		room := newTestRoom(t)
		seat(t, room, playerB)

		_, err := room.Join("player-c")

		require.ErrorIs(t, err, apperror.ErrRoomFull)
		assert.Equal(t, playerB, room.GuestPlayerID)
	})

	t.Run("Joining again as the guest changes nothing", func(t *testing.T) {
		room := newTestRoom(t)
		seat(t, room, playerB)

		joined, err := room.Join(playerB)

		require.NoError(t, err)
		assert.False(t, joined)
	})

	t.Run("Inactive room cannot be joined", func(t *testing.T) {
		room := newTestRoom(t)
		room.Active = false

		_, err := room.Join(playerB)

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})
}

func TestRoom_Leave(t *testing.T) {
	t.Run("Host leaving deactivates the room", func(t *testing.T) {
		room := newTestRoom(t)
		seat(t, room, playerB)

		left, err := room.Leave(playerA)

		require.NoError(t, err)
		assert.True(t, left)
		assert.False(t, room.Active)
		assert.Equal(t, playerB, room.GuestPlayerID)
	})

	t.Run("Guest leaving frees the seat", func(t *testing.T) {
		room := newTestRoom(t)
		seat(t, room, playerB)

		left, err := room.Leave(playerB)

		require.NoError(t, err)
		assert.True(t, left)
		assert.True(t, room.Active)
		assert.Empty(t, room.GuestPlayerID)
		assert.True(t, room.IsAvailable())
	})

	t.Run("Stranger cannot leave", func(t *testing.T) {
		room := newTestRoom(t)

		_, err := room.Leave("player-c")
		require.ErrorIs(t, err, apperror.ErrNotAParticipant)

		_, err = room.Leave("")
		require.ErrorIs(t, err, apperror.ErrNotAParticipant)
	})

	t.Run("Promoted room keeps its seats", func(t *testing.T) {
		// Given: a room promoted to a match
		room := newTestRoom(t)
		seat(t, room, playerB)
		require.NoError(t, room.Promote())
		before := *room

		// When: the guest and a stranger try to leave
		_, guestErr := room.Leave(playerB)
		_, strangerErr := room.Leave("player-c")

		// Then: the room is gone for them and nothing changed
		require.ErrorIs(t, guestErr, apperror.ErrRoomNotFound)
		require.ErrorIs(t, strangerErr, apperror.ErrRoomNotFound)
		assert.Equal(t, before, *room)
	})

	t.Run("Host leaving an inactive room changes nothing", func(t *testing.T) {
		room := newTestRoom(t)
		seat(t, room, playerB)
		_, err := room.Leave(playerA)
		require.NoError(t, err)
		before := *room

		left, err := room.Leave(playerA)

		require.NoError(t, err)
		assert.False(t, left)
		assert.Equal(t, before, *room)
	})
}

func TestRoom_Promote(t *testing.T) {
	t.Run("Ready room is deactivated", func(t *testing.T) {
		room := newTestRoom(t)
		seat(t, room, playerB)

		require.NoError(t, room.Promote())

		assert.False(t, room.Active)
	})

	t.Run("Room without guest is not ready", func(t *testing.T) {
		room := newTestRoom(t)

		require.ErrorIs(t, room.Promote(), apperror.ErrRoomNotReady)
		assert.True(t, room.Active)
	})

	t.Run("Promoted room cannot be promoted again", func(t *testing.T) {
		room := newTestRoom(t)
		seat(t, room, playerB)
		require.NoError(t, room.Promote())

		require.ErrorIs(t, room.Promote(), apperror.ErrRoomNotReady)
	})
}
