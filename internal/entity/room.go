package entity

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rocketscienceinc/gridmatch-backend/internal/apperror"
)

const MaxRoomNameLength = 64

type Room struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	HostPlayerID  string    `json:"host_player_id"`
	GuestPlayerID string    `json:"guest_player_id,omitempty"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewRoom(id, name, hostPlayerID string, now time.Time) (*Room, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxRoomNameLength {
		return nil, fmt.Errorf("%w: must be 1-%d characters", apperror.ErrInvalidRoomName, MaxRoomNameLength)
	}

	return &Room{
		ID:           id,
		Name:         name,
		HostPlayerID: hostPlayerID,
		Active:       true,
		CreatedAt:    now,
	}, nil
}

func (that *Room) HasGuest() bool {
	return that.GuestPlayerID != ""
}

// IsAvailable reports whether the room is listed in the lobby.
func (that *Room) IsAvailable() bool {
	return that.Active && !that.HasGuest()
}

func (that *Room) IsReady() bool {
	return that.Active && that.HasGuest()
}

func (that *Room) IsParticipant(playerID string) bool {
	return playerID != "" && (playerID == that.HostPlayerID || playerID == that.GuestPlayerID)
}

// Join seats playerID as the guest. It reports false when the player already
// holds the guest seat.
func (that *Room) Join(playerID string) (bool, error) {
	if !that.Active {
		return false, apperror.ErrRoomNotFound
	}

	if that.HostPlayerID == playerID {
		return false, apperror.ErrSelfJoin
	}

	if that.HasGuest() && that.GuestPlayerID == playerID {
		return false, nil
	}

	if that.HasGuest() {
		return false, apperror.ErrRoomFull
	}

	that.GuestPlayerID = playerID

	return true, nil
}

// Leave removes playerID from the room. A leaving host abandons the room.
// Inactive rooms are immutable: the host leaving again changes nothing and
// anyone else sees the room as gone.
func (that *Room) Leave(playerID string) (bool, error) {
	if !that.Active {
		if playerID != "" && playerID == that.HostPlayerID {
			return false, nil
		}

		return false, apperror.ErrRoomNotFound
	}

	switch {
	case playerID == that.HostPlayerID:
		that.Active = false
	case that.HasGuest() && playerID == that.GuestPlayerID:
		that.GuestPlayerID = ""
	default:
		return false, fmt.Errorf("%w: player %s in room %s", apperror.ErrNotAParticipant, playerID, that.ID)
	}

	return true, nil
}

// Promote deactivates a ready room; the caller seeds the match from its seats.
func (that *Room) Promote() error {
	if !that.IsReady() {
		return apperror.ErrRoomNotReady
	}

	that.Active = false

	return nil
}
