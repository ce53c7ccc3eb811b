package apperror

import "errors"

// Kind classifies an error for callers that need to react to the category
// of a failure rather than to a specific sentinel.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConflict
	KindForbidden
	KindInvalid
	KindTransient
)

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrMatchNotFound = errors.New("match not found")
	ErrNoActiveMatch = errors.New("no active match found")

	ErrRoomFull      = errors.New("room is already full")
	ErrRoomNotReady  = errors.New("room is not ready")
	ErrCellOccupied  = errors.New("cell is already occupied")
	ErrNotYourTurn   = errors.New("it's not your turn")
	ErrMatchFinished = errors.New("match is already finished")

	ErrSelfJoin        = errors.New("host cannot join own room")
	ErrNotAParticipant = errors.New("player is not a participant")

	ErrInvalidPosition = errors.New("invalid board position")
	ErrInvalidRoomName = errors.New("invalid room name")
	ErrInvalidPlayers  = errors.New("a match needs two distinct players")

	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrStorageConflict    = errors.New("storage is busy, retry later")
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrRoomNotFound, KindNotFound},
	{ErrMatchNotFound, KindNotFound},
	{ErrNoActiveMatch, KindNotFound},
	{ErrRoomFull, KindConflict},
	{ErrRoomNotReady, KindConflict},
	{ErrCellOccupied, KindConflict},
	{ErrNotYourTurn, KindConflict},
	{ErrMatchFinished, KindConflict},
	{ErrSelfJoin, KindForbidden},
	{ErrNotAParticipant, KindForbidden},
	{ErrInvalidPosition, KindInvalid},
	{ErrInvalidRoomName, KindInvalid},
	{ErrInvalidPlayers, KindInvalid},
	{ErrStorageUnavailable, KindTransient},
	{ErrStorageConflict, KindTransient},
}

// KindOf returns the category of the first known sentinel found in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}

	return KindUnknown
}
