package entity

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/gridmatch-backend/internal/apperror"
)

const (
	// MoveScore is awarded for every accepted move that does not end the game.
	MoveScore = 10
	// WinScore is awarded for the move that completes a line.
	WinScore = 100
)

// TurnResult describes what an accepted move did to the game.
type TurnResult string

const (
	TurnAccepted TurnResult = "move_accepted"
	TurnWin      TurnResult = "win"
	TurnDraw     TurnResult = "draw"
)

type Game struct {
	ID                  string     `json:"id"`
	Player1ID           string     `json:"player1_id"`
	Player2ID           string     `json:"player2_id"`
	CurrentTurnPlayerID string     `json:"current_turn_player_id"`
	Player1Score        int        `json:"player1_score"`
	Player2Score        int        `json:"player2_score"`
	Finished            bool       `json:"finished"`
	ConcededBy          string     `json:"conceded_by,omitempty"`
	StartedAt           time.Time  `json:"started_at"`
	FinishedAt          *time.Time `json:"finished_at,omitempty"`
}

func NewGame(id, player1ID, player2ID string, now time.Time) *Game {
	return &Game{
		ID:                  id,
		Player1ID:           player1ID,
		Player2ID:           player2ID,
		CurrentTurnPlayerID: player1ID,
		StartedAt:           now,
	}
}

func (that *Game) IsParticipant(playerID string) bool {
	return playerID != "" && (playerID == that.Player1ID || playerID == that.Player2ID)
}

// Opponent returns the other participant, or an empty string for strangers.
func (that *Game) Opponent(playerID string) string {
	switch playerID {
	case that.Player1ID:
		return that.Player2ID
	case that.Player2ID:
		return that.Player1ID
	default:
		return ""
	}
}

func (that *Game) ScoreOf(playerID string) int {
	switch playerID {
	case that.Player1ID:
		return that.Player1Score
	case that.Player2ID:
		return that.Player2Score
	default:
		return 0
	}
}

func (that *Game) addScore(playerID string, points int) {
	if playerID == that.Player1ID {
		that.Player1Score += points
	} else {
		that.Player2Score += points
	}
}

func (that *Game) finish(now time.Time) {
	that.Finished = true
	that.FinishedAt = &now
}

// MakeTurn validates move against the game header and the full move history,
// then applies it. The game is left untouched when an error is returned.
func (that *Game) MakeTurn(history []*Move, move *Move, now time.Time) (TurnResult, error) {
	if err := move.Position.Validate(); err != nil {
		return "", err
	}

	if that.Finished {
		return "", apperror.ErrMatchFinished
	}

	if !that.IsParticipant(move.PlayerID) {
		return "", fmt.Errorf("%w: player %s in match %s", apperror.ErrNotAParticipant, move.PlayerID, that.ID)
	}

	if that.CurrentTurnPlayerID != move.PlayerID {
		return "", apperror.ErrNotYourTurn
	}

	board := ReplayBoard(history)
	if board.IsOccupied(move.Position) {
		return "", apperror.ErrCellOccupied
	}

	board[move.Position.Row][move.Position.Col] = move.PlayerID

	switch {
	case board.HasWon(move.PlayerID):
		that.addScore(move.PlayerID, WinScore)
		that.finish(now)
		return TurnWin, nil
	case len(history)+1 >= CellCount:
		that.finish(now)
		return TurnDraw, nil
	default:
		that.addScore(move.PlayerID, MoveScore)
		that.CurrentTurnPlayerID = that.Opponent(move.PlayerID)
		return TurnAccepted, nil
	}
}

// Concede finishes the game on behalf of playerID. It reports false when the
// game was already finished, which is not an error.
func (that *Game) Concede(playerID string, now time.Time) (bool, error) {
	if !that.IsParticipant(playerID) {
		return false, fmt.Errorf("%w: player %s in match %s", apperror.ErrNotAParticipant, playerID, that.ID)
	}

	if that.Finished {
		return false, nil
	}

	that.ConcededBy = playerID
	that.finish(now)

	return true, nil
}

// Outcome derives the result of the game from its board.
func (that *Game) Outcome(board Board) Outcome {
	if !that.Finished {
		return Outcome{Result: ResultNone}
	}

	for _, playerID := range []string{that.Player1ID, that.Player2ID} {
		if board.HasWon(playerID) {
			return Outcome{Result: ResultWin, WinnerID: playerID}
		}
	}

	return Outcome{Result: ResultDraw}
}
