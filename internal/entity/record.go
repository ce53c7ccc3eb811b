package entity

import "time"

// MatchRecord is the archived summary of a finished match.
type MatchRecord struct {
	GameID       string    `json:"game_id"`
	Player1ID    string    `json:"player1_id"`
	Player2ID    string    `json:"player2_id"`
	Player1Score int       `json:"player1_score"`
	Player2Score int       `json:"player2_score"`
	Result       string    `json:"result"`
	WinnerID     string    `json:"winner_id,omitempty"`
	ConcededBy   string    `json:"conceded_by,omitempty"`
	MoveCount    int       `json:"move_count"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at,omitempty"`
}

func NewMatchRecord(game *Game, moves []*Move) *MatchRecord {
	outcome := game.Outcome(ReplayBoard(moves))

	record := &MatchRecord{
		GameID:       game.ID,
		Player1ID:    game.Player1ID,
		Player2ID:    game.Player2ID,
		Player1Score: game.Player1Score,
		Player2Score: game.Player2Score,
		Result:       outcome.Result,
		WinnerID:     outcome.WinnerID,
		ConcededBy:   game.ConcededBy,
		MoveCount:    len(moves),
		StartedAt:    game.StartedAt,
	}

	if game.FinishedAt != nil {
		record.FinishedAt = *game.FinishedAt
	}

	return record
}

// ResultFor reports the record from playerID's point of view.
func (that *MatchRecord) ResultFor(playerID string) string {
	switch that.Result {
	case ResultWin:
		if that.WinnerID == playerID {
			return ResultWin
		}
		return ResultLoss
	case ResultDraw:
		return ResultDraw
	default:
		return ResultNone
	}
}
