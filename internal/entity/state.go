package entity

const (
	ResultNone = "none"
	ResultWin  = "win"
	ResultDraw = "draw"
	ResultLoss = "loss"
)

type Outcome struct {
	Result   string `json:"result"`
	WinnerID string `json:"winner_id,omitempty"`
}

// MatchState is the read model served to polling clients.
type MatchState struct {
	Game    *Game   `json:"game"`
	Moves   []*Move `json:"moves"`
	Board   Board   `json:"board"`
	Outcome Outcome `json:"outcome"`
}

func NewMatchState(game *Game, moves []*Move) *MatchState {
	if moves == nil {
		moves = []*Move{}
	}

	board := ReplayBoard(moves)

	return &MatchState{
		Game:    game,
		Moves:   moves,
		Board:   board,
		Outcome: game.Outcome(board),
	}
}
