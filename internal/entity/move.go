package entity

import "time"

type Move struct {
	ID        string    `json:"id"`
	GameID    string    `json:"game_id"`
	PlayerID  string    `json:"player_id"`
	Position  Position  `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

func NewMove(id, gameID, playerID string, pos Position, now time.Time) *Move {
	return &Move{
		ID:        id,
		GameID:    gameID,
		PlayerID:  playerID,
		Position:  pos,
		CreatedAt: now,
	}
}
