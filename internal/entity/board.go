package entity

import (
	"fmt"

	"github.com/rocketscienceinc/gridmatch-backend/internal/apperror"
)

const (
	BoardSize = 3
	CellCount = BoardSize * BoardSize

	EmptyCell = ""
)

// Position is a cell on the board, both coordinates in [0, BoardSize).
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Position) Validate() error {
	if that.Row < 0 || that.Row >= BoardSize || that.Col < 0 || that.Col >= BoardSize {
		return fmt.Errorf("%w: row %d, col %d", apperror.ErrInvalidPosition, that.Row, that.Col)
	}

	return nil
}

// WinLines are the three rows, three columns and two diagonals.
var WinLines = [8][3]Position{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Board holds the id of the occupying player per cell, EmptyCell otherwise.
type Board [BoardSize][BoardSize]string

// ReplayBoard rebuilds the board from a move log in its stored order.
func ReplayBoard(moves []*Move) Board {
	var board Board

	for _, move := range moves {
		if move.Position.Validate() != nil {
			continue
		}

		if board.IsOccupied(move.Position) {
			continue
		}

		board[move.Position.Row][move.Position.Col] = move.PlayerID
	}

	return board
}

func (that *Board) At(pos Position) string {
	return that[pos.Row][pos.Col]
}

func (that *Board) IsOccupied(pos Position) bool {
	return that.At(pos) != EmptyCell
}

// Filled returns the number of occupied cells.
func (that *Board) Filled() int {
	filled := 0

	for _, row := range that {
		for _, cell := range row {
			if cell != EmptyCell {
				filled++
			}
		}
	}

	return filled
}

// HasWon reports whether playerID holds every cell of any winning line.
func (that *Board) HasWon(playerID string) bool {
	if playerID == EmptyCell {
		return false
	}

	for _, line := range WinLines {
		if that.At(line[0]) == playerID && that.At(line[1]) == playerID && that.At(line[2]) == playerID {
			return true
		}
	}

	return false
}
