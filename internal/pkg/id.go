package pkg

import "github.com/google/uuid"

// GenerateID - generates a new unique identifier for rooms, games and moves.
func GenerateID() string {
	return uuid.NewString()
}
