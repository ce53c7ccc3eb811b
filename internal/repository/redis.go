package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/gridmatch-backend/internal/apperror"
	"github.com/rocketscienceinc/gridmatch-backend/internal/entity"
)

const DefaultMaxTxRetries = 16

const (
	availableRoomsKey = "rooms:available"
	unarchivedKey     = "games:unarchived"
)

func roomKey(id string) string        { return "room:" + id }
func gameKey(id string) string        { return "game:" + id }
func movesKey(id string) string       { return "game:" + id + ":moves" }
func playerGamesKey(id string) string { return "player:" + id + ":games" }

// timeScore orders sorted-set members by time. Microseconds stay exact in a
// float64 score where nanoseconds would collapse neighbouring timestamps.
func timeScore(t time.Time) float64 { return float64(t.UnixMicro()) }

// reader is satisfied by both *redis.Client and *redis.Tx.
type reader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", apperror.ErrStorageUnavailable, op, err)
}

// watch runs fn inside an optimistic transaction on keys, retrying when
// another client commits to any of them first.
func watch(ctx context.Context, client *redis.Client, retries int, fn func(tx *redis.Tx) error, keys ...string) error {
	if retries <= 0 {
		retries = DefaultMaxTxRetries
	}

	for attempt := 0; attempt < retries; attempt++ {
		err := client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		return err
	}

	return apperror.ErrStorageConflict
}

func getJSON(ctx context.Context, cmd reader, key string, notFound error, dst any) error {
	data, err := cmd.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return notFound
	}

	if err != nil {
		return storageErr("get "+key, err)
	}

	if err = json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	return nil
}

func getRoom(ctx context.Context, cmd reader, id string) (*entity.Room, error) {
	var room entity.Room
	if err := getJSON(ctx, cmd, roomKey(id), apperror.ErrRoomNotFound, &room); err != nil {
		return nil, err
	}

	return &room, nil
}

func getGame(ctx context.Context, cmd reader, id string) (*entity.Game, error) {
	var game entity.Game
	if err := getJSON(ctx, cmd, gameKey(id), apperror.ErrMatchNotFound, &game); err != nil {
		return nil, err
	}

	return &game, nil
}

func getMoves(ctx context.Context, cmd reader, gameID string) ([]*entity.Move, error) {
	raw, err := cmd.LRange(ctx, movesKey(gameID), 0, -1).Result()
	if err != nil {
		return nil, storageErr("lrange "+movesKey(gameID), err)
	}

	return decodeMoves(raw)
}

func decodeMoves(raw []string) ([]*entity.Move, error) {
	moves := make([]*entity.Move, 0, len(raw))

	for _, item := range raw {
		var move entity.Move
		if err := json.Unmarshal([]byte(item), &move); err != nil {
			return nil, fmt.Errorf("failed to unmarshal move: %w", err)
		}

		moves = append(moves, &move)
	}

	return moves, nil
}

// putRoom queues the room write and keeps the lobby index in sync with it.
func putRoom(ctx context.Context, pipe redis.Pipeliner, room *entity.Room) error {
	roomJSON, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("could not marshal room: %w", err)
	}

	pipe.Set(ctx, roomKey(room.ID), roomJSON, 0)

	if room.IsAvailable() {
		pipe.ZAdd(ctx, availableRoomsKey, redis.Z{Score: timeScore(room.CreatedAt), Member: room.ID})
	} else {
		pipe.ZRem(ctx, availableRoomsKey, room.ID)
	}

	return nil
}

func putGame(ctx context.Context, pipe redis.Pipeliner, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	pipe.Set(ctx, gameKey(game.ID), gameJSON, 0)

	if game.Finished {
		pipe.SAdd(ctx, unarchivedKey, game.ID)
	}

	return nil
}

// putNewGame queues a new game together with its per-player indexes.
func putNewGame(ctx context.Context, pipe redis.Pipeliner, game *entity.Game) error {
	if err := putGame(ctx, pipe, game); err != nil {
		return err
	}

	score := timeScore(game.StartedAt)
	for _, playerID := range []string{game.Player1ID, game.Player2ID} {
		pipe.ZAdd(ctx, playerGamesKey(playerID), redis.Z{Score: score, Member: game.ID})
	}

	return nil
}

func putMove(ctx context.Context, pipe redis.Pipeliner, move *entity.Move) error {
	moveJSON, err := json.Marshal(move)
	if err != nil {
		return fmt.Errorf("could not marshal move: %w", err)
	}

	pipe.RPush(ctx, movesKey(move.GameID), moveJSON)

	return nil
}

// decodeValue decodes one MGET reply; missing keys decode to nil.
func decodeValue[T any](value any) (*T, error) {
	if value == nil {
		return nil, nil
	}

	str, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected value type %T", value)
	}

	var dst T
	if err := json.Unmarshal([]byte(str), &dst); err != nil {
		return nil, err
	}

	return &dst, nil
}
