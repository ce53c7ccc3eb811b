package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/gridmatch-backend/internal/apperror"
	"github.com/rocketscienceinc/gridmatch-backend/internal/entity"
)

type GameRepository interface {
	Create(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	GetSnapshot(ctx context.Context, id string) (*entity.Game, []*entity.Move, error)
	ListByPlayer(ctx context.Context, playerID string) ([]*entity.Game, error)

	Update(
		ctx context.Context, id string, mutate func(game *entity.Game, moves []*entity.Move) (*entity.Move, error),
	) (*entity.Game, []*entity.Move, error)

	ListUnarchived(ctx context.Context) ([]string, error)
	MarkArchived(ctx context.Context, ids ...string) error
}

type dbGame struct {
	client  *redis.Client
	retries int
}

func NewGameRepository(client *redis.Client, retries int) GameRepository {
	return &dbGame{
		client:  client,
		retries: retries,
	}
}

func (that *dbGame) Create(ctx context.Context, game *entity.Game) error {
	if _, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return putNewGame(ctx, pipe, game)
	}); err != nil {
		return storageErr("create game", err)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	return getGame(ctx, that.client, id)
}

// GetSnapshot reads the game header and its moves from one MULTI block so
// both reflect the same committed state.
func (that *dbGame) GetSnapshot(ctx context.Context, id string) (*entity.Game, []*entity.Move, error) {
	var (
		gameCmd  *redis.StringCmd
		movesCmd *redis.StringSliceCmd
	)

	_, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		gameCmd = pipe.Get(ctx, gameKey(id))
		movesCmd = pipe.LRange(ctx, movesKey(id), 0, -1)
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return nil, nil, apperror.ErrMatchNotFound
	}

	if err != nil {
		return nil, nil, storageErr("snapshot game", err)
	}

	var game entity.Game
	if err = json.Unmarshal([]byte(gameCmd.Val()), &game); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	moves, err := decodeMoves(movesCmd.Val())
	if err != nil {
		return nil, nil, err
	}

	return &game, moves, nil
}

// ListByPlayer returns the player's games, most recently started first.
func (that *dbGame) ListByPlayer(ctx context.Context, playerID string) ([]*entity.Game, error) {
	ids, err := that.client.ZRevRange(ctx, playerGamesKey(playerID), 0, -1).Result()
	if err != nil {
		return nil, storageErr("list player games", err)
	}

	games := make([]*entity.Game, 0, len(ids))
	if len(ids) == 0 {
		return games, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, gameKey(id))
	}

	values, err := that.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, storageErr("mget games", err)
	}

	for _, value := range values {
		game, err := decodeValue[entity.Game](value)
		if err != nil {
			return nil, fmt.Errorf("failed to decode game: %w", err)
		}

		if game != nil {
			games = append(games, game)
		}
	}

	return games, nil
}

// Update validates and applies mutate against the committed game and its full
// move history. A returned move is appended to the history in the same
// transaction; an error from mutate aborts without writing anything.
func (that *dbGame) Update(
	ctx context.Context, id string, mutate func(game *entity.Game, moves []*entity.Move) (*entity.Move, error),
) (*entity.Game, []*entity.Move, error) {
	var (
		updated *entity.Game
		history []*entity.Move
	)

	err := watch(ctx, that.client, that.retries, func(tx *redis.Tx) error {
		game, err := getGame(ctx, tx, id)
		if err != nil {
			return err
		}

		moves, err := getMoves(ctx, tx, id)
		if err != nil {
			return err
		}

		move, err := mutate(game, moves)
		if err != nil {
			return err
		}

		if _, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if move != nil {
				if err := putMove(ctx, pipe, move); err != nil {
					return err
				}
			}
			return putGame(ctx, pipe, game)
		}); err != nil {
			return storageErr("update game", err)
		}

		if move != nil {
			moves = append(moves, move)
		}

		updated, history = game, moves

		return nil
	}, gameKey(id), movesKey(id))
	if err != nil {
		return nil, nil, err
	}

	return updated, history, nil
}

func (that *dbGame) ListUnarchived(ctx context.Context) ([]string, error) {
	ids, err := that.client.SMembers(ctx, unarchivedKey).Result()
	if err != nil {
		return nil, storageErr("list unarchived games", err)
	}

	return ids, nil
}

func (that *dbGame) MarkArchived(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	members := make([]any, 0, len(ids))
	for _, id := range ids {
		members = append(members, id)
	}

	if err := that.client.SRem(ctx, unarchivedKey, members...).Err(); err != nil {
		return storageErr("mark games archived", err)
	}

	return nil
}
