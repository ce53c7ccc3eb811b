package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/gridmatch-backend/internal/entity"
)

type RoomRepository interface {
	Create(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	ListAvailable(ctx context.Context) ([]*entity.Room, error)

	Update(ctx context.Context, id string, mutate func(room *entity.Room) (bool, error)) (*entity.Room, error)
	Promote(ctx context.Context, id string, promote func(room *entity.Room) (*entity.Game, error)) (*entity.Room, *entity.Game, error)
}

type dbRoom struct {
	client  *redis.Client
	retries int
}

func NewRoomRepository(client *redis.Client, retries int) RoomRepository {
	return &dbRoom{
		client:  client,
		retries: retries,
	}
}

func (that *dbRoom) Create(ctx context.Context, room *entity.Room) error {
	if _, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return putRoom(ctx, pipe, room)
	}); err != nil {
		return storageErr("create room", err)
	}

	return nil
}

func (that *dbRoom) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	return getRoom(ctx, that.client, id)
}

// ListAvailable returns lobby rooms ordered by creation time.
func (that *dbRoom) ListAvailable(ctx context.Context) ([]*entity.Room, error) {
	ids, err := that.client.ZRange(ctx, availableRoomsKey, 0, -1).Result()
	if err != nil {
		return nil, storageErr("list available rooms", err)
	}

	rooms := make([]*entity.Room, 0, len(ids))
	if len(ids) == 0 {
		return rooms, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, roomKey(id))
	}

	values, err := that.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, storageErr("mget rooms", err)
	}

	for _, value := range values {
		room, err := decodeValue[entity.Room](value)
		if err != nil {
			return nil, fmt.Errorf("failed to decode room: %w", err)
		}

		// the index may briefly lead the room record
		if room == nil || !room.IsAvailable() {
			continue
		}

		rooms = append(rooms, room)
	}

	return rooms, nil
}

// Update applies mutate to the committed room. An error from mutate aborts the
// transaction without writing anything, and so does a mutation reporting that
// nothing changed.
func (that *dbRoom) Update(ctx context.Context, id string, mutate func(room *entity.Room) (bool, error)) (*entity.Room, error) {
	var updated *entity.Room

	err := watch(ctx, that.client, that.retries, func(tx *redis.Tx) error {
		room, err := getRoom(ctx, tx, id)
		if err != nil {
			return err
		}

		changed, err := mutate(room)
		if err != nil {
			return err
		}

		if !changed {
			updated = room
			return nil
		}

		if _, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return putRoom(ctx, pipe, room)
		}); err != nil {
			return storageErr("update room", err)
		}

		updated = room

		return nil
	}, roomKey(id))
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Promote commits the room deactivation and the new game in one transaction,
// so a room can never seed two games.
func (that *dbRoom) Promote(ctx context.Context, id string, promote func(room *entity.Room) (*entity.Game, error)) (*entity.Room, *entity.Game, error) {
	var (
		promoted *entity.Room
		game     *entity.Game
	)

	err := watch(ctx, that.client, that.retries, func(tx *redis.Tx) error {
		room, err := getRoom(ctx, tx, id)
		if err != nil {
			return err
		}

		newGame, err := promote(room)
		if err != nil {
			return err
		}

		if _, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if err := putRoom(ctx, pipe, room); err != nil {
				return err
			}
			return putNewGame(ctx, pipe, newGame)
		}); err != nil {
			return storageErr("promote room", err)
		}

		promoted, game = room, newGame

		return nil
	}, roomKey(id))
	if err != nil {
		return nil, nil, err
	}

	return promoted, game, nil
}
