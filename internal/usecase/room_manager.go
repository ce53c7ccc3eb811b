package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/gridmatch-backend/internal/apperror"
	"github.com/rocketscienceinc/gridmatch-backend/internal/entity"
	"github.com/rocketscienceinc/gridmatch-backend/internal/pkg"
)

type roomRepo interface {
	Create(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	ListAvailable(ctx context.Context) ([]*entity.Room, error)

	Update(ctx context.Context, id string, mutate func(room *entity.Room) (bool, error)) (*entity.Room, error)
	Promote(ctx context.Context, id string, promote func(room *entity.Room) (*entity.Game, error)) (*entity.Room, *entity.Game, error)
}

type matchFactory interface {
	NewMatch(player1ID, player2ID string) (*entity.Game, error)
}

// RoomManager owns the lobby: rooms are created, filled, left and finally
// promoted into a match.
type RoomManager struct {
	logger *slog.Logger

	roomRepo roomRepo
	matches  matchFactory
	events   eventPublisher

	now   func() time.Time
	newID func() string
}

func NewRoomManager(logger *slog.Logger, roomRepo roomRepo, matches matchFactory, events eventPublisher) *RoomManager {
	return &RoomManager{
		logger: logger.With("component", "room_manager"),

		roomRepo: roomRepo,
		matches:  matches,
		events:   events,

		now:   utcNow,
		newID: pkg.GenerateID,
	}
}

func (that *RoomManager) CreateRoom(ctx context.Context, hostID, name string) (*entity.Room, error) {
	room, err := entity.NewRoom(that.newID(), name, hostID, that.now())
	if err != nil {
		return nil, err
	}

	if err = that.roomRepo.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	that.logger.Info("room created", "roomID", room.ID, "hostID", hostID)
	that.publish(ctx, entity.EventRoomCreated, room.ID, hostID)

	return room, nil
}

func (that *RoomManager) JoinRoom(ctx context.Context, roomID, playerID string) (*entity.Room, error) {
	var joined bool

	room, err := that.roomRepo.Update(ctx, roomID, func(room *entity.Room) (bool, error) {
		var err error
		joined, err = room.Join(playerID)

		return joined, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to join room: %w", err)
	}

	if joined {
		that.publish(ctx, entity.EventRoomJoined, room.ID, playerID)
	}

	return room, nil
}

func (that *RoomManager) LeaveRoom(ctx context.Context, roomID, playerID string) (*entity.Room, error) {
	var left bool

	room, err := that.roomRepo.Update(ctx, roomID, func(room *entity.Room) (bool, error) {
		var err error
		left, err = room.Leave(playerID)

		return left, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to leave room: %w", err)
	}

	if !left {
		return room, nil
	}

	if !room.Active {
		that.logger.Info("room abandoned by host", "roomID", room.ID, "hostID", playerID)
	}

	that.publish(ctx, entity.EventRoomLeft, room.ID, playerID)

	return room, nil
}

func (that *RoomManager) ListAvailable(ctx context.Context) ([]*entity.Room, error) {
	rooms, err := that.roomRepo.ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list available rooms: %w", err)
	}

	return rooms, nil
}

func (that *RoomManager) GetRoom(ctx context.Context, roomID string) (*entity.Room, error) {
	room, err := that.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	return room, nil
}

// PromoteToMatch turns a ready room into a match seeded with host as player 1
// and guest as player 2. The room is deactivated in the same transaction.
func (that *RoomManager) PromoteToMatch(ctx context.Context, roomID, playerID string) (*entity.Game, error) {
	_, game, err := that.roomRepo.Promote(ctx, roomID, func(room *entity.Room) (*entity.Game, error) {
		if !room.IsReady() {
			return nil, apperror.ErrRoomNotReady
		}

		if !room.IsParticipant(playerID) {
			return nil, fmt.Errorf("%w: player %s in room %s", apperror.ErrNotAParticipant, playerID, room.ID)
		}

		if err := room.Promote(); err != nil {
			return nil, err
		}

		return that.matches.NewMatch(room.HostPlayerID, room.GuestPlayerID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to promote room: %w", err)
	}

	that.logger.Info("room promoted to match", "roomID", roomID, "gameID", game.ID)
	that.publish(ctx, entity.EventRoomPromoted, roomID, playerID)
	publish(ctx, that.logger, that.events, &entity.Event{
		Topic: entity.TopicGames, Type: entity.EventGameCreated, EntityID: game.ID, ActorID: playerID, At: that.now(),
	})

	return game, nil
}

func (that *RoomManager) publish(ctx context.Context, eventType, roomID, actorID string) {
	publish(ctx, that.logger, that.events, &entity.Event{
		Topic:    entity.TopicRooms,
		Type:     eventType,
		EntityID: roomID,
		ActorID:  actorID,
		At:       that.now(),
	})
}
