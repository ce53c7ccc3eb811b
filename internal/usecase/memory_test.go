package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/gridmatch-backend/internal/apperror"
	"github.com/rocketscienceinc/gridmatch-backend/internal/entity"
)

// memoryStore is a process-local stand-in for the Redis repositories. A
// single mutex serializes mutations the way WATCH/MULTI does per key.
type memoryStore struct {
	mu sync.Mutex

	rooms map[string]*entity.Room
	games map[string]*entity.Game
	moves map[string][]*entity.Move

	roomWrites int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		rooms: make(map[string]*entity.Room),
		games: make(map[string]*entity.Game),
		moves: make(map[string][]*entity.Move),
	}
}

func clone[T any](src *T) *T {
	raw, err := json.Marshal(src)
	if err != nil {
		panic(err)
	}

	var dst T
	if err = json.Unmarshal(raw, &dst); err != nil {
		panic(err)
	}

	return &dst
}

func cloneMoves(moves []*entity.Move) []*entity.Move {
	out := make([]*entity.Move, 0, len(moves))
	for _, move := range moves {
		out = append(out, clone(move))
	}
	return out
}

type memoryRooms struct{ *memoryStore }

func (that memoryRooms) Create(_ context.Context, room *entity.Room) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.rooms[room.ID] = clone(room)
	return nil
}

func (that memoryRooms) GetByID(_ context.Context, id string) (*entity.Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[id]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}
	return clone(room), nil
}

func (that memoryRooms) ListAvailable(_ context.Context) ([]*entity.Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	rooms := make([]*entity.Room, 0)
	for _, room := range that.rooms {
		if room.IsAvailable() {
			rooms = append(rooms, clone(room))
		}
	}

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].CreatedAt.Before(rooms[j].CreatedAt) })
	return rooms, nil
}

func (that memoryRooms) Update(_ context.Context, id string, mutate func(room *entity.Room) (bool, error)) (*entity.Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	stored, ok := that.rooms[id]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	room := clone(stored)
	changed, err := mutate(room)
	if err != nil {
		return nil, err
	}

	if changed {
		that.rooms[id] = clone(room)
		that.roomWrites++
	}
	return room, nil
}

func (that memoryRooms) Promote(
	_ context.Context, id string, promote func(room *entity.Room) (*entity.Game, error),
) (*entity.Room, *entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	stored, ok := that.rooms[id]
	if !ok {
		return nil, nil, apperror.ErrRoomNotFound
	}

	room := clone(stored)
	game, err := promote(room)
	if err != nil {
		return nil, nil, err
	}

	that.rooms[id] = clone(room)
	that.games[game.ID] = clone(game)
	return room, game, nil
}

type memoryGames struct{ *memoryStore }

func (that memoryGames) Create(_ context.Context, game *entity.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.games[game.ID] = clone(game)
	return nil
}

func (that memoryGames) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	game, ok := that.games[id]
	if !ok {
		return nil, apperror.ErrMatchNotFound
	}
	return clone(game), nil
}

func (that memoryGames) GetSnapshot(_ context.Context, id string) (*entity.Game, []*entity.Move, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	game, ok := that.games[id]
	if !ok {
		return nil, nil, apperror.ErrMatchNotFound
	}
	return clone(game), cloneMoves(that.moves[id]), nil
}

func (that memoryGames) ListByPlayer(_ context.Context, playerID string) ([]*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	games := make([]*entity.Game, 0)
	for _, game := range that.games {
		if game.IsParticipant(playerID) {
			games = append(games, clone(game))
		}
	}

	sort.Slice(games, func(i, j int) bool { return games[i].StartedAt.After(games[j].StartedAt) })
	return games, nil
}

func (that memoryGames) Update(
	_ context.Context, id string, mutate func(game *entity.Game, moves []*entity.Move) (*entity.Move, error),
) (*entity.Game, []*entity.Move, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	stored, ok := that.games[id]
	if !ok {
		return nil, nil, apperror.ErrMatchNotFound
	}

	game := clone(stored)
	moves := cloneMoves(that.moves[id])

	move, err := mutate(game, moves)
	if err != nil {
		return nil, nil, err
	}

	if move != nil {
		moves = append(moves, move)
		that.moves[id] = append(that.moves[id], clone(move))
	}

	that.games[id] = clone(game)
	return game, moves, nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events []*entity.Event
}

func (that *recordingEvents) Publish(_ context.Context, event *entity.Event) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.events = append(that.events, event)
	return nil
}

func (that *recordingEvents) types() []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	types := make([]string, 0, len(that.events))
	for _, event := range that.events {
		types = append(types, event.Type)
	}
	return types
}

type mockArchiver struct {
	mock.Mock
}

func (that *mockArchiver) Archive(ctx context.Context, game *entity.Game, moves []*entity.Move) error {
	return that.Called(ctx, game, moves).Error(0)
}

// sequence returns deterministic ids and a clock that advances one second per call.
func sequence(prefix string) (func() string, func() time.Time) {
	var (
		mu    sync.Mutex
		count int
		ticks int
	)

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	newID := func() string {
		mu.Lock()
		defer mu.Unlock()
		count++
		return fmt.Sprintf("%s-%d", prefix, count)
	}

	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		ticks++
		return start.Add(time.Duration(ticks) * time.Second)
	}

	return newID, now
}

type fixture struct {
	store    *memoryStore
	events   *recordingEvents
	archiver *mockArchiver

	engine *MatchEngine
	rooms  *RoomManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMemoryStore()
	events := &recordingEvents{}

	archiver := &mockArchiver{}
	archiver.On("Archive", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	t.Cleanup(func() { archiver.AssertExpectations(t) })

	newID, now := sequence("id")

	engine := NewMatchEngine(logger, memoryGames{store}, archiver, events)
	engine.newID, engine.now = newID, now

	rooms := NewRoomManager(logger, memoryRooms{store}, engine, events)
	rooms.newID, rooms.now = newID, now

	return &fixture{
		store:    store,
		events:   events,
		archiver: archiver,
		engine:   engine,
		rooms:    rooms,
	}
}
