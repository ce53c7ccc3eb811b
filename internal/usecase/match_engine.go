package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/gridmatch-backend/internal/apperror"
	"github.com/rocketscienceinc/gridmatch-backend/internal/entity"
	"github.com/rocketscienceinc/gridmatch-backend/internal/pkg"
)

type gameRepo interface {
	Create(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	GetSnapshot(ctx context.Context, id string) (*entity.Game, []*entity.Move, error)
	ListByPlayer(ctx context.Context, playerID string) ([]*entity.Game, error)

	Update(
		ctx context.Context, id string, mutate func(game *entity.Game, moves []*entity.Move) (*entity.Move, error),
	) (*entity.Game, []*entity.Move, error)
}

type matchArchiver interface {
	Archive(ctx context.Context, game *entity.Game, moves []*entity.Move) error
}

// MatchEngine enforces turn order and resolves wins and draws. Every mutation
// runs inside the repository transaction so concurrent submissions for the
// same game are serialized against committed state.
type MatchEngine struct {
	logger *slog.Logger

	gameRepo gameRepo
	archiver matchArchiver
	events   eventPublisher

	now   func() time.Time
	newID func() string
}

func NewMatchEngine(logger *slog.Logger, gameRepo gameRepo, archiver matchArchiver, events eventPublisher) *MatchEngine {
	return &MatchEngine{
		logger: logger.With("component", "match_engine"),

		gameRepo: gameRepo,
		archiver: archiver,
		events:   events,

		now:   utcNow,
		newID: pkg.GenerateID,
	}
}

// NewMatch builds an unsaved game. Player 1 moves first.
func (that *MatchEngine) NewMatch(player1ID, player2ID string) (*entity.Game, error) {
	if player1ID == "" || player2ID == "" || player1ID == player2ID {
		return nil, apperror.ErrInvalidPlayers
	}

	return entity.NewGame(that.newID(), player1ID, player2ID, that.now()), nil
}

func (that *MatchEngine) CreateMatch(ctx context.Context, player1ID, player2ID string) (*entity.Game, error) {
	game, err := that.NewMatch(player1ID, player2ID)
	if err != nil {
		return nil, err
	}

	if err = that.gameRepo.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	that.logger.Info("match created", "gameID", game.ID, "player1ID", player1ID, "player2ID", player2ID)
	that.publish(ctx, entity.EventGameCreated, game.ID, player1ID)

	return game, nil
}

func (that *MatchEngine) SubmitMove(
	ctx context.Context, gameID, playerID string, pos entity.Position,
) (*entity.MatchState, entity.TurnResult, error) {
	log := that.logger.With("method", "SubmitMove", "gameID", gameID, "playerID", playerID)

	if err := pos.Validate(); err != nil {
		return nil, "", err
	}

	var result entity.TurnResult

	game, moves, err := that.gameRepo.Update(ctx, gameID, func(game *entity.Game, history []*entity.Move) (*entity.Move, error) {
		now := that.now()
		move := entity.NewMove(that.newID(), game.ID, playerID, pos, now)

		turn, err := game.MakeTurn(history, move, now)
		if err != nil {
			return nil, err
		}

		result = turn

		return move, nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to submit move: %w", err)
	}

	log.Debug("move accepted", "row", pos.Row, "col", pos.Col, "result", result)
	that.publish(ctx, entity.EventMoveAccepted, game.ID, playerID)

	if game.Finished {
		that.finish(ctx, game, moves, playerID)
	}

	return entity.NewMatchState(game, moves), result, nil
}

// Concede ends a match early. Conceding an already finished match changes
// nothing and reports its final state.
func (that *MatchEngine) Concede(ctx context.Context, gameID, playerID string) (*entity.MatchState, error) {
	current, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	if !current.IsParticipant(playerID) {
		return nil, fmt.Errorf("%w: player %s in match %s", apperror.ErrNotAParticipant, playerID, gameID)
	}

	if current.Finished {
		return that.GetState(ctx, gameID)
	}

	var conceded bool

	game, moves, err := that.gameRepo.Update(ctx, gameID, func(game *entity.Game, _ []*entity.Move) (*entity.Move, error) {
		var err error
		conceded, err = game.Concede(playerID, that.now())

		return nil, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to concede match: %w", err)
	}

	if conceded {
		that.logger.Info("match conceded", "gameID", gameID, "playerID", playerID)
		that.finish(ctx, game, moves, playerID)
	}

	return entity.NewMatchState(game, moves), nil
}

func (that *MatchEngine) GetState(ctx context.Context, gameID string) (*entity.MatchState, error) {
	game, moves, err := that.gameRepo.GetSnapshot(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match state: %w", err)
	}

	return entity.NewMatchState(game, moves), nil
}

// GetActiveMatchForPlayer returns the most recently started match of the
// player that is still in progress.
func (that *MatchEngine) GetActiveMatchForPlayer(ctx context.Context, playerID string) (*entity.Game, error) {
	games, err := that.gameRepo.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	for _, game := range games {
		if !game.Finished {
			return game, nil
		}
	}

	return nil, apperror.ErrNoActiveMatch
}

func (that *MatchEngine) finish(ctx context.Context, game *entity.Game, moves []*entity.Move, actorID string) {
	that.publish(ctx, entity.EventGameFinished, game.ID, actorID)

	if that.archiver == nil {
		return
	}

	// the sweeper picks up anything left in the unarchived queue
	if err := that.archiver.Archive(ctx, game, moves); err != nil && !errors.Is(err, context.Canceled) {
		that.logger.Warn("failed to archive finished match", "gameID", game.ID, "error", err)
	}
}

func (that *MatchEngine) publish(ctx context.Context, eventType, gameID, actorID string) {
	publish(ctx, that.logger, that.events, &entity.Event{
		Topic:    entity.TopicGames,
		Type:     eventType,
		EntityID: gameID,
		ActorID:  actorID,
		At:       that.now(),
	})
}
