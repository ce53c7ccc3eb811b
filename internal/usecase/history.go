package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/rocketscienceinc/gridmatch-backend/internal/apperror"
	"github.com/rocketscienceinc/gridmatch-backend/internal/entity"
)

type liveGames interface {
	GetSnapshot(ctx context.Context, id string) (*entity.Game, []*entity.Move, error)
	ListByPlayer(ctx context.Context, playerID string) ([]*entity.Game, error)
}

type archiveRepo interface {
	GetByGameID(ctx context.Context, gameID string) (*entity.MatchRecord, error)
	ListByPlayer(ctx context.Context, playerID string) ([]*entity.MatchRecord, error)
}

// MatchHistory reads a player's matches. Ongoing matches live in the live
// store, completed ones in the archive.
type MatchHistory struct {
	logger *slog.Logger

	games   liveGames
	archive archiveRepo
}

func NewMatchHistory(logger *slog.Logger, games liveGames, archive archiveRepo) *MatchHistory {
	return &MatchHistory{
		logger: logger.With("component", "match_history"),

		games:   games,
		archive: archive,
	}
}

// Ongoing lists unfinished matches of the player, newest first.
func (that *MatchHistory) Ongoing(ctx context.Context, playerID string) ([]*entity.Game, error) {
	games, err := that.games.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	ongoing := make([]*entity.Game, 0, len(games))
	for _, game := range games {
		if !game.Finished {
			ongoing = append(ongoing, game)
		}
	}

	return ongoing, nil
}

// Completed lists archived matches of the player, newest first.
func (that *MatchHistory) Completed(ctx context.Context, playerID string) ([]*entity.MatchRecord, error) {
	records, err := that.archive.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed matches: %w", err)
	}

	return records, nil
}

// History merges every match the player took part in, newest first. Finished
// matches that have not reached the archive yet are summarized from the live
// store.
func (that *MatchHistory) History(ctx context.Context, playerID string) ([]*entity.MatchRecord, error) {
	games, err := that.games.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	completed, err := that.Completed(ctx, playerID)
	if err != nil {
		return nil, err
	}

	archived := make(map[string]struct{}, len(completed))
	records := make([]*entity.MatchRecord, 0, len(games)+len(completed))

	for _, record := range completed {
		archived[record.GameID] = struct{}{}
		records = append(records, record)
	}

	for _, game := range games {
		if _, ok := archived[game.ID]; ok {
			continue
		}

		if !game.Finished {
			records = append(records, entity.NewMatchRecord(game, nil))
			continue
		}

		snapshot, moves, err := that.games.GetSnapshot(ctx, game.ID)
		if err != nil {
			that.logger.Warn("failed to summarize unarchived match", "gameID", game.ID, "error", err)
			continue
		}

		records = append(records, entity.NewMatchRecord(snapshot, moves))
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})

	return records, nil
}

// Result returns the summary of one match. A match that is not archived is
// summarized from its live state, with result "none" while in progress.
func (that *MatchHistory) Result(ctx context.Context, gameID string) (*entity.MatchRecord, error) {
	record, err := that.archive.GetByGameID(ctx, gameID)
	if err == nil {
		return record, nil
	}

	if !errors.Is(err, apperror.ErrMatchNotFound) {
		return nil, fmt.Errorf("failed to get archived match: %w", err)
	}

	game, moves, err := that.games.GetSnapshot(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	return entity.NewMatchRecord(game, moves), nil
}
