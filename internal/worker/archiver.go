package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/rocketscienceinc/gridmatch-backend/internal/apperror"
	"github.com/rocketscienceinc/gridmatch-backend/internal/entity"
)

const DefaultSweepInterval = time.Minute

var ErrMatchInProgress = errors.New("match is still in progress")

type gameSource interface {
	GetSnapshot(ctx context.Context, id string) (*entity.Game, []*entity.Move, error)
	ListUnarchived(ctx context.Context) ([]string, error)
	MarkArchived(ctx context.Context, ids ...string) error
}

type archiveSink interface {
	Save(ctx context.Context, record *entity.MatchRecord) error
}

// Archiver copies finished matches from the live store into the archive.
// Finished games are queued by the live store when written, so a failed
// Archive call is retried by the next Sweep.
type Archiver struct {
	logger *slog.Logger

	games   gameSource
	archive archiveSink

	interval  time.Duration
	scheduler gocron.Scheduler
}

func NewArchiver(logger *slog.Logger, games gameSource, archive archiveSink, interval time.Duration) *Archiver {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	return &Archiver{
		logger: logger.With("component", "archiver"),

		games:   games,
		archive: archive,

		interval: interval,
	}
}

func (that *Archiver) Archive(ctx context.Context, game *entity.Game, moves []*entity.Move) error {
	if !game.Finished {
		return fmt.Errorf("%w: %s", ErrMatchInProgress, game.ID)
	}

	if err := that.archive.Save(ctx, entity.NewMatchRecord(game, moves)); err != nil {
		return fmt.Errorf("failed to save match record: %w", err)
	}

	if err := that.games.MarkArchived(ctx, game.ID); err != nil {
		return fmt.Errorf("failed to mark match archived: %w", err)
	}

	return nil
}

// Sweep archives every queued match and reports how many were archived.
func (that *Archiver) Sweep(ctx context.Context) (int, error) {
	log := that.logger.With("method", "Sweep")

	ids, err := that.games.ListUnarchived(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list unarchived matches: %w", err)
	}

	var archived int

	for _, id := range ids {
		game, moves, err := that.games.GetSnapshot(ctx, id)
		if errors.Is(err, apperror.ErrMatchNotFound) {
			log.Warn("dropping queued match that no longer exists", "gameID", id)

			if err = that.games.MarkArchived(ctx, id); err != nil {
				log.Error("failed to drop queued match", "gameID", id, "error", err)
			}
			continue
		}

		if err != nil {
			log.Error("failed to read queued match", "gameID", id, "error", err)
			continue
		}

		if err = that.Archive(ctx, game, moves); err != nil {
			log.Error("failed to archive match", "gameID", id, "error", err)
			continue
		}

		archived++
	}

	if archived > 0 {
		log.Info("archived finished matches", "count", archived)
	}

	return archived, nil
}

// Start schedules Sweep every interval until Stop is called.
func (that *Archiver) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	if _, err = scheduler.NewJob(
		gocron.DurationJob(that.interval),
		gocron.NewTask(func() {
			if _, err := that.Sweep(ctx); err != nil {
				that.logger.Error("archive sweep failed", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return fmt.Errorf("failed to schedule archive sweep: %w", err)
	}

	scheduler.Start()
	that.scheduler = scheduler

	that.logger.Info("archiver started", "interval", that.interval)

	return nil
}

func (that *Archiver) Stop() error {
	if that.scheduler == nil {
		return nil
	}

	if err := that.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}

	return nil
}
