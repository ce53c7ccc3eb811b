package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/gridmatch-backend/internal/config"
	"github.com/rocketscienceinc/gridmatch-backend/internal/repository"
	"github.com/rocketscienceinc/gridmatch-backend/internal/repository/storage"
	"github.com/rocketscienceinc/gridmatch-backend/internal/service"
	"github.com/rocketscienceinc/gridmatch-backend/internal/usecase"
	"github.com/rocketscienceinc/gridmatch-backend/internal/worker"
	"github.com/rocketscienceinc/gridmatch-backend/transport/rest"
)

var (
	ErrAddrNotFound = errors.New("redis address string is empty")
	ErrDSNNotFound  = errors.New("postgres dsn is empty")
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	auth, err := service.NewAuthService(conf.JWTSecretKey, conf.TokenTTL)
	if err != nil {
		return fmt.Errorf("could not create auth service: %w", err)
	}

	if conf.Redis.Host == "" {
		return ErrAddrNotFound
	}

	if conf.Postgres.DSN == "" {
		return ErrDSNNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, storage.RedisOptions{
		Addr:     conf.Redis.GetRedisAddr(),
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	postgresStorage, err := storage.NewPostgresStorage(ctx, conf.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("could not connect to postgres storage: %w", err)
	}

	defer func() {
		if sqlDB, dbErr := postgresStorage.DB(); dbErr == nil {
			if err = sqlDB.Close(); err != nil {
				log.Error("could not close postgres storage", "error", err)
			}
		}
	}()

	archiveRepo := repository.NewArchiveRepository(postgresStorage)
	if err = archiveRepo.Migrate(ctx); err != nil {
		return fmt.Errorf("could not migrate archive: %w", err)
	}

	roomRepo := repository.NewRoomRepository(redisStorage, conf.Engine.MaxTxRetries)
	gameRepo := repository.NewGameRepository(redisStorage, conf.Engine.MaxTxRetries)
	events := repository.NewEventPublisher(redisStorage)

	archiver := worker.NewArchiver(logger, gameRepo, archiveRepo, conf.Archive.SweepInterval)
	if err = archiver.Start(ctx); err != nil {
		return fmt.Errorf("could not start archiver: %w", err)
	}

	defer func() {
		if err = archiver.Stop(); err != nil {
			log.Error("could not stop archiver", "error", err)
		}
	}()

	matchEngine := usecase.NewMatchEngine(logger, gameRepo, archiver, events)
	roomManager := usecase.NewRoomManager(logger, roomRepo, matchEngine, events)
	matchHistory := usecase.NewMatchHistory(logger, gameRepo, archiveRepo)

	server := rest.New(logger, rest.Options{
		Port:           conf.HTTPPort,
		AllowedOrigins: conf.AllowedOrigins,
	}, auth, roomManager, matchEngine, matchHistory)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		httpErrCh <- server.Start(ctx)
	}()

	select {
	case err = <-httpErrCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return <-httpErrCh
	}
}
