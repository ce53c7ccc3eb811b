package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 10 * time.Second

type Options struct {
	Port           string
	AllowedOrigins []string
}

type Server struct {
	logger *slog.Logger
	router chi.Router
	port   string
}

func New(
	logger *slog.Logger,
	opts Options,
	tokens tokenParser,
	rooms roomManager,
	engine matchEngine,
	history matchHistory,
) *Server {
	log := logger.With("component", "rest")

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Recoverer)
	router.Use(requestLogger(log))
	router.Use(cors(opts.AllowedOrigins))

	router.Get("/ping", NewPingHandler().PingHandler)

	router.Route("/api", func(r chi.Router) {
		r.Use(requireAuth(log, tokens))

		r.Route("/lobby", newLobbyHandler(log, rooms).routes)
		r.Route("/games", newGamesHandler(log, rooms, engine).routes)
		r.Route("/matches", newMatchesHandler(log, history).routes)
	})

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, log, http.StatusNotFound, errorResponse{Error: "route not found"})
	})

	return &Server{
		logger: log,
		router: router,
		port:   opts.Port,
	}
}

// Router exposes the handler tree, mainly for tests.
func (that *Server) Router() http.Handler {
	return that.router
}

// Start serves HTTP until ctx is canceled, then shuts down gracefully.
func (that *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         ":" + that.port,
		Handler:      that.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	that.logger.Info("HTTP server stopped")

	return nil
}
