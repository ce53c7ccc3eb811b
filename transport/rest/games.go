package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/gridmatch-backend/internal/entity"
)

type matchEngine interface {
	SubmitMove(ctx context.Context, gameID, playerID string, pos entity.Position) (*entity.MatchState, entity.TurnResult, error)
	Concede(ctx context.Context, gameID, playerID string) (*entity.MatchState, error)
	GetState(ctx context.Context, gameID string) (*entity.MatchState, error)
	GetActiveMatchForPlayer(ctx context.Context, playerID string) (*entity.Game, error)
}

type startMatchRequest struct {
	RoomID string `json:"room_id"`
}

type moveRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type moveResponse struct {
	Result entity.TurnResult `json:"result"`
	*entity.MatchState
}

type gamesHandler struct {
	logger *slog.Logger
	rooms  roomManager
	engine matchEngine
}

func newGamesHandler(logger *slog.Logger, rooms roomManager, engine matchEngine) *gamesHandler {
	return &gamesHandler{
		logger: logger.With("handler", "games"),
		rooms:  rooms,
		engine: engine,
	}
}

func (that *gamesHandler) routes(r chi.Router) {
	r.Post("/", that.startMatch)
	r.Get("/current", that.currentMatch)
	r.Get("/{gameID}", that.getState)
	r.Post("/{gameID}/moves", that.submitMove)
	r.Post("/{gameID}/end", that.endMatch)
}

func (that *gamesHandler) startMatch(w http.ResponseWriter, r *http.Request) {
	var req startMatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, that.logger, err)
		return
	}

	game, err := that.rooms.PromoteToMatch(r.Context(), req.RoomID, playerFrom(r.Context()))
	if err != nil {
		writeError(w, that.logger, err)
		return
	}

	writeJSON(w, that.logger, http.StatusCreated, game)
}

func (that *gamesHandler) submitMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, that.logger, err)
		return
	}

	if req.Row == nil || req.Col == nil {
		writeJSON(w, that.logger, http.StatusBadRequest, errorResponse{Error: "row and col are required"})
		return
	}

	pos := entity.Position{Row: *req.Row, Col: *req.Col}
	if err := pos.Validate(); err != nil {
		writeError(w, that.logger, err)
		return
	}

	state, result, err := that.engine.SubmitMove(r.Context(), chi.URLParam(r, "gameID"), playerFrom(r.Context()), pos)
	if err != nil {
		writeError(w, that.logger, err)
		return
	}

	writeJSON(w, that.logger, http.StatusOK, moveResponse{Result: result, MatchState: state})
}

func (that *gamesHandler) getState(w http.ResponseWriter, r *http.Request) {
	state, err := that.engine.GetState(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		writeError(w, that.logger, err)
		return
	}

	writeJSON(w, that.logger, http.StatusOK, state)
}

func (that *gamesHandler) currentMatch(w http.ResponseWriter, r *http.Request) {
	game, err := that.engine.GetActiveMatchForPlayer(r.Context(), playerFrom(r.Context()))
	if err != nil {
		writeError(w, that.logger, err)
		return
	}

	writeJSON(w, that.logger, http.StatusOK, game)
}

func (that *gamesHandler) endMatch(w http.ResponseWriter, r *http.Request) {
	state, err := that.engine.Concede(r.Context(), chi.URLParam(r, "gameID"), playerFrom(r.Context()))
	if err != nil {
		writeError(w, that.logger, err)
		return
	}

	writeJSON(w, that.logger, http.StatusOK, state)
}
