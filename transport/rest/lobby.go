package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/gridmatch-backend/internal/entity"
)

type roomManager interface {
	CreateRoom(ctx context.Context, hostID, name string) (*entity.Room, error)
	JoinRoom(ctx context.Context, roomID, playerID string) (*entity.Room, error)
	LeaveRoom(ctx context.Context, roomID, playerID string) (*entity.Room, error)
	ListAvailable(ctx context.Context) ([]*entity.Room, error)
	GetRoom(ctx context.Context, roomID string) (*entity.Room, error)
	PromoteToMatch(ctx context.Context, roomID, playerID string) (*entity.Game, error)
}

type createRoomRequest struct {
	Name string `json:"name"`
}

type roomsResponse struct {
	Rooms []*entity.Room `json:"rooms"`
}

type lobbyHandler struct {
	logger *slog.Logger
	rooms  roomManager
}

func newLobbyHandler(logger *slog.Logger, rooms roomManager) *lobbyHandler {
	return &lobbyHandler{
		logger: logger.With("handler", "lobby"),
		rooms:  rooms,
	}
}

func (that *lobbyHandler) routes(r chi.Router) {
	r.Post("/rooms", that.createRoom)
	r.Get("/rooms", that.listRooms)
	r.Get("/rooms/{roomID}", that.getRoom)
	r.Post("/rooms/{roomID}/join", that.joinRoom)
	r.Post("/rooms/{roomID}/leave", that.leaveRoom)
}

func (that *lobbyHandler) createRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, that.logger, err)
		return
	}

	room, err := that.rooms.CreateRoom(r.Context(), playerFrom(r.Context()), req.Name)
	if err != nil {
		writeError(w, that.logger, err)
		return
	}

	writeJSON(w, that.logger, http.StatusCreated, room)
}

func (that *lobbyHandler) listRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := that.rooms.ListAvailable(r.Context())
	if err != nil {
		writeError(w, that.logger, err)
		return
	}

	writeJSON(w, that.logger, http.StatusOK, roomsResponse{Rooms: rooms})
}

func (that *lobbyHandler) getRoom(w http.ResponseWriter, r *http.Request) {
	room, err := that.rooms.GetRoom(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		writeError(w, that.logger, err)
		return
	}

	writeJSON(w, that.logger, http.StatusOK, room)
}

func (that *lobbyHandler) joinRoom(w http.ResponseWriter, r *http.Request) {
	room, err := that.rooms.JoinRoom(r.Context(), chi.URLParam(r, "roomID"), playerFrom(r.Context()))
	if err != nil {
		writeError(w, that.logger, err)
		return
	}

	writeJSON(w, that.logger, http.StatusOK, room)
}

func (that *lobbyHandler) leaveRoom(w http.ResponseWriter, r *http.Request) {
	room, err := that.rooms.LeaveRoom(r.Context(), chi.URLParam(r, "roomID"), playerFrom(r.Context()))
	if err != nil {
		writeError(w, that.logger, err)
		return
	}

	writeJSON(w, that.logger, http.StatusOK, room)
}
