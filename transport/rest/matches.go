package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/gridmatch-backend/internal/entity"
)

type matchHistory interface {
	History(ctx context.Context, playerID string) ([]*entity.MatchRecord, error)
	Ongoing(ctx context.Context, playerID string) ([]*entity.Game, error)
	Completed(ctx context.Context, playerID string) ([]*entity.MatchRecord, error)
	Result(ctx context.Context, gameID string) (*entity.MatchRecord, error)
}

// matchSummary is a record seen from the requesting player's side.
type matchSummary struct {
	*entity.MatchRecord
	PlayerResult string `json:"player_result"`
}

type matchesResponse struct {
	Matches []matchSummary `json:"matches"`
}

type ongoingResponse struct {
	Matches []*entity.Game `json:"matches"`
}

type matchesHandler struct {
	logger  *slog.Logger
	history matchHistory
}

func newMatchesHandler(logger *slog.Logger, history matchHistory) *matchesHandler {
	return &matchesHandler{
		logger:  logger.With("handler", "matches"),
		history: history,
	}
}

func (that *matchesHandler) routes(r chi.Router) {
	r.Get("/history", that.listHistory)
	r.Get("/ongoing", that.listOngoing)
	r.Get("/completed", that.listCompleted)
	r.Get("/{gameID}/result", that.getResult)
}

func summarize(playerID string, records []*entity.MatchRecord) matchesResponse {
	matches := make([]matchSummary, 0, len(records))
	for _, record := range records {
		matches = append(matches, matchSummary{MatchRecord: record, PlayerResult: record.ResultFor(playerID)})
	}

	return matchesResponse{Matches: matches}
}

func (that *matchesHandler) listHistory(w http.ResponseWriter, r *http.Request) {
	playerID := playerFrom(r.Context())

	records, err := that.history.History(r.Context(), playerID)
	if err != nil {
		writeError(w, that.logger, err)
		return
	}

	writeJSON(w, that.logger, http.StatusOK, summarize(playerID, records))
}

func (that *matchesHandler) listOngoing(w http.ResponseWriter, r *http.Request) {
	games, err := that.history.Ongoing(r.Context(), playerFrom(r.Context()))
	if err != nil {
		writeError(w, that.logger, err)
		return
	}

	writeJSON(w, that.logger, http.StatusOK, ongoingResponse{Matches: games})
}

func (that *matchesHandler) listCompleted(w http.ResponseWriter, r *http.Request) {
	playerID := playerFrom(r.Context())

	records, err := that.history.Completed(r.Context(), playerID)
	if err != nil {
		writeError(w, that.logger, err)
		return
	}

	writeJSON(w, that.logger, http.StatusOK, summarize(playerID, records))
}

func (that *matchesHandler) getResult(w http.ResponseWriter, r *http.Request) {
	record, err := that.history.Result(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		writeError(w, that.logger, err)
		return
	}

	writeJSON(w, that.logger, http.StatusOK, matchSummary{MatchRecord: record, PlayerResult: record.ResultFor(playerFrom(r.Context()))})
}
