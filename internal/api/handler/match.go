package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/gamematch/internal/api/request"
	"github.com/mcoot/gamematch/internal/api/response"
	"github.com/mcoot/gamematch/internal/model"
	"github.com/mcoot/gamematch/internal/services/history"
	"github.com/mcoot/gamematch/internal/services/lifecycle"
	"github.com/mcoot/gamematch/internal/services/match"
)

// MatchHandler handles match registry, lifecycle and history endpoints
type MatchHandler struct {
	matches   *match.Service
	lifecycle *lifecycle.Controller
	history   *history.Service
	logger    *slog.Logger
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(
	matches *match.Service,
	lifecycle *lifecycle.Controller,
	history *history.Service,
	logger *slog.Logger,
) *MatchHandler {
	return &MatchHandler{
		matches:   matches,
		lifecycle: lifecycle,
		history:   history,
		logger:    logger,
	}
}

// List handles GET /api/v1/matches
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matches.ListMatches(r.Context())
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MatchesFromModel(matches))
}

// ListOpen handles GET /api/v1/matches/open
func (h *MatchHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matches.ListOpenMatches(r.Context())
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MatchesFromModel(matches))
}

// Create handles POST /api/v1/matches
func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateMatchRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, err)
		return
	}

	m, err := h.matches.CreateMatch(r.Context(), req.Name)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.MatchFromModel(m))
}

// Get handles GET /api/v1/matches/{matchId}
func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.matches.GetMatch(r.Context(), matchIDVar(r))
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MatchFromModel(m))
}

// Delete handles DELETE /api/v1/matches/{matchId}
func (h *MatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.matches.DeleteMatch(r.Context(), matchIDVar(r)); err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Message{Message: "match deleted"})
}

// History handles GET /api/v1/matches/history/{playerId}
func (h *MatchHandler) History(w http.ResponseWriter, r *http.Request) {
	matches, err := h.history.PlayerHistory(r.Context(), playerIDVar(r, "playerId"))
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	if len(matches) == 0 {
		WriteError(w, model.ErrNoHistory)
		return
	}

	response.JSON(w, http.StatusOK, response.MatchesFromModel(matches))
}

// Join handles POST /api/v1/matches/{matchId}/join/{playerId}
func (h *MatchHandler) Join(w http.ResponseWriter, r *http.Request) {
	m, err := h.lifecycle.JoinMatch(r.Context(), matchIDVar(r), playerIDVar(r, "playerId"))
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MatchFromModel(m))
}

// Leave handles POST /api/v1/matches/{matchId}/leave/{playerId}
func (h *MatchHandler) Leave(w http.ResponseWriter, r *http.Request) {
	m, err := h.lifecycle.LeaveMatch(r.Context(), matchIDVar(r), playerIDVar(r, "playerId"))
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MatchFromModel(m))
}

// Start handles POST /api/v1/matches/{matchId}/start
func (h *MatchHandler) Start(w http.ResponseWriter, r *http.Request) {
	m, err := h.lifecycle.StartMatch(r.Context(), matchIDVar(r))
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MatchFromModel(m))
}

// Finish handles POST /api/v1/matches/{matchId}/finish
func (h *MatchHandler) Finish(w http.ResponseWriter, r *http.Request) {
	var req request.FinishMatchRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	scores, err := req.ParseScores()
	if err != nil {
		WriteError(w, err)
		return
	}

	m, err := h.lifecycle.FinishMatch(r.Context(), matchIDVar(r), scores)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MatchFromModel(m))
}
