package score

import (
	"net/http"

	"quiz-event/internal/apperr"
	"quiz-event/internal/auth"
	"quiz-event/internal/httpx"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Scoreboard(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		httpx.Error(w, r, apperr.Unauthorized("Not authenticated"))
		return
	}
	board, err := h.service.Scoreboard(r.Context(), claims.IsAdmin())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, board)
}

func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		httpx.Error(w, r, apperr.Unauthorized("Not authenticated"))
		return
	}
	score, err := h.service.Mine(r.Context(), claims.UserID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, score)
}
