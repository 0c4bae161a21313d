package answer

import (
	"net/http"

	"quiz-event/internal/apperr"
	"quiz-event/internal/auth"
	"quiz-event/internal/httpx"

	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		httpx.Error(w, r, apperr.Unauthorized("Not authenticated"))
		return
	}

	var sub Submission
	if err := httpx.Decode(r, &sub); err != nil {
		httpx.Error(w, r, err)
		return
	}
	sub.UserID = claims.UserID
	sub.Username = claims.Username

	result, err := h.service.Submit(r.Context(), sub)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		httpx.Error(w, r, apperr.Unauthorized("Not authenticated"))
		return
	}
	answers, err := h.service.ListMine(r.Context(), claims.UserID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, answers)
}

func (h *Handler) ForQuestion(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.ForQuestion(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}
