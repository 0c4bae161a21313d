package admin

import (
	"net/http"

	"quiz-event/internal/httpx"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ResetQuestions(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ResetQuestions(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) ResetScores(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ResetScores(r.Context()); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "All scores have been reset"})
}

func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Finalize(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dashboard)
}
