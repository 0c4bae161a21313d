package question

import (
	"fmt"
	"net/http"

	"quiz-event/internal/apperr"
	"quiz-event/internal/auth"
	"quiz-event/internal/httpx"
	"quiz-event/internal/models"

	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func viewerFrom(r *http.Request) (Viewer, bool) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		return Viewer{}, false
	}
	return Viewer{UserID: claims.UserID, IsAdmin: claims.IsAdmin()}, true
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerFrom(r)
	if !ok {
		httpx.Error(w, r, apperr.Unauthorized("Not authenticated"))
		return
	}
	questions, err := h.service.List(r.Context(), viewer)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, questions)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerFrom(r)
	if !ok {
		httpx.Error(w, r, apperr.Unauthorized("Not authenticated"))
		return
	}
	question, err := h.service.GetByID(r.Context(), mux.Vars(r)["id"], viewer)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, question)
}

func (h *Handler) GetByCode(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerFrom(r)
	if !ok {
		httpx.Error(w, r, apperr.Unauthorized("Not authenticated"))
		return
	}
	question, err := h.service.GetByCode(r.Context(), mux.Vars(r)["code"], viewer)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, question)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	viewer, _ := viewerFrom(r)

	var input models.QuestionInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, r, err)
		return
	}

	question, err := h.service.Create(r.Context(), input, viewer.UserID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, question)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.QuestionPatch
	if err := httpx.Decode(r, &patch); err != nil {
		httpx.Error(w, r, err)
		return
	}

	question, err := h.service.Update(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, question)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		httpx.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeFlag reads a single boolean field from the body.
func decodeFlag(r *http.Request, field string) (bool, error) {
	var body map[string]interface{}
	if err := httpx.Decode(r, &body); err != nil {
		return false, err
	}
	v, ok := body[field].(bool)
	if !ok {
		return false, apperr.InvalidInput(field + " must be a boolean")
	}
	return v, nil
}

func (h *Handler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	visible, err := decodeFlag(r, "visible")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.service.SetVisibility(r.Context(), mux.Vars(r)["id"], visible); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Visibility updated successfully",
	})
}

func (h *Handler) SetVisibilityAll(w http.ResponseWriter, r *http.Request) {
	visible, err := decodeFlag(r, "visible")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	updated, err := h.service.SetVisibilityAll(r.Context(), visible)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("%d questions visibility updated successfully", updated),
		"updated": updated,
	})
}

func (h *Handler) SetLocked(w http.ResponseWriter, r *http.Request) {
	locked, err := decodeFlag(r, "isLocked")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.service.SetLocked(r.Context(), mux.Vars(r)["id"], locked); err != nil {
		httpx.Error(w, r, err)
		return
	}
	state := "unlocked"
	if locked {
		state = "locked"
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Question " + state + " successfully",
	})
}
