package http

import (
	"encoding/json"
	"net/http"

	"persona-quiz-service/internal/app"
	"persona-quiz-service/internal/domain"
	"github.com/gorilla/mux"
)

type gamesHandler struct {
	results *app.ResultService
}

type submitRequest struct {
	Answers []domain.SubmittedAnswer `json:"answers"`
}

func (h *gamesHandler) list(w http.ResponseWriter, r *http.Request) {
	games, err := h.results.ListGames(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (h *gamesHandler) questions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.results.Questions(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *gamesHandler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid answers payload"})
		return
	}
	res, err := h.results.SubmitAnswers(r.Context(), mux.Vars(r)["id"], req.Answers, r.Header.Get(TokenHeader))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *gamesHandler) userResult(w http.ResponseWriter, r *http.Request) {
	view, err := h.results.UserResult(r.Context(), r.Header.Get(TokenHeader))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
