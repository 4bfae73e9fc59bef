package http

import (
	"encoding/json"
	"net/http"

	"persona-quiz-service/internal/app"
	"github.com/gorilla/mux"
)

type avatarsHandler struct {
	avatars *app.AvatarService
}

type saveAvatarRequest struct {
	AvatarID string `json:"avatarId"`
	Link     string `json:"link"`
}

func (h *avatarsHandler) list(w http.ResponseWriter, r *http.Request) {
	avatars, err := h.avatars.ListAvatars(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, avatars)
}

func (h *avatarsHandler) get(w http.ResponseWriter, r *http.Request) {
	avatar, err := h.avatars.Avatar(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, avatar)
}

func (h *avatarsHandler) save(w http.ResponseWriter, r *http.Request) {
	var req saveAvatarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid avatar payload"})
		return
	}
	if err := h.avatars.SaveUserAvatar(r.Context(), r.Header.Get(TokenHeader), req.AvatarID, req.Link); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"saved": true})
}

func (h *avatarsHandler) userLink(w http.ResponseWriter, r *http.Request) {
	link, err := h.avatars.UserAvatarLink(r.Context(), r.Header.Get(TokenHeader))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"refLink": link})
}
