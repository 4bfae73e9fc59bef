package http

import (
	"bufio"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"persona-quiz-service/internal/app"
	"persona-quiz-service/internal/domain"
	"github.com/gorilla/mux"
)

// TokenHeader carries the user's access token.
const TokenHeader = "token"

// NewRouter wires the REST endpoints and the play websocket.
func NewRouter(results *app.ResultService, avatars *app.AvatarService) http.Handler {
	games := &gamesHandler{results: results}
	av := &avatarsHandler{avatars: avatars}
	ws := NewWSHandler(results)

	r := mux.NewRouter()
	r.Use(withLogging)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/games", games.list).Methods(http.MethodGet)
	r.HandleFunc("/games/results", games.userResult).Methods(http.MethodGet)
	r.HandleFunc("/games/{id}/questions", games.questions).Methods(http.MethodGet)
	r.HandleFunc("/games/{id}/result", games.submit).Methods(http.MethodPost)

	r.HandleFunc("/avatars", av.list).Methods(http.MethodGet)
	r.HandleFunc("/avatars/user", av.userLink).Methods(http.MethodGet)
	r.HandleFunc("/avatars/save", av.save).Methods(http.MethodPut)
	r.HandleFunc("/avatars/{id}", av.get).Methods(http.MethodGet)

	r.HandleFunc("/ws", ws.ServeWS)
	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

type errorPayload struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = domain.ErrInternal.Error()
	}
	writeJSON(w, status, errorPayload{Message: msg})
}

func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindMalformed, domain.KindConflict:
		return http.StatusBadRequest
	case domain.KindUnprocessable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
