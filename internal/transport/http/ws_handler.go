package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"persona-quiz-service/internal/app"
	"persona-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler plays one game over a websocket: the questions are pushed on
// connect, the client answers with a "submit" message and receives the result.
type WSHandler struct {
	service  *app.ResultService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.ResultService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the result use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("gameId")
	token := r.URL.Query().Get("token")
	if token == "" {
		token = r.Header.Get(TokenHeader)
	}
	if gameID == "" || token == "" {
		http.Error(w, "missing gameId or token", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	questions, err := h.service.Questions(r.Context(), gameID)
	if err != nil {
		h.writeError(conn, err)
		return
	}
	if err := conn.WriteJSON(outboundMessage[[]domain.PublicQuestion]{Type: "questions", Payload: questions}); err != nil {
		slog.Warn("ws write error", "error", err)
		return
	}

	// Only this goroutine writes to conn.
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		switch inbound.Type {
		case "submit":
			var payload submitRequest
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.writeMessage(conn, outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "invalid answers payload"}})
				continue
			}
			res, err := h.service.SubmitAnswers(r.Context(), gameID, payload.Answers, token)
			if err != nil {
				h.writeError(conn, err)
				continue
			}
			h.writeMessage(conn, outboundMessage[domain.SubmissionResult]{Type: "result", Payload: res})
		default:
			h.writeMessage(conn, outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}
}

func (h *WSHandler) writeError(conn *websocket.Conn, err error) {
	msg := err.Error()
	if domain.KindOf(err) == domain.KindInternal {
		slog.Error("ws request failed", "error", err)
		msg = domain.ErrInternal.Error()
	}
	h.writeMessage(conn, outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: msg}})
}

func (h *WSHandler) writeMessage(conn *websocket.Conn, msg any) {
	if err := conn.WriteJSON(msg); err != nil {
		slog.Warn("ws write error", "error", err)
	}
}
