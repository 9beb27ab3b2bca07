package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/romaisa914/lingo-translator/internal/app"
	"github.com/sirupsen/logrus"
)

// WSHandler serves the chatbot over a websocket. Each inbound message gets
// exactly one reply, in order.
type WSHandler struct {
	service  *app.Service
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.Service, log logrus.FieldLogger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
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

type textPayload struct {
	Text string `json:"text"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and answers chat messages for the caller's session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sid, cookie := sessionID(r)
	header := http.Header{}
	if cookie != nil {
		header.Add("Set-Cookie", cookie.String())
	}

	conn, err := h.upgrader.Upgrade(w, r, header)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()
	h.serveConn(r.Context(), conn, sid)
}

// chatConn is the part of *websocket.Conn the chat loop uses.
type chatConn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	Close() error
}

func (h *WSHandler) serveConn(ctx context.Context, conn chatConn, sid string) {
	log := h.log.WithField("session", sid)

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.WithError(err).Debug("ws write failed")
				// Unblocks the pending read so the handler can return.
				conn.Close()
				return
			}
		}
	}()

	// push reports false once the writer has stopped.
	push := func(msg outboundMessage[any]) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		}
	}

	push(outboundMessage[any]{Type: "session", Payload: textPayload{Text: sid}})

loop:
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "message":
			var payload textPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || strings.TrimSpace(payload.Text) == "" {
				if !push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid message payload"}}) {
					break loop
				}
				continue
			}
			reply, err := h.service.Chat(ctx, sid, payload.Text)
			if err != nil {
				log.WithError(err).Error("chat failed")
				if !push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "chat unavailable"}}) {
					break loop
				}
				continue
			}
			if !push(outboundMessage[any]{Type: "reply", Payload: textPayload{Text: reply}}) {
				break loop
			}
		default:
			if !push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}) {
				break loop
			}
		}
	}

	close(send)
	<-writerDone
}
