package websocket

import (
	"errors"
	"net/http"
	"time"

	chatapi "github.com/deepgram/minichat/internal/api/v1/handlers/chat"
	"github.com/deepgram/minichat/internal/connections"
	"github.com/deepgram/minichat/internal/services/chat"
	"github.com/deepgram/minichat/pkg/httpext"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var (
	upgrader = websocket.Upgrader{
		// The browser client is served from its own origin; access is
		// controlled by the bearer token instead.
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
)

// HandleChatWebSocket answers each text frame with one JSON frame. Every
// frame is an independent exchange; nothing is remembered between them.
func HandleChatWebSocket(chatService chat.Service, manager *connections.Manager, w http.ResponseWriter, r *http.Request) {
	log := zerolog.Ctx(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	if !manager.Track(conn) {
		log.Debug().Msg("Server shutting down, dropping WebSocket client")
		return
	}
	defer manager.Untrack(conn)

	done := make(chan struct{})
	defer close(done)
	manager.KeepAlive(conn, done)

	log.Info().Str("client_ip", r.RemoteAddr).Int("open", manager.Count()).Msg("WebSocket client connected")

	// Pongs only move the read deadline while a read is in progress, so the
	// socket is read on its own goroutine while exchanges run here.
	for f := range readFrames(conn, manager, done, log) {
		_ = conn.SetWriteDeadline(time.Now().Add(manager.Timeouts().WriteWait))
		if err := conn.WriteJSON(reply(r, chatService, f.messageType, f.data)); err != nil {
			log.Warn().Err(err).Msg("Failed to write WebSocket reply")
			return
		}
	}
}

type frame struct {
	messageType int
	data        []byte
}

// frameBacklog bounds how many frames a client may queue behind a slow
// exchange before reads pause.
const frameBacklog = 16

func readFrames(conn *websocket.Conn, manager *connections.Manager, done <-chan struct{}, log *zerolog.Logger) <-chan frame {
	frames := make(chan frame, frameBacklog)

	go func() {
		defer close(frames)
		for {
			messageType, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Warn().Err(err).Msg("Unexpected WebSocket closure")
				} else {
					log.Debug().Err(err).Msg("WebSocket connection closed")
				}
				return
			}
			_ = manager.ExtendRead(conn)

			select {
			case frames <- frame{messageType: messageType, data: data}:
			case <-done:
				return
			}
		}
	}()

	return frames
}

func reply(r *http.Request, chatService chat.Service, messageType int, data []byte) interface{} {
	log := zerolog.Ctx(r.Context())

	if messageType != websocket.TextMessage {
		return httpext.ErrorResponse{Error: "Only text frames are supported"}
	}

	req, err := chatapi.ParseMessage(data)
	if err != nil {
		if errors.Is(err, chatapi.ErrInvalidRequest) {
			return httpext.ErrorResponse{Error: "Invalid request: message is required"}
		}
		return httpext.ErrorResponse{Error: "Invalid request format"}
	}

	resp, status, err := chatapi.Answer(r.Context(), chatService, req)
	if err != nil {
		log.Error().Err(err).Int("status", status).Msg("Failed to process chat")
		return httpext.ErrorResponse{Error: "Failed to process chat"}
	}
	return resp
}
