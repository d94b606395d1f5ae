package handlers

import (
	"net/http"

	v1chat "github.com/deepgram/minichat/internal/api/v1/handlers/chat"
	v1knowledge "github.com/deepgram/minichat/internal/api/v1/handlers/knowledge"
	v1websocket "github.com/deepgram/minichat/internal/api/v1/handlers/websocket"
	v1mware "github.com/deepgram/minichat/internal/api/v1/middleware"
	"github.com/deepgram/minichat/internal/connections"
	"github.com/deepgram/minichat/internal/services"
	"github.com/deepgram/minichat/pkg/httpext"
	"github.com/gorilla/mux"
)

const chatScope = "chat:write"

// RegisterV1Routes mounts the chat API on router. Chat sockets are tracked by
// conns so the caller can close them on shutdown.
func RegisterV1Routes(router *mux.Router, services *services.Services, conns *connections.Manager) {
	router.Use(v1mware.RequestID)

	// Public routes
	router.HandleFunc("/", HandleIndex).Methods("GET")
	router.HandleFunc("/healthz", HandleHealth).Methods("GET")

	// Protected routes (require auth when a JWT secret is configured)
	protected := router.NewRoute().Subrouter()
	protected.Use(v1mware.RequireAuth(chatScope))
	protected.Use(v1mware.RateLimit("global"))

	protected.Handle("/chat", v1mware.RateLimit("chat")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v1chat.HandleChat(services.GetChatService(), w, r)
	}))).Methods("POST")

	protected.Handle("/ws", v1mware.RateLimit("chat")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v1websocket.HandleChatWebSocket(services.GetChatService(), conns, w, r)
	}))).Methods("GET")

	protected.Handle("/knowledge", v1mware.RateLimit("knowledge")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v1knowledge.HandleAddFact(services.GetKnowledgeService(), w, r)
	}))).Methods("POST")
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	httpext.JsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
