package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"autobbq/internal/logging"
	"autobbq/internal/queue"
)

// Hub fans job updates out to connected websocket clients. Every client
// receives every update; slow or broken clients are dropped on the first
// failed write.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub constructs an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The API and the frontend are served from different origins
			// during development.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:  logging.NewComponentLogger(logger, "websocket"),
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// HandleConnection upgrades the request and keeps the connection registered
// until the peer disconnects. Inbound messages are drained and discarded;
// the feed is one-way.
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", logging.Error(err))
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	clientCount := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("websocket client connected", logging.Int("clients", clientCount))

	defer func() {
		h.remove(conn)
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

type jobUpdateMessage struct {
	Type string  `json:"type"`
	Data JobView `json:"data"`
}

// BroadcastJob sends a job update to every connected client.
func (h *Hub) BroadcastJob(job queue.Job) {
	message := jobUpdateMessage{Type: "job_update", Data: newJobView(job)}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteJSON(message); err != nil {
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}
