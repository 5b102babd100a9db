package websocket

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/bougzy/cojf/internal/livestream"
	"github.com/bougzy/cojf/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Overridden per-handler when allowed origins are configured
		return true
	},
}

// Handler upgrades viewer connections onto the status feed
type Handler struct {
	hub            *Hub
	controller     *livestream.Controller
	allowedOrigins []string
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, controller *livestream.Controller, allowedOrigins []string) *Handler {
	return &Handler{
		hub:            hub,
		controller:     controller,
		allowedOrigins: allowedOrigins,
	}
}

// HandleWebSocket handles WebSocket upgrade requests. The feed is public:
// viewer pages subscribe without credentials.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	// Validate origin using configured allowed origins if provided
	if len(h.allowedOrigins) > 0 {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return false
			}
			for _, pattern := range h.allowedOrigins {
				if matchOrigin(pattern, origin) {
					return true
				}
			}
			return false
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := NewClient(h.hub, conn)
	h.hub.register <- client

	go client.WritePump()
	go client.ReadPump()

	// New viewers get the current state immediately, same shape as the
	// transition events that follow.
	h.hub.Send(client.id, models.WSMessage{
		Event:   models.EventStreamStatus,
		Payload: models.StreamStatusPayload{Stream: h.controller.CurrentStream()},
	})
}

// GetViewerCount returns the connected viewer count
func (h *Handler) GetViewerCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"viewers": h.hub.ViewerCount()})
}

// matchOrigin supports exact matches or wildcard patterns like *.example.com
func matchOrigin(pattern, origin string) bool {
	if pattern == origin {
		return true
	}
	// simple wildcard support: pattern starts with *.
	if strings.HasPrefix(pattern, "*.") {
		originHost := origin
		if u, err := url.Parse(origin); err == nil {
			originHost = u.Hostname()
		}
		patHost := strings.TrimPrefix(pattern, "*.")
		if strings.HasSuffix(originHost, patHost) {
			return true
		}
	}
	return false
}
