package ws

import (
	"net/http"

	"dealroom_backend/internal/auth"
	"dealroom_backend/internal/logger"
	"dealroom_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Handler struct {
	manager       *Manager
	rooms         *services.RoomService
	chat          *services.ChatService
	disputes      *services.DisputeService
	notifications *services.NotificationService
}

func NewHandler(
	manager *Manager,
	rooms *services.RoomService,
	chat *services.ChatService,
	disputes *services.DisputeService,
	notifications *services.NotificationService,
) *Handler {
	return &Handler{
		manager:       manager,
		rooms:         rooms,
		chat:          chat,
		disputes:      disputes,
		notifications: notifications,
	}
}

// ServeWS authenticates the bearer credential, upgrades the connection and
// registers it with the presence registry.
func (h *Handler) ServeWS(c *gin.Context) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		tokenStr = c.GetHeader("Sec-WebSocket-Protocol")
	}
	claims, err := auth.ParseToken(tokenStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		UserID:        claims.UserID,
		conn:          conn,
		send:          make(chan Event, 256),
		done:          make(chan struct{}),
		manager:       h.manager,
		rooms:         h.rooms,
		chat:          h.chat,
		disputes:      h.disputes,
		notifications: h.notifications,
	}

	h.manager.Register(client)
	client.Emit("authorized", nil)

	go client.readPump()
	go client.writePump()
}
