package controller

import (
	"net/http"
	"strconv"
	"time"

	"msg-relay/internal/infrastructure/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// ConversationStreamController upgrades clients to a websocket that receives
// every message recorded into the conversation while subscribed.
type ConversationStreamController struct {
	hub *realtime.Hub
}

func NewConversationStreamController(hub *realtime.Hub) *ConversationStreamController {
	return &ConversationStreamController{hub: hub}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now; plug a proper checker when auth is added.
		return true
	},
}

const streamReadTimeout = 60 * time.Second

func (h *ConversationStreamController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID, err := strconv.ParseInt(c.Param("conversationId"), 10, 64)
		if err != nil || conversationID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId must be a positive integer"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response.
			return
		}

		conn := realtime.NewConnection(ws)
		h.hub.Subscribe(conversationID, conn)
		defer func() {
			h.hub.Unsubscribe(conversationID, conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 20)
		_ = ws.SetReadDeadline(time.Now().Add(streamReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(streamReadTimeout))
		})

		// The stream is read-only; drain client frames until disconnect.
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}
}
