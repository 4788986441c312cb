package voice

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/vorexhq/fleet-assistant/internal/assistant"
	"github.com/vorexhq/fleet-assistant/pkg/common"
	"github.com/vorexhq/fleet-assistant/pkg/logger"
	"go.uber.org/zap"
)

// answerTimeout bounds one utterance's trip through the assistant pipeline.
const answerTimeout = 30 * time.Second

// errorReply is spoken when the pipeline fails outright.
const errorReply = "I'm sorry, I encountered an error processing your request."

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, implement proper origin checking
		return true
	},
}

// Gateway bridges the voice channel to the assistant pipeline. Each
// utterance frame becomes a chat turn; the answer comes back as a reply
// frame formatted for speech synthesis.
type Gateway struct {
	assistant *assistant.Service
	hub       *Hub
}

// NewGateway creates a voice gateway and wires the utterance handler.
func NewGateway(svc *assistant.Service, hub *Hub) *Gateway {
	g := &Gateway{assistant: svc, hub: hub}
	hub.RegisterHandler(TypeUtterance, g.handleUtterance)
	return g
}

// HandleVoice upgrades the connection and attaches the driver's voice channel
// GET /ws/voice/:driverID
func (g *Gateway) HandleVoice(c *gin.Context) {
	driverID := c.Param("driverID")
	if _, err := uuid.Parse(driverID); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid driver ID")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("failed to upgrade voice connection",
			zap.String("driver_id", driverID),
			zap.Error(err),
		)
		return
	}

	client := NewClient(driverID, conn, g.hub)
	g.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

// handleUtterance answers a single spoken message.
func (g *Gateway) handleUtterance(client *Client, msg *Message) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		client.SendMessage(&Message{
			Type:      TypeError,
			Text:      "utterance text is required",
			Timestamp: time.Now(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), answerTimeout)
	defer cancel()

	answer, err := g.assistant.Chat(ctx, client.DriverID, text)
	if err != nil {
		logger.Error("voice utterance failed",
			zap.String("driver_id", client.DriverID),
			zap.Error(err),
		)
		answer = errorReply
	}

	client.SendMessage(&Message{
		Type:      TypeReply,
		Text:      ToSpeech(answer),
		Timestamp: time.Now(),
	})
}
