package voice

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vorexhq/fleet-assistant/pkg/logger"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024 // 64KB
)

// Message types on the voice channel.
const (
	TypeUtterance = "utterance"
	TypeReply     = "reply"
	TypeError     = "error"
)

// Message is one frame on the voice channel.
type Message struct {
	Type      string    `json:"type"`
	Text      string    `json:"text"`
	DriverID  string    `json:"driver_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Client is one driver's voice connection
type Client struct {
	DriverID string
	Conn     *websocket.Conn
	Send     chan *Message
	Hub      *Hub

	mu     sync.Mutex
	closed bool
}

// NewClient creates a new voice client
func NewClient(driverID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		DriverID: driverID,
		Conn:     conn,
		Send:     make(chan *Message, 64),
		Hub:      hub,
	}
}

// ReadPump pumps utterances from the WebSocket connection to the hub
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		err := c.Conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("voice connection error",
					zap.String("driver_id", c.DriverID),
					zap.Error(err),
				)
			}
			break
		}

		msg.Timestamp = time.Now()
		msg.DriverID = c.DriverID

		c.Hub.HandleMessage(c, &msg)
	}
}

// WritePump pumps replies from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage queues a message for the client, dropping the connection when
// the client cannot keep up. Messages arriving after the channel is closed
// are discarded.
func (c *Client) SendMessage(msg *Message) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	select {
	case c.Send <- msg:
		c.mu.Unlock()
	default:
		c.mu.Unlock()
		logger.Warn("voice client channel full, dropping connection",
			zap.String("driver_id", c.DriverID),
		)
		c.Hub.Unregister <- c
	}
}

// closeSend closes the outbound channel exactly once. Only the hub calls it,
// on unregister and on reconnect replacement.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// MarshalJSON custom JSON marshaling
func (m *Message) MarshalJSON() ([]byte, error) {
	type Alias Message
	return json.Marshal(&struct {
		Timestamp string `json:"timestamp"`
		*Alias
	}{
		Timestamp: m.Timestamp.Format(time.RFC3339),
		Alias:     (*Alias)(m),
	})
}

// UnmarshalJSON custom JSON unmarshaling
func (m *Message) UnmarshalJSON(data []byte) error {
	type Alias Message
	aux := &struct {
		Timestamp string `json:"timestamp"`
		*Alias
	}{
		Alias: (*Alias)(m),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if aux.Timestamp != "" {
		t, err := time.Parse(time.RFC3339, aux.Timestamp)
		if err != nil {
			return err
		}
		m.Timestamp = t
	}

	return nil
}
