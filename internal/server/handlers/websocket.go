package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
)

// WebSocketClient is one live-updates subscriber
type WebSocketClient struct {
	conn          *websocket.Conn
	send          chan []byte
	subscriptions []*nats.Subscription
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 64 * 1024,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, this should be more restrictive
		return true
	},
}

// LiveUpdatesHandler streams trend events (new scores, insight job
// completions) over a WebSocket. Clients are consumers only; incoming
// frames other than control messages are ignored.
func LiveUpdatesHandler(natsConn *nats.Conn, eventsTopic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("upgrading websocket", "error", err)
			return
		}

		client := &WebSocketClient{
			conn: conn,
			send: make(chan []byte, 256),
		}

		// Subscribe before the pumps start so closeConnection never
		// races the subscription append.
		if err := client.subscribe(natsConn, eventsTopic); err != nil {
			slog.Error("subscribing websocket client", "error", err)
			client.closeConnection()
			return
		}

		go client.writePump()
		go client.readPump()

		welcome := map[string]interface{}{
			"type": "welcome",
			"time": time.Now(),
		}
		welcomeJSON, _ := json.Marshal(welcome)
		client.send <- welcomeJSON

		slog.Debug("websocket client connected", "remote", r.RemoteAddr)
	}
}

func (c *WebSocketClient) subscribe(natsConn *nats.Conn, eventsTopic string) error {
	sub, err := natsConn.Subscribe(fmt.Sprintf("%s.>", eventsTopic), func(msg *nats.Msg) {
		select {
		case c.send <- msg.Data:
		default:
			// Slow consumer, drop the event.
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to trend events: %w", err)
	}
	c.subscriptions = append(c.subscriptions, sub)

	return nil
}

// readPump discards inbound frames and keeps the pong deadline fresh
func (c *WebSocketClient) readPump() {
	config := DefaultWebSocketConfig()

	defer func() {
		c.closeConnection()
	}()

	c.conn.SetReadLimit(config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Debug("websocket read", "error", err)
			}
			break
		}
	}
}

// writePump pumps events to the WebSocket connection
func (c *WebSocketClient) writePump() {
	config := DefaultWebSocketConfig()
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Flush queued events into the same frame.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *WebSocketClient) closeConnection() {
	for _, sub := range c.subscriptions {
		sub.Unsubscribe()
	}

	c.conn.Close()
}
