package network

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mzhirov/moneyrace/server/internal/engine"
	"github.com/mzhirov/moneyrace/server/internal/platform/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
	// Minimum spacing between commands from one client.
	commandCooldown = 500 * time.Millisecond
)

// PlayerCommand represents an incoming command from the frontend.
type PlayerCommand struct {
	Type    string          `json:"type"`    // "ADVANCE_MOVE", "RESOLVE_CARD", "NEW_GAME", "GET_STATE"
	Payload json.RawMessage `json:"payload"` // command-specific data
}

// Client represents an active WebSocket connection.
type Client struct {
	hub             *Hub
	conn            *websocket.Conn
	send            chan []byte
	lastCommandTime time.Time
}

// NewClient creates a new WebSocket client and returns it.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// ReadPump pumps messages from the websocket connection to the simulation.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
				metrics.Get().RecordWSError()
			}
			break
		}
		metrics.Get().RecordWSMessage(true)

		var cmd PlayerCommand
		if err := json.Unmarshal(message, &cmd); err != nil {
			c.hub.logger.Error("Failed to parse PlayerCommand from WebSocket: %v", err)
			metrics.Get().RecordWSError()
			continue
		}

		c.handleCommand(cmd)
	}
}

func (c *Client) handleCommand(cmd PlayerCommand) {
	// GET_STATE is a pure read and never throttled.
	if cmd.Type == "GET_STATE" {
		c.sendSnapshot(c.hub.sim.Snapshot())
		return
	}

	if time.Since(c.lastCommandTime) < commandCooldown {
		c.hub.logger.Warn("Rate limit exceeded for client command %s", cmd.Type)
		return
	}
	c.lastCommandTime = time.Now()

	switch cmd.Type {
	case "ADVANCE_MOVE":
		snap := c.hub.sim.AdvanceMove()
		c.hub.BroadcastSnapshot(snap)
	case "RESOLVE_CARD":
		c.handleResolveCard(cmd.Payload)
	case "NEW_GAME":
		c.handleNewGame(cmd.Payload)
	default:
		c.hub.logger.Warn("Unknown PlayerCommand type: %s", cmd.Type)
	}
}

func (c *Client) handleResolveCard(rawPayload []byte) {
	var parsed struct {
		Action engine.Action `json:"action"`
	}
	if len(rawPayload) > 0 {
		if err := json.Unmarshal(rawPayload, &parsed); err != nil {
			c.hub.logger.Warn("Failed to parse RESOLVE_CARD payload: %v", err)
			return
		}
	}
	if parsed.Action == "" {
		parsed.Action = engine.ActionSkip
	}

	snap := c.hub.sim.ResolveEvent(parsed.Action)
	c.hub.BroadcastSnapshot(snap)
}

func (c *Client) handleNewGame(rawPayload []byte) {
	var parsed struct {
		FinancialGoal *int64 `json:"financial_goal"`
		TotalMonths   *int   `json:"total_months"`
	}
	if len(rawPayload) > 0 {
		if err := json.Unmarshal(rawPayload, &parsed); err != nil {
			c.hub.logger.Warn("Failed to parse NEW_GAME payload: %v", err)
			return
		}
	}

	snap := c.hub.sim.NewGame(engine.Overrides{
		FinancialGoal: parsed.FinancialGoal,
		TotalMonths:   parsed.TotalMonths,
	})
	c.hub.BroadcastSnapshot(snap)
}

// sendSnapshot serializes a snapshot to this client only.
func (c *Client) sendSnapshot(snap engine.Snapshot) {
	payload, err := json.Marshal(ServerMessage{Type: "SNAPSHOT", Payload: snap})
	if err != nil {
		c.hub.logger.Error("Failed to serialize Snapshot for client: %v", err)
		metrics.Get().RecordWSError()
		return
	}
	select {
	case c.send <- payload:
		metrics.Get().RecordWSMessage(false)
	default:
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
