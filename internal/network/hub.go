package network

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mzhirov/moneyrace/server/internal/engine"
	"github.com/mzhirov/moneyrace/server/internal/journal"
	"github.com/mzhirov/moneyrace/server/internal/platform/logger"
	"github.com/mzhirov/moneyrace/server/internal/platform/metrics"
)

// ServerMessage is the envelope for every message pushed to clients.
type ServerMessage struct {
	Type    string      `json:"type"` // "SNAPSHOT" or "SIM_EVENT"
	Payload interface{} `json:"payload"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	sim        *engine.Server
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	logger     *logger.Logger
}

// NewHub initializes a new WebSocket Hub bound to the simulation server.
func NewHub(sim *engine.Server, log *logger.Logger) *Hub {
	return &Hub{
		sim:        sim,
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     log,
	}
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub shutting down.")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.Get().RecordWSConnection(1)
			h.logger.Info("New WebSocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.Get().RecordWSConnection(-1)
				h.logger.Info("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					metrics.Get().RecordWSMessage(false)
				default:
					close(client.send)
					delete(h.clients, client)
					metrics.Get().RecordWSConnection(-1)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastEvent serializes a simulation event and sends it to all clients.
func (h *Hub) BroadcastEvent(event journal.SimEvent) {
	payload, err := json.Marshal(ServerMessage{Type: "SIM_EVENT", Payload: event})
	if err != nil {
		h.logger.Error("Failed to serialize SimEvent for WebSocket broadcast: %v", err)
		metrics.Get().RecordWSError()
		return
	}
	h.broadcast <- payload
}

// BroadcastSnapshot serializes the full game snapshot and sends it to all
// clients. Called after every command so every screen stays in sync.
func (h *Hub) BroadcastSnapshot(snap engine.Snapshot) {
	payload, err := json.Marshal(ServerMessage{Type: "SNAPSHOT", Payload: snap})
	if err != nil {
		h.logger.Error("Failed to serialize Snapshot for WebSocket broadcast: %v", err)
		metrics.Get().RecordWSError()
		return
	}
	h.broadcast <- payload
}

// StartEventPoller spawns a goroutine to poll the journal and push new events
// to the Hub. This allows the Hub to run independently from the Engine's
// command path while picking up the same events.
func (h *Hub) StartEventPoller(ctx context.Context, log *journal.Log) {
	go func() {
		pollInterval := time.NewTicker(200 * time.Millisecond)
		defer pollInterval.Stop()

		lastProcessed := 0

		for {
			select {
			case <-ctx.Done():
				return
			case <-pollInterval.C:
				newEvents := log.Since(lastProcessed)
				for _, event := range newEvents {
					h.BroadcastEvent(event)
				}
				lastProcessed += len(newEvents)
			}
		}
	}()
}

// ServeWS upgrades an HTTP request to a WebSocket connection and starts the
// client pumps.
func (h *Hub) ServeWS(conn *websocket.Conn) {
	client := NewClient(h, conn)
	client.Register()
	go client.WritePump()
	go client.ReadPump()
}
