package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Default interval between version checks. Clients refetch only when
	// the version moves, at most once per heartbeat.
	defaultHeartbeatInterval = 2 * time.Second

	// Per-client outbound buffer
	sendBufferSize = 256

	MessageVersionUpdate = "VERSION_UPDATE"
)

// VersionSource reports the version of the published ranking snapshot
type VersionSource interface {
	GetVersion(ctx context.Context) (int64, error)
}

// ChangeFunc runs before a new version is broadcast, typically to install
// the newer snapshot locally.
type ChangeFunc func(ctx context.Context, version int64)

// Client represents a WebSocket client connection
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of active clients and tells them when the ranking
// snapshot changes
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	source   VersionSource
	onChange ChangeFunc
	interval time.Duration
	logger   *zap.Logger

	mu          sync.RWMutex
	lastVersion int64
}

// VersionUpdate represents the version heartbeat message
type VersionUpdate struct {
	Type    string `json:"type"`
	Version int64  `json:"version"`
}

// NewHub creates a hub polling source every interval. onChange may be nil.
func NewHub(source VersionSource, onChange ChangeFunc, interval time.Duration, logger *zap.Logger) *Hub {
	if interval <= 0 {
		interval = defaultHeartbeatInterval
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		source:     source,
		onChange:   onChange,
		interval:   interval,
		logger:     logger.Named("ws_hub"),
	}
}

// Run starts the WebSocket hub
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	h.logger.Info("WebSocket hub started", zap.Duration("heartbeat", h.interval))

	versionTicker := time.NewTicker(h.interval)
	defer versionTicker.Stop()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("Client connected", zap.Int("clients", n))

			h.sendVersion(client, h.currentVersion())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("Client disconnected", zap.Int("clients", n))

		case <-versionTicker.C:
			h.checkAndBroadcastVersion(ctx)

		case <-ctx.Done():
			h.logger.Info("WebSocket hub shutting down")
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// checkAndBroadcastVersion broadcasts to all clients if the version moved
func (h *Hub) checkAndBroadcastVersion(ctx context.Context) {
	version, err := h.source.GetVersion(ctx)
	if err != nil {
		h.logger.Warn("Failed to get snapshot version", zap.Error(err))
		return
	}

	h.mu.Lock()
	changed := version != h.lastVersion
	h.lastVersion = version
	h.mu.Unlock()
	if !changed {
		return
	}

	h.logger.Info("Snapshot version changed", zap.Int64("version", version))
	if h.onChange != nil {
		h.onChange(ctx, version)
	}

	message, err := encodeVersion(version)
	if err != nil {
		h.logger.Error("Failed to marshal version update", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			h.logger.Warn("Client send buffer full, skipping")
		}
	}
}

func (h *Hub) currentVersion() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastVersion
}

// sendVersion queues the version for a newly connected client
func (h *Hub) sendVersion(client *Client, version int64) {
	message, err := encodeVersion(version)
	if err != nil {
		h.logger.Error("Failed to marshal initial version", zap.Error(err))
		return
	}

	select {
	case client.send <- message:
	default:
		h.logger.Warn("Client send buffer full, initial version dropped")
	}
}

func encodeVersion(version int64) ([]byte, error) {
	return json.Marshal(VersionUpdate{Type: MessageVersionUpdate, Version: version})
}

// GetClientCount returns the current number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// readPump drains the connection until the peer goes away. Clients never
// send anything meaningful.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("WebSocket unexpected close", zap.Error(err))
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))

		w, err := c.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)

		// Coalesce queued messages into the current frame
		n := len(c.send)
		for i := 0; i < n; i++ {
			w.Write([]byte{'\n'})
			w.Write(<-c.send)
		}

		if err := w.Close(); err != nil {
			return
		}
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// ServeWS handles WebSocket requests from clients
func ServeWS(hub *Hub, conn *websocket.Conn) {
	client := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.writePump()

	// Blocks until disconnect
	client.readPump()
}
