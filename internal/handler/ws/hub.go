package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"SilverFetch/internal/domain/models"
	"SilverFetch/internal/domain/repository"
	"SilverFetch/pkg/logger"
)

// SnapshotSource serves the last published snapshot for initial state.
type SnapshotSource interface {
	Current() *models.Snapshot
}

// Hub tracks websocket subscribers and fans each published snapshot out to
// all of them. Connect and disconnect are safe while a broadcast is running;
// a slow subscriber drops messages rather than stalling the rest.
type Hub struct {
	source  SnapshotSource
	log     *logger.Logger
	metrics repository.Metrics

	mu      sync.RWMutex
	clients map[*Client]bool
}

func NewHub(source SnapshotSource, log *logger.Logger, metrics repository.Metrics) *Hub {
	return &Hub{
		source:  source,
		log:     log,
		metrics: metrics,
		clients: make(map[*Client]bool),
	}
}

// Register adopts an upgraded connection, sends the current snapshot so the
// subscriber has state before the next cycle, and starts its pumps.
func (h *Hub) Register(conn *websocket.Conn) {
	client := &Client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		hub:  h,
	}

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	h.metrics.RecordSubscribers(count)
	h.log.Info("subscriber connected", logger.Int("total", count))

	if snap := h.source.Current(); snap != nil {
		if payload, err := json.Marshal(snap); err == nil {
			client.send <- payload
		}
	}

	go client.writePump()
	go client.readPump()
}

// Broadcast marshals the snapshot once and pushes it to every subscriber.
// Full send buffers drop this message for that subscriber only.
func (h *Hub) Broadcast(snap *models.Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		h.log.Error("snapshot marshal failed", logger.Error(err))
		h.metrics.RecordError("broadcast_marshal")
		return
	}

	h.mu.RLock()
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			h.log.Warn("dropping snapshot for slow subscriber")
		}
	}
	h.mu.RUnlock()

	h.metrics.RecordBroadcast(len(payload))
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if !h.clients[c] {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()

	close(c.send)
	h.metrics.RecordSubscribers(count)
	h.log.Info("subscriber disconnected", logger.Int("total", count))
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
