// Package feed pushes complaint change events to connected dashboards.
package feed

import (
	"context"
	"log/slog"
	"sync"

	"civictracker/backend/internal/models"
)

const broadcastBuffer = 256

// Hub keeps the set of connected clients and fans events out to them.
// Registration and delivery are serialized through Run.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client
	BroadcastCh  chan models.Event

	done     chan struct{}
	stopOnce sync.Once
	logger   *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		BroadcastCh:  make(chan models.Event, broadcastBuffer),
		done:         make(chan struct{}),
		logger:       logger.With("component", "feed"),
	}
}

// Run processes registrations and broadcasts until ctx is done,
// then closes every remaining client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.stopOnce.Do(func() { close(h.done) })
			h.closeAll()
			return

		case client := <-h.RegisterCh:
			h.mu.Lock()
			h.clients[client.GetID()] = client
			h.mu.Unlock()
			h.logger.Debug("client registered", "client_id", client.GetID())

		case client := <-h.UnregisterCh:
			h.remove(client)

		case event := <-h.BroadcastCh:
			h.deliver(event)
		}
	}
}

// Register hands client to the running hub. It reports false once the hub has stopped.
func (h *Hub) Register(client Client) bool {
	select {
	case h.RegisterCh <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes client. It is a no-op once the hub has stopped.
func (h *Hub) Unregister(client Client) {
	select {
	case h.UnregisterCh <- client:
	case <-h.done:
	}
}

// Broadcast queues event for delivery. It never blocks; when the queue is
// full the event is dropped and logged.
func (h *Hub) Broadcast(event models.Event) {
	select {
	case h.BroadcastCh <- event:
	default:
		h.logger.Warn("broadcast queue full, dropping event", "type", event.Type, "complaint_id", event.ComplaintID)
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) deliver(event models.Event) {
	h.mu.RLock()
	var slow []Client
	for _, client := range h.clients {
		select {
		case client.GetSendChannel() <- event:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	// A client that cannot keep up is disconnected; the dashboard reconnects and refetches.
	for _, client := range slow {
		h.logger.Warn("client too slow, disconnecting", "client_id", client.GetID())
		h.remove(client)
	}
}

func (h *Hub) remove(client Client) {
	h.mu.Lock()
	current, ok := h.clients[client.GetID()]
	if ok && current == client {
		delete(h.clients, client.GetID())
	}
	h.mu.Unlock()

	if ok && current == client {
		client.Close()
		h.logger.Debug("client unregistered", "client_id", client.GetID())
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[string]Client)
	h.mu.Unlock()

	for _, client := range clients {
		client.Close()
	}
}
