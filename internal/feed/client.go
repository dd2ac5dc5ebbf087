package feed

import "civictracker/backend/internal/models"

// Client is one connected dashboard. The hub only talks to clients through
// this interface so tests can substitute in-memory clients.
type Client interface {
	// GetID returns the unique identifier of the connection.
	GetID() string
	// GetSendChannel returns the channel the hub pushes events into.
	GetSendChannel() chan<- models.Event
	// Run starts the client's pumps.
	Run()
	// Close shuts the client down. It must be safe to call more than once.
	Close()
}
