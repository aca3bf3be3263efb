package chathub

import "studiohub/backend/internal/models"

// Client is the interface for one live connection. It abstracts the
// underlying transport so the hub can manage connections uniformly.
type Client interface {
	// GetUserID returns the authenticated user this connection belongs to.
	GetUserID() uint
	// GetConnID returns the unique id of this connection. A user with two
	// open tabs has two clients with distinct conn ids.
	GetConnID() string

	// GetSendChannel returns the channel the hub pushes outbound events
	// into. It is a send-only channel.
	GetSendChannel() chan<- models.Event

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's outbound channel, stopping its write pump.
	Close()
}

// Broadcaster is the event delivery surface the typing and delivery services
// depend on. The Hub implements it; tests substitute a fake.
type Broadcaster interface {
	BroadcastToUser(userID uint, event models.Event)
	NotifyUser(userID uint, title, description, variant string)
	IsOnline(userID uint) bool
}

// OfflineNotifier is pinged when a new message targets a user with no live
// connections. Best effort; implementations must never block the send path
// on failure.
type OfflineNotifier interface {
	NotifyOffline(receiverID uint, msg *models.Message)
}

// NoopNotifier is the OfflineNotifier used when no Telegram bot is configured.
type NoopNotifier struct{}

func (NoopNotifier) NotifyOffline(uint, *models.Message) {}
