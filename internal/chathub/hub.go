package chathub

import (
	"sync"
	"time"

	"studiohub/backend/internal/models"
	"studiohub/backend/internal/storage"

	"github.com/sirupsen/logrus"
)

// Hub owns the process-wide connection registry: user id -> set of live
// connections, keyed by conn id. It is the only piece of shared mutable
// state in the realtime core; nothing reaches a connection except through it.
//
// Registration flows through RegisterCh/UnregisterCh into the Run loop, the
// way the transport pumps expect. Reads (broadcast, presence snapshots) take
// the lock directly so request handlers can call them from any goroutine.
type Hub struct {
	mu          sync.RWMutex
	connections map[uint]map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client

	Storage  storage.Storage
	Typing   *TypingService
	Messages *MessageService
}

// NewHub wires the hub together with its typing and delivery services. All
// dependencies are resolved here, upfront; nothing is patched in later.
func NewHub(s storage.Storage, notifier OfflineNotifier) *Hub {
	h := &Hub{
		connections:  make(map[uint]map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		Storage:      s,
	}
	h.Typing = NewTypingService(h)
	h.Messages = NewMessageService(s, h, notifier)
	return h
}

// Run is the hub's dispatcher goroutine, started from main.
func (h *Hub) Run() {
	logrus.Info("chat hub started")
	for {
		select {
		case client := <-h.RegisterCh:
			h.Register(client)
		case client := <-h.UnregisterCh:
			h.Unregister(client)
		}
	}
}

// Register adds a connection to the user's set. The first connection for a
// user flips them online and announces the transition.
func (h *Hub) Register(client Client) {
	userID := client.GetUserID()

	h.mu.Lock()
	conns, ok := h.connections[userID]
	if !ok {
		conns = make(map[string]Client)
		h.connections[userID] = conns
	}
	wasOffline := len(conns) == 0
	conns[client.GetConnID()] = client
	h.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"conn_id": client.GetConnID(),
	}).Debug("connection registered")

	if wasOffline {
		if err := h.Storage.SetLastSeen(userID, time.Now()); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("failed to stamp last-seen")
		}
		h.broadcastPresence(userID, true)
	}
}

// Unregister removes a connection. When the user's last connection goes, the
// map entry is dropped and a single offline transition is announced. A stale
// or repeated unregister for an unknown connection is a no-op, so partial
// teardown never produces duplicate offline events.
func (h *Hub) Unregister(client Client) {
	userID := client.GetUserID()

	h.mu.Lock()
	conns, ok := h.connections[userID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := conns[client.GetConnID()]; !ok {
		h.mu.Unlock()
		return
	}
	delete(conns, client.GetConnID())
	nowOffline := len(conns) == 0
	if nowOffline {
		delete(h.connections, userID)
	}
	h.mu.Unlock()

	client.Close()

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"conn_id": client.GetConnID(),
	}).Debug("connection deregistered")

	if nowOffline {
		if err := h.Storage.SetLastSeen(userID, time.Now()); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("failed to stamp last-seen")
		}
		h.broadcastPresence(userID, false)
	}
}

// IsOnline reports whether the user has at least one live connection in this
// process.
func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID]) > 0
}

// OnlineUserIDs returns a snapshot of every user with a live connection.
func (h *Hub) OnlineUserIDs() []uint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]uint, 0, len(h.connections))
	for id := range h.connections {
		ids = append(ids, id)
	}
	return ids
}

// BroadcastToUser delivers an event to every live connection of the target
// user. Offline user means the event is simply dropped; a connection whose
// send buffer is full is skipped and left to its own pump teardown. Delivery
// is fire-and-forget, at-most-once.
func (h *Hub) BroadcastToUser(userID uint, event models.Event) {
	h.mu.RLock()
	targets := make([]Client, 0, len(h.connections[userID]))
	for _, client := range h.connections[userID] {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		select {
		case client.GetSendChannel() <- event:
		default:
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"conn_id": client.GetConnID(),
				"type":    event.Type,
			}).Debug("send buffer full, dropping event")
		}
	}
}

// NotifyUser pushes a generic notification toast to the user's connections.
func (h *Hub) NotifyUser(userID uint, title, description, variant string) {
	h.BroadcastToUser(userID, models.Event{
		Type:        models.EventNotification,
		Title:       title,
		Description: description,
		Variant:     variant,
	})
}

// broadcastPresence announces an online/offline transition to everyone else
// currently connected.
func (h *Hub) broadcastPresence(userID uint, online bool) {
	event := models.OnlineStatusEvent(userID, online)
	for _, id := range h.OnlineUserIDs() {
		if id == userID {
			continue
		}
		h.BroadcastToUser(id, event)
	}
}
