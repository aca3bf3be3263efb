package chathub

import (
	"sync"
	"time"

	"studiohub/backend/internal/config"
	"studiohub/backend/internal/models"
)

type typingEntry struct {
	timer *time.Timer
	gen   uint64
}

// TypingService tracks who is currently typing in which conversation.
// Sessions are keyed by the canonical pair key and expire on their own after
// Timeout unless refreshed by another typing_start. State is purely
// in-memory; losing it on restart is fine, typing indicators are advisory.
type TypingService struct {
	broadcaster Broadcaster

	// Timeout is how long a typing entry lives without a refresh.
	// Overridable so tests don't wait five real seconds.
	Timeout time.Duration

	mu       sync.Mutex
	sessions map[string]map[uint]*typingEntry
	gen      uint64
}

func NewTypingService(b Broadcaster) *TypingService {
	return &TypingService{
		broadcaster: b,
		Timeout:     config.TypingTimeout,
		sessions:    make(map[string]map[uint]*typingEntry),
	}
}

// Start flags senderID as typing towards receiverID, forwards typing_start
// and arms the expiry timer. A repeated Start resets the pending timer
// instead of stacking a second one.
func (t *TypingService) Start(senderID, receiverID uint) {
	key := models.PairKey(senderID, receiverID)

	t.mu.Lock()
	entries, ok := t.sessions[key]
	if !ok {
		entries = make(map[uint]*typingEntry)
		t.sessions[key] = entries
	}
	if prev, ok := entries[senderID]; ok {
		prev.timer.Stop()
	}
	t.gen++
	gen := t.gen
	entry := &typingEntry{gen: gen}
	entry.timer = time.AfterFunc(t.Timeout, func() {
		t.expire(key, senderID, receiverID, gen)
	})
	entries[senderID] = entry
	t.mu.Unlock()

	t.broadcaster.BroadcastToUser(receiverID, models.TypingEvent(models.EventTypingStart, senderID))
}

// Stop clears the typing flag immediately, cancels the pending timer and
// forwards typing_stop. Stopping when not typing is a no-op.
func (t *TypingService) Stop(senderID, receiverID uint) {
	key := models.PairKey(senderID, receiverID)

	t.mu.Lock()
	entry, ok := t.sessions[key][senderID]
	if ok {
		entry.timer.Stop()
		t.remove(key, senderID)
	}
	t.mu.Unlock()

	if ok {
		t.broadcaster.BroadcastToUser(receiverID, models.TypingEvent(models.EventTypingStop, senderID))
	}
}

// IsTyping reports whether userID currently has a live typing entry towards
// peerID.
func (t *TypingService) IsTyping(userID, peerID uint) bool {
	key := models.PairKey(userID, peerID)

	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.sessions[key][userID]
	return ok
}

// expire fires from the timer goroutine. The generation check makes sure an
// expiry belonging to an already-replaced timer does nothing.
func (t *TypingService) expire(key string, senderID, receiverID uint, gen uint64) {
	t.mu.Lock()
	entry, ok := t.sessions[key][senderID]
	if !ok || entry.gen != gen {
		t.mu.Unlock()
		return
	}
	t.remove(key, senderID)
	t.mu.Unlock()

	t.broadcaster.BroadcastToUser(receiverID, models.TypingEvent(models.EventTypingStop, senderID))
}

// remove deletes the entry and drops the pair map once empty. Caller holds
// the lock.
func (t *TypingService) remove(key string, senderID uint) {
	delete(t.sessions[key], senderID)
	if len(t.sessions[key]) == 0 {
		delete(t.sessions, key)
	}
}
