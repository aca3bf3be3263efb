package models

import (
	"time"

	"gorm.io/gorm"
)

// Conversation is a direct-message thread between two users. Exactly one
// row may exist per unordered user pair: the pair is stored in canonical
// (min, max) order and the composite unique index enforces it.
type Conversation struct {
	gorm.Model

	User1ID uint `gorm:"not null;uniqueIndex:idx_conversation_pair" json:"user1Id"`
	User2ID uint `gorm:"not null;uniqueIndex:idx_conversation_pair" json:"user2Id"`
	// LastMessageAt is bumped on every new message; conversation lists
	// are sorted by it.
	LastMessageAt time.Time `json:"lastMessageAt"`
}

// BeforeSave re-sorts the participant pair into canonical order. The storage
// layer already canonicalizes its lookups; the hook covers any caller that
// doesn't, so the unique index on (user1_id, user2_id) always holds.
func (c *Conversation) BeforeSave(tx *gorm.DB) error {
	c.User1ID, c.User2ID = CanonicalPair(c.User1ID, c.User2ID)
	return nil
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Conversation) HasParticipant(userID uint) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// OtherParticipant returns the participant that is not userID.
func (c *Conversation) OtherParticipant(userID uint) uint {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}
