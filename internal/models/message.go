package models

import "gorm.io/gorm"

// Message is a single direct message inside a Conversation.
// The embedded gorm.Model provides ID, CreatedAt, UpdatedAt and DeletedAt.
type Message struct {
	gorm.Model

	ConversationID uint `gorm:"not null;index" json:"conversationId"`
	SenderID       uint `gorm:"not null;index" json:"senderId"`
	ReceiverID     uint `gorm:"not null;index" json:"receiverId"`

	Content string `gorm:"type:text;not null" json:"content"`
	// ImageURL points at an uploaded attachment; empty for text-only messages.
	ImageURL string `json:"imageUrl,omitempty"`

	// Deleted is a soft-delete flag flipped by the sender (or an admin).
	// Deleted messages stay in storage and are masked on read.
	Deleted bool `gorm:"not null;default:false" json:"deleted"`
}

// MessageRead records that a user has read a message. At most one row per
// (message, user) pair.
type MessageRead struct {
	gorm.Model

	MessageID uint `gorm:"not null;uniqueIndex:idx_message_read" json:"messageId"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_message_read" json:"userId"`
}
