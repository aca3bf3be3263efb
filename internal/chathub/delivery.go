package chathub

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"studiohub/backend/internal/config"
	"studiohub/backend/internal/models"
	"studiohub/backend/internal/storage"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MessageService orchestrates the message send, read and delete paths:
// persist through storage first, then fan out to both parties' live
// connections. Broadcast failures never roll back a write.
type MessageService struct {
	storage     storage.Storage
	broadcaster Broadcaster
	notifier    OfflineNotifier
}

func NewMessageService(s storage.Storage, b Broadcaster, n OfflineNotifier) *MessageService {
	return &MessageService{
		storage:     s,
		broadcaster: b,
		notifier:    n,
	}
}

// ValidateSend runs the boundary checks for a send: non-empty content within
// bounds, no self-messaging, receiver exists and is not banned. Both the
// websocket dispatch and the REST handler call this before SendMessage.
func (m *MessageService) ValidateSend(senderID, receiverID uint, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > config.MaxMessageLength {
		return ErrContentTooLong
	}
	if senderID == receiverID {
		return ErrSelfMessage
	}

	if _, err := m.storage.GetUserByID(receiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReceiverNotFound
		}
		return fmt.Errorf("look up receiver: %w", err)
	}

	banned, err := m.storage.IsUserBanned(receiverID)
	if err != nil {
		return fmt.Errorf("check receiver ban: %w", err)
	}
	if banned {
		return ErrReceiverBanned
	}
	return nil
}

// SendMessage persists a message in the canonical conversation for the pair,
// bumps the conversation's last-activity and pushes a new_message event to
// both participants. The sender gets the echo too, so their other tabs stay
// in sync. Any persistence failure returns an error with no broadcast.
func (m *MessageService) SendMessage(senderID, receiverID uint, content, imageURL string) (*models.Message, error) {
	conv, err := m.storage.GetOrCreateConversation(senderID, receiverID)
	if err != nil {
		return nil, fmt.Errorf("resolve conversation: %w", err)
	}

	msg := &models.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Content:        content,
		ImageURL:       imageURL,
	}
	if err := m.storage.InsertMessage(msg); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}
	if err := m.storage.TouchConversation(conv.ID); err != nil {
		return nil, fmt.Errorf("touch conversation: %w", err)
	}

	event := models.Event{Type: models.EventNewMessage, Message: msg}
	m.broadcaster.BroadcastToUser(receiverID, event)
	m.broadcaster.BroadcastToUser(senderID, event)

	if !m.broadcaster.IsOnline(receiverID) {
		m.notifier.NotifyOffline(receiverID, msg)
	}

	logrus.WithFields(logrus.Fields{
		"message_id":      msg.ID,
		"conversation_id": conv.ID,
		"sender_id":       senderID,
		"receiver_id":     receiverID,
	}).Info("message delivered")

	return msg, nil
}

// MarkConversationRead records read receipts for every message in the
// conversation addressed to readerID that lacks one, then tells the other
// participant. Re-invoking with nothing left to mark is a silent no-op with
// no broadcast.
func (m *MessageService) MarkConversationRead(conversationID, readerID uint) error {
	conv, err := m.storage.GetConversationByID(conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrConversationNotFound
		}
		return fmt.Errorf("look up conversation: %w", err)
	}
	if !conv.HasParticipant(readerID) {
		return ErrNotParticipant
	}

	ids, err := m.storage.FindUnreadMessageIDs(conversationID, readerID)
	if err != nil {
		return fmt.Errorf("find unread messages: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	for _, id := range ids {
		if err := m.storage.InsertMessageRead(id, readerID); err != nil {
			return fmt.Errorf("record read receipt for message %d: %w", id, err)
		}
	}

	m.broadcaster.BroadcastToUser(conv.OtherParticipant(readerID), models.Event{
		Type:           models.EventMessageRead,
		ConversationID: conversationID,
		ReadBy:         readerID,
	})
	return nil
}

// DeleteMessage soft-deletes a message. Only the sender may delete; deleting
// an already-deleted message is a no-op success with no second broadcast.
func (m *MessageService) DeleteMessage(messageID, requesterID uint) (*models.Message, error) {
	msg, err := m.storage.GetMessageByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("look up message: %w", err)
	}
	if msg.SenderID != requesterID {
		return nil, ErrNotMessageOwner
	}
	if msg.Deleted {
		return msg, nil
	}

	if err := m.storage.SetMessageDeleted(messageID); err != nil {
		return nil, fmt.Errorf("flag message deleted: %w", err)
	}
	msg.Deleted = true

	event := models.Event{Type: models.EventMessageDeleted, MessageID: messageID}
	m.broadcaster.BroadcastToUser(msg.ReceiverID, event)
	m.broadcaster.BroadcastToUser(msg.SenderID, event)

	return msg, nil
}
