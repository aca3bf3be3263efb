package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"studiohub/backend/internal/chathub"
	"studiohub/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type sendMessageRequest struct {
	ReceiverID uint   `json:"receiverId" binding:"required"`
	Content    string `json:"content"`
	ImageURL   string `json:"imageUrl"`
}

// SendMessage is the REST send path; the websocket frame path goes through
// the same validation and coordinator.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receiverId is required"})
		return
	}

	senderID := currentUserID(c)
	if err := h.Hub.Messages.ValidateSend(senderID, req.ReceiverID, req.Content); err != nil {
		c.JSON(messagingErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	msg, err := h.Hub.Messages.SendMessage(senderID, req.ReceiverID, req.Content, req.ImageURL)
	if err != nil {
		logrus.WithError(err).WithField("sender_id", senderID).Error("send failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "message could not be saved"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

type conversationEntry struct {
	Conversation models.Conversation `json:"conversation"`
	Peer         *models.User        `json:"peer,omitempty"`
	UnreadCount  int64               `json:"unreadCount"`
	Online       bool                `json:"online"`
	LastSeen     *time.Time          `json:"lastSeen,omitempty"`
}

// ListConversations returns the user's threads, most recently active first,
// with the peer's profile, unread badge count and presence.
func (h *Handler) ListConversations(c *gin.Context) {
	userID := currentUserID(c)

	convs, err := h.Storage.ListConversations(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
		return
	}

	entries := lo.Map(convs, func(conv models.Conversation, _ int) conversationEntry {
		entry := conversationEntry{Conversation: conv}

		peerID := conv.OtherParticipant(userID)
		if peer, err := h.Storage.GetUserByID(peerID); err == nil {
			entry.Peer = peer
		}
		if count, err := h.Storage.CountUnread(conv.ID, userID); err == nil {
			entry.UnreadCount = count
		}

		entry.Online = h.Hub.IsOnline(peerID)
		if !entry.Online {
			if seen, err := h.Storage.GetLastSeen(peerID); err == nil && !seen.IsZero() {
				entry.LastSeen = &seen
			}
		}
		return entry
	})

	c.JSON(http.StatusOK, gin.H{"conversations": entries})
}

// ListConversationMessages returns the full history of one conversation.
// Soft-deleted messages keep their slot but have their content masked.
func (h *Handler) ListConversationMessages(c *gin.Context) {
	userID := currentUserID(c)
	conversationID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	conv, err := h.Storage.GetConversationByID(conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
		return
	}
	if !conv.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant of this conversation"})
		return
	}

	msgs, err := h.Storage.ListMessages(conversationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	masked := lo.Map(msgs, func(msg models.Message, _ int) models.Message {
		if msg.Deleted {
			msg.Content = ""
			msg.ImageURL = ""
		}
		return msg
	})

	c.JSON(http.StatusOK, gin.H{"messages": masked})
}

// MarkConversationRead records read receipts for everything addressed to the
// caller in the conversation. Safe to call repeatedly.
func (h *Handler) MarkConversationRead(c *gin.Context) {
	userID := currentUserID(c)
	conversationID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.Hub.Messages.MarkConversationRead(conversationID, userID); err != nil {
		c.JSON(messagingErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// DeleteMessage soft-deletes a message the caller sent.
func (h *Handler) DeleteMessage(c *gin.Context) {
	userID := currentUserID(c)
	messageID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	msg, err := h.Hub.Messages.DeleteMessage(messageID, userID)
	if err != nil {
		c.JSON(messagingErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// messagingErrorStatus maps coordinator errors to HTTP status codes.
// Anything unrecognized is a server error.
func messagingErrorStatus(err error) int {
	switch {
	case errors.Is(err, chathub.ErrEmptyContent),
		errors.Is(err, chathub.ErrContentTooLong),
		errors.Is(err, chathub.ErrSelfMessage):
		return http.StatusBadRequest
	case errors.Is(err, chathub.ErrReceiverNotFound),
		errors.Is(err, chathub.ErrMessageNotFound),
		errors.Is(err, chathub.ErrConversationNotFound):
		return http.StatusNotFound
	case errors.Is(err, chathub.ErrReceiverBanned),
		errors.Is(err, chathub.ErrNotMessageOwner),
		errors.Is(err, chathub.ErrNotParticipant):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
