package models

// Outbound event types pushed to websocket clients. Field names on Event
// are part of the wire contract with the frontend; do not rename.
const (
	EventOnlineStatus   = "online_status"
	EventTypingStart    = "typing_start"
	EventTypingStop     = "typing_stop"
	EventNewMessage     = "new_message"
	EventMessageRead    = "message_read"
	EventMessageDeleted = "message_deleted"
	EventNotification   = "notification"
)

// Event is the outbound payload pushed over a websocket connection. Only the
// fields relevant to the given Type are set; the rest are omitted.
type Event struct {
	Type string `json:"type"`

	// online_status, typing_start, typing_stop
	UserID uint  `json:"userId,omitempty"`
	Online *bool `json:"online,omitempty"`

	// new_message
	Message *Message `json:"message,omitempty"`

	// message_read
	ConversationID uint `json:"conversationId,omitempty"`
	ReadBy         uint `json:"readBy,omitempty"`

	// message_deleted
	MessageID uint `json:"messageId,omitempty"`

	// notification
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Variant     string `json:"variant,omitempty"`
}

// Inbound frame types accepted from websocket clients.
const (
	FrameTypingStart = "typing_start"
	FrameTypingStop  = "typing_stop"
	FrameNewMessage  = "new_message"
	FrameMessageRead = "message_read"
)

// ClientFrame is an inbound websocket frame. The sender identity is never
// taken from the frame; it comes from the authenticated connection.
type ClientFrame struct {
	Type           string `json:"type"`
	ReceiverID     uint   `json:"receiverId,omitempty"`
	Content        string `json:"content,omitempty"`
	ImageURL       string `json:"imageUrl,omitempty"`
	ConversationID uint   `json:"conversationId,omitempty"`
}

// OnlineStatusEvent shapes an online/offline transition event.
func OnlineStatusEvent(userID uint, online bool) Event {
	return Event{Type: EventOnlineStatus, UserID: userID, Online: &online}
}

// TypingEvent shapes a typing_start or typing_stop event for a sender.
func TypingEvent(eventType string, userID uint) Event {
	return Event{Type: eventType, UserID: userID}
}
