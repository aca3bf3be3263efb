package chathub

import "errors"

// Errors surfaced to the transport/HTTP boundary. Validation and
// authorization failures are rejected before any state change.
var (
	ErrEmptyContent     = errors.New("message content is empty")
	ErrContentTooLong   = errors.New("message content exceeds maximum length")
	ErrSelfMessage      = errors.New("cannot send a message to yourself")
	ErrReceiverNotFound = errors.New("receiver not found")
	ErrReceiverBanned   = errors.New("receiver is banned")

	ErrMessageNotFound      = errors.New("message not found")
	ErrNotMessageOwner      = errors.New("only the sender may delete a message")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("user is not a participant of this conversation")
)
