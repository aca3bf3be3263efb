package config

import "time"

const (
	// Messaging
	MaxMessageLength = 5000

	// TypingTimeout is how long a typing indicator stays alive without a
	// refreshing typing_start signal.
	TypingTimeout = 5 * time.Second

	// Session tokens
	TokenTTL = 72 * time.Hour

	// SendQueueSize is the per-connection outbound event buffer.
	SendQueueSize = 256
)
