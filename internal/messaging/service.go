// Package messaging abstracts the chat transport the bot speaks over.
package messaging

import "context"

// Inbound is one incoming user message.
type Inbound struct {
	UserID int64
	Text   string
}

// Service defines a pluggable message delivery abstraction. It supports
// sending messages with optional quick-reply keyboards and exposes a
// channel of incoming user messages.
type Service interface {
	// SendMessage sends text to a user. A non-empty options slice is
	// rendered as a quick-reply keyboard; an empty one removes any open
	// keyboard.
	SendMessage(ctx context.Context, userID int64, text string, options []string) error

	// Start begins background processing (polling for updates).
	Start(ctx context.Context) error

	// Stop stops background processing and cleans up resources.
	Stop() error

	// Responses returns the channel of incoming user messages. It is
	// closed when the service stops.
	Responses() <-chan Inbound
}
