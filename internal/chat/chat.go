// Package chat defines the messaging surface the bot talks through and its
// Matrix implementation.
package chat

//go:generate mockgen -source=chat.go -destination=mocks/mock_chat.go -package=mocks

import "context"

// Messenger sends messages and media to chat rooms.
type Messenger interface {
	// SendText sends a plain-text message.
	SendText(ctx context.Context, roomID, text string) error
	// SendFormatted sends a message with a plain-text body and an HTML body.
	SendFormatted(ctx context.Context, roomID, plain, html string) error
	// Upload stores binary content and returns a stable content URI.
	Upload(ctx context.Context, data []byte, contentType, name string) (string, error)
	// Whoami returns the user id the session is authenticated as.
	Whoami(ctx context.Context) (string, error)
}

// Message is an inbound text message.
type Message struct {
	RoomID string
	Sender string
	Body   string
}

// Handler is invoked once per inbound message.
type Handler func(ctx context.Context, msg Message)
