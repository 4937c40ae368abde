// Package interaction defines the backend-agnostic contract for text-based
// conversational interactions: user identity, messages, the Tell/Listen/Ask
// interface, and the context-scoped propagation of the active conversation.
package interaction

import (
	"context"
	"strings"
)

// UserInfo exposes identity and profile data for the user on the other side
// of a conversation. Backends may fetch profile data lazily; implementations
// cache after the first successful fetch. An empty string with a nil error
// means the field is not available.
type UserInfo interface {
	// FullName returns the user's full display name.
	FullName(ctx context.Context) (string, error)

	// FirstName returns the user's first name.
	FirstName(ctx context.Context) (string, error)

	// LastName returns the user's last name.
	LastName(ctx context.Context) (string, error)

	// Email returns the user's email address.
	Email(ctx context.Context) (string, error)
}

// SplitFirstName derives a first name from a full name by taking the first
// whitespace-separated field. Backends without a dedicated first-name field
// use this.
func SplitFirstName(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// SplitLastName derives a last name from a full name by taking the last
// whitespace-separated field.
func SplitLastName(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// Message is an immutable unit of conversational content plus its author.
type Message struct {
	// User is the author of the message.
	User UserInfo

	// Content is the text of the message.
	Content string
}

// String returns the message content.
func (m Message) String() string {
	return m.Content
}

// Context is the active conversation handle. Every backend (CLI, chat
// platform, future backends) implements this interface.
type Context interface {
	// Tell sends a message to the user.
	Tell(ctx context.Context, text string) error

	// Listen blocks until the user's next message and returns it.
	Listen(ctx context.Context) (Message, error)

	// Ask sends a message to the user and returns their next response.
	// The default behavior is Tell followed by Listen.
	Ask(ctx context.Context, text string) (Message, error)
}
