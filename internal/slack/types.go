package slack

import "fmt"

// Event subtypes this backend acts on. Any other subtype is ignored.
const subtypeMessageDeleted = "message_deleted"

// Event is an inbound platform message event as delivered by the events
// stream (socket mode or Events API webhook).
type Event struct {
	// Type is the event type; the demultiplexer only consumes "message".
	Type string `json:"type,omitempty"`

	// Subtype discriminates message variants. Empty for ordinary messages.
	Subtype string `json:"subtype,omitempty"`

	// User is the id of the user who produced the event.
	User string `json:"user,omitempty"`

	// TS is the event id (a platform timestamp string).
	TS string `json:"ts,omitempty"`

	// ThreadTS is the id of the thread the event belongs to, if threaded.
	ThreadTS string `json:"thread_ts,omitempty"`

	// Text is the message content.
	Text string `json:"text,omitempty"`

	// Channel is the id of the channel the event was posted in.
	Channel string `json:"channel,omitempty"`

	// PreviousMessage carries the original message on deletion events.
	PreviousMessage *Event `json:"previous_message,omitempty"`

	// DeletedTS is the event id of the deleted message on deletion events.
	DeletedTS string `json:"deleted_ts,omitempty"`
}

// ConversationID resolves the conversation the event belongs to: the thread
// id if the event is threaded, the event's own id otherwise.
func (e *Event) ConversationID() string {
	if e.ThreadTS != "" {
		return e.ThreadTS
	}
	return e.TS
}

// validateMessage checks the fields an ordinary message event must carry.
func (e *Event) validateMessage() error {
	switch {
	case e.User == "":
		return fmt.Errorf("%w: missing user", ErrMalformedEvent)
	case e.TS == "":
		return fmt.Errorf("%w: missing ts", ErrMalformedEvent)
	case e.Channel == "":
		return fmt.Errorf("%w: missing channel", ErrMalformedEvent)
	}
	return nil
}

// validateDeletion checks the fields a message_deleted event must carry.
func (e *Event) validateDeletion() error {
	switch {
	case e.PreviousMessage == nil:
		return fmt.Errorf("%w: missing previous_message", ErrMalformedEvent)
	case e.PreviousMessage.User == "":
		return fmt.Errorf("%w: missing previous_message.user", ErrMalformedEvent)
	case e.PreviousMessage.TS == "":
		return fmt.Errorf("%w: missing previous_message.ts", ErrMalformedEvent)
	case e.DeletedTS == "":
		return fmt.Errorf("%w: missing deleted_ts", ErrMalformedEvent)
	}
	return nil
}
