package slack

import "errors"

// Sentinel errors for the Slack backend.
var (
	// ErrMalformedEvent indicates an inbound platform event is missing a
	// required field. The failure is scoped to that event; the demultiplexer
	// keeps running.
	ErrMalformedEvent = errors.New("slack: malformed event")

	// ErrConversationClosed indicates the conversation's context was pruned
	// and its queue closed while a Listen was pending.
	ErrConversationClosed = errors.New("slack: conversation closed")

	// ErrNoCallback indicates a Demux was constructed without a discovery
	// callback.
	ErrNoCallback = errors.New("slack: no callback configured")

	// ErrNoAPI indicates a Demux was constructed without a platform API
	// client.
	ErrNoAPI = errors.New("slack: no API client configured")
)
