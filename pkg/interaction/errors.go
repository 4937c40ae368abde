package interaction

import "errors"

// ErrNotConfigured indicates Tell, Listen, Ask, or Current was called with no
// active interaction context on the context.Context.
var ErrNotConfigured = errors.New("interaction: no interaction context configured")
