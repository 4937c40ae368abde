package interaction

import "context"

// ctxKey is the private key under which the active Context rides on a
// context.Context.
type ctxKey struct{}

// WithContext returns a child context carrying ic as the active interaction
// context. The parent context is the restore token: the override is visible
// only to the returned context and everything derived from it, and unwinding
// to the parent restores the previous value on every exit path, including
// error paths.
func WithContext(ctx context.Context, ic Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, ic)
}

// FromContext returns the active interaction context, if any.
func FromContext(ctx context.Context) (Context, bool) {
	ic, ok := ctx.Value(ctxKey{}).(Context)
	return ic, ok
}

// Current returns the active interaction context or ErrNotConfigured if none
// is set on ctx.
func Current(ctx context.Context) (Context, error) {
	ic, ok := FromContext(ctx)
	if !ok {
		return nil, ErrNotConfigured
	}
	return ic, nil
}

// Tell sends a message to the user via the active interaction context.
func Tell(ctx context.Context, text string) error {
	ic, err := Current(ctx)
	if err != nil {
		return err
	}
	return ic.Tell(ctx, text)
}

// Listen blocks until the user's next message via the active interaction
// context.
func Listen(ctx context.Context) (Message, error) {
	ic, err := Current(ctx)
	if err != nil {
		return Message{}, err
	}
	return ic.Listen(ctx)
}

// Ask sends a message and returns the user's next response via the active
// interaction context.
func Ask(ctx context.Context, text string) (Message, error) {
	ic, err := Current(ctx)
	if err != nil {
		return Message{}, err
	}
	return ic.Ask(ctx, text)
}
