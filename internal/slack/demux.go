package slack

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Slowki/chattermouth/pkg/interaction"
)

// Callback is invoked once per newly discovered conversation, on its own
// goroutine, with a context carrying the conversation's interaction context.
// Returned errors are logged and dropped; panics are recovered.
type Callback func(ctx context.Context) error

// DemuxConfig holds the configuration for a Demux.
type DemuxConfig struct {
	// API is the platform client used by created contexts.
	API API

	// Callback is the per-conversation discovery callback.
	Callback Callback

	// BaseContext is the parent context for callback goroutines. Callbacks
	// must outlive whatever delivered the triggering event (an HTTP request,
	// a socket read), so this is the process/serve context rather than a
	// per-event one. Defaults to context.Background().
	BaseContext context.Context

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Demux routes inbound platform events to per-conversation interaction
// contexts. The first event of a (user, conversation) pair creates a context
// and fires the callback; later events are enqueued onto the existing
// context; deletion events record tombstones for reconciliation.
type Demux struct {
	api      API
	callback Callback
	baseCtx  context.Context
	logger   *slog.Logger

	mu sync.Mutex
	// conversations is keyed by user id, then conversation id. The weak-map
	// semantics of the reference design are replaced by an idle-timeout
	// sweep: Prune drops contexts whose last activity is older than a bound.
	conversations map[string]map[string]*Context

	// now is injectable for deterministic testing.
	now func() time.Time
}

// NewDemux creates a Demux. API and Callback are required.
func NewDemux(cfg DemuxConfig) (*Demux, error) {
	if cfg.API == nil {
		return nil, ErrNoAPI
	}
	if cfg.Callback == nil {
		return nil, ErrNoCallback
	}
	if cfg.BaseContext == nil {
		cfg.BaseContext = context.Background()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Demux{
		api:           cfg.API,
		callback:      cfg.Callback,
		baseCtx:       cfg.BaseContext,
		logger:        cfg.Logger,
		conversations: make(map[string]map[string]*Context),
		now:           time.Now,
	}, nil
}

// lookup returns the context for (user, conversation), or nil.
// Callers hold d.mu.
func (d *Demux) lookup(user, conversation string) *Context {
	return d.conversations[user][conversation]
}

// HandleEvent routes one inbound platform event. A malformed event fails
// fast with ErrMalformedEvent; the failure is scoped to that event.
// HandleEvent never blocks on the discovery callback.
func (d *Demux) HandleEvent(ev Event) error {
	if ev.Subtype == subtypeMessageDeleted {
		return d.handleDeletion(ev)
	}
	if ev.Subtype != "" {
		// Joins, edits, bot messages, and the like are not conversational
		// input.
		return nil
	}
	return d.handleMessage(ev)
}

func (d *Demux) handleDeletion(ev Event) error {
	if err := ev.validateDeletion(); err != nil {
		return err
	}

	prev := ev.PreviousMessage
	d.mu.Lock()
	c := d.lookup(prev.User, prev.ConversationID())
	d.mu.Unlock()

	if c == nil {
		// A deletion racing a context that was never created or already
		// pruned is silently ignored.
		return nil
	}

	c.markDeleted(ev.DeletedTS)
	d.logger.Debug("demux: deletion recorded",
		"user", prev.User,
		"conversation", prev.ConversationID(),
		"deleted_ts", ev.DeletedTS,
	)
	return nil
}

func (d *Demux) handleMessage(ev Event) error {
	if err := ev.validateMessage(); err != nil {
		return err
	}

	conversation := ev.ConversationID()

	d.mu.Lock()
	if c := d.lookup(ev.User, conversation); c != nil {
		d.mu.Unlock()
		// The owning task is presumably blocked in Listen; no callback.
		c.enqueue(ev)
		return nil
	}

	c := newContext(d.api, ev, d.now)
	byConversation, ok := d.conversations[ev.User]
	if !ok {
		byConversation = make(map[string]*Context)
		d.conversations[ev.User] = byConversation
	}
	byConversation[conversation] = c
	d.mu.Unlock()

	d.logger.Info("demux: conversation discovered",
		"user", ev.User,
		"conversation", conversation,
		"channel", ev.Channel,
	)

	go d.runCallback(interaction.WithContext(d.baseCtx, c), ev.User, conversation)
	return nil
}

// runCallback drives the discovery callback for one conversation. Failures
// are observed and logged, never propagated: the demultiplexer must keep
// servicing events regardless of what callbacks do.
func (d *Demux) runCallback(ctx context.Context, user, conversation string) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("demux: callback panicked",
				"user", user,
				"conversation", conversation,
				"panic", r,
			)
		}
	}()

	if err := d.callback(ctx); err != nil {
		d.logger.Error("demux: callback failed",
			"user", user,
			"conversation", conversation,
			"error", err,
		)
	}
}

// Prune removes contexts whose last activity is older than maxIdle, closing
// their queues, and returns the number pruned. Intended to be called
// periodically.
func (d *Demux) Prune(maxIdle time.Duration) int {
	now := d.now()

	d.mu.Lock()
	var victims []*Context
	for user, byConversation := range d.conversations {
		for conversation, c := range byConversation {
			if c.idleSince(now) > maxIdle {
				delete(byConversation, conversation)
				victims = append(victims, c)
			}
		}
		if len(byConversation) == 0 {
			delete(d.conversations, user)
		}
	}
	d.mu.Unlock()

	for _, c := range victims {
		c.close()
	}

	if len(victims) > 0 {
		d.logger.Info("demux: pruned idle conversations", "count", len(victims))
	}
	return len(victims)
}

// Len returns the number of active conversations.
func (d *Demux) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, byConversation := range d.conversations {
		n += len(byConversation)
	}
	return n
}
