package slack

import (
	"context"
	"sync"
	"time"

	"github.com/Slowki/chattermouth/pkg/interaction"
)

// Context is the interaction context for one (user, conversation) pair. It
// owns the conversation's inbound event queue and the suppression state used
// to reconcile sent messages against echoes and out-of-band deletions.
//
// sendMu serializes Tell against the suppression check inside Listen. Without
// it, a deletion tombstone recorded mid-Listen could be missed, and a Tell's
// self-sent marker could race the arrival of its own echo.
type Context struct {
	api      API
	ts       string // event id of the conversation's first message
	threadTS string // conversation id; replies are threaded under it
	channel  string
	user     *UserInfo

	queue *eventQueue

	sendMu sync.Mutex
	// selfSent holds event ids of messages this side posted, so the
	// platform's echo of them is not returned by Listen. deleted holds
	// tombstones recorded from message_deleted events. Each marker is
	// consumed exactly once: a second event with the same id is delivered.
	selfSent map[string]struct{}
	deleted  map[string]struct{}

	now        func() time.Time
	activityMu sync.Mutex
	lastActive time.Time
}

// Compile-time interface check.
var _ interaction.Context = (*Context)(nil)

// newContext creates the interaction context for a newly discovered
// conversation, seeding the queue with the event that opened it so the
// callback's first Listen returns the triggering message.
func newContext(api API, first Event, now func() time.Time) *Context {
	c := &Context{
		api:      api,
		ts:       first.TS,
		threadTS: first.ConversationID(),
		channel:  first.Channel,
		user:     NewUserInfo(api, first.User),
		queue:    newEventQueue(),
		selfSent: make(map[string]struct{}),
		deleted:  make(map[string]struct{}),
		now:      now,
	}
	c.touch()
	c.queue.Put(first)
	return c
}

// User returns the user on the other side of the conversation.
func (c *Context) User() *UserInfo { return c.user }

// Channel returns the channel id the conversation lives in.
func (c *Context) Channel() string { return c.channel }

// ThreadTS returns the conversation id.
func (c *Context) ThreadTS() string { return c.threadTS }

func (c *Context) touch() {
	c.activityMu.Lock()
	c.lastActive = c.now()
	c.activityMu.Unlock()
}

func (c *Context) idleSince(now time.Time) time.Duration {
	c.activityMu.Lock()
	defer c.activityMu.Unlock()
	return now.Sub(c.lastActive)
}

// enqueue appends an inbound event to the conversation's queue.
func (c *Context) enqueue(ev Event) {
	c.touch()
	c.queue.Put(ev)
}

// markDeleted records a deletion tombstone for the given event id.
func (c *Context) markDeleted(ts string) {
	c.sendMu.Lock()
	c.deleted[ts] = struct{}{}
	c.sendMu.Unlock()
}

// close shuts down the conversation's queue. Pending Listens fail with
// ErrConversationClosed.
func (c *Context) close() {
	c.queue.Close()
}

// Tell posts text to the conversation's channel, threaded under the
// conversation id, and records the sent message's event id so its echo is
// suppressed.
func (c *Context) Tell(ctx context.Context, text string) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	ts, err := c.api.PostMessage(ctx, text, c.channel, c.threadTS)
	if err != nil {
		return err
	}
	c.selfSent[ts] = struct{}{}
	c.touch()
	return nil
}

// Listen blocks until the next inbound event that is neither an echo of a
// sent message nor a deleted message, and returns it as a Message. Events
// are consumed in strict arrival order.
func (c *Context) Listen(ctx context.Context) (interaction.Message, error) {
	for {
		ev, err := c.queue.Get(ctx)
		if err != nil {
			return interaction.Message{}, err
		}

		c.sendMu.Lock()
		if _, ok := c.selfSent[ev.TS]; ok {
			delete(c.selfSent, ev.TS)
			c.sendMu.Unlock()
			continue
		}
		if _, ok := c.deleted[ev.TS]; ok {
			delete(c.deleted, ev.TS)
			c.sendMu.Unlock()
			continue
		}
		c.sendMu.Unlock()

		c.touch()
		return interaction.Message{User: c.user, Content: ev.Text}, nil
	}
}

// Ask sends text and returns the user's next message.
func (c *Context) Ask(ctx context.Context, text string) (interaction.Message, error) {
	if err := c.Tell(ctx, text); err != nil {
		return interaction.Message{}, err
	}
	return c.Listen(ctx)
}
