package slack

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// fakePost records one PostMessage call.
type fakePost struct {
	Text     string
	Channel  string
	ThreadTS string
}

// fakeAPI is an in-memory API implementation for tests.
type fakeAPI struct {
	mu             sync.Mutex
	posts          []fakePost
	nextTS         int
	profile        *Profile
	usersInfoCalls int

	// usersInfoGate, when non-nil, blocks UsersInfo until closed. Used to
	// provoke concurrent first fetches.
	usersInfoGate chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		profile: &Profile{
			RealName: "Grace Brewster Hopper",
			Email:    "grace@example.com",
		},
	}
}

func (f *fakeAPI) PostMessage(_ context.Context, text, channel, threadTS string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, fakePost{Text: text, Channel: channel, ThreadTS: threadTS})
	f.nextTS++
	return fmt.Sprintf("sent-%d", f.nextTS), nil
}

func (f *fakeAPI) UsersInfo(_ context.Context, _ string) (*Profile, error) {
	if f.usersInfoGate != nil {
		<-f.usersInfoGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.usersInfoCalls++
	profile := *f.profile
	return &profile, nil
}

func (f *fakeAPI) postCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.posts)
}

func (f *fakeAPI) lastPost() fakePost {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.posts[len(f.posts)-1]
}

func (f *fakeAPI) infoCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.usersInfoCalls
}

// fakeTime provides an injectable clock for deterministic pruning tests.
type fakeTime struct {
	mu      sync.Mutex
	current time.Time
}

func newFakeTime() *fakeTime {
	return &fakeTime{current: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeTime) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *fakeTime) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = f.current.Add(d)
}

// waitTimeout is the ceiling for waiting on asynchronous test events.
const waitTimeout = 5 * time.Second
