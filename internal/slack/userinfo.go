package slack

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Slowki/chattermouth/pkg/interaction"
)

// UserInfo resolves profile data for a platform user. The profile document is
// fetched over users.info at most once and cached for the object's lifetime;
// concurrent first calls are de-duplicated through a singleflight group.
type UserInfo struct {
	// ID is the platform user id.
	ID string

	api API

	group   singleflight.Group
	mu      sync.Mutex
	profile *Profile
}

// Compile-time interface check.
var _ interaction.UserInfo = (*UserInfo)(nil)

// NewUserInfo creates a UserInfo for the given user id. No RPC is issued
// until a field is requested.
func NewUserInfo(api API, id string) *UserInfo {
	return &UserInfo{ID: id, api: api}
}

func (u *UserInfo) getProfile(ctx context.Context) (*Profile, error) {
	u.mu.Lock()
	if p := u.profile; p != nil {
		u.mu.Unlock()
		return p, nil
	}
	u.mu.Unlock()

	v, err, _ := u.group.Do("profile", func() (any, error) {
		// Double-check: a caller that lost the race to an already-completed
		// flight must not refetch.
		u.mu.Lock()
		if p := u.profile; p != nil {
			u.mu.Unlock()
			return p, nil
		}
		u.mu.Unlock()

		p, err := u.api.UsersInfo(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		u.mu.Lock()
		u.profile = p
		u.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Profile), nil
}

// FullName returns the profile's real name.
func (u *UserInfo) FullName(ctx context.Context) (string, error) {
	p, err := u.getProfile(ctx)
	if err != nil {
		return "", err
	}
	return p.RealName, nil
}

// FirstName returns the profile's own first-name field, falling back to the
// first field of the real name when the profile does not carry one.
func (u *UserInfo) FirstName(ctx context.Context) (string, error) {
	p, err := u.getProfile(ctx)
	if err != nil {
		return "", err
	}
	if p.FirstName != "" {
		return p.FirstName, nil
	}
	return interaction.SplitFirstName(p.RealName), nil
}

// LastName returns the profile's own last-name field, falling back to the
// last field of the real name.
func (u *UserInfo) LastName(ctx context.Context) (string, error) {
	p, err := u.getProfile(ctx)
	if err != nil {
		return "", err
	}
	if p.LastName != "" {
		return p.LastName, nil
	}
	return interaction.SplitLastName(p.RealName), nil
}

// Email returns the profile's email address.
func (u *UserInfo) Email(ctx context.Context) (string, error) {
	p, err := u.getProfile(ctx)
	if err != nil {
		return "", err
	}
	return p.Email, nil
}
