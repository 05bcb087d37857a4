// Package identity keeps the authenticated user of one sign-in session
// current. A Context resolves the user once when it starts, then follows
// auth events until it is closed.
package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/yahyalegrini24/AttendEase/internal/models"
)

// ErrNoProfile is returned when an identity has no matching teacher row.
var ErrNoProfile = errors.New("identity: no teacher profile for this identity")

// EventKind names an auth state change.
type EventKind string

const (
	SignedIn       EventKind = "SIGNED_IN"
	SignedOut      EventKind = "SIGNED_OUT"
	TokenRefreshed EventKind = "TOKEN_REFRESHED"
	UserUpdated    EventKind = "USER_UPDATED"
)

// Event is published by the auth service. SessionID is the sign-in session
// the event belongs to; an empty SessionID reaches every subscriber.
type Event struct {
	Kind      EventKind
	SessionID string
	Subject   string
	Email     string
}

// Identity is what the identity provider knows about the signed-in account.
type Identity struct {
	Subject string
	Email   string
}

// Authenticator is the identity provider as seen by a Context.
type Authenticator interface {
	CurrentIdentity(ctx context.Context) (*Identity, error)
	Subscribe(fn func(Event)) (unsubscribe func())
}

// ProfileStore loads the teacher profile for an identity.
type ProfileStore interface {
	TeacherByEmail(ctx context.Context, email string) (*models.Teacher, error)
}

// User merges the identity with its teacher profile.
type User struct {
	Subject   string `json:"id"`
	Email     string `json:"email"`
	TeacherID string `json:"teacherId"`
	Name      string `json:"name"`
	BranchID  string `json:"branchId"`
}

func newUser(id *Identity, t *models.Teacher) *User {
	return &User{
		Subject:   id.Subject,
		Email:     id.Email,
		TeacherID: t.TeacherID,
		Name:      t.Name,
		BranchID:  t.BranchID,
	}
}

// Context holds at most one User. Reads always see the latest write.
type Context struct {
	auth     Authenticator
	profiles ProfileStore
	logger   *zap.Logger

	mu          sync.RWMutex
	user        *User
	unsubscribe func()
	closed      bool
}

func New(auth Authenticator, profiles ProfileStore, logger *zap.Logger) *Context {
	return &Context{auth: auth, profiles: profiles, logger: logger}
}

// Start resolves the current user and subscribes to auth events. A failed
// resolve leaves the user empty but the Context still follows events.
func (c *Context) Start(ctx context.Context) error {
	err := c.resolve(ctx)

	unsub := c.auth.Subscribe(c.handle)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		unsub()
		return nil
	}
	c.unsubscribe = unsub
	c.mu.Unlock()
	return err
}

func (c *Context) resolve(ctx context.Context) error {
	id, err := c.auth.CurrentIdentity(ctx)
	if err != nil {
		return fmt.Errorf("current identity: %w", err)
	}
	if id == nil {
		c.SetUser(nil)
		return nil
	}
	teacher, err := c.profiles.TeacherByEmail(ctx, id.Email)
	if err != nil {
		return fmt.Errorf("load profile for %s: %w", id.Email, err)
	}
	if teacher == nil {
		return ErrNoProfile
	}
	c.SetUser(newUser(id, teacher))
	return nil
}

func (c *Context) handle(ev Event) {
	switch ev.Kind {
	case SignedOut:
		c.SetUser(nil)
	case SignedIn, TokenRefreshed, UserUpdated:
		if err := c.resolve(context.Background()); err != nil {
			c.logger.Warn("failed to refresh user after auth event",
				zap.String("event", string(ev.Kind)), zap.Error(err))
		}
	}
}

// User returns the current user, or nil when signed out.
func (c *Context) User() *User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// SetUser overwrites the current user.
func (c *Context) SetUser(u *User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = u
}

// Close stops following auth events. It is safe to call more than once.
func (c *Context) Close() {
	c.mu.Lock()
	unsub := c.unsubscribe
	c.unsubscribe = nil
	c.closed = true
	c.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}
