// Package session owns the authenticated-user state. A Controller observes
// one auth session: it loads the current user, subscribes to auth changes for
// its lifetime, and exposes a logout transition. The Registry maps browser
// cookies to controllers and keeps them fresh.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Maheen-M02/Event-Management/internal/models"
	"github.com/Maheen-M02/Event-Management/internal/supabase"
)

// State is the controller's view-selection state.
type State int

const (
	StateLoading State = iota
	StateUnauthenticated
	StateAuthenticated
)

// AuthAPI is the slice of the data service client the controller observes.
type AuthAPI interface {
	GetSession() *supabase.Session
	CurrentUser(ctx context.Context) (*models.User, error)
	SignOut(ctx context.Context) error
	OnAuthStateChange(fn func(supabase.AuthChange)) func()
}

// Controller holds the user for one browser session. Each auth change
// notification replaces the user unconditionally (last-write-wins).
type Controller struct {
	auth AuthAPI
	log  *slog.Logger

	mu    sync.Mutex
	state State
	user  *models.User
	unsub func()
}

func NewController(auth AuthAPI, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{auth: auth, log: logger, state: StateLoading}
}

// Start resolves the current session and subscribes to auth changes. It is
// called once; Close releases the subscription.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.unsub == nil {
		c.unsub = c.auth.OnAuthStateChange(c.onAuthChange)
	}
	c.mu.Unlock()

	sess := c.auth.GetSession()
	if sess == nil {
		c.replaceUser(nil)
		return
	}

	// Confirm the token still stands for a user; a revoked session shows
	// up here rather than on the first data call.
	user, err := c.auth.CurrentUser(ctx)
	if err != nil {
		c.log.Warn("session check failed, treating as signed out", "err", err)
		c.replaceUser(nil)
		return
	}
	c.replaceUser(user)
}

func (c *Controller) onAuthChange(change supabase.AuthChange) {
	if change.Session == nil {
		c.replaceUser(nil)
		return
	}
	u := change.Session.User
	c.replaceUser(&u)
}

func (c *Controller) replaceUser(u *models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = u
	if u == nil {
		c.state = StateUnauthenticated
	} else {
		c.state = StateAuthenticated
	}
}

// User returns the current user (nil when signed out) and the view state.
func (c *Controller) User() (*models.User, State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user, c.state
}

// Logout instructs the service to end the session, then clears local state.
// The auth-change notification already clears the user; the explicit
// replaceUser covers the case where the remote call failed before notifying.
func (c *Controller) Logout(ctx context.Context) error {
	err := c.auth.SignOut(ctx)
	c.replaceUser(nil)
	return err
}

// Close releases the auth-change subscription.
func (c *Controller) Close() {
	c.mu.Lock()
	unsub := c.unsub
	c.unsub = nil
	c.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}
