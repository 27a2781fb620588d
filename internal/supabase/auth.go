package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/Maheen-M02/Event-Management/internal/models"
)

// Session is one authenticated session as issued by the auth service.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         models.User
}

// ExpiresWithin reports whether the access token expires inside d.
func (s *Session) ExpiresWithin(d time.Duration) bool {
	return !s.ExpiresAt.IsZero() && time.Until(s.ExpiresAt) <= d
}

// Auth state change event names, matching the service's listener contract.
const (
	EventSignedIn       = "SIGNED_IN"
	EventSignedOut      = "SIGNED_OUT"
	EventTokenRefreshed = "TOKEN_REFRESHED"
)

// AuthChange is delivered to subscribers whenever the session changes.
// Session is nil on sign-out.
type AuthChange struct {
	Event   string
	Session *Session
}

// OnAuthStateChange registers fn for session changes and returns the
// matching unsubscribe function. Callbacks run synchronously on the
// goroutine that changed the session.
func (c *Client) OnAuthStateChange(fn func(AuthChange)) func() {
	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Client) setSession(event string, s *Session) {
	c.mu.Lock()
	c.session = s
	fns := make([]func(AuthChange), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(AuthChange{Event: event, Session: s})
	}
}

// GetSession returns the current session, or nil when signed out.
func (c *Client) GetSession() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

type authUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type authResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"`
	User         authUser `json:"user"`
}

// accessClaims are the token claims this client reads locally. The token is
// not verified here: its signature only matters to the services that accept
// it, and every request is authorized server-side anyway.
type accessClaims struct {
	Email string `json:"email"`
	jwt.StandardClaims
}

func (r authResponse) toSession() *Session {
	s := &Session{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		User:         models.User{ID: r.User.ID, Email: r.User.Email},
	}
	if r.ExpiresIn > 0 {
		s.ExpiresAt = time.Now().Add(time.Duration(r.ExpiresIn) * time.Second)
	}

	claims := &accessClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(r.AccessToken, claims); err == nil {
		if s.User.ID == "" {
			s.User.ID = claims.Subject
		}
		if s.User.Email == "" {
			s.User.Email = claims.Email
		}
		if s.ExpiresAt.IsZero() && claims.ExpiresAt > 0 {
			s.ExpiresAt = time.Unix(claims.ExpiresAt, 0)
		}
	}
	return s
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpWithPassword registers a new account. Depending on the project's
// confirmation settings the response may or may not carry a usable session;
// callers should follow up with SignInWithPassword.
func (c *Client) SignUpWithPassword(ctx context.Context, email, password string) error {
	_, err := c.do(ctx, "POST", "/auth/v1/signup", nil, credentials{Email: email, Password: password}, nil)
	if err != nil {
		return fmt.Errorf("sign up: %w", err)
	}
	return nil
}

// SignInWithPassword exchanges credentials for a session and notifies
// subscribers with a SIGNED_IN change.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var resp authResponse
	_, err := c.do(ctx, "POST", "/auth/v1/token?grant_type=password", nil, credentials{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	s := resp.toSession()
	c.setSession(EventSignedIn, s)
	c.log.Info("signed in", "user", s.User.Email)
	return s, nil
}

// RefreshSession rotates the access token using the stored refresh token
// and notifies subscribers with a TOKEN_REFRESHED change.
func (c *Client) RefreshSession(ctx context.Context) (*Session, error) {
	cur := c.GetSession()
	if cur == nil || cur.RefreshToken == "" {
		return nil, &APIError{Status: 401, Message: "no session to refresh"}
	}

	body := struct {
		RefreshToken string `json:"refresh_token"`
	}{RefreshToken: cur.RefreshToken}

	var resp authResponse
	_, err := c.do(ctx, "POST", "/auth/v1/token?grant_type=refresh_token", nil, body, &resp)
	if err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	s := resp.toSession()
	c.setSession(EventTokenRefreshed, s)
	return s, nil
}

// CurrentUser fetches the user behind the current access token.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var u authUser
	_, err := c.do(ctx, "GET", "/auth/v1/user", nil, nil, &u)
	if err != nil {
		return nil, err
	}
	return &models.User{ID: u.ID, Email: u.Email}, nil
}

// SignOut ends the session on the service, then clears it locally and
// notifies subscribers with a SIGNED_OUT change. The local session is
// cleared even when the remote call fails: the user asked to leave.
func (c *Client) SignOut(ctx context.Context) error {
	_, err := c.do(ctx, "POST", "/auth/v1/logout", nil, nil, nil)
	c.setSession(EventSignedOut, nil)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}
