package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Maheen-M02/Event-Management/internal/events"
	"github.com/Maheen-M02/Event-Management/internal/supabase"
)

// Entry bundles everything owned by one signed-in browser session.
type Entry struct {
	Client     *supabase.Client
	Controller *Controller
	Manager    *events.Manager

	mu       sync.Mutex
	lastSeen time.Time
}

func (e *Entry) touch(now time.Time) {
	e.mu.Lock()
	e.lastSeen = now
	e.mu.Unlock()
}

func (e *Entry) idleSince() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSeen
}

// Registry maps opaque session-cookie ids to entries. Each entry gets its
// own data service client, so one user's session state never leaks into
// another's.
type Registry struct {
	newClient func() *supabase.Client
	log       *slog.Logger
	ttl       time.Duration

	mu      sync.Mutex
	entries map[string]*Entry
}

func NewRegistry(newClient func() *supabase.Client, ttl time.Duration, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		newClient: newClient,
		log:       logger,
		ttl:       ttl,
		entries:   map[string]*Entry{},
	}
}

// SignIn authenticates against the data service and, on success, stores a
// new entry and returns its session id. Nothing is stored on failure.
func (r *Registry) SignIn(ctx context.Context, email, password string) (string, error) {
	client := r.newClient()
	if _, err := client.SignInWithPassword(ctx, email, password); err != nil {
		return "", err
	}

	ctrl := NewController(client, r.log)
	ctrl.Start(ctx)

	entry := &Entry{
		Client:     client,
		Controller: ctrl,
		Manager:    events.NewManager(client, r.log),
		lastSeen:   time.Now(),
	}

	sid := uuid.NewString()
	r.mu.Lock()
	r.entries[sid] = entry
	r.mu.Unlock()
	return sid, nil
}

// SignUp registers a new account with a throwaway client; the caller signs
// in afterwards as usual.
func (r *Registry) SignUp(ctx context.Context, email, password string) error {
	return r.newClient().SignUpWithPassword(ctx, email, password)
}

// Get returns the entry for sid, refreshing its idle timer.
func (r *Registry) Get(sid string) (*Entry, bool) {
	r.mu.Lock()
	entry, ok := r.entries[sid]
	r.mu.Unlock()
	if ok {
		entry.touch(time.Now())
	}
	return entry, ok
}

// Remove drops the entry for sid and releases its subscription.
func (r *Registry) Remove(sid string) {
	r.mu.Lock()
	entry, ok := r.entries[sid]
	delete(r.entries, sid)
	r.mu.Unlock()
	if ok {
		entry.Controller.Close()
	}
}

// Prune evicts entries idle longer than the TTL and returns how many went.
func (r *Registry) Prune(now time.Time) int {
	r.mu.Lock()
	var expired []string
	for sid, entry := range r.entries {
		if now.Sub(entry.idleSince()) > r.ttl {
			expired = append(expired, sid)
		}
	}
	r.mu.Unlock()

	for _, sid := range expired {
		r.Remove(sid)
	}
	if len(expired) > 0 {
		r.log.Info("pruned idle sessions", "count", len(expired))
	}
	return len(expired)
}

// RefreshDue rotates access tokens that expire within the given window, so
// active users are not bounced to the login page mid-session.
func (r *Registry) RefreshDue(ctx context.Context, window time.Duration) {
	r.mu.Lock()
	clients := make([]*supabase.Client, 0, len(r.entries))
	for _, entry := range r.entries {
		clients = append(clients, entry.Client)
	}
	r.mu.Unlock()

	for _, client := range clients {
		sess := client.GetSession()
		if sess == nil || !sess.ExpiresWithin(window) {
			continue
		}
		if _, err := client.RefreshSession(ctx); err != nil {
			r.log.Warn("token refresh failed", "user", sess.User.Email, "err", err)
		}
	}
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
