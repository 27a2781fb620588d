// Package events owns the list of events for one signed-in user and the UI
// state around it: loading, the single dismissible error, form visibility and
// the per-record deleting marker. Every successful mutation is followed by a
// full refetch, so the visible list is always a snapshot of server state.
package events

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/Maheen-M02/Event-Management/internal/models"
)

// EventStore is the slice of the data service the manager depends on.
type EventStore interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	InsertEvent(ctx context.Context, draft models.EventDraft) (models.Event, error)
	UpdateEvent(ctx context.Context, id string, draft models.EventDraft) (models.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// FormMode is the visibility state of the event form.
type FormMode int

const (
	FormClosed FormMode = iota
	FormCreating
	FormEditing
)

// FormState is the tagged form state; Editing is set only in FormEditing.
type FormState struct {
	Mode    FormMode
	Editing *models.Event
}

// Open reports whether the form is visible. Used by templates.
func (f FormState) Open() bool { return f.Mode != FormClosed }

// IsEditing reports whether the form targets an existing record.
func (f FormState) IsEditing() bool { return f.Mode == FormEditing }

// Snapshot is a render-ready copy of the manager state.
type Snapshot struct {
	Events     []models.Event
	Loaded     bool
	Loading    bool
	Error      string
	Form       FormState
	DeletingID string
}

// Manager drives the fetch/create/edit/delete flows. Unlike a browser event
// loop, HTTP handlers run concurrently, so state mutations are serialized
// behind a mutex; the lock is released for the duration of each network call
// and the last response to resolve wins.
type Manager struct {
	store EventStore
	log   *slog.Logger

	mu         sync.Mutex
	events     []models.Event
	loaded     bool
	loading    bool
	errMsg     string
	form       FormState
	deletingID string
}

func NewManager(store EventStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, log: logger}
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	events := make([]models.Event, len(m.events))
	copy(events, m.events)

	form := m.form
	if form.Editing != nil {
		ev := *form.Editing
		form.Editing = &ev
	}

	return Snapshot{
		Events:     events,
		Loaded:     m.loaded,
		Loading:    m.loading,
		Error:      m.errMsg,
		Form:       form,
		DeletingID: m.deletingID,
	}
}

// Fetch replaces the whole in-memory list with the server's. On failure the
// previous list is left untouched and the error is stored for display.
func (m *Manager) Fetch(ctx context.Context) error {
	m.mu.Lock()
	m.loading = true
	m.errMsg = ""
	m.mu.Unlock()

	events, err := m.store.ListEvents(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	m.loaded = true
	if err != nil {
		m.log.Error("fetch events failed", "err", err)
		m.errMsg = err.Error()
		return err
	}

	// The query asks for date ascending; keep the invariant locally too.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	m.events = events
	return nil
}

// Create inserts a new record. Drafts that fail presence validation never
// reach the network. On success the form closes and the list is refetched;
// on failure the form stays open so the user can fix and retry.
func (m *Manager) Create(ctx context.Context, draft models.EventDraft) error {
	if err := draft.Validate(); err != nil {
		return err
	}

	if _, err := m.store.InsertEvent(ctx, draft); err != nil {
		m.setError(err)
		return err
	}

	m.CloseForm()
	return m.Fetch(ctx)
}

// Update replaces the record with the given id. Same form semantics as Create.
func (m *Manager) Update(ctx context.Context, id string, draft models.EventDraft) error {
	if err := draft.Validate(); err != nil {
		return err
	}

	if _, err := m.store.UpdateEvent(ctx, id, draft); err != nil {
		m.setError(err)
		return err
	}

	m.CloseForm()
	return m.Fetch(ctx)
}

// Delete removes the record after interactive confirmation. Declining leaves
// everything untouched. While the request is in flight the record carries
// the deleting marker; only one delete may be in flight at a time.
func (m *Manager) Delete(ctx context.Context, event models.Event, confirmed bool) error {
	if !confirmed {
		return nil
	}

	m.mu.Lock()
	if m.deletingID != "" {
		m.mu.Unlock()
		m.log.Warn("delete ignored, another delete in flight", "id", event.ID)
		return nil
	}
	m.deletingID = event.ID
	m.mu.Unlock()

	err := m.store.DeleteEvent(ctx, event.ID)

	m.mu.Lock()
	m.deletingID = ""
	if err != nil {
		m.log.Error("delete event failed", "id", event.ID, "err", err)
		m.errMsg = err.Error()
		m.mu.Unlock()
		return err
	}
	m.mu.Unlock()

	return m.Fetch(ctx)
}

// Find returns the cached record with the given id, if present.
func (m *Manager) Find(id string) (models.Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			return e, true
		}
	}
	return models.Event{}, false
}

// OpenCreateForm opens the form empty, clearing any previous selection.
func (m *Manager) OpenCreateForm() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.form = FormState{Mode: FormCreating}
}

// OpenEditForm opens the form pre-filled with the given record.
func (m *Manager) OpenEditForm(event models.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.form = FormState{Mode: FormEditing, Editing: &event}
}

func (m *Manager) CloseForm() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.form = FormState{Mode: FormClosed}
}

// DismissError clears the current error. Errors never block further actions.
func (m *Manager) DismissError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errMsg = ""
}

func (m *Manager) setError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errMsg = err.Error()
}
