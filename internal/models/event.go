package models

import (
	"errors"
	"time"
)

// Event is a single event record as stored in the hosted events collection.
// The id and the created/updated timestamps are assigned by the backend and
// never written by this client.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	UserID      string    `json:"user_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FormDateTime is the layout of HTML datetime-local inputs.
const FormDateTime = "2006-01-02T15:04"

// EventDraft carries user input for creating or updating one event.
type EventDraft struct {
	Title       string    `form:"title" json:"title" binding:"required"`
	Date        time.Time `form:"date" json:"date" binding:"required" time_format:"2006-01-02T15:04"`
	Location    string    `form:"location" json:"location"`
	Description string    `form:"description" json:"description"`
}

// Validate performs the presence checks that must hold before any network
// call is made. Everything beyond presence (date sanity, permissions) is the
// backend's responsibility and surfaces as a request failure.
func (d EventDraft) Validate() error {
	if d.Title == "" {
		return errors.New("title is required")
	}
	if d.Date.IsZero() {
		return errors.New("date is required")
	}
	return nil
}

// DraftOf pre-fills a draft from an existing record, for the edit form.
func DraftOf(e Event) EventDraft {
	return EventDraft{
		Title:       e.Title,
		Date:        e.Date,
		Location:    e.Location,
		Description: e.Description,
	}
}

// User is the authenticated identity observed from the auth service.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
