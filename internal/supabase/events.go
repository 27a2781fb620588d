package supabase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Maheen-M02/Event-Management/internal/models"
)

const eventsPath = "/rest/v1/events"

// ListEvents returns every event visible to the current session, ordered by
// date ascending. No owner filter is sent; row-level security on the service
// scopes the result to the authenticated user.
func (c *Client) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	_, err := c.do(ctx, "GET", eventsPath+"?select=*&order=date.asc", nil, nil, &events)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// InsertEvent creates a new record; the service assigns id, owner and
// timestamps, and the stored row is returned.
func (c *Client) InsertEvent(ctx context.Context, draft models.EventDraft) (models.Event, error) {
	headers := map[string]string{"Prefer": "return=representation"}

	var rows []models.Event
	_, err := c.do(ctx, "POST", eventsPath, headers, draft, &rows)
	if err != nil {
		return models.Event{}, fmt.Errorf("create event: %w", err)
	}
	if len(rows) == 0 {
		return models.Event{}, &APIError{Status: 500, Message: "create event: service returned no row"}
	}
	return rows[0], nil
}

// UpdateEvent replaces the writable fields of the record with the given id
// and returns the stored row.
func (c *Client) UpdateEvent(ctx context.Context, id string, draft models.EventDraft) (models.Event, error) {
	headers := map[string]string{"Prefer": "return=representation"}

	var rows []models.Event
	_, err := c.do(ctx, "PATCH", eventsPath+"?id=eq."+id, headers, draft, &rows)
	if err != nil {
		return models.Event{}, fmt.Errorf("update event %s: %w", id, err)
	}
	if len(rows) == 0 {
		return models.Event{}, &APIError{Status: 404, Message: "update event: no matching record"}
	}
	return rows[0], nil
}

// DeleteEvent removes the record with the given id.
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	_, err := c.do(ctx, "DELETE", eventsPath+"?id=eq."+id, nil, nil, nil)
	if err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	return nil
}

// CountEvents issues the count-only probe query: no rows are transferred,
// the total comes back in the Content-Range header.
func (c *Client) CountEvents(ctx context.Context) (int64, error) {
	headers := map[string]string{
		"Prefer": "count=exact",
		"Range":  "0-0",
	}

	resp, err := c.do(ctx, "HEAD", eventsPath+"?select=*", headers, nil, nil)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}

	// Content-Range looks like "0-0/42" or "*/0" for an empty table.
	cr := resp.Header.Get("Content-Range")
	idx := strings.LastIndex(cr, "/")
	if idx < 0 {
		return 0, fmt.Errorf("count events: missing content range in response")
	}
	n, err := strconv.ParseInt(cr[idx+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("count events: bad content range %q", cr)
	}
	return n, nil
}
