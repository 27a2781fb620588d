// Package supabase is a thin client for the two Supabase surfaces this
// application consumes: GoTrue (sessions) and PostgREST (the events
// collection). It performs no caching, batching or request deduplication;
// every call is one HTTP round trip that either returns data or fails with a
// descriptive error.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Config carries what a Client needs to talk to one Supabase project.
type Config struct {
	// URL is the project base URL, e.g. https://xyz.supabase.co.
	URL string
	// AnonKey is the project's public API key, sent as the apikey header
	// and as the bearer token for unauthenticated calls.
	AnonKey string

	// HTTPClient is optional; a default with a 15s timeout is used when nil.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client holds the auth session for one signed-in user and exposes the
// query surface of the events collection. One Client per browser session.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *slog.Logger

	mu           sync.Mutex
	session      *Session
	listeners    map[int]func(AuthChange)
	nextListener int
}

func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:   cfg.URL,
		apiKey:    cfg.AnonKey,
		http:      hc,
		log:       logger,
		listeners: map[int]func(AuthChange){},
	}
}

// APIError is a non-2xx response from the service, with the human-readable
// message extracted from its error body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// The two services use different error body shapes; try the known keys.
type errorBody struct {
	Message     string `json:"message"`
	Msg         string `json:"msg"`
	ErrorDesc   string `json:"error_description"`
	ErrorString string `json:"error"`
}

func apiError(status int, body []byte) *APIError {
	var eb errorBody
	msg := ""
	if err := json.Unmarshal(body, &eb); err == nil {
		switch {
		case eb.Message != "":
			msg = eb.Message
		case eb.Msg != "":
			msg = eb.Msg
		case eb.ErrorDesc != "":
			msg = eb.ErrorDesc
		case eb.ErrorString != "":
			msg = eb.ErrorString
		}
	}
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", status)
	}
	return &APIError{Status: status, Message: msg}
}

// do issues one request. A nil body sends no payload; out may be nil when
// the response body is irrelevant. The bearer token is the current access
// token when a session exists, the anon key otherwise.
func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, body any, out any) (*http.Response, error) {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.bearerToken())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := apiError(resp.StatusCode, data)
		c.log.Error("supabase request failed", "method", method, "path", path, "status", resp.StatusCode, "err", apiErr.Message)
		return resp, apiErr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp, fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}
	return resp, nil
}

func (c *Client) bearerToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil && c.session.AccessToken != "" {
		return c.session.AccessToken
	}
	return c.apiKey
}
