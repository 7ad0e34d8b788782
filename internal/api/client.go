// Package api is a thin REST client for the remote time-tracking service.
// It performs no caching of its own; callers layer the cache package on top.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Error is a non-2xx response from the service.
type Error struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: unexpected status %d (request %s)", e.StatusCode, e.RequestID)
	}
	return fmt.Sprintf("api: %s (status %d, request %s)", e.Message, e.StatusCode, e.RequestID)
}

// Client talks to one workspace of the time-tracking service.
type Client struct {
	baseURL   string
	token     string
	workspace string
	httpc     *http.Client
	log       zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.httpc.Timeout = d }
}

// WithLogger installs a diagnostics logger.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) { c.log = logger }
}

// WithHTTPClient replaces the underlying HTTP client (tests).
func WithHTTPClient(httpc *http.Client) ClientOption {
	return func(c *Client) { c.httpc = httpc }
}

// NewClient creates a client for baseURL authenticated with token.
func NewClient(baseURL, token, workspace string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   baseURL,
		token:     token,
		workspace: workspace,
		httpc:     &http.Client{Timeout: 30 * time.Second},
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Projects lists the workspace's projects.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.do(ctx, http.MethodGet, "/projects", nil, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Tasks lists the tasks of one project.
func (c *Client) Tasks(ctx context.Context, projectID string) ([]Task, error) {
	q := url.Values{"project_id": {projectID}}
	var tasks []Task
	if err := c.do(ctx, http.MethodGet, "/tasks", q, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Entries lists time entries whose start falls within [from, to].
func (c *Client) Entries(ctx context.Context, from, to time.Time) ([]TimeEntry, error) {
	q := url.Values{
		"from": {from.Format(time.RFC3339)},
		"to":   {to.Format(time.RFC3339)},
	}
	var entries []TimeEntry
	if err := c.do(ctx, http.MethodGet, "/time_entries", q, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// CurrentEntry returns the running time entry, or nil when nothing is being
// tracked.
func (c *Client) CurrentEntry(ctx context.Context) (*TimeEntry, error) {
	var entry TimeEntry
	err := c.do(ctx, http.MethodGet, "/time_entries/current", nil, nil, &entry)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// StartEntry begins tracking a new time entry.
func (c *Client) StartEntry(ctx context.Context, req StartRequest) (*TimeEntry, error) {
	var entry TimeEntry
	if err := c.do(ctx, http.MethodPost, "/time_entries", nil, req, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// StopEntry stops the given running entry and returns its final state.
func (c *Client) StopEntry(ctx context.Context, id string) (*TimeEntry, error) {
	var entry TimeEntry
	path := fmt.Sprintf("/time_entries/%s/stop", url.PathEscape(id))
	if err := c.do(ctx, http.MethodPost, path, nil, nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// do performs one request. Every call carries a fresh ULID request ID, both
// for the service's logs and for correlating client-side diagnostics.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestID := ulid.Make().String()
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if c.workspace != "" {
		req.Header.Set("X-Workspace", c.workspace)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp, requestID)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// decodeError maps a non-2xx response to *Error, using the service's
// {"error": "..."} body when present.
func decodeError(resp *http.Response, requestID string) error {
	apiErr := &Error{StatusCode: resp.StatusCode, RequestID: requestID}

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err == nil {
		apiErr.Message = body.Error
		if apiErr.Message == "" {
			apiErr.Message = body.Message
		}
	}
	return apiErr
}
