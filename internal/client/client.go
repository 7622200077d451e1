package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"massage-board-backend/internal/board"
	"massage-board-backend/internal/model"
	"massage-board-backend/internal/parse"
	"massage-board-backend/internal/store"
)

// APIError is a non-2xx answer from the board API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("board api returned %d: %s", e.Status, e.Message)
}

// Unwrap maps 404 to store.ErrNotFound so callers can share error checks.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return store.ErrNotFound
	}
	return nil
}

var (
	_ board.API    = (*Client)(nil)
	_ board.Roster = (*Client)(nil)
)

// Client talks to the board HTTP API.
type Client struct {
	baseURL string
	loc     *time.Location
	http    *http.Client
}

// New creates a client for the API rooted at baseURL, e.g. http://localhost:8080/api.
// Dates are bucketed in loc.
func New(baseURL string, loc *time.Location) *Client {
	if loc == nil {
		loc = time.UTC
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		loc:     loc,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// List fetches the appointments starting on day.
func (c *Client) List(ctx context.Context, day time.Time) ([]model.Appointment, error) {
	q := url.Values{"date": {day.In(c.loc).Format(parse.DateLayout)}}
	var out []model.Appointment
	if err := c.do(ctx, http.MethodGet, "/appointments?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create posts a new appointment and returns it with its server id.
func (c *Client) Create(ctx context.Context, appt model.Appointment) (model.Appointment, error) {
	appt.ID = ""
	var out model.Appointment
	err := c.do(ctx, http.MethodPost, "/appointments", appt, &out)
	return out, err
}

// Update replaces the appointment with the same id.
func (c *Client) Update(ctx context.Context, appt model.Appointment) (model.Appointment, error) {
	var out model.Appointment
	err := c.do(ctx, http.MethodPut, "/appointments", appt, &out)
	return out, err
}

// Delete removes an appointment by id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/appointments", map[string]string{"id": id}, nil)
}

// Workers returns the roster in column order.
func (c *Client) Workers(ctx context.Context) ([]string, error) {
	var workers []model.Worker
	if err := c.do(ctx, http.MethodGet, "/workers", nil, &workers); err != nil {
		return nil, err
	}
	return workerNames(workers), nil
}

// ReorderWorkers moves a worker column and returns the new order.
func (c *Client) ReorderWorkers(ctx context.Context, move store.Move) ([]string, error) {
	var workers []model.Worker
	if err := c.do(ctx, http.MethodPost, "/workers/reorder", move, &workers); err != nil {
		return nil, err
	}
	return workerNames(workers), nil
}

func workerNames(workers []model.Worker) []string {
	names := make([]string, len(workers))
	for i, w := range workers {
		names[i] = w.Name
	}
	return names
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request payload: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &e) != nil || e.Message == "" {
			e.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal api response: %w", err)
	}
	return nil
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
