package tasksdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client is a minimal Task Tracker HTTP API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// Task is the API task model.
type Task struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// TaskResult is returned by create and update.
type TaskResult struct {
	Message string `json:"message"`
	Task    Task   `json:"task"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Detail     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error: status=%d detail=%s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Detail returns the server's detail message for API errors, or err.Error().
func Detail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return err.Error()
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, id int, title string, done bool) (TaskResult, error) {
	body := map[string]any{
		"id":    id,
		"title": title,
		"done":  done,
	}
	var resp TaskResult
	err := c.do(ctx, http.MethodPost, "tasks", body, &resp)
	return resp, err
}

// ListTasks returns every task in insertion order.
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	resp := []Task{}
	err := c.do(ctx, http.MethodGet, "tasks", nil, &resp)
	return resp, err
}

// SetDone sets the done flag of a task.
func (c *Client) SetDone(ctx context.Context, id int, done bool) (TaskResult, error) {
	var resp TaskResult
	endpoint := fmt.Sprintf("tasks/%d?done=%s", id, strconv.FormatBool(done))
	err := c.do(ctx, http.MethodPut, endpoint, nil, &resp)
	return resp, err
}

// DeleteTask removes a task and returns the server's confirmation message.
func (c *Client) DeleteTask(ctx context.Context, id int) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("tasks/%d", id), nil, &resp)
	return resp.Message, err
}

// Health pings the health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "health", nil, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(b)}
		var envelope struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(b, &envelope) == nil {
			apiErr.Detail = envelope.Detail
		}
		return apiErr
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
