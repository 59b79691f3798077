// Package client provides an HTTP client for the srsbot server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/raphaelgruber/srsbot/internal/metrics"
)

// ErrNotFound is returned when the server does not know a document.
var ErrNotFound = errors.New("document not found")

// sessionHeader mirrors the header the server reads the session id from.
const sessionHeader = "X-Session-ID"

// Client talks to a running srsbot server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new client.
// If baseURL is empty, uses SRSBOT_SERVER_URL or defaults to localhost:8484.
// Timeout can be configured via SRSBOT_CLIENT_TIMEOUT (default 5m, chat turns wait on the model).
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("SRSBOT_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8484"
	}

	timeout := 5 * time.Minute
	if t := os.Getenv("SRSBOT_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

// NewWithHTTPClient creates a client using hc for transport.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
	}
}

// BaseURL returns the server address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError is a non-2xx reply from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
}

// ChatReply is the server's answer to one chat turn.
type ChatReply struct {
	Response   string `json:"response"`
	SessionID  string `json:"session_id"`
	DocumentID string `json:"document_id,omitempty"`
}

// Chat sends message in sessionID and returns the assistant reply.
func (c *Client) Chat(ctx context.Context, sessionID, message string) (*ChatReply, error) {
	body, err := json.Marshal(map[string]string{"message": message, "session_id": sessionID})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/chat", body, func(req *http.Request) {
		req.Header.Set(sessionHeader, sessionID)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var reply ChatReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &reply, nil
}

// DownloadDocument streams the .docx for document id into w and returns the
// number of bytes written.
func (c *Client) DownloadDocument(ctx context.Context, id string, w io.Writer) (int64, error) {
	resp, err := c.do(ctx, http.MethodGet, "/create_document/"+id, nil, nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("read document: %w", err)
	}
	return n, nil
}

// ExportChat posts an HTML transcript and streams the returned attachment into w.
func (c *Client) ExportChat(ctx context.Context, content string, w io.Writer) (int64, error) {
	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/export-chat", body, nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("read export: %w", err)
	}
	return n, nil
}

// Stats returns the server's runtime statistics.
func (c *Client) Stats(ctx context.Context) (*metrics.Snapshot, error) {
	resp, err := c.do(ctx, http.MethodGet, "/stats", nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var snap metrics.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	return &snap, nil
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/health", nil, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// do sends a request and returns the response when the status is 2xx.
// Other statuses are returned as *APIError with the server's message.
func (c *Client) do(ctx context.Context, method, path string, body []byte, edit func(*http.Request)) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if edit != nil {
		edit(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}

	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &e) == nil && e.Error != "" {
		apiErr.Message = e.Error
	}
	return nil, apiErr
}
