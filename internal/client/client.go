// Package client talks to a running wdtable server: GraphQL queries, refresh
// jobs and job progress over WebSocket.
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
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/raphaelgruber/wdtable/internal/metrics"
)

// DefaultURL is the server address used when none is configured.
const DefaultURL = "http://localhost:8080"

// Client is an HTTP client for the wdtable server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the server at baseURL.
// If baseURL is empty, uses WDTABLE_SERVER_URL or defaults to localhost:8080.
// Timeout can be configured via WDTABLE_CLIENT_TIMEOUT (default 3m, uncached
// nuclide charts are slow).
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("WDTABLE_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = DefaultURL
	}

	timeout := 3 * time.Minute
	if t := os.Getenv("WDTABLE_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// graphQLRequest is the request payload for GraphQL operations.
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphQLResponse is the response payload from GraphQL operations.
type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors,omitempty"`
}

// graphQLError represents a GraphQL error.
type graphQLError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// Execute sends a GraphQL query and decodes its data into result.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any, result any) error {
	reqBody, err := json.Marshal(graphQLRequest{
		Query:     query,
		Variables: variables,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/query", bytes.NewReader(reqBody))
	if err != nil {
		return err
	}

	var gqlResp graphQLResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	if len(gqlResp.Errors) > 0 {
		return fmt.Errorf("graphql error: %s", gqlResp.Errors[0].Message)
	}

	if result != nil && len(gqlResp.Data) > 0 {
		if err := json.Unmarshal(gqlResp.Data, result); err != nil {
			return fmt.Errorf("unmarshal data: %w", err)
		}
	}

	return nil
}

// ErrNotFound is returned when the server answers 404.
var ErrNotFound = errors.New("not found")

// do executes a request against the server and returns the body of a
// successful response.
func (c *Client) do(ctx context.Context, method, path string, reqBody io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("server error: %s - %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// =============================================================================
// TYPES (matching the server's JSON and GraphQL schema)
// =============================================================================

// Element is a placed element as served by the GraphQL API.
type Element struct {
	ItemID  string   `json:"itemId"`
	Number  *int     `json:"number"`
	Symbol  *string  `json:"symbol"`
	Label   *string  `json:"label"`
	Period  *int     `json:"period"`
	Group   *int     `json:"group"`
	Special *int     `json:"special"`
	Classes []string `json:"classes"`
}

// Job is a snapshot refresh running on the server.
type Job struct {
	ID          string     `json:"id"`
	Lang        string     `json:"lang"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	Total       int        `json:"total"`
	Elements    int        `json:"elements"`
	Nuclides    int        `json:"nuclides"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Done reports whether the job has completed or failed.
func (j *Job) Done() bool {
	return j.Status == "completed" || j.Status == "failed"
}

// =============================================================================
// TABLE OPERATIONS
// =============================================================================

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil)
	return err
}

// Stats returns the server's in-memory runtime statistics.
func (c *Client) Stats(ctx context.Context) (*metrics.Snapshot, error) {
	body, err := c.do(ctx, http.MethodGet, "/stats", nil)
	if err != nil {
		return nil, err
	}

	var stats metrics.Snapshot
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("unmarshal stats: %w", err)
	}
	return &stats, nil
}

// Elements returns the placed elements with labels in lang. An empty lang
// leaves the choice to the server.
func (c *Client) Elements(ctx context.Context, lang string) ([]Element, error) {
	const query = `
		query Elements($lang: String) {
			elements(lang: $lang) {
				itemId number symbol label period group special classes
			}
		}
	`

	vars := map[string]any{}
	if lang != "" {
		vars["lang"] = lang
	}
	var result struct {
		Elements []Element `json:"elements"`
	}
	if err := c.Execute(ctx, query, vars, &result); err != nil {
		return nil, err
	}
	return result.Elements, nil
}

// =============================================================================
// JOB OPERATIONS
// =============================================================================

// StartRefresh asks the server to refresh its stored snapshot of lang.
func (c *Client) StartRefresh(ctx context.Context, lang string) (*Job, error) {
	path := "/refresh"
	if lang != "" {
		path += "?" + url.Values{"lang": {lang}}.Encode()
	}
	body, err := c.do(ctx, http.MethodPost, path, nil)
	if err != nil {
		return nil, err
	}

	var job Job
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return &job, nil
}

// ListJobs returns all refresh jobs, most recent first.
func (c *Client) ListJobs(ctx context.Context) ([]Job, error) {
	body, err := c.do(ctx, http.MethodGet, "/jobs", nil)
	if err != nil {
		return nil, err
	}

	var jobs []Job
	if err := json.Unmarshal(body, &jobs); err != nil {
		return nil, fmt.Errorf("unmarshal jobs: %w", err)
	}
	return jobs, nil
}

// GetJob retrieves a job by ID. It returns nil if the job does not exist.
func (c *Client) GetJob(ctx context.Context, id string) (*Job, error) {
	body, err := c.do(ctx, http.MethodGet, "/jobs/"+url.PathEscape(id), nil)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var job Job
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return &job, nil
}

// =============================================================================
// STREAMING OPERATIONS
// =============================================================================

// WatchJob streams the state of a job until it is done. onUpdate is invoked
// for each change. Return an error from onUpdate to abort.
func (c *Client) WatchJob(ctx context.Context, id string, onUpdate func(*Job) error) error {
	// Convert HTTP endpoint to WebSocket endpoint
	wsEndpoint := c.baseURL
	wsEndpoint = strings.Replace(wsEndpoint, "http://", "ws://", 1)
	wsEndpoint = strings.Replace(wsEndpoint, "https://", "wss://", 1)

	u, err := url.Parse(wsEndpoint + "/jobs/" + url.PathEscape(id) + "/watch")
	if err != nil {
		return fmt.Errorf("parse endpoint: %w", err)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("job %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("websocket connect: %w", err)
	}

	// Track connection state for proper cleanup
	var mu sync.Mutex
	closed := false
	closeConn := func() {
		mu.Lock()
		defer mu.Unlock()
		if !closed {
			closed = true
			conn.Close()
		}
	}
	defer closeConn()

	// Handle context cancellation in a separate goroutine
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			closeConn()
		case <-done:
		}
	}()

	// Read updates until the server closes the stream
	for {
		var job Job
		if err := conn.ReadJSON(&job); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			// Check if this was due to context cancellation
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read message: %w", err)
		}

		if err := onUpdate(&job); err != nil {
			return err
		}
	}
}
