// Package gateway is the HTTP/SSE client for the agent-mesh gateway. It
// submits lead-generation tasks and consumes the per-task event stream,
// turning loosely structured gateway events into an ordered, append-only
// transcript.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/leadmesh/leadgen/internal/lead"
)

// DefaultAgent is the orchestrating agent tasks are routed to when the
// configuration does not name one.
const DefaultAgent = "lead_generation_orchestrator"

// Doer abstracts the HTTP transport so tests can substitute one.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the agent gateway.
type Client struct {
	baseURL     string
	agent       string
	httpc       Doer
	logger      *slog.Logger
	newID       IDGenerator
	now         func() time.Time
	idleTimeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the HTTP transport.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) { c.httpc = d }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithIDGenerator substitutes the identifier generator (deterministic IDs
// in tests).
func WithIDGenerator(gen IDGenerator) Option {
	return func(c *Client) { c.newID = gen }
}

// WithClock substitutes the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithIdleTimeout bounds the gap between consecutive stream events. Zero
// disables the timeout; expiry counts as a transport failure.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *Client) { c.idleTimeout = d }
}

// NewClient creates a gateway client for the given base URL, routing tasks
// to the named orchestrating agent.
func NewClient(baseURL, agent string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		agent:   agent,
		httpc:   &http.Client{},
		logger:  slog.Default(),
		newID:   NewUUID,
		now:     time.Now,
	}
	if c.agent == "" {
		c.agent = DefaultAgent
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// submitRequest is the wire form of a task submission.
type submitRequest struct {
	Message submitMessage `json:"message"`
	Agent   string        `json:"agent_name"`
	Stream  bool          `json:"stream"`
}

type submitMessage struct {
	ID      string              `json:"id"`
	Role    string              `json:"role"`
	Content []map[string]string `json:"content"`
}

type submitResponse struct {
	TaskID string `json:"task_id"`
}

// Submit POSTs a lead-generation request to the gateway and returns the
// task handle used to subscribe to its event stream. A non-success HTTP
// status surfaces synchronously as an error carrying the status text; no
// stream is ever opened for a failed submission.
func (c *Client) Submit(ctx context.Context, req lead.Request) (string, error) {
	body := submitRequest{
		Message: submitMessage{
			ID:   c.newID(),
			Role: "user",
			Content: []map[string]string{
				{"type": "text", "text": req.Prompt()},
			},
		},
		Agent:  c.agent,
		Stream: true,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encoding submission: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/messages", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("building submission request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("submitting lead request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("submitting lead request: gateway returned %s", resp.Status)
	}

	var sr submitResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&sr); err != nil {
		return "", fmt.Errorf("decoding submission response: %w", err)
	}
	if sr.TaskID == "" {
		return "", fmt.Errorf("gateway returned an empty task id")
	}

	c.logger.Debug("lead request submitted", "task_id", sr.TaskID, "agent", c.agent)
	return sr.TaskID, nil
}

// eventsURL builds the per-task subscription address.
func (c *Client) eventsURL(taskID string) string {
	return c.baseURL + "/api/v1/tasks/" + taskID + "/events"
}
