package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/leadmesh/leadgen/internal/sse"
)

// ConnState tracks the lifecycle of a subscription's underlying connection.
// The state only ever moves forward: connecting, open, closed. A closed
// subscription never reopens; a fresh task handle gets a fresh subscription.
type ConnState int

const (
	StateConnecting ConnState = iota
	StateOpen
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("ConnState(%d)", int(s))
	}
}

// Subscription consumes the event stream of a single task and maintains the
// transcript derived from it. All event handling happens on one goroutine,
// so entries are appended strictly in arrival order; callers observe state
// only through snapshots and the update notification channel.
type Subscription struct {
	taskID string
	client *Client

	cancel    context.CancelFunc
	closeOnce sync.Once
	done      chan struct{}

	transcript Transcript

	mu           sync.Mutex
	watchers     []chan struct{}
	state        ConnState
	complete     bool
	errMsg       string
	closedByUser bool
}

// Subscribe opens a long-lived subscription to the task's event stream.
// The connection is established asynchronously; connection failures surface
// through the subscription's error state, never as a panic or a returned
// error. The subscription lives until the stream ends or Close is called,
// or until ctx is cancelled.
func (c *Client) Subscribe(ctx context.Context, taskID string) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		taskID: taskID,
		client: c,
		cancel: cancel,
		done:   make(chan struct{}),
		state:  StateConnecting,
	}
	go s.run(ctx)
	return s
}

// TaskID returns the task handle this subscription belongs to.
func (s *Subscription) TaskID() string { return s.taskID }

// State returns the current connection state.
func (s *Subscription) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Complete reports whether a final response has been received.
func (s *Subscription) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete
}

// ErrorMessage returns the current error state, or "" when none is set.
// Stream-level failures are last-write-wins; there is no error queue.
func (s *Subscription) ErrorMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Snapshot returns the transcript entries received so far, in arrival order.
func (s *Subscription) Snapshot() []Entry {
	return s.transcript.Snapshot()
}

// Updates registers a new watcher and returns its notification channel. The
// channel receives a (coalesced) signal whenever the transcript, completion
// flag, error state, or connection state changes. Each watcher gets its own
// channel so several renderers can follow one task; call once per watcher
// and hold the result.
func (s *Subscription) Updates() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.watchers = append(s.watchers, ch)
	s.mu.Unlock()
	return ch
}

// Done returns a channel closed once the stream has fully shut down.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Close tears down the subscription and releases the underlying connection.
// It is idempotent and safe to call at any time, including before the
// connection has finished opening or after the stream already ended.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closedByUser = true
		s.mu.Unlock()
		s.cancel()
	})
}

// run owns the connection: it dials the stream, then handles events one at
// a time until the transport fails or the subscription is torn down.
func (s *Subscription) run(ctx context.Context) {
	defer close(s.done)
	defer s.setClosed()
	defer s.cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.client.eventsURL(s.taskID), nil)
	if err != nil {
		s.transportError(err)
		return
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.client.httpc.Do(req)
	if err != nil {
		s.transportError(err)
		return
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		s.transportError(fmt.Errorf("gateway returned %s", resp.Status))
		return
	}

	s.setState(StateOpen)
	s.client.logger.Debug("event stream open", "task_id", s.taskID)

	// The idle watchdog aborts the blocked read by cancelling the request
	// context when no event arrives within the configured window.
	var watchdog *time.Timer
	if s.client.idleTimeout > 0 {
		watchdog = time.AfterFunc(s.client.idleTimeout, s.cancel)
		defer watchdog.Stop()
	}

	r := sse.NewReader(resp.Body)
	for {
		evt, err := r.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = errors.New("event stream closed by gateway")
			}
			s.transportError(err)
			return
		}
		if watchdog != nil {
			watchdog.Reset(s.client.idleTimeout)
		}
		s.handleEvent(evt)
	}
}

// handleEvent classifies one event and updates the transcript. A malformed
// payload never aborts the subscription: the failure is logged and the
// stream keeps going.
func (s *Subscription) handleEvent(evt sse.Event) {
	switch evt.Name {
	case EventStatusUpdate:
		s.handleMessage(evt.Data, KindStatus)

	case EventFinalResponse:
		env := s.handleMessage(evt.Data, KindFinal)
		if env == nil {
			return
		}
		for _, f := range env.files() {
			if f.IsJSON() {
				s.append(fmt.Sprintf("Lead generation complete. The results file `%s` is ready on the gateway.", f.Filename), KindFinal)
				break
			}
		}
		s.setComplete()

	case EventError:
		s.handleGatewayError(evt.Data)

	default:
		s.client.logger.Debug("ignoring unrecognized event", "task_id", s.taskID, "event", evt.Name)
	}
}

// handleMessage parses the payload and appends at most one entry built from
// its text fragments. It returns the parsed envelope, or nil when the
// payload was malformed.
func (s *Subscription) handleMessage(data []byte, kind Kind) *envelope {
	env, err := parseEnvelope(data)
	if err != nil {
		s.client.logger.Warn("skipping malformed event", "task_id", s.taskID, "kind", kind, "error", err)
		return nil
	}
	if texts := env.texts(); len(texts) > 0 {
		s.append(strings.Join(texts, "\n\n"), kind)
	}
	return env
}

// handleGatewayError surfaces a gateway-signaled application error. The
// message becomes the current error state and is also recorded in the
// transcript; the connection itself stays open since the gateway may still
// deliver further events.
func (s *Subscription) handleGatewayError(data []byte) {
	msg := "the gateway reported an error"
	if len(data) > 0 {
		if env, err := parseEnvelope(data); err == nil && env.Error != "" {
			msg = env.Error
		}
	}

	s.mu.Lock()
	s.errMsg = msg
	s.mu.Unlock()

	s.client.logger.Warn("gateway error", "task_id", s.taskID, "message", msg)
	s.append(msg, KindError)
}

// transportError records a stream-fatal failure. A drop after completion,
// or one caused by our own teardown, is an expected disconnect and must not
// surface as a user-visible error.
func (s *Subscription) transportError(err error) {
	s.mu.Lock()
	expected := s.complete || s.closedByUser
	if !expected {
		s.errMsg = "connection lost: " + err.Error()
	}
	s.mu.Unlock()

	if expected {
		s.client.logger.Debug("event stream closed", "task_id", s.taskID, "reason", err)
		return
	}
	s.client.logger.Warn("event stream failed", "task_id", s.taskID, "error", err)
	s.notify()
}

func (s *Subscription) append(content string, kind Kind) {
	s.transcript.Append(Entry{
		ID:        s.client.newID(),
		Content:   content,
		Timestamp: s.client.now(),
		Kind:      kind,
	})
	s.notify()
}

func (s *Subscription) setComplete() {
	s.mu.Lock()
	already := s.complete
	s.complete = true
	s.mu.Unlock()
	if !already {
		s.notify()
	}
}

func (s *Subscription) setState(st ConnState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.notify()
}

func (s *Subscription) setClosed() {
	s.setState(StateClosed)
}

// notify signals every registered watcher. Signals are coalesced per
// watcher; a slow reader sees at most one pending signal and re-reads state
// via Snapshot.
func (s *Subscription) notify() {
	s.mu.Lock()
	watchers := make([]chan struct{}, len(s.watchers))
	copy(watchers, s.watchers)
	s.mu.Unlock()

	for _, ch := range watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
