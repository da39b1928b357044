package webapi

import (
	"context"
	"sync"

	"github.com/leadmesh/leadgen/internal/gateway"
	"github.com/leadmesh/leadgen/internal/lead"
)

// Task is the read surface the handlers need for one active task. It is
// satisfied by *gateway.Subscription.
type Task interface {
	TaskID() string
	State() gateway.ConnState
	Complete() bool
	ErrorMessage() string
	Snapshot() []gateway.Entry
	Updates() <-chan struct{}
	Done() <-chan struct{}
}

// LeadStore submits lead requests and tracks their active subscriptions.
type LeadStore interface {
	// Submit sends the request to the gateway and opens a subscription
	// for the returned task handle.
	Submit(ctx context.Context, req lead.Request) (string, error)
	// Get returns the task for a handle, if one is tracked.
	Get(id string) (Task, bool)
}

// Store is the in-memory LeadStore backed by a gateway client. Each task
// handle owns exactly one subscription; subscriptions outlive the submitting
// HTTP request so browsers can reconnect to the stream endpoint.
type Store struct {
	client *gateway.Client

	mu    sync.RWMutex
	tasks map[string]*gateway.Subscription
}

// NewStore creates a Store that submits through client.
func NewStore(client *gateway.Client) *Store {
	return &Store{
		client: client,
		tasks:  make(map[string]*gateway.Subscription),
	}
}

// Submit sends the request to the gateway and starts consuming the task's
// event stream. The subscription is detached from ctx: it belongs to the
// store, not to the submitting request.
func (s *Store) Submit(ctx context.Context, req lead.Request) (string, error) {
	taskID, err := s.client.Submit(ctx, req)
	if err != nil {
		return "", err
	}

	sub := s.client.Subscribe(context.Background(), taskID)

	s.mu.Lock()
	s.tasks[taskID] = sub
	s.mu.Unlock()

	return taskID, nil
}

// Get returns the task for a handle.
func (s *Store) Get(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.tasks[id]
	if !ok {
		return nil, false
	}
	return sub, true
}

// Close tears down every tracked subscription. Safe to call more than once.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.tasks {
		sub.Close()
	}
}

// Ensure Store satisfies LeadStore.
var _ LeadStore = (*Store)(nil)
