package webapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/leadmesh/leadgen/internal/gateway"
	"github.com/leadmesh/leadgen/internal/lead"
)

func TestStoreSubmitTracksTask(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/messages", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"task_id": "task-xyz"}`)
	})
	mux.HandleFunc("GET /api/v1/tasks/{id}/events", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: final_response\n")
		fmt.Fprint(w, `data: {"task_id": "task-xyz", "status": {"message": {"content": [{"text": "All done."}]}}}`+"\n\n")
		w.(http.Flusher).Flush()
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := NewStore(gateway.NewClient(srv.URL, ""))
	defer store.Close()

	taskID, err := store.Submit(context.Background(), lead.Request{
		FreelancerType: "web developer",
		Location:       "Ottawa, ON",
		Services:       []string{"SEO"},
		LeadCount:      3,
	})
	require.NoError(t, err)
	require.Equal(t, "task-xyz", taskID)

	task, ok := store.Get(taskID)
	require.True(t, ok)
	require.Equal(t, "task-xyz", task.TaskID())

	select {
	case <-task.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for subscription to finish")
	}
	require.True(t, task.Complete())

	entries := task.Snapshot()
	require.Len(t, entries, 1)
	require.Equal(t, "All done.", entries[0].Content)

	_, ok = store.Get("unknown")
	require.False(t, ok)
}

func TestStoreSubmitGatewayFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := NewStore(gateway.NewClient(srv.URL, ""))
	defer store.Close()

	_, err := store.Submit(context.Background(), lead.Request{})
	require.Error(t, err)
}

func TestStoreCloseIdempotent(t *testing.T) {
	store := NewStore(gateway.NewClient("http://localhost:0", ""))
	store.Close()
	store.Close()
}
