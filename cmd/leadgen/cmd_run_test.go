package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newGatewayStub returns a server that accepts one submission and streams
// the canned events for it.
func newGatewayStub(t *testing.T, events string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/messages", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding submission: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"task_id": "task-run-1"}`)
	})
	mux.HandleFunc("GET /api/v1/tasks/{id}/events", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, events)
		w.(http.Flusher).Flush()
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunCommandStreamsAndSaves(t *testing.T) {
	events := "event: status_update\n" +
		`data: {"task_id": "task-run-1", "status": {"message": {"content": [{"text": "Searching for businesses."}]}}}` + "\n\n" +
		"event: final_response\n" +
		`data: {"task_id": "task-run-1", "status": {"message": {"content": [{"text": "Found 3 leads."}]}}}` + "\n\n"
	srv := newGatewayStub(t, events)
	dir := t.TempDir()

	out, err := runCommand(t,
		"run",
		"--type", "web developer",
		"--location", "Ottawa, ON",
		"--service", "SEO",
		"--count", "3",
		"--gateway", srv.URL,
		"-o", dir,
	)
	require.NoError(t, err)

	assert.Contains(t, out, "Searching for businesses.")
	assert.Contains(t, out, "Found 3 leads.")
	assert.Contains(t, out, "Transcript saved to:")

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, files[0].Name(), "task-run-1")
}

func TestRunCommandCompressedTranscript(t *testing.T) {
	events := "event: final_response\n" +
		`data: {"task_id": "task-run-1", "status": {"message": {"content": [{"text": "Done."}]}}}` + "\n\n"
	srv := newGatewayStub(t, events)
	dir := t.TempDir()

	_, err := runCommand(t,
		"run",
		"--type", "web developer",
		"--location", "Ottawa, ON",
		"--service", "SEO",
		"--gateway", srv.URL,
		"-o", dir,
		"--compress",
	)
	require.NoError(t, err)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, ".gz", filepath.Ext(files[0].Name()))
}

func TestRunCommandNoSave(t *testing.T) {
	events := "event: final_response\n" +
		`data: {"task_id": "task-run-1", "status": {"message": {"content": [{"text": "Done."}]}}}` + "\n\n"
	srv := newGatewayStub(t, events)
	dir := t.TempDir()

	out, err := runCommand(t,
		"run",
		"--type", "web developer",
		"--location", "Ottawa, ON",
		"--service", "SEO",
		"--gateway", srv.URL,
		"-o", dir,
		"--no-save",
	)
	require.NoError(t, err)
	assert.NotContains(t, out, "Transcript saved to:")

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestRunCommandTaskFailure(t *testing.T) {
	// Stream ends without a final response.
	events := "event: status_update\n" +
		`data: {"task_id": "task-run-1", "status": {"message": {"content": [{"text": "Working."}]}}}` + "\n\n"
	srv := newGatewayStub(t, events)

	_, err := runCommand(t,
		"run",
		"--type", "web developer",
		"--location", "Ottawa, ON",
		"--service", "SEO",
		"--gateway", srv.URL,
		"--no-save",
	)
	require.Error(t, err)
	assert.IsType(t, &TaskFailureError{}, err)
}

func TestRunCommandSubmitFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	_, err := runCommand(t,
		"run",
		"--type", "web developer",
		"--location", "Ottawa, ON",
		"--service", "SEO",
		"--gateway", srv.URL,
		"--no-save",
	)
	require.Error(t, err)
	assert.IsNotType(t, &TaskFailureError{}, err)
	assert.Contains(t, err.Error(), "503")
}

func TestRunCommandInvalidFlags(t *testing.T) {
	_, err := runCommand(t,
		"run",
		"--type", "web developer",
		"--location", "Ottawa, ON",
		"--service", "SEO",
		"--count", "0",
		"--no-save",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid lead request")
}
