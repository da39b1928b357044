package webapi

import "time"

// SubmitResponse is returned after a successful task submission.
type SubmitResponse struct {
	TaskID string `json:"taskId"`
}

// EntryResponse is one transcript entry in API responses.
type EntryResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Content   string    `json:"content"`
	HTML      string    `json:"html"`
	Timestamp time.Time `json:"timestamp"`
}

// TaskResponse is the snapshot of one task's progress.
type TaskResponse struct {
	TaskID   string          `json:"taskId"`
	State    string          `json:"state"`
	Complete bool            `json:"complete"`
	Error    string          `json:"error,omitempty"`
	Entries  []EntryResponse `json:"entries"`
}

// StateResponse is pushed on the stream endpoint whenever the task's
// completion flag, error state, or connection state changes.
type StateResponse struct {
	State    string `json:"state"`
	Complete bool   `json:"complete"`
	Error    string `json:"error,omitempty"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is returned for errors. Details carries per-field
// validation messages when a submission fails schema validation.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    int      `json:"code"`
	Details []string `json:"details,omitempty"`
}
