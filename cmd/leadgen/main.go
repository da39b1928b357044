package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0 // Lead generation completed
	ExitTaskFailed = 1 // The gateway task failed or the stream was lost
	ExitError      = 2 // Configuration or runtime error
)

// TaskFailureError indicates that the request was submitted successfully,
// but the gateway task did not finish cleanly.
type TaskFailureError struct {
	Message string
}

func (e *TaskFailureError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		// Check error type to determine exit code
		var taskErr *TaskFailureError
		if errors.As(err, &taskErr) {
			os.Exit(ExitTaskFailed)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
