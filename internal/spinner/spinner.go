// Package spinner renders a single-line progress indicator for long-running
// gateway tasks.
package spinner

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const frameInterval = 80 * time.Millisecond

// Spinner animates a message on one terminal line. The message can be
// swapped while the spinner runs, so callers can surface live progress.
type Spinner struct {
	w io.Writer

	mu      sync.Mutex
	message string
	width   int

	done     chan struct{}
	cleared  chan struct{}
	stopOnce sync.Once
}

// Start displays an animated spinner with the given message on w.
func Start(w io.Writer, message string) *Spinner {
	s := &Spinner{
		w:       w,
		message: message,
		done:    make(chan struct{}),
		cleared: make(chan struct{}),
	}
	go s.run()
	return s
}

// SetMessage replaces the spinner's message on the next frame.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop halts the animation and clears the line. Safe to call more than once.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
	<-s.cleared
}

func (s *Spinner) run() {
	i := 0
	for {
		select {
		case <-s.done:
			s.clear()
			close(s.cleared)
			return
		case <-time.After(frameInterval):
			s.mu.Lock()
			msg := s.message
			line := frames[i%len(frames)] + " " + msg
			width := runewidth.StringWidth(line)
			pad := s.width - width
			if pad < 0 {
				pad = 0
			}
			s.width = width
			s.mu.Unlock()

			// Pad with spaces so a shorter message fully overwrites the
			// previous frame.
			fmt.Fprintf(s.w, "\r%s%s", line, strings.Repeat(" ", pad)) //nolint:errcheck
			i++
		}
	}
}

func (s *Spinner) clear() {
	s.mu.Lock()
	width := s.width
	s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", width)) //nolint:errcheck
}
