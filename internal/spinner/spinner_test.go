package spinner

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// syncBuffer guards writes because the spinner animates from its own
// goroutine.
type syncBuffer struct {
	mu sync.Mutex
	sb strings.Builder
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.String()
}

func TestSpinnerWritesFramesAndClears(t *testing.T) {
	buf := &syncBuffer{}

	s := Start(buf, "working")
	time.Sleep(250 * time.Millisecond)
	s.Stop()

	out := buf.String()
	assert.Contains(t, out, "working")
	assert.True(t, strings.HasSuffix(out, "\r"), "expected line to be cleared")
}

func TestSpinnerSetMessage(t *testing.T) {
	buf := &syncBuffer{}

	s := Start(buf, "submitting")
	time.Sleep(150 * time.Millisecond)
	s.SetMessage("streaming")
	time.Sleep(150 * time.Millisecond)
	s.Stop()

	out := buf.String()
	assert.Contains(t, out, "submitting")
	assert.Contains(t, out, "streaming")
}

func TestSpinnerStopIdempotent(t *testing.T) {
	buf := &syncBuffer{}

	s := Start(buf, "working")
	s.Stop()
	s.Stop()
}
