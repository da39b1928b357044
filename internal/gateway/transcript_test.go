package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTranscriptAppendOrder(t *testing.T) {
	var tr Transcript
	tr.Append(Entry{ID: "a", Content: "one", Kind: KindStatus})
	tr.Append(Entry{ID: "b", Content: "two", Kind: KindFinal})

	assert.Equal(t, 2, tr.Len())

	entries := tr.Snapshot()
	assert.Equal(t, "a", entries[0].ID)
	assert.Equal(t, "b", entries[1].ID)
}

func TestTranscriptSnapshotIsACopy(t *testing.T) {
	var tr Transcript
	tr.Append(Entry{ID: "a", Content: "one", Kind: KindStatus, Timestamp: time.Now()})

	snap := tr.Snapshot()
	snap[0].Content = "mutated"

	assert.Equal(t, "one", tr.Snapshot()[0].Content)
}

func TestTranscriptEmptySnapshot(t *testing.T) {
	var tr Transcript
	assert.Empty(t, tr.Snapshot())
	assert.Equal(t, 0, tr.Len())
}

func TestNewUUIDIsUnique(t *testing.T) {
	assert.NotEqual(t, NewUUID(), NewUUID())
}
