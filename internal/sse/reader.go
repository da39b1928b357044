// Package sse implements the subset of the Server-Sent-Events wire format
// used by the agent gateway: named events with one or more data lines,
// comment lines used as heartbeats, and blank-line dispatch.
package sse

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// Event is a single decoded SSE event.
type Event struct {
	// Name is the value of the "event:" field. Defaults to "message"
	// when the server omits it, per the SSE specification.
	Name string
	// Data is the concatenation of all "data:" lines, joined with "\n".
	Data []byte
	// ID is the value of the "id:" field, if any.
	ID string
}

// Reader decodes events from an SSE byte stream.
//
// Reader is pull-based: each call to Next blocks until a complete event has
// been received or the underlying stream fails. Heartbeat comments and
// unknown fields are skipped silently.
type Reader struct {
	scanner *bufio.Scanner
}

// maxLineSize bounds a single SSE line. Gateway payloads are JSON envelopes
// of at most a few hundred KB; 1 MiB leaves generous headroom.
const maxLineSize = 1 << 20

// NewReader returns a Reader decoding events from r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{scanner: sc}
}

// Next returns the next complete event from the stream. It returns io.EOF
// when the server closes the connection cleanly, or the transport error
// otherwise. A trailing event not terminated by a blank line is still
// delivered before io.EOF.
func (r *Reader) Next() (Event, error) {
	evt := Event{}
	var data [][]byte
	dirty := false

	for r.scanner.Scan() {
		line := r.scanner.Bytes()

		// Blank line dispatches the accumulated event.
		if len(bytes.TrimSpace(line)) == 0 {
			if !dirty {
				continue
			}
			return finish(evt, data), nil
		}

		// Comment lines (heartbeats) are ignored.
		if line[0] == ':' {
			continue
		}

		field, value := splitField(line)
		switch field {
		case "event":
			evt.Name = value
			dirty = true
		case "data":
			data = append(data, []byte(value))
			dirty = true
		case "id":
			evt.ID = value
			dirty = true
		default:
			// Unknown fields (e.g. "retry") are skipped.
		}
	}

	if err := r.scanner.Err(); err != nil {
		return Event{}, err
	}
	if dirty {
		return finish(evt, data), nil
	}
	return Event{}, io.EOF
}

// splitField splits "field: value", trimming the single optional space
// after the colon as the SSE format requires.
func splitField(line []byte) (field, value string) {
	s := string(line)
	i := strings.IndexByte(s, ':')
	if i < 0 {
		return s, ""
	}
	field = s[:i]
	value = s[i+1:]
	value = strings.TrimPrefix(value, " ")
	return field, value
}

func finish(evt Event, data [][]byte) Event {
	if evt.Name == "" {
		evt.Name = "message"
	}
	evt.Data = bytes.Join(data, []byte("\n"))
	return evt
}
