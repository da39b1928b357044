package gateway

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Named event categories delivered on the task event stream.
const (
	EventStatusUpdate  = "status_update"
	EventFinalResponse = "final_response"
	EventError         = "error"
)

// FileRef describes a file artifact referenced, but not embedded, in a
// gateway event.
type FileRef struct {
	Filename string `mapstructure:"filename" json:"filename"`
	MimeType string `mapstructure:"mime_type" json:"mime_type"`
}

// IsJSON reports whether the declared MIME type indicates a JSON document.
func (f FileRef) IsJSON() bool {
	mt := strings.ToLower(strings.TrimSpace(f.MimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// contentPart is one entry of the loosely typed content list nested inside a
// gateway envelope. A part carries either inline text or a file descriptor;
// unknown shapes decode to neither and are skipped.
type contentPart struct {
	Text *string  `mapstructure:"text"`
	File *FileRef `mapstructure:"file"`
}

// envelope is the recognized shape of status_update and final_response
// payloads: a nested status/message/content list. The error field appears
// on gateway-signaled error payloads.
type envelope struct {
	TaskID string `mapstructure:"task_id"`
	Status struct {
		Message struct {
			Content []contentPart `mapstructure:"content"`
		} `mapstructure:"message"`
	} `mapstructure:"status"`
	Error string `mapstructure:"error"`
}

// parseEnvelope decodes a raw event payload into the recognized envelope
// shape. Failures are returned, never thrown past the per-event boundary;
// callers log and skip the event.
func parseEnvelope(data []byte) (*envelope, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing event payload: %w", err)
	}

	var env envelope
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: &env,
	})
	if err != nil {
		return nil, fmt.Errorf("building envelope decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding event envelope: %w", err)
	}
	return &env, nil
}

// texts returns the inline text fragments of the content list, in order.
// Parts without a text field contribute nothing here.
func (e *envelope) texts() []string {
	var out []string
	for _, p := range e.Status.Message.Content {
		if p.Text != nil && *p.Text != "" {
			out = append(out, *p.Text)
		}
	}
	return out
}

// files returns the file-artifact descriptors of the content list, in order.
func (e *envelope) files() []FileRef {
	var out []FileRef
	for _, p := range e.Status.Message.Content {
		if p.File != nil && p.File.Filename != "" {
			out = append(out, *p.File)
		}
	}
	return out
}
