// Package transcript persists completed task transcripts to the results
// directory, as plain JSON or gzip-compressed archives.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/leadmesh/leadgen/internal/gateway"
	"github.com/leadmesh/leadgen/internal/lead"
)

// Record is the persisted form of one task's run.
type Record struct {
	TaskID      string          `json:"task_id"`
	Request     lead.Request    `json:"request"`
	Complete    bool            `json:"complete"`
	ErrorMsg    string          `json:"error,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt time.Time       `json:"completed_at"`
	Entries     []gateway.Entry `json:"entries"`
}

// unsafeChars matches characters that are unsafe in filenames.
var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func sanitizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	s = unsafeChars.ReplaceAllString(s, "")
	if s == "" {
		s = "unnamed"
	}
	return s
}

// Filename returns the transcript filename for a task.
func Filename(taskID string, ts time.Time) string {
	return fmt.Sprintf("%s-%s.json", sanitizeName(taskID), ts.Format("20060102-150405"))
}

// Write serializes a Record and writes it to dir, returning the full path.
func Write(dir string, rec *Record) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}

	name := Filename(rec.TaskID, rec.StartedAt)
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal transcript: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}

	return path, nil
}

// WriteArchive writes a gzip-compressed Record to dir, returning the path.
func WriteArchive(dir string, rec *Record) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}

	path := filepath.Join(dir, Filename(rec.TaskID, rec.StartedAt)+".gz")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer f.Close() //nolint:errcheck

	zw := gzip.NewWriter(f)
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return "", fmt.Errorf("marshal transcript: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("finish archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write archive: %w", err)
	}

	return path, nil
}

// Read loads a Record from path, transparently decompressing .gz archives.
func Read(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close() //nolint:errcheck

	var rec Record
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open archive: %w", err)
		}
		defer zr.Close() //nolint:errcheck
		if err := json.NewDecoder(zr).Decode(&rec); err != nil {
			return nil, fmt.Errorf("parse transcript: %w", err)
		}
		return &rec, nil
	}

	if err := json.NewDecoder(f).Decode(&rec); err != nil {
		return nil, fmt.Errorf("parse transcript: %w", err)
	}
	return &rec, nil
}

// List returns the transcript files in dir, most recently written first.
// A missing dir is treated as empty.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read results dir: %w", err)
	}

	type file struct {
		name string
		mod  time.Time
	}
	var files []file
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(e.Name(), ".json") && !strings.HasSuffix(e.Name(), ".json.gz") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, file{name: e.Name(), mod: info.ModTime()})
	}

	// Filenames embed the start timestamp after the task ID, so they break
	// ties but cannot order across tasks; mtime can.
	sort.Slice(files, func(i, j int) bool {
		if files[i].mod.Equal(files[j].mod) {
			return files[i].name > files[j].name
		}
		return files[i].mod.After(files[j].mod)
	})

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.name
	}
	return names, nil
}
