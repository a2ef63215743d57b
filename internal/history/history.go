// Package history keeps the append-only log of toolkit invocations in a
// JSON-lines file under the toolkit home directory.
package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tkerrors "github.com/FocuswithJustin/DevToolkit/core/errors"
	"github.com/FocuswithJustin/DevToolkit/internal/validation"
)

// FileName is the name of the history log inside the history directory.
const FileName = "history.jsonl"

// DefaultLimit is the number of entries shown by "recent show".
const DefaultLimit = 10

// Entry statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusPartial = "partial"
)

// ErrInvalidLimit is returned by Recent for a limit below 1.
var ErrInvalidLimit = tkerrors.NewValidation("", "limit must be >= 1")

// Entry is one recorded invocation.
type Entry struct {
	Timestamp string `json:"timestamp"`
	Command   string `json:"command"`
	Status    string `json:"status"`
	Details   string `json:"details"`
}

// String renders the entry as shown by "recent show".
func (e Entry) String() string {
	return fmt.Sprintf("%s | %s | %s | %s", e.Timestamp, e.Command, e.Status, e.Details)
}

// Manager appends to and reads from a history log.
type Manager struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// Open prepares dir and creates an empty history log if none exists.
func Open(dir string) (*Manager, error) {
	abs, err := validation.EnsureDir(dir)
	if err != nil {
		return nil, tkerrors.NewIO("create", dir, err)
	}
	path := filepath.Join(abs, FileName)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, tkerrors.NewIO("create", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, tkerrors.NewIO("create", path, err)
	}
	return &Manager{path: path, now: time.Now}, nil
}

// Path returns the location of the history log.
func (m *Manager) Path() string {
	return m.path
}

// Add appends one entry stamped with the current UTC time. Fields are
// trimmed of surrounding whitespace.
func (m *Manager) Add(command, status, details string) error {
	entry := Entry{
		Timestamp: m.now().UTC().Format(time.RFC3339),
		Command:   strings.TrimSpace(command),
		Status:    strings.TrimSpace(status),
		Details:   strings.TrimSpace(details),
	}
	line, err := encodeLine(entry)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := os.OpenFile(m.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return tkerrors.NewIO("open", m.path, err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return tkerrors.NewIO("append", m.path, err)
	}
	if err := f.Close(); err != nil {
		return tkerrors.NewIO("close", m.path, err)
	}
	return nil
}

// Recent returns up to limit entries from the end of the log, oldest first.
// The window is taken over raw lines, so blank or malformed lines inside it
// reduce the number of entries returned.
func (m *Manager) Recent(limit int) ([]Entry, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	lines, err := m.lines()
	if err != nil {
		return nil, err
	}
	if len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return parseLines(lines), nil
}

// All returns every readable entry in file order.
func (m *Manager) All() ([]Entry, error) {
	lines, err := m.lines()
	if err != nil {
		return nil, err
	}
	return parseLines(lines), nil
}

// Clear truncates the log.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.WriteFile(m.path, nil, 0644); err != nil {
		return tkerrors.NewIO("truncate", m.path, err)
	}
	return nil
}

func (m *Manager) lines() ([][]byte, error) {
	m.mu.Lock()
	data, err := os.ReadFile(m.path)
	m.mu.Unlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, tkerrors.NewIO("read", m.path, err)
	}

	data = bytes.TrimSuffix(data, []byte("\n"))
	if len(data) == 0 {
		return nil, nil
	}
	return bytes.Split(data, []byte("\n")), nil
}

func parseLines(lines [][]byte) []Entry {
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var fields map[string]any
		if err := json.Unmarshal(line, &fields); err != nil {
			continue
		}
		entries = append(entries, Entry{
			Timestamp: field(fields, "timestamp"),
			Command:   field(fields, "command"),
			Status:    field(fields, "status"),
			Details:   field(fields, "details"),
		})
	}
	return entries
}

// field renders a decoded JSON value as text. Missing and null values are
// empty.
func field(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func encodeLine(e Entry) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return nil, fmt.Errorf("encoding history entry: %w", err)
	}
	return buf.Bytes(), nil
}
