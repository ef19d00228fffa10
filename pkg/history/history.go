// Package history keeps the bounded list of recent uploads shown by the clients.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultCapacity is the number of entries kept when none is specified.
const DefaultCapacity = 10

// Entry is one completed upload.
type Entry struct {
	CID       string    `json:"cid"`
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	Timestamp time.Time `json:"timestamp"`
}

// History is a fixed-capacity list of entries, newest first.
// Pushing onto a full history evicts the oldest entry.
type History struct {
	mu       sync.Mutex
	capacity int
	entries  []Entry // newest first
}

// New returns an empty history. A non-positive capacity selects DefaultCapacity.
func New(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{
		capacity: capacity,
		entries:  make([]Entry, 0, capacity),
	}
}

// Push records e as the most recent upload.
func (h *History) Push(e Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) == h.capacity {
		h.entries = h.entries[:h.capacity-1]
	}
	h.entries = append(h.entries, Entry{})
	copy(h.entries[1:], h.entries)
	h.entries[0] = e
}

// Entries returns a copy of the entries, newest first.
func (h *History) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of stored entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Capacity returns the maximum number of entries kept.
func (h *History) Capacity() int {
	return h.capacity
}

// Load replaces the entries with those stored at path. A missing file leaves the history empty.
// Stored entries beyond capacity are dropped, oldest first.
func (h *History) Load(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read history %s: %w", path, err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse history %s: %w", path, err)
	}
	if len(entries) > h.capacity {
		entries = entries[:h.capacity]
	}

	h.mu.Lock()
	h.entries = append(h.entries[:0], entries...)
	h.mu.Unlock()
	return nil
}

// Save writes the entries to path as JSON. The file is replaced atomically.
func (h *History) Save(path string) error {
	data, err := json.MarshalIndent(h.Entries(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".recent_uploads-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace history: %w", err)
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/pinner/recent_uploads.json, falling back to ~/.pinner/.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "pinner", "recent_uploads.json"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".pinner", "recent_uploads.json"), nil
}
