package testutil

import (
	"context"
	"log/slog"
	"sync"
)

// LogEntry is a captured log record.
type LogEntry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]string
}

// LogRecorder is a slog.Handler that keeps every record it receives.
type LogRecorder struct {
	mu      sync.Mutex
	entries []LogEntry
	attrs   []slog.Attr
	parent  *LogRecorder
}

// NewLogger returns a logger writing into a fresh recorder.
func NewLogger() (*slog.Logger, *LogRecorder) {
	rec := &LogRecorder{}
	return slog.New(rec), rec
}

func (h *LogRecorder) Enabled(context.Context, slog.Level) bool {
	return true
}

//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *LogRecorder) Handle(_ context.Context, r slog.Record) error {
	entry := LogEntry{
		Level:   r.Level,
		Message: r.Message,
		Attrs:   make(map[string]string),
	}
	for _, a := range h.attrs {
		entry.Attrs[a.Key] = a.Value.String()
	}
	r.Attrs(func(a slog.Attr) bool {
		entry.Attrs[a.Key] = a.Value.String()
		return true
	})

	root := h.root()
	root.mu.Lock()
	root.entries = append(root.entries, entry)
	root.mu.Unlock()
	return nil
}

func (h *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &LogRecorder{attrs: merged, parent: h.root()}
}

func (h *LogRecorder) WithGroup(string) slog.Handler {
	return h
}

func (h *LogRecorder) root() *LogRecorder {
	if h.parent != nil {
		return h.parent
	}
	return h
}

// Entries returns a copy of the captured records.
func (h *LogRecorder) Entries() []LogEntry {
	root := h.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	out := make([]LogEntry, len(root.entries))
	copy(out, root.entries)
	return out
}

// Find returns the captured records at level whose message equals msg.
func (h *LogRecorder) Find(level slog.Level, msg string) []LogEntry {
	var out []LogEntry
	for _, e := range h.Entries() {
		if e.Level == level && e.Message == msg {
			out = append(out, e)
		}
	}
	return out
}

// Count returns the number of captured records at level.
func (h *LogRecorder) Count(level slog.Level) int {
	n := 0
	for _, e := range h.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}
