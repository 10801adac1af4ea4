package logging

import (
	"fmt"
	"strings"
	"sync"
)

// #region capture

// Entry is one captured log call.
type Entry struct {
	Level   string
	Message string
	Keyvals []any
}

// Capture records every log call in memory. Used by tests and by the
// inspect tool to surface analyzer warnings alongside reports.
type Capture struct {
	mu      sync.Mutex
	entries []Entry
}

// NewCapture returns an empty capturing logger.
func NewCapture() *Capture { return &Capture{} }

func (c *Capture) add(level, msg string, keyvals []any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, Entry{Level: level, Message: msg, Keyvals: keyvals})
}

func (c *Capture) Debug(msg string, keyvals ...any) { c.add("debug", msg, keyvals) }
func (c *Capture) Info(msg string, keyvals ...any)  { c.add("info", msg, keyvals) }
func (c *Capture) Warn(msg string, keyvals ...any)  { c.add("warn", msg, keyvals) }
func (c *Capture) Error(msg string, keyvals ...any) { c.add("error", msg, keyvals) }

// Entries returns a copy of all captured entries.
func (c *Capture) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Contains reports whether any captured entry at the given level mentions substr
// in its message or rendered keyvals.
func (c *Capture) Contains(level, substr string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if level != "" && e.Level != level {
			continue
		}
		if strings.Contains(e.Message, substr) {
			return true
		}
		if strings.Contains(fmt.Sprint(e.Keyvals...), substr) {
			return true
		}
	}
	return false
}

// #endregion capture
