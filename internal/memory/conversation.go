// Package memory keeps per-session conversation history on disk and the
// in-process thought log of the orchestrator.
//
// History file format, one file per session, fully rewritten on every turn:
//
//	[
//	  {"user": "…", "reply": "…", "timestamp": "2025-01-02T15:04:05.999999999Z"},
//	  …
//	]
package memory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// TimestampLayout is the ISO-8601 layout used for turn timestamps.
const TimestampLayout = time.RFC3339Nano

// Turn is one completed exchange. Turns are never modified after creation.
type Turn struct {
	User      string `json:"user"`
	Reply     string `json:"reply"`
	Timestamp string `json:"timestamp"`
}

// Time parses the turn timestamp.
func (t Turn) Time() (time.Time, error) {
	return time.Parse(TimestampLayout, t.Timestamp)
}

// Conversation is the ordered turn log of one session, persisted to a single
// JSON file. It is safe for concurrent use within one process; writers in
// other processes are not coordinated.
type Conversation struct {
	sessionID string
	path      string
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.Mutex
	turns []Turn
	last  time.Time
}

// Option configures a Conversation.
type Option func(*Conversation)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Conversation) { c.now = now }
}

// Open returns the conversation for sessionID stored under dir, loading any
// existing history. A history file that cannot be parsed is logged and the
// session starts empty.
func Open(dir, sessionID string, logger *slog.Logger, opts ...Option) (*Conversation, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sessions dir: %w", err)
	}

	c := &Conversation{
		sessionID: sessionID,
		path:      HistoryPath(dir, sessionID),
		logger:    logger,
		now:       time.Now,
	}
	for _, o := range opts {
		o(c)
	}

	c.turns = c.load()
	if n := len(c.turns); n > 0 {
		if ts, err := c.turns[n-1].Time(); err == nil {
			c.last = ts
		}
	}
	return c, nil
}

// SessionID returns the session the conversation belongs to.
func (c *Conversation) SessionID() string { return c.sessionID }

// Path returns the history file location.
func (c *Conversation) Path() string { return c.path }

// AddInteraction appends a turn stamped with the current time and rewrites
// the history file. The turn stays in memory even if the write fails.
func (c *Conversation) AddInteraction(user, reply string) (Turn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().UTC()
	if now.Before(c.last) {
		now = c.last
	}
	c.last = now

	turn := Turn{User: user, Reply: reply, Timestamp: now.Format(TimestampLayout)}
	c.turns = append(c.turns, turn)

	if err := c.saveLocked(); err != nil {
		return turn, err
	}
	return turn, nil
}

// RecentWindow returns the last limit turns in chronological order.
func (c *Conversation) RecentWindow(limit int) []Turn {
	if limit <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	turns := c.turns
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return cloneTurns(turns)
}

// FullHistory returns every turn in chronological order.
func (c *Conversation) FullHistory() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneTurns(c.turns)
}

// cloneTurns copies turns into a fresh, never-nil slice.
func cloneTurns(turns []Turn) []Turn {
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.turns)
}

// FormattedHistory renders the whole conversation as User:/Assistant: lines.
func (c *Conversation) FormattedHistory() string {
	return FormatTurns(c.FullHistory())
}

// FormatTurns renders turns as alternating "User: …" and "Assistant: …" lines.
func FormatTurns(turns []Turn) string {
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("User: ")
		b.WriteString(t.User)
		b.WriteString("\nAssistant: ")
		b.WriteString(t.Reply)
	}
	return b.String()
}

func (c *Conversation) saveLocked() error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	turns := c.turns
	if turns == nil {
		turns = []Turn{}
	}
	if err := enc.Encode(turns); err != nil {
		return fmt.Errorf("encode session %s: %w", c.sessionID, err)
	}

	if err := os.WriteFile(c.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write session %s: %w", c.path, err)
	}
	return nil
}

func (c *Conversation) load() []Turn {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.logger.Warn("error reading session file", "session", c.sessionID, "err", err)
		}
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var turns []Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		c.logger.Warn("malformed session file, starting empty", "session", c.sessionID, "path", c.path, "err", err)
		return nil
	}
	return turns
}

// HistoryPath returns the history file for sessionID under dir:
// session_<id>_history.json, with the id escaped so that distinct ids never
// share a file.
func HistoryPath(dir, sessionID string) string {
	return filepath.Join(dir, "session_"+escapeID(sessionID)+"_history.json")
}

// SessionIDFromPath reverses HistoryPath, returning the original session id.
func SessionIDFromPath(path string) (string, bool) {
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "session_") || !strings.HasSuffix(base, "_history.json") {
		return "", false
	}
	id, err := url.PathUnescape(strings.TrimSuffix(strings.TrimPrefix(base, "session_"), "_history.json"))
	if err != nil || id == "" {
		return "", false
	}
	return id, true
}

// escapeID percent-encodes the bytes that are unsafe in file names, plus
// '%' and space, so the mapping is reversible with url.PathUnescape.
func escapeID(id string) string {
	const unsafe = `<>:"/\|?*% `
	var b strings.Builder
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c < 0x20 || c == 0x7f || strings.IndexByte(unsafe, c) >= 0 {
			fmt.Fprintf(&b, "%%%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
