package memory

import (
	"log/slog"
	"sync"
	"time"
)

// ThoughtEntry is one orchestration-internal event. Not shown to users.
type ThoughtEntry struct {
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

// ThoughtSink receives a copy of every thought, e.g. for durable storage.
type ThoughtSink interface {
	Record(sessionID string, e ThoughtEntry) error
}

// ThoughtLog is the append-only, process-lifetime audit trail of one session.
type ThoughtLog struct {
	sessionID string
	sink      ThoughtSink
	logger    *slog.Logger

	mu      sync.Mutex
	entries []ThoughtEntry
}

// NewThoughtLog returns an empty log. sink may be nil.
func NewThoughtLog(sessionID string, sink ThoughtSink, logger *slog.Logger) *ThoughtLog {
	if logger == nil {
		logger = slog.Default()
	}
	return &ThoughtLog{sessionID: sessionID, sink: sink, logger: logger}
}

// Add appends text stamped with the current time. Sink failures are logged.
func (l *ThoughtLog) Add(text string) ThoughtEntry {
	e := ThoughtEntry{Timestamp: time.Now().UTC().Format(TimestampLayout), Text: text}

	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()

	l.logger.Debug("thought", "session", l.sessionID, "text", text)

	if l.sink != nil {
		if err := l.sink.Record(l.sessionID, e); err != nil {
			l.logger.Warn("thought sink failed", "session", l.sessionID, "err", err)
		}
	}
	return e
}

// Entries returns a copy of all entries in insertion order.
func (l *ThoughtLog) Entries() []ThoughtEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ThoughtEntry(nil), l.entries...)
}
