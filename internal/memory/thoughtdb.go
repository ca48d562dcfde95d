package memory

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const thoughtsSchema = `
CREATE TABLE IF NOT EXISTS thoughts (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    session TEXT NOT NULL,
    ts      TEXT NOT NULL,
    text    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_thoughts_session ON thoughts(session, id);
`

var _ ThoughtSink = (*ThoughtDB)(nil)

// ThoughtDB mirrors thought logs into a sqlite database so they outlive the
// process.
type ThoughtDB struct {
	db *sql.DB
}

// OpenThoughtDB opens (creating if needed) the sqlite database at path.
func OpenThoughtDB(path string) (*ThoughtDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create thought db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open thought db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("thought db %s: %w", p, err)
		}
	}
	if _, err := db.Exec(thoughtsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate thought db: %w", err)
	}
	return &ThoughtDB{db: db}, nil
}

// Record stores one entry.
func (t *ThoughtDB) Record(sessionID string, e ThoughtEntry) error {
	_, err := t.db.Exec(`INSERT INTO thoughts (session, ts, text) VALUES (?, ?, ?)`, sessionID, e.Timestamp, e.Text)
	if err != nil {
		return fmt.Errorf("record thought: %w", err)
	}
	return nil
}

// List returns the stored entries of sessionID in insertion order.
func (t *ThoughtDB) List(sessionID string) ([]ThoughtEntry, error) {
	rows, err := t.db.Query(`SELECT ts, text FROM thoughts WHERE session = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list thoughts: %w", err)
	}
	defer rows.Close()

	var out []ThoughtEntry
	for rows.Next() {
		var e ThoughtEntry
		if err := rows.Scan(&e.Timestamp, &e.Text); err != nil {
			return nil, fmt.Errorf("scan thought: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Sessions returns the distinct session ids with stored thoughts.
func (t *ThoughtDB) Sessions() ([]string, error) {
	rows, err := t.db.Query(`SELECT DISTINCT session FROM thoughts ORDER BY session`)
	if err != nil {
		return nil, fmt.Errorf("list thought sessions: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan thought session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (t *ThoughtDB) Close() error {
	return t.db.Close()
}
