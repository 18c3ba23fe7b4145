package rhema

import (
	"database/sql"
	"fmt"
	"io"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Session is a durable evaluation context: a root environment plus a
// SQLite-backed definition log. Top-level defines evaluated through the
// session are appended to the log and replayed in order the next time
// the same database is opened, so definitions survive process restarts.
type Session struct {
	db        *sql.DB
	env       *Env
	traces    []Trace
	maxTraces int
}

const sessionSchema = `
CREATE TABLE IF NOT EXISTS definitions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	source     TEXT NOT NULL,
	created_at TEXT NOT NULL
);`

// OpenSession opens (or creates) the session database at path, builds a
// fresh root environment, and replays the definition log into it.
func OpenSession(path string) (*Session, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	if _, err := db.Exec(sessionSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init session db: %w", err)
	}
	env, err := NewRootEnv()
	if err != nil {
		db.Close()
		return nil, err
	}
	s := &Session{db: db, env: env, maxTraces: 1000}
	if err := s.replay(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) replay() error {
	rows, err := s.db.Query(`SELECT name, source FROM definitions ORDER BY id`)
	if err != nil {
		return fmt.Errorf("read definitions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name, source string
		if err := rows.Scan(&name, &source); err != nil {
			return fmt.Errorf("scan definition: %w", err)
		}
		if err := LoadSource(s.env, "session:"+name, source); err != nil {
			return fmt.Errorf("replay %s: %w", name, err)
		}
	}
	return rows.Err()
}

// Env returns the session's root environment.
func (s *Session) Env() *Env {
	return s.env
}

// EvalString evaluates source against the session environment, recording
// top-level defines in the log and appending a trace.
func (s *Session) EvalString(source string) (*Datum, error) {
	p := NewParser("session", source)
	result := Nil
	for {
		d, err := p.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.appendTrace(Trace{Source: source, Error: err.Error(), Timestamp: now()})
			return nil, err
		}
		result, err = Eval(s.env, d)
		if err != nil {
			s.appendTrace(Trace{Source: source, Error: err.Error(), Timestamp: now()})
			return nil, err
		}
		if name, ok := defineName(d); ok {
			if err := s.record(name, d.String()); err != nil {
				return nil, err
			}
		}
	}
	s.appendTrace(Trace{Source: source, Result: result, Timestamp: now()})
	return result, nil
}

// defineName recognizes a well-formed top-level (define name expr).
func defineName(d *Datum) (string, bool) {
	if d.Kind != DatPair || !d.First.IsSymbol("define") {
		return "", false
	}
	args, ok := ListToSlice(d.Second)
	if !ok || len(args) != 2 || args[0].Kind != DatSymbol {
		return "", false
	}
	return args[0].Str, true
}

func (s *Session) record(name, source string) error {
	_, err := s.db.Exec(
		`INSERT INTO definitions (name, source, created_at) VALUES (?, ?, ?)`,
		name, source, now(),
	)
	if err != nil {
		return fmt.Errorf("record %s: %w", name, err)
	}
	return nil
}

// Traces returns the most recent n traces, oldest first. n <= 0 means all.
func (s *Session) Traces(n int) []Trace {
	if n <= 0 || n > len(s.traces) {
		n = len(s.traces)
	}
	out := make([]Trace, n)
	copy(out, s.traces[len(s.traces)-n:])
	return out
}

// appendTrace adds a trace and enforces the maxTraces cap.
func (s *Session) appendTrace(t Trace) {
	s.traces = append(s.traces, t)
	if len(s.traces) > s.maxTraces {
		excess := len(s.traces) - s.maxTraces
		s.traces = s.traces[excess:]
	}
}

func (s *Session) Close() error {
	return s.db.Close()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
