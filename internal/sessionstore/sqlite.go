package sessionstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/smarathe/yojanasetu/internal/scheme"
)

// sqliteSchema is the DDL for the single-node SQLite deployment. JSON fields
// travel as TEXT; timestamps as unix seconds.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
    session_id TEXT PRIMARY KEY,
    language   TEXT NOT NULL DEFAULT 'Marathi',
    profile    TEXT NOT NULL DEFAULT '{}',
    pending    TEXT,
    state      TEXT NOT NULL DEFAULT '{}',
    updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    role       TEXT NOT NULL,
    text       TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, id);
CREATE TABLE IF NOT EXISTS schemes (
    scheme_id  TEXT PRIMARY KEY,
    scheme     TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);
`

// sqlitePragmas tune the database for a chatty single-writer workload.
var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL;",
	"PRAGMA synchronous=NORMAL;",
	"PRAGMA temp_store=MEMORY;",
	"PRAGMA busy_timeout=5000;",
	"PRAGMA foreign_keys=ON;",
}

// SQLiteStore is a [Store] backed by a local SQLite file via the pure-Go
// modernc.org/sqlite driver.
type SQLiteStore struct {
	db *sql.DB
}

// Compile-time interface check.
var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the database at path, applies the
// pragmas, and ensures the schema exists.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sessionstore: open sqlite %q: %w", path, err)
	}
	// A single connection sidesteps SQLITE_BUSY between the pool's writers.
	db.SetMaxOpenConns(1)

	for _, pragma := range sqlitePragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sessionstore: apply pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sessionstore: migrate sqlite: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// LoadOrCreate implements Store.
func (s *SQLiteStore) LoadOrCreate(ctx context.Context, sessionID, language string) (*Session, error) {
	const query = `
		SELECT session_id, language, profile, pending, state, updated_at
		FROM sessions WHERE session_id = ?`

	sess := &Session{}
	var profileJSON, pendingJSON, stateJSON []byte
	var updatedAt int64
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&sess.ID, &sess.Language, &profileJSON, &pendingJSON, &stateJSON, &updatedAt,
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		created := newSession(sessionID, language)
		if err := s.Save(ctx, created); err != nil {
			return nil, err
		}
		return created, nil
	case err != nil:
		return nil, fmt.Errorf("sessionstore: load session %q: %w", sessionID, err)
	}

	sess.UpdatedAt = time.Unix(updatedAt, 0)
	if err := decodeSessionJSON(sess, profileJSON, pendingJSON, stateJSON); err != nil {
		return nil, err
	}
	return sess, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, sess *Session) error {
	profileJSON, pendingJSON, stateJSON, err := encodeSessionJSON(sess)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO sessions (session_id, language, profile, pending, state, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE SET
			language   = excluded.language,
			profile    = excluded.profile,
			pending    = excluded.pending,
			state      = excluded.state,
			updated_at = excluded.updated_at`

	var pending any
	if pendingJSON != nil {
		pending = string(pendingJSON)
	}
	_, err = s.db.ExecContext(ctx, query,
		sess.ID, sess.Language, string(profileJSON), pending, string(stateJSON), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("sessionstore: save session %q: %w", sess.ID, err)
	}
	return nil
}

// AddMessage implements Store.
func (s *SQLiteStore) AddMessage(ctx context.Context, sessionID, role, text string) error {
	const query = `INSERT INTO messages (session_id, role, text, created_at) VALUES (?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, sessionID, role, text, time.Now().Unix()); err != nil {
		return fmt.Errorf("sessionstore: add message: %w", err)
	}
	return nil
}

// Messages implements Store.
func (s *SQLiteStore) Messages(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	query := `
		SELECT id, session_id, role, text, created_at FROM messages
		WHERE session_id = ? ORDER BY id`
	args := []any{sessionID}
	if limit > 0 {
		query = `
			SELECT id, session_id, role, text, created_at FROM (
				SELECT id, session_id, role, text, created_at FROM messages
				WHERE session_id = ? ORDER BY id DESC LIMIT ?
			) ORDER BY id`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sessionstore: list messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("sessionstore: scan message: %w", err)
		}
		m.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sessionstore: iterate messages: %w", err)
	}
	return out, nil
}

// SaveScheme implements Store.
func (s *SQLiteStore) SaveScheme(ctx context.Context, sch *scheme.Scheme) error {
	data, err := json.Marshal(sch)
	if err != nil {
		return fmt.Errorf("sessionstore: marshal scheme: %w", err)
	}
	const query = `
		INSERT INTO schemes (scheme_id, scheme, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (scheme_id) DO UPDATE SET
			scheme     = excluded.scheme,
			updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, query, sch.ID, string(data), time.Now().Unix()); err != nil {
		return fmt.Errorf("sessionstore: save scheme %q: %w", sch.ID, err)
	}
	return nil
}

// GetScheme implements Store.
func (s *SQLiteStore) GetScheme(ctx context.Context, id string) (*scheme.Scheme, bool, error) {
	const query = `SELECT scheme FROM schemes WHERE scheme_id = ?`
	var data []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(&data)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("sessionstore: load scheme %q: %w", id, err)
	}
	var sch scheme.Scheme
	if err := json.Unmarshal(data, &sch); err != nil {
		return nil, false, fmt.Errorf("sessionstore: decode scheme %q: %w", id, err)
	}
	return &sch, true, nil
}

// BootstrapSchemes implements Store.
func (s *SQLiteStore) BootstrapSchemes(ctx context.Context, schemes []scheme.Scheme) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM schemes`).Scan(&count); err != nil {
		return fmt.Errorf("sessionstore: count schemes: %w", err)
	}
	if count > 0 {
		return nil
	}
	for i := range schemes {
		if err := s.SaveScheme(ctx, &schemes[i]); err != nil {
			return err
		}
	}
	return nil
}
