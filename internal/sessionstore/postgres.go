package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/smarathe/yojanasetu/internal/dialogue"
	"github.com/smarathe/yojanasetu/internal/profile"
	"github.com/smarathe/yojanasetu/internal/scheme"
)

// Schema is the SQL DDL for the session tables. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS sessions (
    session_id TEXT PRIMARY KEY,
    language   TEXT NOT NULL DEFAULT 'Marathi',
    profile    JSONB NOT NULL DEFAULT '{}',
    pending    JSONB,
    state      JSONB NOT NULL DEFAULT '{}',
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS messages (
    id         BIGSERIAL PRIMARY KEY,
    session_id TEXT NOT NULL,
    role       TEXT NOT NULL,
    text       TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, id);
CREATE TABLE IF NOT EXISTS schemes (
    scheme_id  TEXT PRIMARY KEY,
    scheme     JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a [Store] backed by PostgreSQL. Structured fields travel
// as JSONB.
type PostgresStore struct {
	db DB
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a store over the given connection or pool. Call
// [PostgresStore.Migrate] before issuing queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate executes the [Schema] DDL, creating the tables if absent.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("sessionstore: migrate: %w", err)
	}
	return nil
}

// LoadOrCreate implements Store.
func (s *PostgresStore) LoadOrCreate(ctx context.Context, sessionID, language string) (*Session, error) {
	const query = `
		SELECT session_id, language, profile, pending, state, updated_at
		FROM sessions WHERE session_id = $1`

	sess := &Session{}
	var profileJSON, pendingJSON, stateJSON []byte
	err := s.db.QueryRow(ctx, query, sessionID).Scan(
		&sess.ID, &sess.Language, &profileJSON, &pendingJSON, &stateJSON, &sess.UpdatedAt,
	)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		created := newSession(sessionID, language)
		if err := s.Save(ctx, created); err != nil {
			return nil, err
		}
		return created, nil
	case err != nil:
		return nil, fmt.Errorf("sessionstore: load session %q: %w", sessionID, err)
	}

	if err := decodeSessionJSON(sess, profileJSON, pendingJSON, stateJSON); err != nil {
		return nil, err
	}
	return sess, nil
}

// Save implements Store.
func (s *PostgresStore) Save(ctx context.Context, sess *Session) error {
	profileJSON, pendingJSON, stateJSON, err := encodeSessionJSON(sess)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO sessions (session_id, language, profile, pending, state, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (session_id) DO UPDATE SET
			language   = EXCLUDED.language,
			profile    = EXCLUDED.profile,
			pending    = EXCLUDED.pending,
			state      = EXCLUDED.state,
			updated_at = now()`

	if _, err := s.db.Exec(ctx, query, sess.ID, sess.Language, profileJSON, pendingJSON, stateJSON); err != nil {
		return fmt.Errorf("sessionstore: save session %q: %w", sess.ID, err)
	}
	return nil
}

// AddMessage implements Store.
func (s *PostgresStore) AddMessage(ctx context.Context, sessionID, role, text string) error {
	const query = `INSERT INTO messages (session_id, role, text) VALUES ($1, $2, $3)`
	if _, err := s.db.Exec(ctx, query, sessionID, role, text); err != nil {
		return fmt.Errorf("sessionstore: add message: %w", err)
	}
	return nil
}

// Messages implements Store.
func (s *PostgresStore) Messages(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	query := `
		SELECT id, session_id, role, text, created_at FROM messages
		WHERE session_id = $1 ORDER BY id`
	args := []any{sessionID}
	if limit > 0 {
		// Keep the most recent messages while preserving chronological order.
		query = `
			SELECT id, session_id, role, text, created_at FROM (
				SELECT id, session_id, role, text, created_at FROM messages
				WHERE session_id = $1 ORDER BY id DESC LIMIT $2
			) latest ORDER BY id`
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sessionstore: list messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("sessionstore: scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sessionstore: iterate messages: %w", err)
	}
	return out, nil
}

// SaveScheme implements Store.
func (s *PostgresStore) SaveScheme(ctx context.Context, sch *scheme.Scheme) error {
	data, err := json.Marshal(sch)
	if err != nil {
		return fmt.Errorf("sessionstore: marshal scheme: %w", err)
	}
	const query = `
		INSERT INTO schemes (scheme_id, scheme, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (scheme_id) DO UPDATE SET
			scheme     = EXCLUDED.scheme,
			updated_at = now()`
	if _, err := s.db.Exec(ctx, query, sch.ID, data); err != nil {
		return fmt.Errorf("sessionstore: save scheme %q: %w", sch.ID, err)
	}
	return nil
}

// GetScheme implements Store.
func (s *PostgresStore) GetScheme(ctx context.Context, id string) (*scheme.Scheme, bool, error) {
	const query = `SELECT scheme FROM schemes WHERE scheme_id = $1`
	var data []byte
	err := s.db.QueryRow(ctx, query, id).Scan(&data)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
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
func (s *PostgresStore) BootstrapSchemes(ctx context.Context, schemes []scheme.Scheme) error {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM schemes`).Scan(&count); err != nil {
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

// ── JSON codecs shared with the SQLite store ──

func encodeSessionJSON(sess *Session) (profileJSON, pendingJSON, stateJSON []byte, err error) {
	p := sess.Profile
	if p == nil {
		p = profile.New()
	}
	if profileJSON, err = json.Marshal(p); err != nil {
		return nil, nil, nil, fmt.Errorf("sessionstore: marshal profile: %w", err)
	}
	if sess.Pending != nil {
		if pendingJSON, err = json.Marshal(sess.Pending); err != nil {
			return nil, nil, nil, fmt.Errorf("sessionstore: marshal pending: %w", err)
		}
	}
	if stateJSON, err = json.Marshal(sess.State); err != nil {
		return nil, nil, nil, fmt.Errorf("sessionstore: marshal state: %w", err)
	}
	return profileJSON, pendingJSON, stateJSON, nil
}

func decodeSessionJSON(sess *Session, profileJSON, pendingJSON, stateJSON []byte) error {
	sess.Profile = profile.New()
	if len(profileJSON) > 0 {
		if err := json.Unmarshal(profileJSON, &sess.Profile); err != nil {
			return fmt.Errorf("sessionstore: decode profile: %w", err)
		}
	}
	if len(pendingJSON) > 0 && string(pendingJSON) != "null" {
		var pending profile.PendingConfirmation
		if err := json.Unmarshal(pendingJSON, &pending); err != nil {
			return fmt.Errorf("sessionstore: decode pending: %w", err)
		}
		sess.Pending = &pending
	}
	sess.State = dialogue.State{}
	if len(stateJSON) > 0 {
		if err := json.Unmarshal(stateJSON, &sess.State); err != nil {
			return fmt.Errorf("sessionstore: decode state: %w", err)
		}
	}
	return nil
}
