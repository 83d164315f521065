// Package sessionstore persists per-session dialogue state: the citizen's
// profile, any pending contradiction confirmation, the slot-filling
// position, the message log, and the scheme each session locked onto.
//
// Three implementations exist: Postgres (production), SQLite (single-node
// deployments), and an in-memory store for tests. All serialize the
// structured fields as JSON so a session survives restarts byte-for-byte.
package sessionstore

import (
	"context"
	"errors"
	"time"

	"github.com/smarathe/yojanasetu/internal/dialogue"
	"github.com/smarathe/yojanasetu/internal/profile"
	"github.com/smarathe/yojanasetu/internal/scheme"
)

// ErrNotFound is returned when a requested session does not exist.
var ErrNotFound = errors.New("sessionstore: session not found")

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultLanguage is assigned to sessions created without an explicit
// language.
const DefaultLanguage = "Marathi"

// Session is the persisted state of one conversation.
type Session struct {
	ID       string
	Language string

	// Profile is the merged citizen profile.
	Profile profile.Profile

	// Pending is the contradiction awaiting confirmation, nil when none.
	Pending *profile.PendingConfirmation

	// State is the dialogue position (slot-filling task, if any).
	State dialogue.State

	UpdatedAt time.Time
}

// Message is one logged utterance or reply.
type Message struct {
	ID        int64
	SessionID string
	Role      string
	Text      string
	CreatedAt time.Time
}

// Store is the session persistence abstraction. Implementations must be
// safe for concurrent use; turns of a single session are serialized by the
// caller.
type Store interface {
	// LoadOrCreate returns the session with the given id, creating an empty
	// one with the given language when absent.
	LoadOrCreate(ctx context.Context, sessionID, language string) (*Session, error)

	// Save upserts the session's profile, pending confirmation, and state.
	Save(ctx context.Context, sess *Session) error

	// AddMessage appends one message to the session's log.
	AddMessage(ctx context.Context, sessionID, role, text string) error

	// Messages returns the most recent messages for a session in
	// chronological order, capped at limit (0 means no cap).
	Messages(ctx context.Context, sessionID string, limit int) ([]Message, error)

	// SaveScheme upserts the scheme a session locked onto.
	SaveScheme(ctx context.Context, s *scheme.Scheme) error

	// GetScheme returns a stored scheme by id; ok is false when absent.
	GetScheme(ctx context.Context, id string) (*scheme.Scheme, bool, error)

	// BootstrapSchemes loads the corpus into the scheme table once. It is a
	// no-op when the table already holds any scheme.
	BootstrapSchemes(ctx context.Context, schemes []scheme.Scheme) error
}

// newSession builds the empty session written on first contact.
func newSession(sessionID, language string) *Session {
	if language == "" {
		language = DefaultLanguage
	}
	return &Session{
		ID:       sessionID,
		Language: language,
		Profile:  profile.New(),
	}
}
