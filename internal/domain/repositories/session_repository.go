package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/zatekoja/medassist/internal/domain/entities"
)

// ErrSessionNotFound is returned by Get for unknown or expired sessions
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository stores chat sessions. Implementations return copies:
// mutating a session has no effect until it is passed to Upsert.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*entities.ChatSession, error)
	Upsert(ctx context.Context, session *entities.ChatSession) error
	// Delete reports whether a session was removed
	Delete(ctx context.Context, id string) (bool, error)
	// ListExpired returns ids idle past the retention window at now
	ListExpired(ctx context.Context, now time.Time) ([]string, error)
}
