// Package session persists prep sessions. Sessions are ephemeral: each one
// expires 24 hours after creation, and expired rows are removed lazily on the
// next write-path call rather than by a background janitor.
package session

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/counsel-tools/prep-cli/internal/model"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = eris.New("session not found")

// Clock supplies the current time. Injected so expiry is testable without
// sleeping.
type Clock func() time.Time

// Store defines session persistence. Get treats an expired session as
// absent; Create sweeps expired sessions before inserting.
type Store interface {
	Create(ctx context.Context, subjectName, caseName string) (*model.Session, error)
	Get(ctx context.Context, id string) (*model.Session, error)
	Put(ctx context.Context, s *model.Session) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.Session, error)
	DeleteExpired(ctx context.Context) (int, error)
	Close() error
}

// newSession builds the initial aggregate. Collections start empty, not nil,
// so serialized sessions always carry arrays.
func newSession(id, subjectName, caseName string, now time.Time) *model.Session {
	return &model.Session{
		ID:             id,
		SubjectName:    subjectName,
		CaseName:       caseName,
		CreatedAt:      now,
		Documents:      []model.Document{},
		Questions:      []model.Question{},
		Gaps:           []model.Gap{},
		Contradictions: []model.Contradiction{},
		Status:         model.SessionStatusSetup,
	}
}
