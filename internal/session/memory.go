package session

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/counsel-tools/prep-cli/internal/model"
)

// MemoryStore implements Store with an in-process map. Sessions are cloned
// on the way in and out so the caller's aggregate never aliases stored state.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	clock    Clock
}

// NewMemory creates a MemoryStore. A nil clock defaults to time.Now.
func NewMemory(clock Clock) *MemoryStore {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryStore{
		sessions: make(map[string]*model.Session),
		clock:    clock,
	}
}

func (m *MemoryStore) Create(ctx context.Context, subjectName, caseName string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepLocked()

	s := newSession(uuid.New().String(), subjectName, caseName, m.clock().UTC())
	stored, err := clone(s)
	if err != nil {
		return nil, err
	}
	m.sessions[s.ID] = stored
	return s, nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "memory: get %s", id)
	}
	if !m.clock().Before(s.ExpiresAt()) {
		delete(m.sessions, id)
		return nil, eris.Wrapf(ErrNotFound, "memory: get %s", id)
	}
	return clone(s)
}

func (m *MemoryStore) Put(ctx context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.ID]; !ok {
		return eris.Wrapf(ErrNotFound, "memory: put %s", s.ID)
	}
	stored, err := clone(s)
	if err != nil {
		return err
	}
	m.sessions[s.ID] = stored
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return eris.Wrapf(ErrNotFound, "memory: delete %s", id)
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) List(ctx context.Context) ([]model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	out := make([]model.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if !now.Before(s.ExpiresAt()) {
			continue
		}
		c, err := clone(s)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) DeleteExpired(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked(), nil
}

func (m *MemoryStore) Close() error {
	return nil
}

// sweepLocked removes every expired session. Caller holds the lock.
func (m *MemoryStore) sweepLocked() int {
	now := m.clock()
	n := 0
	for id, s := range m.sessions {
		if !now.Before(s.ExpiresAt()) {
			delete(m.sessions, id)
			n++
		}
	}
	if n > 0 {
		zap.L().Debug("session: swept expired", zap.Int("count", n))
	}
	return n
}

// clone deep-copies a session through its JSON form, the same representation
// the durable stores persist.
func clone(s *model.Session) (*model.Session, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, eris.Wrap(err, "memory: marshal session")
	}
	var out model.Session
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, eris.Wrap(err, "memory: unmarshal session")
	}
	return &out, nil
}
