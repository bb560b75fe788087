package interview

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrVersionConflict = errors.New("session version conflict")
	ErrReportNotFound  = errors.New("report not found")
)

// Store persists session snapshots and final reports. Update is a
// compare-and-swap on the session version: the write succeeds only when
// the stored version matches the one the caller read, so concurrent turn
// submissions for the same session cannot silently overwrite each other.
type Store interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, sessionID string) (Session, error)
	Update(ctx context.Context, session *Session) error
	SaveReport(ctx context.Context, report Report) error
	GetReport(ctx context.Context, sessionID string) (Report, error)
}

// MemoryStore implements Store with in-memory maps, suitable for tests
// and credential-free local runs.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	reports  map[string]Report
}

// NewMemoryStore bootstraps an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		reports:  make(map[string]Report),
	}
}

// Create stores a new session snapshot.
func (s *MemoryStore) Create(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = cloneSession(*session)
	return nil
}

// Get retrieves a session snapshot by identifier.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return cloneSession(session), nil
}

// Update persists a mutated session, conditioned on the version the
// caller loaded. The stored and in-memory versions advance together.
func (s *MemoryStore) Update(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.sessions[session.ID]
	if !ok {
		return ErrSessionNotFound
	}
	if current.Version != session.Version {
		return ErrVersionConflict
	}

	session.Version++
	session.UpdatedAt = time.Now().UTC()
	s.sessions[session.ID] = cloneSession(*session)
	return nil
}

// SaveReport stores the final report for a session.
func (s *MemoryStore) SaveReport(_ context.Context, report Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports[report.SessionID] = report
	return nil
}

// GetReport retrieves the final report for a session.
func (s *MemoryStore) GetReport(_ context.Context, sessionID string) (Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.reports[sessionID]
	if !ok {
		return Report{}, ErrReportNotFound
	}
	return report, nil
}

func cloneSession(session Session) Session {
	session.Transcript = append([]Turn(nil), session.Transcript...)
	return session
}
