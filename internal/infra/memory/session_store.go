package memory

import (
	"context"
	"sync"
	"time"

	"github.com/romaisa914/lingo-translator/internal/app"
	"github.com/romaisa914/lingo-translator/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Snapshots are copied in and out so callers never share state. With a
// positive ttl, a session expires once it goes untouched for that long.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]sessionEntry
}

type sessionEntry struct {
	snap      app.WorkspaceSnapshot
	expiresAt time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]sessionEntry),
	}
}

func (s *SessionStore) Load(_ context.Context, sessionID string) (app.WorkspaceSnapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		return app.WorkspaceSnapshot{}, false, nil
	}
	now := s.now()
	if s.expired(entry, now) {
		delete(s.sessions, sessionID)
		return app.WorkspaceSnapshot{}, false, nil
	}
	entry.expiresAt = s.deadline(now)
	s.sessions[sessionID] = entry
	return clone(entry.snap), true, nil
}

func (s *SessionStore) Save(_ context.Context, sessionID string, snap app.WorkspaceSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweep(now)
	s.sessions[sessionID] = sessionEntry{snap: clone(snap), expiresAt: s.deadline(now)}
	return nil
}

func (s *SessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Len reports how many sessions are held, expired ones included until swept.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) deadline(now time.Time) time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return now.Add(s.ttl)
}

func (s *SessionStore) expired(entry sessionEntry, now time.Time) bool {
	return !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt)
}

// sweep drops expired sessions. Callers hold mu.
func (s *SessionStore) sweep(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, entry := range s.sessions {
		if s.expired(entry, now) {
			delete(s.sessions, id)
		}
	}
}

func clone(snap app.WorkspaceSnapshot) app.WorkspaceSnapshot {
	out := app.WorkspaceSnapshot{
		Completed: append([]int(nil), snap.Completed...),
		History:   append([]domain.Turn(nil), snap.History...),
	}
	if snap.Quiz != nil {
		q := *snap.Quiz
		q.Answers = append([]bool(nil), snap.Quiz.Answers...)
		out.Quiz = &q
	}
	return out
}
