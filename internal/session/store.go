// internal/session/store.go
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/models"
)

// Store keeps sessions in memory. Every Update runs under the store lock, so
// a mutation and the recomputation that follows it are never interleaved
// with another request.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	log      *zap.Logger
	now      func() time.Time
}

func NewStore(log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		sessions: make(map[string]*Session),
		log:      log,
		now:      time.Now,
	}
}

// Create starts a new session and returns its id.
func (s *Store) Create(userID string, targets models.Targets) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.sessions[id] = New(id, userID, targets, s.now())
	s.log.Debug("session created", zap.String("session_id", id), zap.String("user_id", userID))
	return id
}

// Update applies fn to the session. UpdatedAt is bumped only when fn
// succeeds.
func (s *Store) Update(id string, fn func(*Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return models.ErrSessionNotFound
	}
	if err := fn(sess); err != nil {
		return err
	}
	sess.UpdatedAt = s.now()
	return nil
}

// View runs fn with the session under the lock without touching UpdatedAt.
func (s *Store) View(id string, fn func(*Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return models.ErrSessionNotFound
	}
	return fn(sess)
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return models.ErrSessionNotFound
	}
	delete(s.sessions, id)
	s.log.Debug("session deleted", zap.String("session_id", id))
	return nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Prune drops sessions idle for longer than maxIdle and returns how many
// went.
func (s *Store) Prune(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	n := 0
	for id, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	if n > 0 {
		s.log.Info("pruned idle sessions", zap.Int("count", n))
	}
	return n
}
