package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"rental-inspection-backend/internal/submission"
)

// Registry hands out sessions by id and forgets sessions that have been idle
// longer than the TTL. Sessions live in memory only.
type Registry struct {
	ttl             time.Duration
	maxPhotos       int
	maxPhotoBytes   int64
	newOrchestrator func() *submission.Orchestrator
	logger          zerolog.Logger
	now             func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(ttl time.Duration, maxPhotos int, newOrchestrator func() *submission.Orchestrator, logger zerolog.Logger) *Registry {
	return &Registry{
		ttl:             ttl,
		maxPhotos:       maxPhotos,
		newOrchestrator: newOrchestrator,
		logger:          logger,
		now:             time.Now,
		sessions:        make(map[string]*Session),
	}
}

// WithMaxPhotoBytes sets the size ceiling of a single photo. Larger photos
// are rejected when they are added to a session.
func (r *Registry) WithMaxPhotoBytes(n int64) *Registry {
	r.maxPhotoBytes = n
	return r
}

func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// Now is the registry clock.
func (r *Registry) Now() time.Time {
	return r.now()
}

func (r *Registry) Create(c Context) *Session {
	s := newSession(uuid.NewString(), c, r.newOrchestrator(), r.maxPhotos, r.maxPhotoBytes, r.now())

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.logger.Info().
		Str("session_id", s.ID).
		Str("order_id", c.OrderID).
		Str("merchant_id", c.MerchantID).
		Msg("session created")
	return s
}

// Get returns the session and marks it as used.
func (r *Registry) Get(id string) (*Session, error) {
	now := r.now()

	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok && r.evictable(s, now) {
		delete(r.sessions, id)
		ok = false
	}
	r.mu.Unlock()

	if !ok {
		return nil, ErrNotFound
	}
	s.touch(now)
	return s, nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep removes expired sessions and returns how many were removed.
func (r *Registry) Sweep() int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if r.evictable(s, now) {
			delete(r.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		r.logger.Debug().Int("removed", removed).Int("remaining", len(r.sessions)).Msg("expired sessions removed")
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// A session with a running submission is kept regardless of its age.
func (r *Registry) evictable(s *Session, now time.Time) bool {
	if s.Submission != nil && s.Submission.State() == submission.StateInFlight {
		return false
	}
	return s.expired(now, r.ttl)
}
