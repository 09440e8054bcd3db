package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"rental-inspection-backend/internal/compress"
	"rental-inspection-backend/internal/models"
	"rental-inspection-backend/internal/questionnaire"
	"rental-inspection-backend/internal/submission"
)

const (
	DefaultMaxPhotos = 5

	megabyte = 1024 * 1024
)

var (
	ErrNotFound      = errors.New("session not found")
	ErrTooManyPhotos = errors.New("too many photos")
	ErrNotAnImage    = errors.New("file is not an image")
	ErrPhotoTooLarge = errors.New("photo is too large")
	ErrPhotoNotFound = errors.New("photo not found")
	ErrLocked        = errors.New("session is locked by its submission")
)

// Session holds the photos of one inspection until they are submitted.
type Session struct {
	ID         string
	CreatedAt  time.Time
	Submission *submission.Orchestrator

	mu            sync.Mutex
	ctx           Context
	photos        []models.RawPhoto
	maxPhotos     int
	maxPhotoBytes int64
	lastSeen      time.Time
}

func newSession(id string, c Context, orchestrator *submission.Orchestrator, maxPhotos int, maxPhotoBytes int64, now time.Time) *Session {
	if maxPhotos <= 0 {
		maxPhotos = DefaultMaxPhotos
	}
	if maxPhotoBytes <= 0 {
		maxPhotoBytes = compress.DefaultMaxInputBytes
	}
	return &Session{
		ID:            id,
		CreatedAt:     now,
		Submission:    orchestrator,
		ctx:           c,
		maxPhotos:     maxPhotos,
		maxPhotoBytes: maxPhotoBytes,
		lastSeen:      now,
	}
}

func (s *Session) Context() Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

func (s *Session) SetLanguage(lang questionnaire.Language) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx.SetLanguage(lang)
}

func (s *Session) MaxPhotos() int {
	return s.maxPhotos
}

// Photos returns a copy of the photo list.
func (s *Session) Photos() []models.RawPhoto {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.RawPhoto, len(s.photos))
	copy(out, s.photos)
	return out
}

// AddPhotos appends photos to the session. A batch that would exceed the
// limit is refused as a whole. Files that are not images or are larger than
// the size ceiling are skipped and reported in rejected.
func (s *Session) AddPhotos(photos ...models.RawPhoto) (rejected []error, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked() {
		return nil, ErrLocked
	}
	if len(s.photos)+len(photos) > s.maxPhotos {
		return nil, fmt.Errorf("%w: cannot add %d photos, maximum %d photos allowed (currently have %d)",
			ErrTooManyPhotos, len(photos), s.maxPhotos, len(s.photos))
	}

	for _, p := range photos {
		if !p.IsImage() {
			rejected = append(rejected, fmt.Errorf("%w: %s (%s)", ErrNotAnImage, p.FileName, p.MediaType))
			continue
		}
		if photoSize(p) > s.maxPhotoBytes {
			rejected = append(rejected, fmt.Errorf("%w: %s is %.2fMB, maximum is %.2fMB", ErrPhotoTooLarge, p.FileName,
				float64(photoSize(p))/megabyte, float64(s.maxPhotoBytes)/megabyte))
			continue
		}
		s.photos = append(s.photos, p)
	}
	return rejected, nil
}

func photoSize(p models.RawPhoto) int64 {
	if p.OriginalSize > 0 {
		return p.OriginalSize
	}
	return int64(len(p.Data))
}

func (s *Session) RemovePhoto(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked() {
		return ErrLocked
	}
	if index < 0 || index >= len(s.photos) {
		return fmt.Errorf("%w: index %d", ErrPhotoNotFound, index)
	}
	s.photos = append(s.photos[:index], s.photos[index+1:]...)
	return nil
}

// Submit hands the current photos and the answers to the orchestrator. The
// photo list is taken and the submission claimed in one critical section, so
// no photo can be added in between.
func (s *Session) Submit(ctx context.Context, answers questionnaire.Answers) submission.Result {
	s.mu.Lock()
	req := submission.Request{
		OrderID:    s.ctx.OrderID,
		MerchantID: s.ctx.MerchantID,
		StoreID:    s.ctx.StoreID,
		Language:   s.ctx.Language(),
		Photos:     append([]models.RawPhoto(nil), s.photos...),
		Answers:    answers,
	}
	run, res := s.Submission.Claim(len(req.Photos))
	s.mu.Unlock()

	if run == nil {
		return res
	}
	return run(ctx, req)
}

// Reset starts a new order in the same session. An empty orderID generates
// one. Merchant, store and language are kept.
func (s *Session) Reset(orderID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Submission.Reset(); err != nil {
		return err
	}
	s.ctx.OrderID = valueOr(orderID, DefaultOrderID(now))
	s.photos = nil
	return nil
}

func (s *Session) locked() bool {
	if s.Submission == nil {
		return false
	}
	state := s.Submission.State()
	return state == submission.StateInFlight || state == submission.StateCompleted
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ttl > 0 && now.Sub(s.lastSeen) > ttl
}
