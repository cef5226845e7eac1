package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/loadline/collab/internal/domain"
)

// memStore is an in-memory implementation of all four repositories sharing
// one mutex, mirroring the transactional guarantee of the postgres layer:
// a membership write and the participant count recompute are one atomic
// step. Used where tests need real concurrent execution or multi-entity
// flows that testify mocks make unwieldy.
type memStore struct {
	mu           sync.Mutex
	sessions     map[uuid.UUID]*domain.Session
	participants map[uuid.UUID]map[uuid.UUID]*domain.Participant
	annotations  map[uuid.UUID]*domain.Annotation
	comments     map[uuid.UUID]*domain.Comment
	commentOrder []uuid.UUID
	annotOrder   []uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{
		sessions:     make(map[uuid.UUID]*domain.Session),
		participants: make(map[uuid.UUID]map[uuid.UUID]*domain.Participant),
		annotations:  make(map[uuid.UUID]*domain.Annotation),
		comments:     make(map[uuid.UUID]*domain.Comment),
	}
}

func (s *memStore) recount(sessionID uuid.UUID) {
	n := 0
	for _, p := range s.participants[sessionID] {
		if p.IsActive {
			n++
		}
	}
	if sess, ok := s.sessions[sessionID]; ok {
		sess.ParticipantCount = n
	}
}

func (s *memStore) Create(ctx context.Context, session *domain.Session, host *domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	s.sessions[session.ID] = &cp
	hp := *host
	s.participants[session.ID] = map[uuid.UUID]*domain.Participant{host.UserID: &hp}
	s.recount(session.ID)
	return nil
}

func (s *memStore) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *memStore) ListActive(ctx context.Context, resourceType, resourceID string) ([]domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Session
	for _, sess := range s.sessions {
		if sess.ResourceType == resourceType && sess.ResourceID == resourceID && sess.Status == domain.SessionActive {
			out = append(out, *sess)
		}
	}
	return out, nil
}

func (s *memStore) SetStatus(ctx context.Context, id uuid.UUID, status domain.SessionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	sess.Status = status
	return nil
}

func (s *memStore) Join(ctx context.Context, p *domain.Participant) (*domain.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.participants[p.SessionID]
	if !ok {
		bucket = make(map[uuid.UUID]*domain.Participant)
		s.participants[p.SessionID] = bucket
	}
	if existing, ok := bucket[p.UserID]; ok {
		existing.IsActive = true
		existing.LeftAt = nil
		s.recount(p.SessionID)
		cp := *existing
		return &cp, nil
	}
	cp := *p
	bucket[p.UserID] = &cp
	s.recount(p.SessionID)
	out := cp
	return &out, nil
}

func (s *memStore) Leave(ctx context.Context, sessionID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.participants[sessionID][userID]; ok && p.IsActive {
		now := time.Now()
		p.IsActive = false
		p.LeftAt = &now
	}
	s.recount(sessionID)
	return nil
}

func (s *memStore) GetParticipant(ctx context.Context, sessionID, userID uuid.UUID) (*domain.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.participants[sessionID][userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) ListActiveParticipants(ctx context.Context, sessionID uuid.UUID) ([]domain.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Participant
	for _, p := range s.participants[sessionID] {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *memStore) CreateAnnotation(ctx context.Context, a *domain.Annotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.annotations[a.ID] = &cp
	s.annotOrder = append(s.annotOrder, a.ID)
	return nil
}

func (s *memStore) GetAnnotation(ctx context.Context, id uuid.UUID) (*domain.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.annotations[id]
	if !ok {
		return nil, domain.ErrAnnotationNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *memStore) ListVisible(ctx context.Context, sessionID uuid.UUID) ([]domain.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Annotation
	for _, id := range s.annotOrder {
		a := s.annotations[id]
		if a.SessionID == sessionID && a.Visibility == domain.VisibilityVisible {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *memStore) UpdateAnnotation(ctx context.Context, id uuid.UUID, update *domain.AnnotationUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.annotations[id]
	if !ok {
		return domain.ErrAnnotationNotFound
	}
	if update.Position != nil {
		a.Position = *update.Position
	}
	if update.Content != nil {
		a.Content = *update.Content
	}
	if update.Color != nil {
		a.Color = *update.Color
	}
	return nil
}

func (s *memStore) SetVisibility(ctx context.Context, id uuid.UUID, v domain.Visibility) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.annotations[id]
	if !ok {
		return domain.ErrAnnotationNotFound
	}
	a.Visibility = v
	return nil
}

func (s *memStore) CreateComment(ctx context.Context, c *domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.comments[c.ID] = &cp
	s.commentOrder = append(s.commentOrder, c.ID)
	return nil
}

func (s *memStore) GetComment(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Comment
	for _, id := range s.commentOrder {
		c := s.comments[id]
		if c.SessionID == sessionID {
			out = append(out, *c)
		}
	}
	return out, nil
}

// Adapters binding memStore to the narrower repository interfaces.

type memSessionRepo struct{ *memStore }
type memParticipantRepo struct{ *memStore }
type memAnnotationRepo struct{ *memStore }
type memCommentRepo struct{ *memStore }

func (r memParticipantRepo) Get(ctx context.Context, sessionID, userID uuid.UUID) (*domain.Participant, error) {
	return r.GetParticipant(ctx, sessionID, userID)
}

func (r memParticipantRepo) ListActive(ctx context.Context, sessionID uuid.UUID) ([]domain.Participant, error) {
	return r.ListActiveParticipants(ctx, sessionID)
}

func (r memAnnotationRepo) Create(ctx context.Context, a *domain.Annotation) error {
	return r.CreateAnnotation(ctx, a)
}

func (r memAnnotationRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Annotation, error) {
	return r.GetAnnotation(ctx, id)
}

func (r memAnnotationRepo) Update(ctx context.Context, id uuid.UUID, update *domain.AnnotationUpdate) error {
	return r.UpdateAnnotation(ctx, id, update)
}

func (r memCommentRepo) Create(ctx context.Context, c *domain.Comment) error {
	return r.CreateComment(ctx, c)
}

func (r memCommentRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	return r.GetComment(ctx, id)
}

// newMemServices wires the services over one shared in-memory store.
func newMemServices() (*SessionService, *CollabService, *memStore) {
	store := newMemStore()
	sessions := NewSessionService(memSessionRepo{store}, memParticipantRepo{store})
	collab := NewCollabService(sessions, memAnnotationRepo{store}, memCommentRepo{store})
	return sessions, collab, store
}
