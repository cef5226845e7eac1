package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/loadline/collab/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockSessionRepository mocks the SessionRepository interface
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session, host *domain.Participant) error {
	args := m.Called(ctx, session, host)
	return args.Error(0)
}

func (m *MockSessionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) ListActive(ctx context.Context, resourceType, resourceID string) ([]domain.Session, error) {
	args := m.Called(ctx, resourceType, resourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Session), args.Error(1)
}

func (m *MockSessionRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.SessionStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockParticipantRepository mocks the ParticipantRepository interface
type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) Join(ctx context.Context, p *domain.Participant) (*domain.Participant, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Participant), args.Error(1)
}

func (m *MockParticipantRepository) Leave(ctx context.Context, sessionID, userID uuid.UUID) error {
	args := m.Called(ctx, sessionID, userID)
	return args.Error(0)
}

func (m *MockParticipantRepository) Get(ctx context.Context, sessionID, userID uuid.UUID) (*domain.Participant, error) {
	args := m.Called(ctx, sessionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Participant), args.Error(1)
}

func (m *MockParticipantRepository) ListActive(ctx context.Context, sessionID uuid.UUID) ([]domain.Participant, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Participant), args.Error(1)
}

// MockAnnotationRepository mocks the AnnotationRepository interface
type MockAnnotationRepository struct {
	mock.Mock
}

func (m *MockAnnotationRepository) Create(ctx context.Context, a *domain.Annotation) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAnnotationRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Annotation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Annotation), args.Error(1)
}

func (m *MockAnnotationRepository) ListVisible(ctx context.Context, sessionID uuid.UUID) ([]domain.Annotation, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Annotation), args.Error(1)
}

func (m *MockAnnotationRepository) Update(ctx context.Context, id uuid.UUID, update *domain.AnnotationUpdate) error {
	args := m.Called(ctx, id, update)
	return args.Error(0)
}

func (m *MockAnnotationRepository) SetVisibility(ctx context.Context, id uuid.UUID, v domain.Visibility) error {
	args := m.Called(ctx, id, v)
	return args.Error(0)
}

// MockCommentRepository mocks the CommentRepository interface
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCommentRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.Comment, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}
