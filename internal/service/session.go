package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/loadline/collab/internal/domain"
	"github.com/rs/zerolog/log"
)

// SessionService manages collaboration session lifecycle: creation, join,
// leave, and the host/participant membership rules.
type SessionService struct {
	sessionRepo     domain.SessionRepository
	participantRepo domain.ParticipantRepository
}

// NewSessionService creates a new session service
func NewSessionService(sessionRepo domain.SessionRepository, participantRepo domain.ParticipantRepository) *SessionService {
	return &SessionService{
		sessionRepo:     sessionRepo,
		participantRepo: participantRepo,
	}
}

// Create creates an active session for the given resource and enrolls the
// host as its first participant with full permissions.
func (s *SessionService) Create(ctx context.Context, resourceType, resourceID, sessionName string, hostUserID uuid.UUID) (*domain.Session, error) {
	if resourceType == "" || resourceID == "" {
		return nil, domain.ErrInvalidResourceRef
	}

	now := time.Now()
	session := &domain.Session{
		ID:               uuid.New(),
		ResourceType:     resourceType,
		ResourceID:       resourceID,
		SessionName:      sessionName,
		HostUserID:       hostUserID,
		Status:           domain.SessionActive,
		ParticipantCount: 1,
		CreatedAt:        now,
	}
	host := &domain.Participant{
		ID:          uuid.New(),
		SessionID:   session.ID,
		UserID:      hostUserID,
		Role:        domain.RoleHost,
		IsActive:    true,
		Permissions: domain.HostPermissions(),
		JoinedAt:    now,
	}

	if err := s.sessionRepo.Create(ctx, session, host); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Info().
		Str("session_id", session.ID.String()).
		Str("resource_type", resourceType).
		Str("resource_id", resourceID).
		Str("host_user_id", hostUserID.String()).
		Msg("Collaboration session created")

	return session, nil
}

// Get returns the session with the given id
func (s *SessionService) Get(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	return s.sessionRepo.Get(ctx, sessionID)
}

// Join adds the user to an active session, or reactivates their existing
// membership. Returns the session with its refreshed participant count.
func (s *SessionService) Join(ctx context.Context, sessionID, userID uuid.UUID) (*domain.Session, error) {
	session, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionActive {
		return nil, domain.ErrSessionInactive
	}

	p := &domain.Participant{
		ID:          uuid.New(),
		SessionID:   sessionID,
		UserID:      userID,
		Role:        domain.RoleParticipant,
		IsActive:    true,
		Permissions: domain.DefaultPermissions(),
		JoinedAt:    time.Now(),
	}
	if _, err := s.participantRepo.Join(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to join session: %w", err)
	}

	// Re-read so the returned session carries the recomputed count.
	return s.sessionRepo.Get(ctx, sessionID)
}

// Leave deactivates the user's membership. Leaving a session the user is
// not an active member of is a no-op.
func (s *SessionService) Leave(ctx context.Context, sessionID, userID uuid.UUID) error {
	if _, err := s.sessionRepo.Get(ctx, sessionID); err != nil {
		return err
	}
	if err := s.participantRepo.Leave(ctx, sessionID, userID); err != nil {
		return fmt.Errorf("failed to leave session: %w", err)
	}
	return nil
}

// End marks the session ended. Requires the caller to hold the moderate
// capability.
func (s *SessionService) End(ctx context.Context, sessionID, userID uuid.UUID) error {
	if _, err := s.sessionRepo.Get(ctx, sessionID); err != nil {
		return err
	}

	p, err := s.participantRepo.Get(ctx, sessionID, userID)
	if err != nil {
		return fmt.Errorf("failed to get participant: %w", err)
	}
	if p == nil || !p.IsActive {
		return domain.ErrNotParticipant
	}
	if !p.Permissions.CanModerate {
		return domain.ErrPermissionDenied
	}

	if err := s.sessionRepo.SetStatus(ctx, sessionID, domain.SessionEnded); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}

	log.Info().
		Str("session_id", sessionID.String()).
		Str("ended_by", userID.String()).
		Msg("Collaboration session ended")
	return nil
}

// ListActive returns active sessions for the given resource
func (s *SessionService) ListActive(ctx context.Context, resourceType, resourceID string) ([]domain.Session, error) {
	if resourceType == "" || resourceID == "" {
		return nil, domain.ErrInvalidResourceRef
	}
	sessions, err := s.sessionRepo.ListActive(ctx, resourceType, resourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// Participants returns the active participant roster for a session
func (s *SessionService) Participants(ctx context.Context, sessionID uuid.UUID) ([]domain.Participant, error) {
	if _, err := s.sessionRepo.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	participants, err := s.participantRepo.ListActive(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return participants, nil
}

// ActiveParticipant returns the caller's membership if it is active, or
// ErrNotParticipant. Used by the realtime layer for authorization context.
func (s *SessionService) ActiveParticipant(ctx context.Context, sessionID, userID uuid.UUID) (*domain.Participant, error) {
	session, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionActive {
		return nil, domain.ErrSessionInactive
	}

	p, err := s.participantRepo.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	if p == nil || !p.IsActive {
		return nil, domain.ErrNotParticipant
	}
	return p, nil
}
