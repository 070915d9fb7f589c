package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventplatform/internal/domain"
)

type rsvpService struct {
	eventRepo    domain.EventRepository
	userRepo     domain.UserRepository
	attendeeRepo domain.AttendeeRepository
	emailService domain.EmailService
	cache        domain.EventCache
	logger       *slog.Logger
}

// NewRSVPService creates the RSVP coordinator. emailService and cache may be
// nil; confirmation emails and cache invalidation are then skipped.
func NewRSVPService(
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	attendeeRepo domain.AttendeeRepository,
	emailService domain.EmailService,
	cache domain.EventCache,
	logger *slog.Logger,
) domain.RSVPService {
	return &rsvpService{
		eventRepo:    eventRepo,
		userRepo:     userRepo,
		attendeeRepo: attendeeRepo,
		emailService: emailService,
		cache:        cache,
		logger:       logger,
	}
}

// Join adds the user to the event's attendee set. All preconditions are
// enforced by the repository inside one atomic storage operation, so
// concurrent joins on the last open seat resolve to exactly one success.
func (s *rsvpService) Join(ctx context.Context, eventID, userID string) (*domain.EventDetails, error) {
	if err := s.attendeeRepo.Join(ctx, eventID, userID, time.Now()); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound),
			errors.Is(err, domain.ErrEventClosed),
			errors.Is(err, domain.ErrAlreadyJoined),
			errors.Is(err, domain.ErrEventFull):
			return nil, err
		}
		return nil, fmt.Errorf("join event: %w", err)
	}
	s.invalidate(ctx, eventID)

	details, err := s.details(ctx, eventID)
	if err != nil {
		return nil, err
	}
	s.sendConfirmation(ctx, details, userID)
	return details, nil
}

// Leave removes the user from the event's attendee set.
func (s *rsvpService) Leave(ctx context.Context, eventID, userID string) (*domain.EventDetails, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if err := s.attendeeRepo.Leave(ctx, eventID, userID); err != nil {
		if errors.Is(err, domain.ErrNotJoined) {
			return nil, domain.ErrNotJoined
		}
		return nil, fmt.Errorf("leave event: %w", err)
	}
	s.invalidate(ctx, eventID)
	return s.details(ctx, eventID)
}

// Status reports membership and occupancy. Read-only, no side effects.
func (s *rsvpService) Status(ctx context.Context, eventID, userID string) (*domain.RSVPStatus, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	count, err := s.attendeeRepo.Count(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count attendees: %w", err)
	}
	isAttending, err := s.attendeeRepo.Exists(ctx, eventID, userID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	return &domain.RSVPStatus{
		IsAttending:   isAttending,
		AttendeeCount: count,
		SpotsLeft:     event.Capacity - count,
		IsFull:        count >= event.Capacity,
	}, nil
}

func (s *rsvpService) details(ctx context.Context, eventID string) (*domain.EventDetails, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return populateEvent(ctx, s.userRepo, s.attendeeRepo, event)
}

func (s *rsvpService) invalidate(ctx context.Context, eventID string) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, eventID)
	}
}

// sendConfirmation emails the joining user. Best effort: a mail failure never
// fails the join that already committed.
func (s *rsvpService) sendConfirmation(ctx context.Context, details *domain.EventDetails, userID string) {
	if s.emailService == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "rsvp confirmation skipped", "event_id", details.ID, "user_id", userID, "err", err)
		return
	}
	data := &domain.RSVPConfirmationEmailData{
		Email:         user.Email,
		Name:          user.Name,
		EventTitle:    details.Title,
		EventLocation: details.Location,
		EventTime:     details.DateTime,
		SpotsLeft:     details.SpotsLeft,
	}
	if err := s.emailService.SendRSVPConfirmation(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "rsvp confirmation failed", "event_id", details.ID, "user_id", userID, "err", err)
	}
}
