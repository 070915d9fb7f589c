package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventplatform/internal/domain"
)

type eventService struct {
	eventRepo       domain.EventRepository
	userRepo        domain.UserRepository
	attendeeRepo    domain.AttendeeRepository
	images          domain.ImageStore
	cache           domain.EventCache
	creatorAutoJoin bool
}

// NewEventService creates an EventService. When creatorAutoJoin is true the
// creator of a new event is inserted as its first capacity-consuming attendee.
// cache may be nil.
func NewEventService(
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	attendeeRepo domain.AttendeeRepository,
	images domain.ImageStore,
	cache domain.EventCache,
	creatorAutoJoin bool,
) domain.EventService {
	return &eventService{
		eventRepo:       eventRepo,
		userRepo:        userRepo,
		attendeeRepo:    attendeeRepo,
		images:          images,
		cache:           cache,
		creatorAutoJoin: creatorAutoJoin,
	}
}

func validateEventInput(in *domain.EventInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)

	switch {
	case in.Title == "":
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	case len(in.Title) > domain.MaxTitleLen:
		return fmt.Errorf("%w: title cannot be more than %d characters", domain.ErrInvalidInput, domain.MaxTitleLen)
	case in.Description == "":
		return fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
	case len(in.Description) > domain.MaxDescriptionLen:
		return fmt.Errorf("%w: description cannot be more than %d characters", domain.ErrInvalidInput, domain.MaxDescriptionLen)
	case in.Location == "":
		return fmt.Errorf("%w: location is required", domain.ErrInvalidInput)
	case len(in.Location) > domain.MaxLocationLen:
		return fmt.Errorf("%w: location cannot be more than %d characters", domain.ErrInvalidInput, domain.MaxLocationLen)
	case in.DateTime.IsZero():
		return fmt.Errorf("%w: date_time is required", domain.ErrInvalidInput)
	case in.Capacity < 1:
		return fmt.Errorf("%w: capacity must be at least 1", domain.ErrInvalidInput)
	}
	return nil
}

func (s *eventService) Create(ctx context.Context, ownerID string, in domain.EventInput, image *domain.ImageUpload) (*domain.EventDetails, error) {
	if err := validateEventInput(&in); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("get owner: %w", err)
	}

	now := time.Now()
	event := &domain.Event{
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		DateTime:    in.DateTime,
		Capacity:    in.Capacity,
		CreatorID:   ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if image != nil {
		stored, err := s.images.Upload(ctx, image)
		if err != nil {
			return nil, fmt.Errorf("upload image: %w", err)
		}
		event.Image = stored
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		// The image is already stored; drop it so it does not leak.
		if event.Image != nil {
			_ = s.images.Delete(ctx, event.Image.Key)
		}
		return nil, fmt.Errorf("create event: %w", err)
	}

	if s.creatorAutoJoin {
		if err := s.attendeeRepo.Join(ctx, event.ID, ownerID, now); err != nil {
			return nil, fmt.Errorf("auto-join creator: %w", err)
		}
	}

	return s.populate(ctx, event)
}

func (s *eventService) Update(ctx context.Context, eventID, callerID string, in domain.EventInput, image *domain.ImageUpload) (*domain.EventDetails, error) {
	if err := validateEventInput(&in); err != nil {
		return nil, err
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.CreatorID != callerID {
		return nil, domain.ErrForbidden
	}

	event.Title = in.Title
	event.Description = in.Description
	event.Location = in.Location
	event.DateTime = in.DateTime
	event.Capacity = in.Capacity
	event.UpdatedAt = time.Now()

	var replacedKey string
	if image != nil {
		stored, err := s.images.Upload(ctx, image)
		if err != nil {
			return nil, fmt.Errorf("upload image: %w", err)
		}
		if event.Image != nil {
			replacedKey = event.Image.Key
		}
		event.Image = stored
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if replacedKey != "" {
		// Old image is unreferenced now; best effort removal.
		_ = s.images.Delete(ctx, replacedKey)
	}
	s.invalidate(ctx, eventID)

	return s.populate(ctx, event)
}

func (s *eventService) Delete(ctx context.Context, eventID, callerID string) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.CreatorID != callerID {
		return domain.ErrForbidden
	}

	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if event.Image != nil && event.Image.Key != "" {
		_ = s.images.Delete(ctx, event.Image.Key)
	}
	s.invalidate(ctx, eventID)
	return nil
}

func (s *eventService) Get(ctx context.Context, eventID string) (*domain.EventDetails, error) {
	if s.cache != nil {
		if details, err := s.cache.GetDetails(ctx, eventID); err == nil {
			return details, nil
		}
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	details, err := s.populate(ctx, event)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetDetails(ctx, details)
	}
	return details, nil
}

func (s *eventService) Search(ctx context.Context, filter domain.EventFilter) ([]*domain.EventDetails, error) {
	events, err := s.eventRepo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return s.populateAll(ctx, events)
}

func (s *eventService) ListByCreator(ctx context.Context, userID string) ([]*domain.EventDetails, error) {
	events, err := s.eventRepo.ListByCreator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list events by creator: %w", err)
	}
	return s.populateAll(ctx, events)
}

func (s *eventService) ListByAttendee(ctx context.Context, userID string) ([]*domain.EventDetails, error) {
	events, err := s.eventRepo.ListByAttendee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list events by attendee: %w", err)
	}
	return s.populateAll(ctx, events)
}

func (s *eventService) populate(ctx context.Context, event *domain.Event) (*domain.EventDetails, error) {
	return populateEvent(ctx, s.userRepo, s.attendeeRepo, event)
}

func (s *eventService) populateAll(ctx context.Context, events []*domain.Event) ([]*domain.EventDetails, error) {
	result := make([]*domain.EventDetails, 0, len(events))
	for _, event := range events {
		details, err := s.populate(ctx, event)
		if err != nil {
			return nil, err
		}
		result = append(result, details)
	}
	return result, nil
}

func (s *eventService) invalidate(ctx context.Context, eventID string) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, eventID)
	}
}

// populateEvent resolves the creator and attendee set of an event into the
// display-ready EventDetails shape. Shared by the event and RSVP services.
func populateEvent(ctx context.Context, userRepo domain.UserRepository, attendeeRepo domain.AttendeeRepository, event *domain.Event) (*domain.EventDetails, error) {
	creator, err := userRepo.GetByID(ctx, event.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("get event creator: %w", err)
	}
	attendees, err := attendeeRepo.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	return &domain.EventDetails{
		Event:         *event,
		Creator:       creator.Summary(),
		Attendees:     attendees,
		AttendeeCount: len(attendees),
		SpotsLeft:     event.Capacity - len(attendees),
	}, nil
}
