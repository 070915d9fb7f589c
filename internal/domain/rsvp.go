package domain

import (
	"context"
	"time"
)

// RSVPStatus is the read-only occupancy view of an event for one user.
// swagger:model RSVPStatus
type RSVPStatus struct {
	IsAttending   bool `json:"is_attending"`
	AttendeeCount int  `json:"attendee_count"`
	SpotsLeft     int  `json:"spots_left"`
	IsFull        bool `json:"is_full"`
}

// AttendeeRepository is the storage port for the attendee set of an event.
//
// Join must be atomic at the storage layer: its preconditions (event exists,
// event not closed, user not already a member, attendee count below capacity)
// are re-checked at the instant of the write, so two concurrent joins racing
// for the last seat can never both succeed. It returns ErrNotFound,
// ErrEventClosed, ErrAlreadyJoined, or ErrEventFull on rejection.
//
// Leave removes the membership row and returns ErrNotJoined when there was
// none. Removal only shrinks the set, so it needs no capacity guard.
type AttendeeRepository interface {
	Join(ctx context.Context, eventID, userID string, now time.Time) error
	Leave(ctx context.Context, eventID, userID string) error
	ListByEvent(ctx context.Context, eventID string) ([]UserSummary, error)
	Count(ctx context.Context, eventID string) (int, error)
	Exists(ctx context.Context, eventID, userID string) (bool, error)
}

// RSVPService coordinates join and leave transitions on an event's attendee
// set, enforcing the capacity invariant. All cross-request ordering is
// delegated to the storage layer; the service holds no state of its own.
type RSVPService interface {
	Join(ctx context.Context, eventID, userID string) (*EventDetails, error)
	Leave(ctx context.Context, eventID, userID string) (*EventDetails, error)
	Status(ctx context.Context, eventID, userID string) (*RSVPStatus, error)
}
