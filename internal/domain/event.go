package domain

import (
	"context"
	"io"
	"time"
)

// Field length limits for event input validation.
const (
	MaxTitleLen       = 100
	MaxDescriptionLen = 2000
	MaxLocationLen    = 200
)

// EventImage is a reference to an externally stored image: a public URL plus
// the storage key needed to delete the object later.
type EventImage struct {
	URL string `json:"url"`
	Key string `json:"key,omitempty"`
}

// Event represents a hostable gathering with a time, place, and attendee capacity.
// swagger:model Event
type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	DateTime    time.Time   `json:"date_time"`
	Capacity    int         `json:"capacity"`
	Image       *EventImage `json:"image,omitempty"`
	CreatorID   string      `json:"creator_id"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Closed reports whether the event's date is in the past relative to now,
// which closes it for new RSVPs.
func (e *Event) Closed(now time.Time) bool {
	return e.DateTime.Before(now)
}

// UserSummary is the display-ready projection of a user embedded in event
// responses (the creator and each attendee).
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// EventDetails is an event populated with creator and attendee summaries and
// derived occupancy figures.
// swagger:model EventDetails
type EventDetails struct {
	Event
	Creator       *UserSummary  `json:"creator"`
	Attendees     []UserSummary `json:"attendees"`
	AttendeeCount int           `json:"attendee_count"`
	SpotsLeft     int           `json:"spots_left"`
}

// EventSort selects the ordering of search results.
type EventSort string

const (
	SortByDate       EventSort = "date"    // soonest first (default)
	SortByNewest     EventSort = "newest"  // most recently created first
	SortByPopularity EventSort = "popular" // most attendees first
)

// EventFilter holds the search filters for listing events. Zero values mean
// "no constraint". Only upcoming events are returned regardless of filters.
type EventFilter struct {
	Text     string
	DateFrom *time.Time
	DateTo   *time.Time
	Sort     EventSort
}

// EventInput carries the writable fields of an event for create and update.
type EventInput struct {
	Title       string
	Description string
	Location    string
	DateTime    time.Time
	Capacity    int
}

// ImageUpload is an inbound image file to attach to an event.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// ImageStore stores and deletes externally hosted event images.
type ImageStore interface {
	Upload(ctx context.Context, upload *ImageUpload) (*EventImage, error)
	Delete(ctx context.Context, key string) error
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, filter EventFilter) ([]*Event, error)
	ListByCreator(ctx context.Context, userID string) ([]*Event, error)
	ListByAttendee(ctx context.Context, userID string) ([]*Event, error)
}

// EventCache caches populated event details. Implementations must be safe for
// concurrent use; callers treat any error as a miss.
type EventCache interface {
	GetDetails(ctx context.Context, eventID string) (*EventDetails, error)
	SetDetails(ctx context.Context, details *EventDetails) error
	Invalidate(ctx context.Context, eventID string) error
}

// EventService defines the business logic for event CRUD and search.
// Update and Delete are restricted to the event's creator.
type EventService interface {
	Create(ctx context.Context, ownerID string, in EventInput, image *ImageUpload) (*EventDetails, error)
	Update(ctx context.Context, eventID, callerID string, in EventInput, image *ImageUpload) (*EventDetails, error)
	Delete(ctx context.Context, eventID, callerID string) error
	Get(ctx context.Context, eventID string) (*EventDetails, error)
	Search(ctx context.Context, filter EventFilter) ([]*EventDetails, error)
	ListByCreator(ctx context.Context, userID string) ([]*EventDetails, error)
	ListByAttendee(ctx context.Context, userID string) ([]*EventDetails, error)
}
