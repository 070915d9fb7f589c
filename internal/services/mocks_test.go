package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"eventplatform/internal/domain"
)

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	byID      map[string]*domain.User
	byEmail   map[string]*domain.User
	createErr error
	nextID    string
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	f := &fakeUserRepo{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
		nextID:  "user-new",
	}
	for _, u := range users {
		f.byID[u.ID] = u
		f.byEmail[u.Email] = u
	}
	return f
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byEmail[user.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	user.ID = f.nextID
	f.byID[user.ID] = user
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

// fakeEventRepo implements domain.EventRepository for tests.
type fakeEventRepo struct {
	byID       map[string]*domain.Event
	createErr  error
	updateErr  error
	deleteErr  error
	searchResult []*domain.Event
	byCreator  []*domain.Event
	byAttendee []*domain.Event
	nextID     string
	lastFilter domain.EventFilter
}

func newFakeEventRepo(events ...*domain.Event) *fakeEventRepo {
	f := &fakeEventRepo{
		byID:   make(map[string]*domain.Event),
		nextID: "ev-new",
	}
	for _, e := range events {
		f.byID[e.ID] = e
	}
	return f
}

func (f *fakeEventRepo) Create(ctx context.Context, event *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	event.ID = f.nextID
	f.byID[event.ID] = event
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) Update(ctx context.Context, event *domain.Event) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byID[event.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[event.ID] = event
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeEventRepo) Search(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	f.lastFilter = filter
	return f.searchResult, nil
}

func (f *fakeEventRepo) ListByCreator(ctx context.Context, userID string) ([]*domain.Event, error) {
	return f.byCreator, nil
}

func (f *fakeEventRepo) ListByAttendee(ctx context.Context, userID string) ([]*domain.Event, error) {
	return f.byAttendee, nil
}

// fakeAttendeeRepo implements domain.AttendeeRepository with the same
// semantics as the real one: Join holds a lock across its precondition checks
// and the insert, so it is safe to hammer from concurrent goroutines.
type fakeAttendeeRepo struct {
	mu       sync.Mutex
	events   *fakeEventRepo
	members  map[string][]string // eventID -> userIDs in join order
	users    *fakeUserRepo
	joinErr  error
	leaveErr error
}

func newFakeAttendeeRepo(events *fakeEventRepo, users *fakeUserRepo) *fakeAttendeeRepo {
	return &fakeAttendeeRepo{
		events:  events,
		users:   users,
		members: make(map[string][]string),
	}
}

func (f *fakeAttendeeRepo) Join(ctx context.Context, eventID, userID string, now time.Time) error {
	if f.joinErr != nil {
		return f.joinErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events.byID[eventID]
	if !ok {
		return domain.ErrNotFound
	}
	if event.DateTime.Before(now) {
		return domain.ErrEventClosed
	}
	for _, id := range f.members[eventID] {
		if id == userID {
			return domain.ErrAlreadyJoined
		}
	}
	if len(f.members[eventID]) >= event.Capacity {
		return domain.ErrEventFull
	}
	f.members[eventID] = append(f.members[eventID], userID)
	return nil
}

func (f *fakeAttendeeRepo) Leave(ctx context.Context, eventID, userID string) error {
	if f.leaveErr != nil {
		return f.leaveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	members := f.members[eventID]
	for i, id := range members {
		if id == userID {
			f.members[eventID] = append(members[:i:i], members[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotJoined
}

func (f *fakeAttendeeRepo) ListByEvent(ctx context.Context, eventID string) ([]domain.UserSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	summaries := make([]domain.UserSummary, 0, len(f.members[eventID]))
	for _, id := range f.members[eventID] {
		if u, ok := f.users.byID[id]; ok {
			summaries = append(summaries, *u.Summary())
		} else {
			summaries = append(summaries, domain.UserSummary{ID: id})
		}
	}
	return summaries, nil
}

func (f *fakeAttendeeRepo) Count(ctx context.Context, eventID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.members[eventID]), nil
}

func (f *fakeAttendeeRepo) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.members[eventID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

// fakeImageStore implements domain.ImageStore for tests.
type fakeImageStore struct {
	uploadErr error
	uploaded  int
	deleted   []string
}

func (f *fakeImageStore) Upload(ctx context.Context, upload *domain.ImageUpload) (*domain.EventImage, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploaded++
	key := "events/key-" + upload.Filename
	return &domain.EventImage{URL: "https://img.example.com/" + key, Key: key}, nil
}

func (f *fakeImageStore) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

// fakeEventCache implements domain.EventCache for tests.
type fakeEventCache struct {
	mu          sync.Mutex
	entries     map[string]*domain.EventDetails
	invalidated []string
}

func newFakeEventCache() *fakeEventCache {
	return &fakeEventCache{entries: make(map[string]*domain.EventDetails)}
}

func (f *fakeEventCache) GetDetails(ctx context.Context, eventID string) (*domain.EventDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.entries[eventID]; ok {
		return d, nil
	}
	return nil, errors.New("miss")
}

func (f *fakeEventCache) SetDetails(ctx context.Context, details *domain.EventDetails) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[details.ID] = details
	return nil
}

func (f *fakeEventCache) Invalidate(ctx context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, eventID)
	f.invalidated = append(f.invalidated, eventID)
	return nil
}

// fakeEmailService implements domain.EmailService for tests.
type fakeEmailService struct {
	mu   sync.Mutex
	sent []*domain.RSVPConfirmationEmailData
	err  error
}

func (f *fakeEmailService) SendRSVPConfirmation(ctx context.Context, data *domain.RSVPConfirmationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct {
	compareErr error
}

func (f *fakePasswordHasher) GenerateSalt() (string, error) { return "salt", nil }
func (f *fakePasswordHasher) Hash(salt, password string) (string, error) {
	return "hash-" + password, nil
}
func (f *fakePasswordHasher) Compare(hash, salt, password string) error {
	if f.compareErr != nil {
		return f.compareErr
	}
	if hash != "hash-"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err error
}

func (f *fakeTokenIssuer) Issue(userID, email string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-" + userID, nil
}
