package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"eventplatform/internal/domain"

	"github.com/stretchr/testify/require"
)

func validInput(dateTime time.Time) domain.EventInput {
	return domain.EventInput{
		Title:       "Go Meetup",
		Description: "Monthly meetup",
		Location:    "Berlin",
		DateTime:    dateTime,
		Capacity:    50,
	}
}

func eventFixture(t *testing.T, autoJoin bool) (domain.EventService, *fakeEventRepo, *fakeUserRepo, *fakeAttendeeRepo, *fakeImageStore, *fakeEventCache) {
	t.Helper()
	users := newFakeUserRepo(
		&domain.User{ID: "creator-1", Name: "Carol", Email: "carol@example.com"},
		&domain.User{ID: "user-a", Name: "Alice", Email: "alice@example.com"},
	)
	events := newFakeEventRepo()
	attendees := newFakeAttendeeRepo(events, users)
	images := &fakeImageStore{}
	cache := newFakeEventCache()
	svc := NewEventService(events, users, attendees, images, cache, autoJoin)
	return svc, events, users, attendees, images, cache
}

func TestEventService_Create(t *testing.T) {
	ctx := context.Background()
	tomorrow := time.Now().Add(24 * time.Hour)

	t.Run("success", func(t *testing.T) {
		svc, _, _, _, _, _ := eventFixture(t, false)

		details, err := svc.Create(ctx, "creator-1", validInput(tomorrow), nil)
		require.NoError(t, err)
		require.Equal(t, "ev-new", details.ID)
		require.Equal(t, "Carol", details.Creator.Name)
		require.Equal(t, 0, details.AttendeeCount)
		require.Equal(t, 50, details.SpotsLeft)
	})

	t.Run("creator auto join consumes the first seat", func(t *testing.T) {
		svc, _, _, _, _, _ := eventFixture(t, true)

		details, err := svc.Create(ctx, "creator-1", validInput(tomorrow), nil)
		require.NoError(t, err)
		require.Equal(t, 1, details.AttendeeCount)
		require.Equal(t, 49, details.SpotsLeft)
		require.Equal(t, "creator-1", details.Attendees[0].ID)
	})

	t.Run("with image", func(t *testing.T) {
		svc, _, _, _, images, _ := eventFixture(t, false)

		upload := &domain.ImageUpload{Filename: "banner.png", ContentType: "image/png", Size: 128, Data: strings.NewReader("png")}
		details, err := svc.Create(ctx, "creator-1", validInput(tomorrow), upload)
		require.NoError(t, err)
		require.NotNil(t, details.Image)
		require.Equal(t, 1, images.uploaded)
	})

	t.Run("unknown owner", func(t *testing.T) {
		svc, _, _, _, _, _ := eventFixture(t, false)

		_, err := svc.Create(ctx, "ghost", validInput(tomorrow), nil)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("validation", func(t *testing.T) {
		svc, _, _, _, _, _ := eventFixture(t, false)

		tests := []struct {
			name   string
			mutate func(in *domain.EventInput)
		}{
			{"empty title", func(in *domain.EventInput) { in.Title = "  " }},
			{"title too long", func(in *domain.EventInput) { in.Title = strings.Repeat("x", domain.MaxTitleLen+1) }},
			{"empty description", func(in *domain.EventInput) { in.Description = "" }},
			{"description too long", func(in *domain.EventInput) { in.Description = strings.Repeat("x", domain.MaxDescriptionLen+1) }},
			{"empty location", func(in *domain.EventInput) { in.Location = "" }},
			{"location too long", func(in *domain.EventInput) { in.Location = strings.Repeat("x", domain.MaxLocationLen+1) }},
			{"zero date", func(in *domain.EventInput) { in.DateTime = time.Time{} }},
			{"zero capacity", func(in *domain.EventInput) { in.Capacity = 0 }},
			{"negative capacity", func(in *domain.EventInput) { in.Capacity = -3 }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				in := validInput(tomorrow)
				tt.mutate(&in)
				_, err := svc.Create(ctx, "creator-1", in, nil)
				require.ErrorIs(t, err, domain.ErrInvalidInput)
			})
		}
	})
}

func TestEventService_Update(t *testing.T) {
	ctx := context.Background()
	tomorrow := time.Now().Add(24 * time.Hour)

	t.Run("success", func(t *testing.T) {
		svc, _, _, _, _, _ := eventFixture(t, false)
		created, err := svc.Create(ctx, "creator-1", validInput(tomorrow), nil)
		require.NoError(t, err)

		in := validInput(tomorrow)
		in.Title = "Go Meetup (moved)"
		in.Capacity = 80
		details, err := svc.Update(ctx, created.ID, "creator-1", in, nil)
		require.NoError(t, err)
		require.Equal(t, "Go Meetup (moved)", details.Title)
		require.Equal(t, 80, details.Capacity)
	})

	t.Run("only the creator may update", func(t *testing.T) {
		svc, _, _, _, _, _ := eventFixture(t, false)
		created, err := svc.Create(ctx, "creator-1", validInput(tomorrow), nil)
		require.NoError(t, err)

		_, err = svc.Update(ctx, created.ID, "user-a", validInput(tomorrow), nil)
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("replacing the image deletes the old object", func(t *testing.T) {
		svc, _, _, _, images, _ := eventFixture(t, false)
		first := &domain.ImageUpload{Filename: "old.png", ContentType: "image/png", Size: 64, Data: strings.NewReader("a")}
		created, err := svc.Create(ctx, "creator-1", validInput(tomorrow), first)
		require.NoError(t, err)
		oldKey := created.Image.Key

		second := &domain.ImageUpload{Filename: "new.png", ContentType: "image/png", Size: 64, Data: strings.NewReader("b")}
		details, err := svc.Update(ctx, created.ID, "creator-1", validInput(tomorrow), second)
		require.NoError(t, err)
		require.NotEqual(t, oldKey, details.Image.Key)
		require.Contains(t, images.deleted, oldKey)
	})

	t.Run("invalidates the cached event", func(t *testing.T) {
		svc, _, _, _, _, cache := eventFixture(t, false)
		created, err := svc.Create(ctx, "creator-1", validInput(tomorrow), nil)
		require.NoError(t, err)

		_, err = svc.Update(ctx, created.ID, "creator-1", validInput(tomorrow), nil)
		require.NoError(t, err)
		require.Contains(t, cache.invalidated, created.ID)
	})

	t.Run("unknown event", func(t *testing.T) {
		svc, _, _, _, _, _ := eventFixture(t, false)

		_, err := svc.Update(ctx, "missing", "creator-1", validInput(tomorrow), nil)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventService_Delete(t *testing.T) {
	ctx := context.Background()
	tomorrow := time.Now().Add(24 * time.Hour)

	t.Run("success removes the stored image", func(t *testing.T) {
		svc, events, _, _, images, _ := eventFixture(t, false)
		upload := &domain.ImageUpload{Filename: "banner.png", ContentType: "image/png", Size: 64, Data: strings.NewReader("a")}
		created, err := svc.Create(ctx, "creator-1", validInput(tomorrow), upload)
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, created.ID, "creator-1"))
		require.Empty(t, events.byID)
		require.Contains(t, images.deleted, created.Image.Key)
	})

	t.Run("only the creator may delete", func(t *testing.T) {
		svc, _, _, _, _, _ := eventFixture(t, false)
		created, err := svc.Create(ctx, "creator-1", validInput(tomorrow), nil)
		require.NoError(t, err)

		require.ErrorIs(t, svc.Delete(ctx, created.ID, "user-a"), domain.ErrForbidden)
	})

	t.Run("unknown event", func(t *testing.T) {
		svc, _, _, _, _, _ := eventFixture(t, false)

		require.ErrorIs(t, svc.Delete(ctx, "missing", "creator-1"), domain.ErrNotFound)
	})
}

func TestEventService_Get(t *testing.T) {
	ctx := context.Background()
	tomorrow := time.Now().Add(24 * time.Hour)

	t.Run("populates details and fills the cache", func(t *testing.T) {
		svc, _, _, attendees, _, cache := eventFixture(t, false)
		created, err := svc.Create(ctx, "creator-1", validInput(tomorrow), nil)
		require.NoError(t, err)
		require.NoError(t, attendees.Join(ctx, created.ID, "user-a", time.Now()))

		details, err := svc.Get(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, 1, details.AttendeeCount)
		require.Equal(t, 49, details.SpotsLeft)
		require.Equal(t, "Alice", details.Attendees[0].Name)

		cached, err := cache.GetDetails(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, details, cached)
	})

	t.Run("serves from cache when present", func(t *testing.T) {
		svc, events, _, _, _, cache := eventFixture(t, false)
		created, err := svc.Create(ctx, "creator-1", validInput(tomorrow), nil)
		require.NoError(t, err)

		_, err = svc.Get(ctx, created.ID)
		require.NoError(t, err)

		// The backing row is gone but the cached copy still serves.
		delete(events.byID, created.ID)
		details, err := svc.Get(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, created.ID, details.ID)

		require.NoError(t, cache.Invalidate(ctx, created.ID))
		_, err = svc.Get(ctx, created.ID)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventService_Search(t *testing.T) {
	ctx := context.Background()
	tomorrow := time.Now().Add(24 * time.Hour)

	svc, events, _, _, _, _ := eventFixture(t, false)
	created, err := svc.Create(ctx, "creator-1", validInput(tomorrow), nil)
	require.NoError(t, err)
	events.searchResult = []*domain.Event{events.byID[created.ID]}

	filter := domain.EventFilter{Text: "meetup", Sort: domain.SortByPopularity}
	results, err := svc.Search(ctx, filter)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, created.ID, results[0].ID)
	require.Equal(t, filter, events.lastFilter)
}

func TestEventService_Listings(t *testing.T) {
	ctx := context.Background()
	tomorrow := time.Now().Add(24 * time.Hour)

	svc, events, _, _, _, _ := eventFixture(t, false)
	created, err := svc.Create(ctx, "creator-1", validInput(tomorrow), nil)
	require.NoError(t, err)
	events.byCreator = []*domain.Event{events.byID[created.ID]}
	events.byAttendee = []*domain.Event{events.byID[created.ID]}

	mine, err := svc.ListByCreator(ctx, "creator-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)

	attending, err := svc.ListByAttendee(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, attending, 1)
}
