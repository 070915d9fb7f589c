package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eventplatform/internal/domain"
)

const eventColumns = `id, title, description, location, date_time, capacity, image_url, image_key, creator_id, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	imageURL, imageKey := imageColumns(e.Image)
	query := `
		INSERT INTO events (title, description, location, date_time, capacity, image_url, image_key, creator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Location, e.DateTime, e.Capacity,
		imageURL, imageKey, e.CreatorID, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	imageURL, imageKey := imageColumns(e.Image)
	query := `
		UPDATE events
		SET title = $1, description = $2, location = $3, date_time = $4, capacity = $5,
		    image_url = $6, image_key = $7, updated_at = $8
		WHERE id = $9
	`
	result, err := r.DB.ExecContext(ctx, query,
		e.Title, e.Description, e.Location, e.DateTime, e.Capacity,
		imageURL, imageKey, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Search returns upcoming events matching the filter. Text matches title,
// description, or location case-insensitively; the date range narrows the
// default date_time >= now() window.
func (r *eventRepository) Search(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	where := []string{"date_time >= now()"}
	args := []interface{}{}
	n := 1
	if text := strings.TrimSpace(filter.Text); text != "" {
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d OR location ILIKE $%d)", n, n, n))
		args = append(args, "%"+text+"%")
		n++
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("date_time >= $%d", n))
		args = append(args, *filter.DateFrom)
		n++
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("date_time <= $%d", n))
		args = append(args, *filter.DateTo)
		n++
	}

	orderBy := "date_time ASC"
	switch filter.Sort {
	case domain.SortByNewest:
		orderBy = "created_at DESC"
	case domain.SortByPopularity:
		orderBy = "(SELECT COUNT(*) FROM event_attendees a WHERE a.event_id = events.id) DESC, date_time ASC"
	}

	query := fmt.Sprintf(`SELECT %s FROM events WHERE %s ORDER BY %s`,
		eventColumns, strings.Join(where, " AND "), orderBy)
	return r.queryEvents(ctx, query, args...)
}

func (r *eventRepository) ListByCreator(ctx context.Context, userID string) ([]*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE creator_id = $1 ORDER BY date_time DESC`, eventColumns)
	return r.queryEvents(ctx, query, userID)
}

func (r *eventRepository) ListByAttendee(ctx context.Context, userID string) ([]*domain.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM events
		WHERE id IN (SELECT event_id FROM event_attendees WHERE user_id = $1)
		ORDER BY date_time ASC
	`, eventColumns)
	return r.queryEvents(ctx, query, userID)
}

func (r *eventRepository) queryEvents(ctx context.Context, query string, args ...interface{}) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var imageURL, imageKey string
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.DateTime, &e.Capacity,
		&imageURL, &imageKey, &e.CreatorID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if imageURL != "" {
		e.Image = &domain.EventImage{URL: imageURL, Key: imageKey}
	}
	return e, nil
}

func imageColumns(image *domain.EventImage) (url, key string) {
	if image == nil {
		return "", ""
	}
	return image.URL, image.Key
}
