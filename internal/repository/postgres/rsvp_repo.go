package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventplatform/internal/domain"
)

type attendeeRepository struct {
	DB *sql.DB
}

func NewAttendeeRepository(db *sql.DB) domain.AttendeeRepository {
	return &attendeeRepository{
		DB: db,
	}
}

// Join adds userID to the event's attendee set inside a single transaction.
//
// The event row is locked with SELECT ... FOR UPDATE, which serializes
// concurrent joins on the same event: every precondition (event not closed,
// user not already a member, count below capacity) is evaluated while the
// lock is held, so the capacity invariant holds at the instant of the insert,
// not just at an earlier read. Two requests racing for the last open seat
// queue on the lock and exactly one of them commits; the other sees the
// committed row count and gets ErrEventFull.
func (r *attendeeRepository) Join(ctx context.Context, eventID, userID string, now time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin join transaction: %w", err)
	}
	defer tx.Rollback()

	var capacity int
	var dateTime time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT capacity, date_time FROM events WHERE id = $1 FOR UPDATE`,
		eventID,
	).Scan(&capacity, &dateTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("lock event row: %w", err)
	}

	if dateTime.Before(now) {
		return domain.ErrEventClosed
	}

	var isMember bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM event_attendees WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID,
	).Scan(&isMember)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if isMember {
		return domain.ErrAlreadyJoined
	}

	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_attendees WHERE event_id = $1`,
		eventID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("count attendees: %w", err)
	}
	if count >= capacity {
		return domain.ErrEventFull
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO event_attendees (event_id, user_id, created_at) VALUES ($1, $2, $3)`,
		eventID, userID, now,
	)
	if err != nil {
		return fmt.Errorf("insert attendee: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit join transaction: %w", err)
	}
	return nil
}

// Leave deletes the membership row. No transaction: removal only shrinks the
// attendee set, so there is no capacity race to guard against.
func (r *attendeeRepository) Leave(ctx context.Context, eventID, userID string) error {
	result, err := r.DB.ExecContext(ctx,
		`DELETE FROM event_attendees WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotJoined
	}
	return nil
}

// ListByEvent returns attendee summaries in join order for display.
func (r *attendeeRepository) ListByEvent(ctx context.Context, eventID string) ([]domain.UserSummary, error) {
	query := `
		SELECT u.id, u.name, u.email
		FROM event_attendees a
		JOIN users u ON u.id = a.user_id
		WHERE a.event_id = $1
		ORDER BY a.created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attendees := make([]domain.UserSummary, 0)
	for rows.Next() {
		var u domain.UserSummary
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, err
		}
		attendees = append(attendees, u)
	}
	return attendees, rows.Err()
}

func (r *attendeeRepository) Count(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_attendees WHERE event_id = $1`,
		eventID,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *attendeeRepository) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM event_attendees WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
