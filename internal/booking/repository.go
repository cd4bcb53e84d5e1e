package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"gymdesk/internal/apperr"
)

const bookingColumns = `id, schedule_id, client_id, booking_date, status, is_waiting_list,
		waiting_position, notes, cancellation_reason, cancelled_at, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// lockSchedule serializes all seat-changing work for one recurring
// slot. Booking and cancellation both take this lock first, in the same
// order, so they cannot deadlock against each other.
func lockSchedule(ctx context.Context, tx *sqlx.Tx, scheduleID int) error {
	var id int
	err := tx.GetContext(ctx, &id, `SELECT id FROM class_schedules WHERE id = $1 FOR UPDATE`, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("class schedule")
		}
		return err
	}
	return nil
}

func countSeats(ctx context.Context, q sqlx.QueryerContext, scheduleID int, date time.Time) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, q, &count, `
		SELECT COUNT(*)
		FROM class_bookings
		WHERE schedule_id = $1
		  AND booking_date = $2
		  AND status IN ('confirmed', 'attended')
		  AND is_waiting_list = false
	`, scheduleID, date)
	return count, err
}

func (r *repository) Book(ctx context.Context, rec BookRecord) (*ClassBooking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := lockSchedule(ctx, tx, rec.ScheduleID); err != nil {
		return nil, apperr.FromPq(err)
	}

	var existing bool
	err = tx.GetContext(ctx, &existing, `
		SELECT EXISTS(
			SELECT 1 FROM class_bookings
			WHERE schedule_id = $1 AND client_id = $2 AND booking_date = $3
			  AND status IN ('reserved', 'confirmed', 'attended')
		)
	`, rec.ScheduleID, rec.ClientID, rec.BookingDate)
	if err != nil {
		return nil, apperr.FromPq(err)
	}
	if existing {
		return nil, apperr.Duplicate("client already has a booking for this class on this date")
	}

	seats, err := countSeats(ctx, tx, rec.ScheduleID, rec.BookingDate)
	if err != nil {
		return nil, apperr.FromPq(err)
	}

	var b ClassBooking
	if seats >= rec.MaxCapacity {
		// Full: queue behind the current tail. MAX+1 rather than a
		// count, since promotions leave gaps in the position sequence.
		err = tx.QueryRowxContext(ctx, `
			INSERT INTO class_bookings
				(schedule_id, client_id, booking_date, status, is_waiting_list, waiting_position, notes)
			SELECT $1, $2, $3, 'reserved', true, COALESCE(MAX(waiting_position), 0) + 1, $4
			FROM class_bookings
			WHERE schedule_id = $1 AND booking_date = $3
			  AND is_waiting_list = true AND status = 'reserved'
			RETURNING `+bookingColumns,
			rec.ScheduleID, rec.ClientID, rec.BookingDate, rec.Notes).StructScan(&b)
		if err != nil {
			return nil, apperr.FromPq(err)
		}
	} else {
		err = tx.QueryRowxContext(ctx, `
			INSERT INTO class_bookings
				(schedule_id, client_id, booking_date, status, is_waiting_list, notes)
			VALUES ($1, $2, $3, 'confirmed', false, $4)
			RETURNING `+bookingColumns,
			rec.ScheduleID, rec.ClientID, rec.BookingDate, rec.Notes).StructScan(&b)
		if err != nil {
			return nil, apperr.FromPq(err)
		}

		if err := bumpClassesUsed(ctx, tx, rec.ClientID); err != nil {
			return nil, apperr.FromPq(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.FromPq(err)
	}

	return &b, nil
}

func bumpClassesUsed(ctx context.Context, tx *sqlx.Tx, clientID int) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE memberships
		SET classes_used = classes_used + 1, updated_at = NOW()
		WHERE client_id = $1 AND status = 'active'
	`, clientID)
	return err
}

func (r *repository) Cancel(ctx context.Context, bookingID int, scheduleID int, reason string) (*ClassBooking, *ClassBooking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	if err := lockSchedule(ctx, tx, scheduleID); err != nil {
		return nil, nil, apperr.FromPq(err)
	}

	var cancelled ClassBooking
	err = tx.QueryRowxContext(ctx, `
		UPDATE class_bookings
		SET status = 'cancelled', cancellation_reason = $2, cancelled_at = NOW()
		WHERE id = $1 AND status IN ('reserved', 'confirmed')
		RETURNING `+bookingColumns, bookingID, reason).StructScan(&cancelled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, apperr.InvalidState("booking is not open for cancellation")
		}
		return nil, nil, apperr.FromPq(err)
	}

	// A freed seat pulls in the head of the queue. Cancelling a
	// waitlisted booking frees no seat, so nobody moves. Remaining
	// positions are left untouched: they are stable identifiers, not
	// ranks.
	var promoted *ClassBooking
	if !cancelled.IsWaitingList {
		var p ClassBooking
		err = tx.QueryRowxContext(ctx, `
			UPDATE class_bookings
			SET status = 'confirmed', is_waiting_list = false, waiting_position = NULL
			WHERE id = (
				SELECT id FROM class_bookings
				WHERE schedule_id = $1 AND booking_date = $2
				  AND is_waiting_list = true AND status = 'reserved'
				ORDER BY waiting_position ASC
				LIMIT 1
			)
			RETURNING `+bookingColumns,
			cancelled.ScheduleID, cancelled.BookingDate).StructScan(&p)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, nil, apperr.FromPq(err)
		}
		if err == nil {
			promoted = &p
			if err := bumpClassesUsed(ctx, tx, p.ClientID); err != nil {
				return nil, nil, apperr.FromPq(err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, apperr.FromPq(err)
	}

	return &cancelled, promoted, nil
}

func (r *repository) MarkAttended(ctx context.Context, bookingID int) (*ClassBooking, error) {
	var b ClassBooking
	err := r.db.QueryRowxContext(ctx, `
		UPDATE class_bookings
		SET status = 'attended'
		WHERE id = $1 AND status IN ('reserved', 'confirmed')
		RETURNING `+bookingColumns, bookingID).StructScan(&b)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.InvalidState("booking cannot be marked attended in its current state")
		}
		return nil, err
	}

	return &b, nil
}

func (r *repository) MarkNoShow(ctx context.Context, bookingID int) (*ClassBooking, error) {
	var b ClassBooking
	err := r.db.QueryRowxContext(ctx, `
		UPDATE class_bookings
		SET status = 'no_show'
		WHERE id = $1 AND status IN ('reserved', 'confirmed')
		RETURNING `+bookingColumns, bookingID).StructScan(&b)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.InvalidState("booking cannot be marked no-show in its current state")
		}
		return nil, err
	}

	return &b, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*ClassBooking, error) {
	var b ClassBooking
	err := r.db.GetContext(ctx, &b, `SELECT `+bookingColumns+` FROM class_bookings WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("booking")
		}
		return nil, err
	}

	return &b, nil
}

func (r *repository) CountSeats(ctx context.Context, scheduleID int, date time.Time) (int, error) {
	return countSeats(ctx, r.db, scheduleID, date)
}

func (r *repository) CountWaitlisted(ctx context.Context, scheduleID int, date time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM class_bookings
		WHERE schedule_id = $1 AND booking_date = $2
		  AND is_waiting_list = true AND status = 'reserved'
	`, scheduleID, date)
	return count, err
}

func (r *repository) ListForSlot(ctx context.Context, scheduleID int, date time.Time) ([]ClassBooking, error) {
	bookings := []ClassBooking{}
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT `+bookingColumns+`
		FROM class_bookings
		WHERE schedule_id = $1 AND booking_date = $2
		ORDER BY is_waiting_list ASC, waiting_position ASC NULLS FIRST, created_at ASC
	`, scheduleID, date)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) ListByClient(ctx context.Context, clientID int) ([]ClassBooking, error) {
	bookings := []ClassBooking{}
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT `+bookingColumns+`
		FROM class_bookings
		WHERE client_id = $1
		ORDER BY booking_date DESC, created_at DESC
	`, clientID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}
