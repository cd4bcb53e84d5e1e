package booking

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gymdesk/internal/apperr"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func bookingRows(b ClassBooking) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "schedule_id", "client_id", "booking_date", "status", "is_waiting_list",
		"waiting_position", "notes", "cancellation_reason", "cancelled_at", "created_at",
	}).AddRow(
		b.ID, b.ScheduleID, b.ClientID, b.BookingDate, b.Status, b.IsWaitingList,
		b.WaitingPosition, b.Notes, b.CancellationReason, b.CancelledAt, b.CreatedAt,
	)
}

func expectScheduleLock(mock sqlmock.Sqlmock, scheduleID int) {
	mock.ExpectQuery(`SELECT id FROM class_schedules WHERE id = \$1 FOR UPDATE`).
		WithArgs(scheduleID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(scheduleID))
}

func TestRepository_Book(t *testing.T) {
	monday := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	rec := BookRecord{ScheduleID: 1, ClientID: 3, BookingDate: monday, MaxCapacity: 10}

	t.Run("seat available inserts confirmed and bumps usage", func(t *testing.T) {
		sqlxDB, mock := newMockDB(t)
		repo := NewRepository(sqlxDB)

		mock.ExpectBegin()
		expectScheduleLock(mock, 1)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(1, 3, monday).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM class_bookings`).
			WithArgs(1, monday).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
		mock.ExpectQuery(`INSERT INTO class_bookings .+'confirmed'`).
			WithArgs(1, 3, monday, "").
			WillReturnRows(bookingRows(ClassBooking{
				ID: 42, ScheduleID: 1, ClientID: 3, BookingDate: monday,
				Status: StatusConfirmed, CreatedAt: time.Now(),
			}))
		mock.ExpectExec(`UPDATE memberships SET classes_used = classes_used \+ 1`).
			WithArgs(3).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		b, err := repo.Book(context.Background(), rec)

		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, b.Status)
		assert.False(t, b.IsWaitingList)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("full class queues at tail position", func(t *testing.T) {
		sqlxDB, mock := newMockDB(t)
		repo := NewRepository(sqlxDB)

		pos := 3
		mock.ExpectBegin()
		expectScheduleLock(mock, 1)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(1, 3, monday).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM class_bookings`).
			WithArgs(1, monday).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))
		mock.ExpectQuery(`INSERT INTO class_bookings .+'reserved', true, COALESCE\(MAX\(waiting_position\), 0\) \+ 1`).
			WithArgs(1, 3, monday, "").
			WillReturnRows(bookingRows(ClassBooking{
				ID: 43, ScheduleID: 1, ClientID: 3, BookingDate: monday,
				Status: StatusReserved, IsWaitingList: true, WaitingPosition: &pos,
				CreatedAt: time.Now(),
			}))
		mock.ExpectCommit()

		b, err := repo.Book(context.Background(), rec)

		require.NoError(t, err)
		assert.Equal(t, StatusReserved, b.Status)
		assert.True(t, b.IsWaitingList)
		require.NotNil(t, b.WaitingPosition)
		assert.Equal(t, 3, *b.WaitingPosition)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate open booking rejected", func(t *testing.T) {
		sqlxDB, mock := newMockDB(t)
		repo := NewRepository(sqlxDB)

		mock.ExpectBegin()
		expectScheduleLock(mock, 1)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(1, 3, monday).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		_, err := repo.Book(context.Background(), rec)

		assert.True(t, apperr.IsKind(err, apperr.KindDuplicate))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_Cancel(t *testing.T) {
	monday := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)

	t.Run("freed seat promotes the queue head", func(t *testing.T) {
		sqlxDB, mock := newMockDB(t)
		repo := NewRepository(sqlxDB)

		mock.ExpectBegin()
		expectScheduleLock(mock, 1)
		mock.ExpectQuery(`UPDATE class_bookings SET status = 'cancelled'`).
			WithArgs(42, "sick").
			WillReturnRows(bookingRows(ClassBooking{
				ID: 42, ScheduleID: 1, ClientID: 3, BookingDate: monday,
				Status: StatusCancelled, CreatedAt: time.Now(),
			}))
		mock.ExpectQuery(`UPDATE class_bookings SET status = 'confirmed', is_waiting_list = false`).
			WithArgs(1, monday).
			WillReturnRows(bookingRows(ClassBooking{
				ID: 50, ScheduleID: 1, ClientID: 9, BookingDate: monday,
				Status: StatusConfirmed, CreatedAt: time.Now(),
			}))
		mock.ExpectExec(`UPDATE memberships SET classes_used = classes_used \+ 1`).
			WithArgs(9).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		cancelled, promoted, err := repo.Cancel(context.Background(), 42, 1, "sick")

		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, cancelled.Status)
		require.NotNil(t, promoted)
		assert.Equal(t, 9, promoted.ClientID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty waitlist promotes nobody", func(t *testing.T) {
		sqlxDB, mock := newMockDB(t)
		repo := NewRepository(sqlxDB)

		mock.ExpectBegin()
		expectScheduleLock(mock, 1)
		mock.ExpectQuery(`UPDATE class_bookings SET status = 'cancelled'`).
			WithArgs(42, "sick").
			WillReturnRows(bookingRows(ClassBooking{
				ID: 42, ScheduleID: 1, ClientID: 3, BookingDate: monday,
				Status: StatusCancelled, CreatedAt: time.Now(),
			}))
		mock.ExpectQuery(`UPDATE class_bookings SET status = 'confirmed', is_waiting_list = false`).
			WithArgs(1, monday).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectCommit()

		cancelled, promoted, err := repo.Cancel(context.Background(), 42, 1, "sick")

		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, cancelled.Status)
		assert.Nil(t, promoted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cancelling a waitlisted booking promotes nobody", func(t *testing.T) {
		sqlxDB, mock := newMockDB(t)
		repo := NewRepository(sqlxDB)

		pos := 2
		mock.ExpectBegin()
		expectScheduleLock(mock, 1)
		mock.ExpectQuery(`UPDATE class_bookings SET status = 'cancelled'`).
			WithArgs(42, "sick").
			WillReturnRows(bookingRows(ClassBooking{
				ID: 42, ScheduleID: 1, ClientID: 3, BookingDate: monday,
				Status: StatusCancelled, IsWaitingList: true, WaitingPosition: &pos,
				CreatedAt: time.Now(),
			}))
		mock.ExpectCommit()

		_, promoted, err := repo.Cancel(context.Background(), 42, 1, "sick")

		require.NoError(t, err)
		assert.Nil(t, promoted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already cancelled booking rejected", func(t *testing.T) {
		sqlxDB, mock := newMockDB(t)
		repo := NewRepository(sqlxDB)

		mock.ExpectBegin()
		expectScheduleLock(mock, 1)
		mock.ExpectQuery(`UPDATE class_bookings SET status = 'cancelled'`).
			WithArgs(42, "sick").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, _, err := repo.Cancel(context.Background(), 42, 1, "sick")

		assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_MarkAttended_Guard(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewRepository(sqlxDB)

	mock.ExpectQuery(`UPDATE class_bookings SET status = 'attended'`).
		WithArgs(42).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.MarkAttended(context.Background(), 42)

	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
	assert.NoError(t, mock.ExpectationsWereMet())
}
