package schedule

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"gymdesk/internal/apperr"
)

const scheduleColumns = `id, name, day_of_week, start_time, end_time, max_capacity,
		requires_reservation, cancel_hours_before, is_active, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, req CreateScheduleRequest) (*ClassSchedule, error) {
	if _, err := time.Parse("15:04", req.StartTime); err != nil {
		return nil, apperr.Validation("start_time must be HH:MM")
	}
	if _, err := time.Parse("15:04", req.EndTime); err != nil {
		return nil, apperr.Validation("end_time must be HH:MM")
	}
	if req.EndTime <= req.StartTime {
		return nil, apperr.Validation("end_time must be after start_time")
	}

	query := `
		INSERT INTO class_schedules
			(name, day_of_week, start_time, end_time, max_capacity, requires_reservation, cancel_hours_before)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + scheduleColumns

	var s ClassSchedule
	err := r.db.GetContext(ctx, &s, query,
		req.Name, req.DayOfWeek, req.StartTime, req.EndTime,
		req.MaxCapacity, req.RequiresReservation, req.CancelHoursBefore)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*ClassSchedule, error) {
	var s ClassSchedule
	err := r.db.GetContext(ctx, &s, `SELECT `+scheduleColumns+` FROM class_schedules WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("class schedule")
		}
		return nil, err
	}

	return &s, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]ClassSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM class_schedules`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY day_of_week, start_time`

	schedules := []ClassSchedule{}
	err := r.db.SelectContext(ctx, &schedules, query)
	if err != nil {
		return nil, err
	}

	return schedules, nil
}

// Deactivate retires a recurring slot. Refused while future confirmed
// seats exist: those clients hold bookings staff would be silently
// voiding.
func (r *repository) Deactivate(ctx context.Context, id int) error {
	var dependents int
	err := r.db.GetContext(ctx, &dependents, `
		SELECT COUNT(*)
		FROM class_bookings
		WHERE schedule_id = $1
		  AND booking_date >= CURRENT_DATE
		  AND status IN ('reserved', 'confirmed')
	`, id)
	if err != nil {
		return err
	}

	if dependents > 0 {
		return apperr.BusinessRule("schedule has %d upcoming bookings and cannot be deactivated", dependents)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE class_schedules
		SET is_active = false, updated_at = NOW()
		WHERE id = $1 AND is_active = true
	`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return apperr.NotFound("active class schedule")
	}

	return nil
}
