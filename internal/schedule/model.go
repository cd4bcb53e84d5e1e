package schedule

import (
	"time"

	"gymdesk/internal/apperr"
)

// ClassSchedule is a recurring weekly slot, not a single event. A
// concrete occurrence is identified by (schedule, booking date).
type ClassSchedule struct {
	ID                  int       `db:"id" json:"id"`
	Name                string    `db:"name" json:"name"`
	DayOfWeek           int       `db:"day_of_week" json:"day_of_week"`
	StartTime           string    `db:"start_time" json:"start_time"`
	EndTime             string    `db:"end_time" json:"end_time"`
	MaxCapacity         int       `db:"max_capacity" json:"max_capacity"`
	RequiresReservation bool      `db:"requires_reservation" json:"requires_reservation"`
	CancelHoursBefore   int       `db:"cancel_hours_before" json:"cancel_hours_before"`
	IsActive            bool      `db:"is_active" json:"is_active"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// StartOn resolves the concrete start instant of this slot's occurrence
// on the given date.
func (s *ClassSchedule) StartOn(date time.Time) (time.Time, error) {
	t, err := time.Parse("15:04", s.StartTime)
	if err != nil {
		return time.Time{}, apperr.Internal("schedule has malformed start time", err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

// OccursOn reports whether date falls on this schedule's weekday.
func (s *ClassSchedule) OccursOn(date time.Time) bool {
	return int(date.Weekday()) == s.DayOfWeek
}

type CreateScheduleRequest struct {
	Name                string `json:"name" binding:"required"`
	DayOfWeek           int    `json:"day_of_week" binding:"gte=0,lte=6"`
	StartTime           string `json:"start_time" binding:"required"`
	EndTime             string `json:"end_time" binding:"required"`
	MaxCapacity         int    `json:"max_capacity" binding:"required,gt=0"`
	RequiresReservation bool   `json:"requires_reservation"`
	CancelHoursBefore   int    `json:"cancel_hours_before" binding:"gte=0"`
}
