package booking

import "time"

type Status string

const (
	StatusReserved  Status = "reserved"
	StatusConfirmed Status = "confirmed"
	StatusAttended  Status = "attended"
	StatusNoShow    Status = "no_show"
	StatusCancelled Status = "cancelled"
)

// ClassBooking is one client's claim on one date instance of a
// recurring slot. Waitlist promotion mutates this row in place; a
// promoted client never gets a second row.
type ClassBooking struct {
	ID         int       `db:"id" json:"id"`
	ScheduleID int       `db:"schedule_id" json:"schedule_id"`
	ClientID   int       `db:"client_id" json:"client_id"`
	BookingDate time.Time `db:"booking_date" json:"booking_date"`

	Status          Status `db:"status" json:"status"`
	IsWaitingList   bool   `db:"is_waiting_list" json:"is_waiting_list"`
	WaitingPosition *int   `db:"waiting_position" json:"waiting_position,omitempty"`

	Notes              string     `db:"notes" json:"notes"`
	CancellationReason *string    `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
}

// HoldsSeat reports whether the booking occupies one of the slot's
// seats for capacity purposes.
func (b *ClassBooking) HoldsSeat() bool {
	return !b.IsWaitingList && (b.Status == StatusConfirmed || b.Status == StatusAttended)
}

type BookRequest struct {
	ClientID    int       `json:"client_id" binding:"required"`
	BookingDate time.Time `json:"booking_date" binding:"required" time_format:"2006-01-02"`
	Notes       string    `json:"notes"`
}

type CancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// SlotAvailability is the per-date capacity view for one schedule.
type SlotAvailability struct {
	ScheduleID  int       `json:"schedule_id"`
	BookingDate time.Time `json:"booking_date"`
	MaxCapacity int       `json:"max_capacity"`
	SeatsTaken  int       `json:"seats_taken"`
	Available   int       `json:"available"`
	IsFull      bool      `json:"is_full"`
	Waitlisted  int       `json:"waitlisted"`
}
