package booking

import (
	"context"
	"time"
)

// Repository owns class_bookings rows and the transactions whose
// capacity decisions must be atomic per (schedule, date). Every
// seat-changing transaction serializes on a FOR UPDATE lock of the
// schedule row, so two concurrent bookers can never both see a free
// seat that only one of them can have.
type Repository interface {
	// Book decides confirmed-vs-waitlisted and inserts the row in one
	// transaction. A waitlisted booking gets the next waiting position;
	// a confirmed one bumps the client's membership usage counter.
	Book(ctx context.Context, rec BookRecord) (*ClassBooking, error)

	// Cancel marks the booking cancelled and, when it held a confirmed
	// seat, promotes the earliest-queued waitlisted booking for the
	// same (schedule, date) in the same transaction. It returns the
	// cancelled row and the promoted row (nil when nobody was
	// promoted).
	Cancel(ctx context.Context, bookingID int, scheduleID int, reason string) (*ClassBooking, *ClassBooking, error)

	MarkAttended(ctx context.Context, bookingID int) (*ClassBooking, error)
	MarkNoShow(ctx context.Context, bookingID int) (*ClassBooking, error)

	GetByID(ctx context.Context, id int) (*ClassBooking, error)
	CountSeats(ctx context.Context, scheduleID int, date time.Time) (int, error)
	CountWaitlisted(ctx context.Context, scheduleID int, date time.Time) (int, error)
	ListForSlot(ctx context.Context, scheduleID int, date time.Time) ([]ClassBooking, error)
	ListByClient(ctx context.Context, clientID int) ([]ClassBooking, error)
}

type BookRecord struct {
	ScheduleID  int
	ClientID    int
	BookingDate time.Time
	Notes       string
	MaxCapacity int
}
