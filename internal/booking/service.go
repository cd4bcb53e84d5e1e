package booking

import (
	"context"
	"time"

	"gymdesk/internal/apperr"
	"gymdesk/internal/metrics"
	"gymdesk/internal/notify"
	"gymdesk/internal/schedule"
)

// EntitlementGate is the slice of the membership service the booking
// engine consults before allocating a seat.
type EntitlementGate interface {
	HasActiveMembership(ctx context.Context, clientID int) (bool, error)
	CanBookClass(ctx context.Context, clientID int) (bool, error)
}

type Service interface {
	Book(ctx context.Context, scheduleID, clientID int, date time.Time, notes string) (*ClassBooking, error)
	Cancel(ctx context.Context, bookingID int, reason string) error
	MarkAttended(ctx context.Context, bookingID int) (*ClassBooking, error)
	MarkNoShow(ctx context.Context, bookingID int) (*ClassBooking, error)

	Availability(ctx context.Context, scheduleID int, date time.Time) (*SlotAvailability, error)
	IsFull(ctx context.Context, scheduleID int, date time.Time) (bool, error)
	AvailableCapacity(ctx context.Context, scheduleID int, date time.Time) (int, error)

	ListForSlot(ctx context.Context, scheduleID int, date time.Time) ([]ClassBooking, error)
	ListByClient(ctx context.Context, clientID int) ([]ClassBooking, error)
}

type service struct {
	repo         Repository
	scheduleRepo schedule.Repository
	gate         EntitlementGate
	events       notify.Emitter
	now          func() time.Time
}

func NewService(repo Repository, scheduleRepo schedule.Repository, gate EntitlementGate, events notify.Emitter) Service {
	return &service{
		repo:         repo,
		scheduleRepo: scheduleRepo,
		gate:         gate,
		events:       events,
		now:          time.Now,
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Book runs the precondition chain: entitlement first, then the
// duplicate guard, then the atomic capacity decision. The capacity
// check and the insert happen inside one repository transaction under
// the schedule lock, so concurrent bookers for the same date instance
// serialize there.
func (s *service) Book(ctx context.Context, scheduleID, clientID int, date time.Time, notes string) (*ClassBooking, error) {
	sched, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if !sched.IsActive {
		return nil, apperr.Validation("class schedule is no longer offered")
	}
	if !sched.RequiresReservation {
		return nil, apperr.Validation("class %q is walk-in only and does not take reservations", sched.Name)
	}

	date = truncateToDay(date)
	if !sched.OccursOn(date) {
		return nil, apperr.Validation("class %q does not run on %s", sched.Name, date.Weekday())
	}

	startAt, err := sched.StartOn(date)
	if err != nil {
		return nil, err
	}
	if startAt.Before(s.now()) {
		return nil, apperr.Validation("cannot book a class instance in the past")
	}

	active, err := s.gate.HasActiveMembership(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, apperr.BusinessRule("client has no active membership")
	}

	allowed, err := s.gate.CanBookClass(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.BusinessRule("class limit for the current period is reached")
	}

	return s.repo.Book(ctx, BookRecord{
		ScheduleID:  scheduleID,
		ClientID:    clientID,
		BookingDate: date,
		Notes:       notes,
		MaxCapacity: sched.MaxCapacity,
	})
}

// Cancel enforces the cancellation window, cancels, and promotes the
// head of the waitlist when a confirmed seat was freed. Promotion
// happens inside the cancel transaction; the promotion event goes out
// only after commit.
func (s *service) Cancel(ctx context.Context, bookingID int, reason string) error {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}

	sched, err := s.scheduleRepo.GetByID(ctx, b.ScheduleID)
	if err != nil {
		return err
	}

	startAt, err := sched.StartOn(b.BookingDate)
	if err != nil {
		return err
	}

	deadline := startAt.Add(-time.Duration(sched.CancelHoursBefore) * time.Hour)
	if !s.now().Before(deadline) {
		return apperr.BusinessRule("cancellation window passed, bookings close %d hours before class", sched.CancelHoursBefore)
	}

	_, promoted, err := s.repo.Cancel(ctx, bookingID, b.ScheduleID, reason)
	if err != nil {
		return err
	}

	if promoted != nil {
		metrics.WaitlistPromotionsTotal.Inc()
		s.events.Emit(ctx, notify.Event{
			Type:     notify.EventWaitlistPromoted,
			ClientID: promoted.ClientID,
			Payload: map[string]interface{}{
				"booking_id":   promoted.ID,
				"schedule_id":  promoted.ScheduleID,
				"booking_date": promoted.BookingDate.Format("2006-01-02"),
				"class":        sched.Name,
			},
		})
	}

	return nil
}

func (s *service) MarkAttended(ctx context.Context, bookingID int) (*ClassBooking, error) {
	return s.repo.MarkAttended(ctx, bookingID)
}

func (s *service) MarkNoShow(ctx context.Context, bookingID int) (*ClassBooking, error) {
	return s.repo.MarkNoShow(ctx, bookingID)
}

func (s *service) Availability(ctx context.Context, scheduleID int, date time.Time) (*SlotAvailability, error) {
	sched, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	date = truncateToDay(date)
	seats, err := s.repo.CountSeats(ctx, scheduleID, date)
	if err != nil {
		return nil, err
	}
	waitlisted, err := s.repo.CountWaitlisted(ctx, scheduleID, date)
	if err != nil {
		return nil, err
	}

	available := sched.MaxCapacity - seats
	if available < 0 {
		available = 0
	}

	return &SlotAvailability{
		ScheduleID:  scheduleID,
		BookingDate: date,
		MaxCapacity: sched.MaxCapacity,
		SeatsTaken:  seats,
		Available:   available,
		IsFull:      seats >= sched.MaxCapacity,
		Waitlisted:  waitlisted,
	}, nil
}

func (s *service) IsFull(ctx context.Context, scheduleID int, date time.Time) (bool, error) {
	a, err := s.Availability(ctx, scheduleID, date)
	if err != nil {
		return false, err
	}
	return a.IsFull, nil
}

func (s *service) AvailableCapacity(ctx context.Context, scheduleID int, date time.Time) (int, error) {
	a, err := s.Availability(ctx, scheduleID, date)
	if err != nil {
		return 0, err
	}
	return a.Available, nil
}

func (s *service) ListForSlot(ctx context.Context, scheduleID int, date time.Time) ([]ClassBooking, error) {
	return s.repo.ListForSlot(ctx, scheduleID, truncateToDay(date))
}

func (s *service) ListByClient(ctx context.Context, clientID int) ([]ClassBooking, error) {
	return s.repo.ListByClient(ctx, clientID)
}
