package membership

import (
	"context"
	"time"

	"gymdesk/internal/apperr"
	"gymdesk/internal/notify"
	"gymdesk/internal/payment"
	"gymdesk/internal/plan"
)

type Service interface {
	Sell(ctx context.Context, input SellInput) (*Membership, *payment.Payment, error)
	Renew(ctx context.Context, membershipID int, input RenewInput) (*Membership, *payment.Payment, error)
	Suspend(ctx context.Context, membershipID int, reason string) (*Membership, error)
	Reactivate(ctx context.Context, membershipID int) (*Membership, error)
	Cancel(ctx context.Context, membershipID int, reason string) (*Membership, error)

	Get(ctx context.Context, membershipID int) (*Membership, error)
	History(ctx context.Context, clientID int) ([]Membership, error)

	// Entitlement gate.
	HasActiveMembership(ctx context.Context, clientID int) (bool, error)
	CanBookClass(ctx context.Context, clientID int) (bool, error)
}

type service struct {
	repo     Repository
	planRepo plan.Repository
	events   notify.Emitter
	now      func() time.Time
}

func NewService(repo Repository, planRepo plan.Repository, events notify.Emitter) Service {
	return &service{repo: repo, planRepo: planRepo, events: events, now: time.Now}
}

func saleRecord(p *plan.MembershipPlan, start time.Time, input SellInput, paymentType string) SaleRecord {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	return SaleRecord{
		ClientID:           input.ClientID,
		PlanID:             p.ID,
		PlanName:           p.Name,
		PriceCents:         p.PriceCents,
		DurationDays:       p.DurationDays,
		MaxClassesPerWeek:  p.MaxClassesPerWeek,
		MaxClassesPerMonth: p.MaxClassesPerMonth,
		TrainingSessions:   p.TrainingSessions,
		StartDate:          start,
		EndDate:            start.AddDate(0, 0, p.DurationDays),
		AmountPaidCents:    input.AmountPaidCents,
		DiscountCents:      input.DiscountCents,
		PaymentMethod:      input.PaymentMethod,
		PaymentType:        paymentType,
		AutoRenew:          input.AutoRenew,
		StaffID:            input.StaffID,
	}
}

func (s *service) Sell(ctx context.Context, input SellInput) (*Membership, *payment.Payment, error) {
	if input.AmountPaidCents < 0 {
		return nil, nil, apperr.Validation("amount paid cannot be negative")
	}
	if input.DiscountCents < 0 {
		return nil, nil, apperr.Validation("discount cannot be negative")
	}
	if input.StartDate.IsZero() {
		return nil, nil, apperr.Validation("start date is required")
	}

	p, err := s.planRepo.GetByID(ctx, input.PlanID)
	if err != nil {
		return nil, nil, err
	}
	if !p.IsActive {
		return nil, nil, apperr.Validation("plan %q is not active for sale", p.Name)
	}

	m, pay, err := s.repo.CreateSale(ctx, saleRecord(p, input.StartDate, input, "membership_sale"))
	if err != nil {
		return nil, nil, err
	}

	s.events.Emit(ctx, notify.Event{
		Type:     notify.EventMembershipSold,
		ClientID: m.ClientID,
		Payload:  map[string]interface{}{"membership_id": m.ID, "plan": m.PlanName, "end_date": m.EndDate},
	})

	return m, pay, nil
}

// Renew creates the contiguous successor period: it starts the day
// after the predecessor ends, whether the renewal happens before or
// after expiry. The snapshot terms of the old membership roll forward;
// current plan pricing does not apply retroactively mid-chain unless
// staff sell a fresh membership instead.
func (s *service) Renew(ctx context.Context, membershipID int, input RenewInput) (*Membership, *payment.Payment, error) {
	if input.AmountPaidCents < 0 {
		return nil, nil, apperr.Validation("amount paid cannot be negative")
	}

	old, err := s.repo.GetByID(ctx, membershipID)
	if err != nil {
		return nil, nil, err
	}
	if old.Status == StatusCancelled {
		return nil, nil, apperr.InvalidState("cancelled membership cannot be renewed")
	}

	p, err := s.planRepo.GetByID(ctx, old.PlanID)
	if err != nil {
		return nil, nil, err
	}

	newStart := old.EndDate.AddDate(0, 0, 1)
	rec := saleRecord(p, newStart, SellInput{
		ClientID:        old.ClientID,
		PlanID:          old.PlanID,
		AmountPaidCents: input.AmountPaidCents,
		DiscountCents:   input.DiscountCents,
		PaymentMethod:   input.PaymentMethod,
		AutoRenew:       old.AutoRenew,
		StaffID:         input.StaffID,
	}, "membership_renewal")
	// Keep the sold duration, not the plan's current one.
	rec.PlanName = old.PlanName
	rec.PriceCents = old.PriceCents
	rec.DurationDays = old.DurationDays
	rec.MaxClassesPerWeek = old.MaxClassesPerWeek
	rec.MaxClassesPerMonth = old.MaxClassesPerMonth
	rec.TrainingSessions = old.TrainingSessions
	rec.EndDate = rec.StartDate.AddDate(0, 0, old.DurationDays)

	m, pay, err := s.repo.Renew(ctx, membershipID, rec)
	if err != nil {
		return nil, nil, err
	}

	s.events.Emit(ctx, notify.Event{
		Type:     notify.EventMembershipRenewed,
		ClientID: m.ClientID,
		Payload:  map[string]interface{}{"membership_id": m.ID, "start_date": m.StartDate, "end_date": m.EndDate},
	})

	return m, pay, nil
}

func (s *service) Suspend(ctx context.Context, membershipID int, reason string) (*Membership, error) {
	m, err := s.repo.GetByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if err := CheckTransition(m.Status, StatusSuspended); err != nil {
		return nil, err
	}

	return s.repo.UpdateStatus(ctx, membershipID, StatusActive, StatusSuspended, &reason)
}

func (s *service) Reactivate(ctx context.Context, membershipID int) (*Membership, error) {
	m, err := s.repo.GetByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if err := CheckTransition(m.Status, StatusActive); err != nil {
		return nil, err
	}
	if m.ExpiresBefore(s.now()) {
		return nil, apperr.BusinessRule("membership period has ended, renew instead of reactivating")
	}

	return s.repo.UpdateStatus(ctx, membershipID, StatusSuspended, StatusActive, nil)
}

func (s *service) Cancel(ctx context.Context, membershipID int, reason string) (*Membership, error) {
	m, err := s.repo.GetByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if err := CheckTransition(m.Status, StatusCancelled); err != nil {
		return nil, err
	}

	return s.repo.UpdateStatus(ctx, membershipID, m.Status, StatusCancelled, &reason)
}

func (s *service) Get(ctx context.Context, membershipID int) (*Membership, error) {
	return s.repo.GetByID(ctx, membershipID)
}

func (s *service) History(ctx context.Context, clientID int) ([]Membership, error) {
	return s.repo.ListByClient(ctx, clientID)
}

func (s *service) HasActiveMembership(ctx context.Context, clientID int) (bool, error) {
	m, err := s.repo.GetOpenByClient(ctx, clientID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return false, nil
		}
		return false, err
	}

	return m.Status == StatusActive && !m.ExpiresBefore(s.now()), nil
}

// CanBookClass answers the booking engine's entitlement question. A
// reached limit is a plain false, not an error: the caller decides how
// to present it.
func (s *service) CanBookClass(ctx context.Context, clientID int) (bool, error) {
	m, err := s.repo.GetOpenByClient(ctx, clientID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return false, nil
		}
		return false, err
	}
	if m.Status != StatusActive || m.ExpiresBefore(s.now()) {
		return false, nil
	}

	now := s.now()

	if m.MaxClassesPerWeek != nil {
		weekStart := startOfISOWeek(now)
		used, err := s.repo.CountClassUsageBetween(ctx, clientID, weekStart, weekStart.AddDate(0, 0, 7))
		if err != nil {
			return false, err
		}
		if used >= *m.MaxClassesPerWeek {
			return false, nil
		}
	}

	if m.MaxClassesPerMonth != nil {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		used, err := s.repo.CountClassUsageBetween(ctx, clientID, monthStart, monthStart.AddDate(0, 1, 0))
		if err != nil {
			return false, err
		}
		if used >= *m.MaxClassesPerMonth {
			return false, nil
		}
	}

	return true, nil
}

// startOfISOWeek returns midnight of the Monday of now's week.
func startOfISOWeek(now time.Time) time.Time {
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -(weekday - 1))
}
