package membership

import (
	"context"
	"time"

	"gymdesk/internal/payment"
)

// Repository owns the membership rows and the multi-write transactions
// that must commit atomically with the payment ledger and the client
// entitlement cache.
type Repository interface {
	// CreateSale inserts the membership, records its payment and
	// refreshes the client cache in one transaction. It takes a
	// client-scoped row lock and refuses to layer a second open
	// membership onto a client.
	CreateSale(ctx context.Context, rec SaleRecord) (*Membership, *payment.Payment, error)
	// Renew expires the old row, inserts the contiguous successor and
	// records its payment in one transaction.
	Renew(ctx context.Context, oldID int, rec SaleRecord) (*Membership, *payment.Payment, error)

	GetByID(ctx context.Context, id int) (*Membership, error)
	GetOpenByClient(ctx context.Context, clientID int) (*Membership, error)
	ListByClient(ctx context.Context, clientID int) ([]Membership, error)

	// UpdateStatus applies a guarded status change: the UPDATE is
	// predicated on the expected source status, so a concurrent
	// transition makes it report InvalidState instead of clobbering.
	UpdateStatus(ctx context.Context, id int, from, to Status, reason *string) (*Membership, error)

	// CountClassUsageBetween counts the client's seat-holding bookings
	// (confirmed or attended) with from <= booking_date < to, so usage
	// in one limit window never bleeds into another.
	CountClassUsageBetween(ctx context.Context, clientID int, from, to time.Time) (int, error)
}

// SaleRecord is the fully validated write set for one sale or renewal.
type SaleRecord struct {
	ClientID int
	PlanID   int

	PlanName           string
	PriceCents         int64
	DurationDays       int
	MaxClassesPerWeek  *int
	MaxClassesPerMonth *int
	TrainingSessions   int

	StartDate time.Time
	EndDate   time.Time

	AmountPaidCents int64
	DiscountCents   int64
	PaymentMethod   string
	PaymentType     string
	AutoRenew       bool
	StaffID         int
}
