package membership

import (
	"time"

	"gymdesk/internal/apperr"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// Membership is one sold entitlement period. Plan terms (price,
// duration, class limits) are snapshotted at sale time so later plan
// edits never change what the client bought. Rows are never deleted:
// expired and cancelled memberships stay for audit.
type Membership struct {
	ID       int `db:"id" json:"id"`
	ClientID int `db:"client_id" json:"client_id"`
	PlanID   int `db:"plan_id" json:"plan_id"`

	PlanName           string `db:"plan_name" json:"plan_name"`
	PriceCents         int64  `db:"price_cents" json:"price_cents"`
	DurationDays       int    `db:"duration_days" json:"duration_days"`
	MaxClassesPerWeek  *int   `db:"max_classes_per_week" json:"max_classes_per_week,omitempty"`
	MaxClassesPerMonth *int   `db:"max_classes_per_month" json:"max_classes_per_month,omitempty"`
	TrainingSessions   int    `db:"training_sessions" json:"training_sessions"`

	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	Status    Status    `db:"status" json:"status"`

	AmountPaidCents      int64 `db:"amount_paid_cents" json:"amount_paid_cents"`
	DiscountCents        int64 `db:"discount_cents" json:"discount_cents"`
	ClassesUsed          int   `db:"classes_used" json:"classes_used"`
	TrainingSessionsUsed int   `db:"training_sessions_used" json:"training_sessions_used"`
	AutoRenew            bool  `db:"auto_renew" json:"auto_renew"`

	CancellationReason *string    `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	SuspensionReason   *string    `db:"suspension_reason" json:"suspension_reason,omitempty"`
	SuspendedAt        *time.Time `db:"suspended_at" json:"suspended_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type transition struct {
	From Status
	To   Status
}

// validTransitions is the full lifecycle. Expiry is reachable only
// through renewal, never as a direct call; expired and cancelled are
// sinks.
var validTransitions = map[transition]bool{
	{StatusActive, StatusSuspended}:    true,
	{StatusSuspended, StatusActive}:    true,
	{StatusActive, StatusCancelled}:    true,
	{StatusSuspended, StatusCancelled}: true,
	{StatusActive, StatusExpired}:      true,
	{StatusSuspended, StatusExpired}:   true,
}

func CanTransition(from, to Status) bool {
	return validTransitions[transition{from, to}]
}

// CheckTransition returns a typed error describing why the move is
// rejected, so every guard in the lifecycle manager reports the same
// way.
func CheckTransition(from, to Status) error {
	if CanTransition(from, to) {
		return nil
	}
	return apperr.InvalidState("cannot move membership from %s to %s", from, to)
}

// ExpiresBefore reports whether the entitlement has lapsed at the given
// instant. The end date boundary is inclusive: the membership is good
// through the whole end day.
func (m *Membership) ExpiresBefore(now time.Time) bool {
	endOfLastDay := time.Date(m.EndDate.Year(), m.EndDate.Month(), m.EndDate.Day(),
		23, 59, 59, 0, m.EndDate.Location())
	return now.After(endOfLastDay)
}

type SellInput struct {
	ClientID        int       `json:"client_id" binding:"required"`
	PlanID          int       `json:"plan_id" binding:"required"`
	StartDate       time.Time `json:"start_date" binding:"required" time_format:"2006-01-02"`
	AmountPaidCents int64     `json:"amount_paid_cents" binding:"gte=0"`
	DiscountCents   int64     `json:"discount_cents" binding:"gte=0"`
	PaymentMethod   string    `json:"payment_method" binding:"required,oneof=cash card transfer"`
	AutoRenew       bool      `json:"auto_renew"`
	StaffID         int       `json:"-"`
}

type RenewInput struct {
	AmountPaidCents int64  `json:"amount_paid_cents" binding:"gte=0"`
	DiscountCents   int64  `json:"discount_cents" binding:"gte=0"`
	PaymentMethod   string `json:"payment_method" binding:"required,oneof=cash card transfer"`
	StaffID         int    `json:"-"`
}

type ReasonRequest struct {
	Reason string `json:"reason" binding:"required"`
}
