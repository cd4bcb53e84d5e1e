package payment

import "time"

type Status string

const (
	StatusCompleted Status = "completed"
	StatusRefunded  Status = "refunded"
)

// Payment is an append-mostly ledger row. The only permitted mutation
// after insert is the single completed→refunded transition.
type Payment struct {
	ID                int        `db:"id" json:"id"`
	PaymentNumber     string     `db:"payment_number" json:"payment_number"`
	ClientID          int        `db:"client_id" json:"client_id"`
	MembershipID      *int       `db:"membership_id" json:"membership_id,omitempty"`
	AmountCents       int64      `db:"amount_cents" json:"amount_cents"`
	Method            string     `db:"method" json:"method"`
	Type              string     `db:"type" json:"type"`
	Description       string     `db:"description" json:"description"`
	Status            Status     `db:"status" json:"status"`
	RefundAmountCents int64      `db:"refund_amount_cents" json:"refund_amount_cents"`
	RefundReason      *string    `db:"refund_reason" json:"refund_reason,omitempty"`
	RefundedAt        *time.Time `db:"refunded_at" json:"refunded_at,omitempty"`
	RecordedBy        int        `db:"recorded_by" json:"recorded_by"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
}

// RecordInput describes a charge to append to the ledger.
type RecordInput struct {
	ClientID     int
	MembershipID *int
	AmountCents  int64
	Method       string
	Type         string
	Description  string
	RecordedBy   int
}

type RefundRequest struct {
	AmountCents int64  `json:"amount_cents" binding:"required,gt=0"`
	Reason      string `json:"reason" binding:"required"`
}
