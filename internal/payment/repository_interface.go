package payment

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// Record appends a completed payment. It runs on the given executor
	// so callers holding a transaction (membership sale/renewal) commit
	// the ledger row together with their own writes.
	Record(ctx context.Context, ext sqlx.ExtContext, input RecordInput) (*Payment, error)
	GetByID(ctx context.Context, id int) (*Payment, error)
	GetByNumber(ctx context.Context, number string) (*Payment, error)
	ListByClient(ctx context.Context, clientID int, limit, offset int) ([]Payment, error)
	Refund(ctx context.Context, id int, amountCents int64, reason string) (*Payment, error)
}
