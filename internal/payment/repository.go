package payment

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"gymdesk/internal/apperr"
)

const paymentColumns = `id, payment_number, client_id, membership_id, amount_cents, method, type,
		description, status, refund_amount_cents, refund_reason, refunded_at, recorded_by, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Record appends a completed payment. The payment number comes from a
// database sequence inside the INSERT itself, so concurrent writers can
// never produce duplicates regardless of the surrounding transaction's
// isolation level.
func (r *repository) Record(ctx context.Context, ext sqlx.ExtContext, input RecordInput) (*Payment, error) {
	if input.AmountCents < 0 {
		return nil, apperr.Validation("payment amount cannot be negative")
	}
	if ext == nil {
		ext = r.db
	}

	query := `
		INSERT INTO payments
			(payment_number, client_id, membership_id, amount_cents, method, type, description, status, recorded_by)
		VALUES ('PAY-' || LPAD(nextval('payment_number_seq')::text, 6, '0'),
		        $1, $2, $3, $4, $5, $6, 'completed', $7)
		RETURNING ` + paymentColumns

	var p Payment
	err := sqlx.GetContext(ctx, ext, &p, query,
		input.ClientID, input.MembershipID, input.AmountCents,
		input.Method, input.Type, input.Description, input.RecordedBy)
	if err != nil {
		return nil, apperr.FromPq(err)
	}

	return &p, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("payment")
		}
		return nil, err
	}

	return &p, nil
}

func (r *repository) GetByNumber(ctx context.Context, number string) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `SELECT `+paymentColumns+` FROM payments WHERE payment_number = $1`, number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("payment")
		}
		return nil, err
	}

	return &p, nil
}

func (r *repository) ListByClient(ctx context.Context, clientID int, limit, offset int) ([]Payment, error) {
	if limit <= 0 {
		limit = 50
	}

	payments := []Payment{}
	err := r.db.SelectContext(ctx, &payments, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, clientID, limit, offset)
	if err != nil {
		return nil, err
	}

	return payments, nil
}

// Refund performs the single permitted ledger mutation. The row is
// locked for the duration of the check so two concurrent refunds of the
// same payment cannot both pass the status guard. Refunding never
// touches the linked membership; reversing an entitlement is a separate
// lifecycle call.
func (r *repository) Refund(ctx context.Context, id int, amountCents int64, reason string) (*Payment, error) {
	if amountCents <= 0 {
		return nil, apperr.Validation("refund amount must be positive")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var p Payment
	err = tx.QueryRowxContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE id = $1
		FOR UPDATE
	`, id).StructScan(&p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("payment")
		}
		return nil, apperr.FromPq(err)
	}

	if p.Status == StatusRefunded {
		return nil, apperr.BusinessRule("payment %s is already refunded", p.PaymentNumber)
	}
	if amountCents > p.AmountCents {
		return nil, apperr.BusinessRule("refund amount exceeds original payment amount")
	}

	err = tx.QueryRowxContext(ctx, `
		UPDATE payments
		SET status = 'refunded',
		    refund_amount_cents = $2,
		    refund_reason = $3,
		    refunded_at = NOW()
		WHERE id = $1
		RETURNING `+paymentColumns, id, amountCents, reason).StructScan(&p)
	if err != nil {
		return nil, apperr.FromPq(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.FromPq(err)
	}

	return &p, nil
}
