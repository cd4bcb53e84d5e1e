package membership

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"gymdesk/internal/apperr"
	"gymdesk/internal/client"
	"gymdesk/internal/payment"
)

const membershipColumns = `id, client_id, plan_id, plan_name, price_cents, duration_days,
		max_classes_per_week, max_classes_per_month, training_sessions,
		start_date, end_date, status, amount_paid_cents, discount_cents,
		classes_used, training_sessions_used, auto_renew,
		cancellation_reason, cancelled_at, suspension_reason, suspended_at,
		created_at, updated_at`

type repository struct {
	db          *sqlx.DB
	paymentRepo payment.Repository
	clientRepo  client.Repository
}

func NewRepository(db *sqlx.DB, paymentRepo payment.Repository, clientRepo client.Repository) Repository {
	return &repository{db: db, paymentRepo: paymentRepo, clientRepo: clientRepo}
}

// lockOpenMemberships takes FOR UPDATE locks on the client's open
// membership rows. Every sale and renewal for a client serializes on
// this, which is what keeps the at-most-one-open-membership invariant
// under concurrent requests.
func lockOpenMemberships(ctx context.Context, tx *sqlx.Tx, clientID int) ([]int, error) {
	ids := []int{}
	err := tx.SelectContext(ctx, &ids, `
		SELECT id
		FROM memberships
		WHERE client_id = $1 AND status IN ('active', 'suspended')
		ORDER BY id
		FOR UPDATE
	`, clientID)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func insertMembership(ctx context.Context, tx *sqlx.Tx, rec SaleRecord) (*Membership, error) {
	var m Membership
	err := tx.QueryRowxContext(ctx, `
		INSERT INTO memberships
			(client_id, plan_id, plan_name, price_cents, duration_days,
			 max_classes_per_week, max_classes_per_month, training_sessions,
			 start_date, end_date, status, amount_paid_cents, discount_cents, auto_renew)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'active', $11, $12, $13)
		RETURNING `+membershipColumns,
		rec.ClientID, rec.PlanID, rec.PlanName, rec.PriceCents, rec.DurationDays,
		rec.MaxClassesPerWeek, rec.MaxClassesPerMonth, rec.TrainingSessions,
		rec.StartDate, rec.EndDate, rec.AmountPaidCents, rec.DiscountCents, rec.AutoRenew,
	).StructScan(&m)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) refreshClientCache(ctx context.Context, tx *sqlx.Tx, m *Membership) error {
	return r.clientRepo.UpdateEntitlementSummary(ctx, tx, m.ClientID, client.EntitlementSummary{
		Status:       string(m.Status),
		MembershipID: &m.ID,
		Start:        &m.StartDate,
		End:          &m.EndDate,
	})
}

func (r *repository) CreateSale(ctx context.Context, rec SaleRecord) (*Membership, *payment.Payment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	open, err := lockOpenMemberships(ctx, tx, rec.ClientID)
	if err != nil {
		return nil, nil, apperr.FromPq(err)
	}
	if len(open) > 0 {
		return nil, nil, apperr.BusinessRule("client %d already has an open membership, renew it instead", rec.ClientID)
	}

	m, err := insertMembership(ctx, tx, rec)
	if err != nil {
		return nil, nil, apperr.FromPq(err)
	}

	p, err := r.paymentRepo.Record(ctx, tx, payment.RecordInput{
		ClientID:     rec.ClientID,
		MembershipID: &m.ID,
		AmountCents:  rec.AmountPaidCents,
		Method:       rec.PaymentMethod,
		Type:         rec.PaymentType,
		Description:  fmt.Sprintf("%s membership, %s to %s", rec.PlanName, rec.StartDate.Format("2006-01-02"), rec.EndDate.Format("2006-01-02")),
		RecordedBy:   rec.StaffID,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := r.refreshClientCache(ctx, tx, m); err != nil {
		return nil, nil, apperr.FromPq(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, apperr.FromPq(err)
	}

	return m, p, nil
}

func (r *repository) Renew(ctx context.Context, oldID int, rec SaleRecord) (*Membership, *payment.Payment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	// Lock the predecessor and any other open rows for the client so
	// two concurrent renewals cannot both expire the same row.
	open, err := lockOpenMemberships(ctx, tx, rec.ClientID)
	if err != nil {
		return nil, nil, apperr.FromPq(err)
	}
	for _, id := range open {
		if id != oldID {
			return nil, nil, apperr.BusinessRule("client %d already has another open membership, renew that one instead", rec.ClientID)
		}
	}

	var old Membership
	err = tx.QueryRowxContext(ctx, `
		SELECT `+membershipColumns+` FROM memberships WHERE id = $1 FOR UPDATE
	`, oldID).StructScan(&old)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, apperr.NotFound("membership")
		}
		return nil, nil, apperr.FromPq(err)
	}

	if old.Status == StatusCancelled {
		return nil, nil, apperr.InvalidState("cancelled membership cannot be renewed")
	}

	if old.Status != StatusExpired {
		_, err = tx.ExecContext(ctx, `
			UPDATE memberships
			SET status = 'expired', updated_at = NOW()
			WHERE id = $1
		`, oldID)
		if err != nil {
			return nil, nil, apperr.FromPq(err)
		}
	}

	m, err := insertMembership(ctx, tx, rec)
	if err != nil {
		return nil, nil, apperr.FromPq(err)
	}

	p, err := r.paymentRepo.Record(ctx, tx, payment.RecordInput{
		ClientID:     rec.ClientID,
		MembershipID: &m.ID,
		AmountCents:  rec.AmountPaidCents,
		Method:       rec.PaymentMethod,
		Type:         rec.PaymentType,
		Description:  fmt.Sprintf("%s membership renewal, %s to %s", rec.PlanName, rec.StartDate.Format("2006-01-02"), rec.EndDate.Format("2006-01-02")),
		RecordedBy:   rec.StaffID,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := r.refreshClientCache(ctx, tx, m); err != nil {
		return nil, nil, apperr.FromPq(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, apperr.FromPq(err)
	}

	return m, p, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Membership, error) {
	var m Membership
	err := r.db.GetContext(ctx, &m, `SELECT `+membershipColumns+` FROM memberships WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("membership")
		}
		return nil, err
	}

	return &m, nil
}

func (r *repository) GetOpenByClient(ctx context.Context, clientID int) (*Membership, error) {
	var m Membership
	err := r.db.GetContext(ctx, &m, `
		SELECT `+membershipColumns+`
		FROM memberships
		WHERE client_id = $1 AND status IN ('active', 'suspended')
		ORDER BY end_date DESC
		LIMIT 1
	`, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("open membership")
		}
		return nil, err
	}

	return &m, nil
}

func (r *repository) ListByClient(ctx context.Context, clientID int) ([]Membership, error) {
	memberships := []Membership{}
	err := r.db.SelectContext(ctx, &memberships, `
		SELECT `+membershipColumns+`
		FROM memberships
		WHERE client_id = $1
		ORDER BY start_date DESC
	`, clientID)
	if err != nil {
		return nil, err
	}

	return memberships, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int, from, to Status, reason *string) (*Membership, error) {
	var extra string
	switch to {
	case StatusSuspended:
		extra = `, suspension_reason = $4, suspended_at = NOW()`
	case StatusCancelled:
		extra = `, cancellation_reason = $4, cancelled_at = NOW()`
	case StatusActive:
		extra = `, suspension_reason = $4, suspended_at = NULL`
	default:
		return nil, apperr.InvalidState("status %s is not reachable by direct update", to)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var m Membership
	err = tx.QueryRowxContext(ctx, `
		UPDATE memberships
		SET status = $2, updated_at = NOW()`+extra+`
		WHERE id = $1 AND status = $3
		RETURNING `+membershipColumns,
		id, to, from, reason).StructScan(&m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.InvalidState("membership is not %s", from)
		}
		return nil, apperr.FromPq(err)
	}

	if err := r.refreshClientCache(ctx, tx, &m); err != nil {
		return nil, apperr.FromPq(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.FromPq(err)
	}

	return &m, nil
}

func (r *repository) CountClassUsageBetween(ctx context.Context, clientID int, from, to time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM class_bookings
		WHERE client_id = $1
		  AND booking_date >= $2
		  AND booking_date < $3
		  AND status IN ('confirmed', 'attended')
		  AND is_waiting_list = false
	`, clientID, from, to)
	if err != nil {
		return 0, err
	}

	return count, nil
}
