package plan

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"gymdesk/internal/apperr"
)

const planColumns = `id, name, description, price_cents, duration_days, billing_cycle,
		max_classes_per_week, max_classes_per_month, training_sessions, is_active, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, req CreatePlanRequest) (*MembershipPlan, error) {
	query := `
		INSERT INTO membership_plans
			(name, description, price_cents, duration_days, billing_cycle,
			 max_classes_per_week, max_classes_per_month, training_sessions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + planColumns

	var p MembershipPlan
	err := r.db.GetContext(ctx, &p, query,
		req.Name, req.Description, req.PriceCents, req.DurationDays, req.BillingCycle,
		req.MaxClassesPerWeek, req.MaxClassesPerMonth, req.TrainingSessions)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*MembershipPlan, error) {
	query := `SELECT ` + planColumns + ` FROM membership_plans WHERE id = $1`

	var p MembershipPlan
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("membership plan")
		}
		return nil, err
	}

	return &p, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]MembershipPlan, error) {
	query := `SELECT ` + planColumns + ` FROM membership_plans`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY price_cents ASC`

	plans := []MembershipPlan{}
	err := r.db.SelectContext(ctx, &plans, query)
	if err != nil {
		return nil, err
	}

	return plans, nil
}

func (r *repository) Update(ctx context.Context, id int, req UpdatePlanRequest) (*MembershipPlan, error) {
	query := `
		UPDATE membership_plans
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    price_cents = COALESCE($4, price_cents),
		    duration_days = COALESCE($5, duration_days),
		    max_classes_per_week = COALESCE($6, max_classes_per_week),
		    max_classes_per_month = COALESCE($7, max_classes_per_month),
		    training_sessions = COALESCE($8, training_sessions),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + planColumns

	var p MembershipPlan
	err := r.db.GetContext(ctx, &p, query, id,
		req.Name, req.Description, req.PriceCents, req.DurationDays,
		req.MaxClassesPerWeek, req.MaxClassesPerMonth, req.TrainingSessions)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("membership plan")
		}
		return nil, err
	}

	return &p, nil
}

// Deactivate retires a plan from sale. Plans with open memberships keep
// their sold terms via the membership snapshot, but retiring a plan that
// still has active or suspended memberships is refused so staff do not
// silently strip clients of a renewable plan.
func (r *repository) Deactivate(ctx context.Context, id int) error {
	var dependents int
	err := r.db.GetContext(ctx, &dependents, `
		SELECT COUNT(*)
		FROM memberships
		WHERE plan_id = $1 AND status IN ('active', 'suspended')
	`, id)
	if err != nil {
		return err
	}

	if dependents > 0 {
		return apperr.BusinessRule("plan has %d active memberships and cannot be deactivated", dependents)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE membership_plans
		SET is_active = false, updated_at = NOW()
		WHERE id = $1 AND is_active = true
	`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return apperr.NotFound("active membership plan")
	}

	return nil
}
