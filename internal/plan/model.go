package plan

import "time"

// MembershipPlan defines price, duration and entitlement limits for a
// sellable membership. Sold terms never change retroactively: the sale
// snapshots price, duration and limits onto the membership row, so a
// plan edit only affects future sales.
type MembershipPlan struct {
	ID                 int       `db:"id" json:"id"`
	Name               string    `db:"name" json:"name"`
	Description        string    `db:"description" json:"description"`
	PriceCents         int64     `db:"price_cents" json:"price_cents"`
	DurationDays       int       `db:"duration_days" json:"duration_days"`
	BillingCycle       string    `db:"billing_cycle" json:"billing_cycle"`
	MaxClassesPerWeek  *int      `db:"max_classes_per_week" json:"max_classes_per_week,omitempty"`
	MaxClassesPerMonth *int      `db:"max_classes_per_month" json:"max_classes_per_month,omitempty"`
	TrainingSessions   int       `db:"training_sessions" json:"training_sessions"`
	IsActive           bool      `db:"is_active" json:"is_active"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

type CreatePlanRequest struct {
	Name               string `json:"name" binding:"required"`
	Description        string `json:"description"`
	PriceCents         int64  `json:"price_cents" binding:"required,gt=0"`
	DurationDays       int    `json:"duration_days" binding:"required,gt=0"`
	BillingCycle       string `json:"billing_cycle" binding:"required,oneof=monthly quarterly yearly"`
	MaxClassesPerWeek  *int   `json:"max_classes_per_week,omitempty" binding:"omitempty,gt=0"`
	MaxClassesPerMonth *int   `json:"max_classes_per_month,omitempty" binding:"omitempty,gt=0"`
	TrainingSessions   int    `json:"training_sessions" binding:"gte=0"`
}

type UpdatePlanRequest struct {
	Name               *string `json:"name,omitempty"`
	Description        *string `json:"description,omitempty"`
	PriceCents         *int64  `json:"price_cents,omitempty" binding:"omitempty,gt=0"`
	DurationDays       *int    `json:"duration_days,omitempty" binding:"omitempty,gt=0"`
	MaxClassesPerWeek  *int    `json:"max_classes_per_week,omitempty"`
	MaxClassesPerMonth *int    `json:"max_classes_per_month,omitempty"`
	TrainingSessions   *int    `json:"training_sessions,omitempty" binding:"omitempty,gte=0"`
}
