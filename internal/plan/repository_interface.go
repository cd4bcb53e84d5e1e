package plan

import "context"

type Repository interface {
	Create(ctx context.Context, req CreatePlanRequest) (*MembershipPlan, error)
	GetByID(ctx context.Context, id int) (*MembershipPlan, error)
	List(ctx context.Context, activeOnly bool) ([]MembershipPlan, error)
	Update(ctx context.Context, id int, req UpdatePlanRequest) (*MembershipPlan, error)
	Deactivate(ctx context.Context, id int) error
}
