package schedule

import "context"

type Repository interface {
	Create(ctx context.Context, req CreateScheduleRequest) (*ClassSchedule, error)
	GetByID(ctx context.Context, id int) (*ClassSchedule, error)
	List(ctx context.Context, activeOnly bool) ([]ClassSchedule, error)
	Deactivate(ctx context.Context, id int) error
}
