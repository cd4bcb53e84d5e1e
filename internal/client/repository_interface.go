package client

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Create(ctx context.Context, req CreateClientRequest) (*Client, error)
	GetByID(ctx context.Context, id int) (*Client, error)
	List(ctx context.Context, limit, offset int) ([]Client, error)
	UpdateEntitlementSummary(ctx context.Context, ext sqlx.ExtContext, clientID int, summary EntitlementSummary) error
}
