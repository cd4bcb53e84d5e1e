package client

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"gymdesk/internal/apperr"
)

const clientColumns = `id, name, email, phone, membership_status, membership_id,
		membership_start, membership_end, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, req CreateClientRequest) (*Client, error) {
	query := `
		INSERT INTO clients (name, email, phone)
		VALUES ($1, $2, $3)
		RETURNING ` + clientColumns

	var cl Client
	err := r.db.GetContext(ctx, &cl, query, req.Name, req.Email, req.Phone)
	if err != nil {
		return nil, err
	}

	return &cl, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	var cl Client
	err := r.db.GetContext(ctx, &cl, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("client")
		}
		return nil, err
	}

	return &cl, nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]Client, error) {
	if limit <= 0 {
		limit = 50
	}

	clients := []Client{}
	err := r.db.SelectContext(ctx, &clients, `
		SELECT `+clientColumns+`
		FROM clients
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}

	return clients, nil
}

// UpdateEntitlementSummary runs on whatever executor the caller holds,
// so membership sale/renewal transactions can refresh the cache
// atomically with their own writes.
func (r *repository) UpdateEntitlementSummary(ctx context.Context, ext sqlx.ExtContext, clientID int, summary EntitlementSummary) error {
	result, err := ext.ExecContext(ctx, `
		UPDATE clients
		SET membership_status = $2,
		    membership_id = $3,
		    membership_start = $4,
		    membership_end = $5,
		    updated_at = NOW()
		WHERE id = $1
	`, clientID, summary.Status, summary.MembershipID, summary.Start, summary.End)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return apperr.NotFound("client")
	}

	return nil
}
