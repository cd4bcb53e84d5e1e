package staff

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"gymdesk/internal/apperr"
	"gymdesk/internal/db"
)

type Repository interface {
	Create(ctx context.Context, name, email, passwordHash, role string) (*Staff, error)
	FindByEmail(ctx context.Context, email string) (*Staff, error)
	FindByID(ctx context.Context, id int) (*Staff, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, name, email, passwordHash, role string) (*Staff, error) {
	query := `
		INSERT INTO staff (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, password_hash, role, created_at
	`

	var s Staff
	err := r.db.GetContext(ctx, &s, query, name, email, passwordHash, role)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*Staff, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at
		FROM staff
		WHERE email = $1
	`

	var s Staff
	err := r.db.GetContext(ctx, &s, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("staff account")
		}
		return nil, err
	}

	return &s, nil
}

func (r *repository) FindByID(ctx context.Context, id int) (*Staff, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at
		FROM staff
		WHERE id = $1
	`

	var s Staff
	err := r.db.GetContext(ctx, &s, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("staff account")
		}
		return nil, err
	}

	return &s, nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM staff WHERE email = $1)`, email)
}
