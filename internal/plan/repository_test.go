package plan

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gymdesk/internal/apperr"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestRepository_Deactivate(t *testing.T) {
	t.Run("plan with open memberships is refused", func(t *testing.T) {
		sqlxDB, mock := newMockDB(t)
		repo := NewRepository(sqlxDB)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM memberships`).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		err := repo.Deactivate(context.Background(), 1)

		assert.True(t, apperr.IsKind(err, apperr.KindBusinessRule))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unreferenced plan deactivates", func(t *testing.T) {
		sqlxDB, mock := newMockDB(t)
		repo := NewRepository(sqlxDB)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM memberships`).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec(`UPDATE membership_plans SET is_active = false`).
			WithArgs(1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Deactivate(context.Background(), 1)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already inactive plan is not found", func(t *testing.T) {
		sqlxDB, mock := newMockDB(t)
		repo := NewRepository(sqlxDB)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM memberships`).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec(`UPDATE membership_plans SET is_active = false`).
			WithArgs(1).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Deactivate(context.Background(), 1)

		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}
