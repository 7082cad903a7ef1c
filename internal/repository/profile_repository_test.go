package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	lockClientPattern  = `(?s)SELECT.+FROM profiles.+WHERE id = .+ AND type = 'client'.+FOR UPDATE`
	outstandingPattern = `(?s)SELECT COALESCE\(SUM\(j\.price\), 0\) AS total.+FROM jobs j.+\(j\.paid = FALSE OR j\.paid IS NULL\)`
	creditPattern      = `UPDATE profiles SET balance = balance \+ `
)

func clientProfileRows(id uuid.UUID, balance string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "first_name", "last_name", "profession", "balance", "type", "created_at"}).
		AddRow(id.String(), "Harry", "Potter", "Wizard", balance, "client", nil)
}

func TestDeposit_CreditsWithinLimit(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewProfileRepository(db)

	clientID := uuid.New()
	ratio := decimal.NewFromFloat(0.25)

	mock.ExpectBegin()
	mock.ExpectQuery(lockClientPattern).
		WithArgs(clientID.String()).
		WillReturnRows(clientProfileRows(clientID, "100.00"))
	mock.ExpectQuery(outstandingPattern).
		WithArgs(clientID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("400.00"))
	mock.ExpectExec(creditPattern).
		WithArgs(sqlmock.AnyArg(), clientID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	profile, err := repo.Deposit(context.Background(), clientID, decimal.NewFromInt(100), ratio)

	require.NoError(t, err)
	assert.True(t, profile.Balance.Equal(decimal.NewFromInt(200)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeposit_OverLimitRollsBack(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewProfileRepository(db)

	clientID := uuid.New()
	ratio := decimal.NewFromFloat(0.25)

	mock.ExpectBegin()
	mock.ExpectQuery(lockClientPattern).
		WithArgs(clientID.String()).
		WillReturnRows(clientProfileRows(clientID, "100.00"))
	mock.ExpectQuery(outstandingPattern).
		WithArgs(clientID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("400.00"))
	mock.ExpectRollback()

	_, err := repo.Deposit(context.Background(), clientID, decimal.NewFromInt(101), ratio)

	assert.ErrorIs(t, err, ErrDepositOverLimit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeposit_NoOutstandingJobsRejectsAnyAmount(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewProfileRepository(db)

	clientID := uuid.New()
	ratio := decimal.NewFromFloat(0.25)

	mock.ExpectBegin()
	mock.ExpectQuery(lockClientPattern).
		WithArgs(clientID.String()).
		WillReturnRows(clientProfileRows(clientID, "100.00"))
	mock.ExpectQuery(outstandingPattern).
		WithArgs(clientID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("0.00"))
	mock.ExpectRollback()

	_, err := repo.Deposit(context.Background(), clientID, decimal.NewFromFloat(0.01), ratio)

	assert.ErrorIs(t, err, ErrDepositOverLimit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeposit_UnknownClientNotFound(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewProfileRepository(db)

	clientID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(lockClientPattern).
		WithArgs(clientID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "profession", "balance", "type", "created_at"}))
	mock.ExpectRollback()

	_, err := repo.Deposit(context.Background(), clientID, decimal.NewFromInt(10), decimal.NewFromFloat(0.25))

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProfile_NotFound(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewProfileRepository(db)

	id := uuid.New()
	mock.ExpectQuery(`(?s)SELECT.+FROM profiles.+WHERE id = `).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "profession", "balance", "type", "created_at"}))

	_, err := repo.GetProfile(context.Background(), id)

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
