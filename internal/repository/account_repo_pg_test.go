package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/airline/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_PassportTaken(t *testing.T) {
	mock, gw := newMockGateway(t)
	repo := NewAccountRepository(gw)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM registered_customer").WithArgs("a@b.c", "P123").
		WillReturnRows(pgxmock.NewRows([]string{"email_taken", "passport_taken"}).AddRow(false, true))
	mock.ExpectRollback()

	err := repo.Register(context.Background(), domain.RegisteredCustomer{
		Customer:       domain.Customer{Email: "a@b.c"},
		PassportNumber: "P123",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister(t *testing.T) {
	mock, gw := newMockGateway(t)
	repo := NewAccountRepository(gw)
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	c := domain.RegisteredCustomer{
		Customer:       domain.Customer{Email: "a@b.c", FirstName: "A", LastName: "B", Phones: []string{"050"}},
		Password:       "secret",
		PassportNumber: "P1",
		BirthDate:      now.AddDate(-30, 0, 0),
		RegisteredAt:   now,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FROM registered_customer").WithArgs("a@b.c", "P1").
		WillReturnRows(pgxmock.NewRows([]string{"email_taken", "passport_taken"}).AddRow(false, false))
	mock.ExpectExec("INSERT INTO customer").WithArgs("a@b.c", "A", "B").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("DELETE FROM customer_phone_number").WithArgs("a@b.c").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("INSERT INTO customer_phone_number").WithArgs("a@b.c", "050").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO registered_customer").WithArgs("a@b.c", "secret", "P1", c.BirthDate, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Register(context.Background(), c))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerCredentials_Unknown(t *testing.T) {
	mock, gw := newMockGateway(t)
	repo := NewAccountRepository(gw)

	mock.ExpectQuery("FROM manager").WithArgs(int64(1)).WillReturnError(pgx.ErrNoRows)

	_, _, err := repo.ManagerCredentials(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}
