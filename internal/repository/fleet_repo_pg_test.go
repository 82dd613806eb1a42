package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/airline/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAircraft(t *testing.T) {
	mock, gw := newMockGateway(t)
	repo := NewFleetRepository(gw)
	bought := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	aircraft := domain.Aircraft{ID: 4321, Size: domain.AircraftSizeLarge, Manufacturer: "AIRBUS", PurchaseDate: bought}
	classes := []domain.CabinClass{
		{AircraftID: 4321, Type: domain.ClassEconomy, Rows: 30, Columns: 6},
		{AircraftID: 4321, Type: domain.ClassBusiness, Rows: 5, Columns: 4},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO aircraft").WithArgs(int64(4321), domain.AircraftSizeLarge, "AIRBUS", bought).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	for _, c := range classes {
		mock.ExpectExec("INSERT INTO class").WithArgs(int64(4321), c.Type, c.Rows, c.Columns).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec("generate_series").WithArgs(int64(4321), c.Type, c.Rows, c.Columns).
			WillReturnResult(pgxmock.NewResult("INSERT", int64(c.Rows*c.Columns)))
	}
	mock.ExpectCommit()

	require.NoError(t, repo.CreateAircraft(context.Background(), aircraft, classes))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAircraft_NotFound(t *testing.T) {
	mock, gw := newMockGateway(t)
	repo := NewFleetRepository(gw)

	mock.ExpectQuery("FROM aircraft WHERE aircraft_id").WithArgs(int64(9)).WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetAircraft(context.Background(), 9)
	assert.ErrorIs(t, err, domain.ErrAircraftNotFound)
}

func TestStaffIDTaken(t *testing.T) {
	mock, gw := newMockGateway(t)
	repo := NewFleetRepository(gw)

	mock.ExpectQuery("FROM manager WHERE id_number").WithArgs(int64(55)).
		WillReturnRows(pgxmock.NewRows([]string{"taken"}).AddRow(true))

	taken, err := repo.StaffIDTaken(context.Background(), 55)
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestCreateCrewMember(t *testing.T) {
	mock, gw := newMockGateway(t)
	repo := NewFleetRepository(gw)
	hired := time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC)
	m := domain.CrewMember{
		ID: 300, Role: domain.CrewRolePilot, FirstName: "Avi", LastName: "Ron",
		City: "Haifa", Street: "Herzl", HouseNumber: 12, PhoneNumber: "050-7654321",
		EmploymentStart: hired, LongFlightCertified: true,
	}
	args := []any{int64(300), "Avi", "Ron", "Haifa", "Herzl", 12, "050-7654321", hired, true}

	mock.ExpectExec(`INSERT INTO "pilot"`).WithArgs(args...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.CreateCrewMember(context.Background(), m))

	mock.ExpectExec(`INSERT INTO "pilot"`).WithArgs(args...).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	err := repo.CreateCrewMember(context.Background(), m)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}
