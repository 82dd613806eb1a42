package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airline/internal/domain"
	"github.com/jackc/pgx/v5"
)

type AccountRepository interface {
	Register(ctx context.Context, c domain.RegisteredCustomer) error
	CustomerCredentials(ctx context.Context, email string) (*domain.RegisteredCustomer, error)
	ManagerCredentials(ctx context.Context, id int64) (*domain.Manager, string, error)
	CreateManager(ctx context.Context, m domain.Manager, password string) error
	Profile(ctx context.Context, email string) (*domain.Customer, error)
}

type PGAccountRepository struct {
	gw *Gateway
}

func NewAccountRepository(gw *Gateway) AccountRepository {
	return &PGAccountRepository{gw: gw}
}

// Register creates a registered customer. An email already used for guest
// bookings is upgraded in place.
func (r *PGAccountRepository) Register(ctx context.Context, c domain.RegisteredCustomer) error {
	return r.gw.WithinTx(ctx, func(q Querier) error {
		var emailTaken, passportTaken bool
		err := q.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM registered_customer WHERE email = $1),
			       EXISTS (SELECT 1 FROM registered_customer WHERE passport_number = $2)`,
			c.Email, c.PassportNumber).Scan(&emailTaken, &passportTaken)
		if err != nil {
			return fmt.Errorf("failed to check registration: %w", err)
		}
		if emailTaken {
			return domain.Validationf("email %s is already registered", c.Email)
		}
		if passportTaken {
			return domain.Validationf("passport number is already registered")
		}

		if err := upsertCustomer(ctx, q, c.Email, &c.Customer); err != nil {
			return err
		}

		if _, err := q.Exec(ctx, `
			INSERT INTO registered_customer (email, password, passport_number, date_of_birth, registration_date)
			VALUES ($1, $2, $3, $4, $5)`,
			c.Email, c.Password, c.PassportNumber, c.BirthDate, c.RegisteredAt); err != nil {
			if IsUniqueViolation(err, "") {
				return domain.Validationf("email or passport number is already registered")
			}
			return fmt.Errorf("failed to insert registered customer: %w", err)
		}
		return nil
	})
}

func (r *PGAccountRepository) CustomerCredentials(ctx context.Context, email string) (*domain.RegisteredCustomer, error) {
	var c domain.RegisteredCustomer
	var first, last *string
	err := r.gw.DB().QueryRow(ctx, `
		SELECT c.email, c.first_name, c.last_name, rc.password, rc.passport_number, rc.registration_date
		FROM registered_customer rc
		JOIN customer c ON c.email = rc.email
		WHERE rc.email = $1`, email).
		Scan(&c.Email, &first, &last, &c.Password, &c.PassportNumber, &c.RegisteredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get customer credentials: %w", err)
	}
	c.FirstName, c.LastName = deref(first), deref(last)
	return &c, nil
}

func (r *PGAccountRepository) ManagerCredentials(ctx context.Context, id int64) (*domain.Manager, string, error) {
	var m domain.Manager
	var password string
	err := r.gw.DB().QueryRow(ctx, `SELECT id_number, first_name, last_name, password FROM manager WHERE id_number = $1`, id).
		Scan(&m.ID, &m.FirstName, &m.LastName, &password)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to get manager credentials: %w", err)
	}
	return &m, password, nil
}

// CreateManager inserts the manager unless the id is already present.
func (r *PGAccountRepository) CreateManager(ctx context.Context, m domain.Manager, password string) error {
	_, err := r.gw.DB().Exec(ctx, `
		INSERT INTO manager (id_number, first_name, last_name, password)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id_number) DO NOTHING`, m.ID, m.FirstName, m.LastName, password)
	if err != nil {
		return fmt.Errorf("failed to insert manager: %w", err)
	}
	return nil
}

func (r *PGAccountRepository) Profile(ctx context.Context, email string) (*domain.Customer, error) {
	c := domain.Customer{Email: email}
	var first, last *string
	err := r.gw.DB().QueryRow(ctx, `SELECT first_name, last_name FROM customer WHERE email = $1`, email).Scan(&first, &last)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: customer %s", domain.ErrNotFound, email)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	c.FirstName, c.LastName = deref(first), deref(last)

	rows, err := r.gw.DB().Query(ctx, `SELECT phone_number FROM customer_phone_number WHERE email = $1 ORDER BY phone_number`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to query customer phones: %w", err)
	}
	defer rows.Close()

	c.Phones = make([]string, 0)
	for rows.Next() {
		var phone string
		if err := rows.Scan(&phone); err != nil {
			return nil, fmt.Errorf("failed to scan customer phone: %w", err)
		}
		c.Phones = append(c.Phones, phone)
	}
	return &c, rows.Err()
}

var _ AccountRepository = (*PGAccountRepository)(nil)
