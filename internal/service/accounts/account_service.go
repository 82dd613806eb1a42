package accounts

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Domenick1991/airline/internal/domain"
	"github.com/Domenick1991/airline/internal/repository"
	"github.com/google/uuid"
)

type AccountUseCase interface {
	Signup(ctx context.Context, input SignupInput) (*domain.Session, error)
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	ManagerLogin(ctx context.Context, id int64, password string) (*domain.Session, error)
	Logout(ctx context.Context, token string) error
	ResolveSession(ctx context.Context, token string) (*domain.Session, error)
	Profile(ctx context.Context, email string) (*domain.Customer, error)
	SeedManager(ctx context.Context, manager domain.Manager, password string) error
}

type SessionStore interface {
	SaveSession(ctx context.Context, s *domain.Session) error
	GetSession(ctx context.Context, token string) (*domain.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

type SignupInput struct {
	Email          string
	Password       string
	FirstName      string
	LastName       string
	PassportNumber string
	BirthDate      time.Time
	MainPhone      string
	ExtraPhones    []string
}

type AccountService struct {
	accounts   repository.AccountRepository
	sessions   SessionStore
	sessionTTL time.Duration
	now        func() time.Time
	newToken   func() string
}

type AccountServiceOption func(*AccountService)

func WithClock(now func() time.Time) AccountServiceOption {
	return func(s *AccountService) {
		s.now = now
	}
}

func WithTokenSource(newToken func() string) AccountServiceOption {
	return func(s *AccountService) {
		s.newToken = newToken
	}
}

func NewAccountService(accounts repository.AccountRepository, sessions SessionStore, sessionTTL time.Duration, opts ...AccountServiceOption) *AccountService {
	s := &AccountService{
		accounts:   accounts,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		now:        time.Now,
		newToken:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup registers a customer and logs them in.
func (s *AccountService) Signup(ctx context.Context, input SignupInput) (*domain.Session, error) {
	customer, err := validateSignup(input, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.accounts.Register(ctx, *customer); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "customer registered", "email", customer.Email)

	return s.openSession(ctx, domain.Session{
		Kind:      domain.SessionCustomer,
		Email:     customer.Email,
		FirstName: customer.FirstName,
		LastName:  customer.LastName,
	})
}

func validateSignup(input SignupInput, now time.Time) (*domain.RegisteredCustomer, error) {
	email, err := domain.NormalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	c := &domain.RegisteredCustomer{
		Customer: domain.Customer{
			Email:     email,
			FirstName: strings.TrimSpace(input.FirstName),
			LastName:  strings.TrimSpace(input.LastName),
		},
		Password:       input.Password,
		PassportNumber: strings.TrimSpace(input.PassportNumber),
		BirthDate:      input.BirthDate,
		RegisteredAt:   now,
	}

	switch {
	case c.Password == "":
		return nil, domain.Validationf("password is required")
	case c.FirstName == "" || c.LastName == "":
		return nil, domain.Validationf("first and last name are required")
	case c.PassportNumber == "":
		return nil, domain.Validationf("passport number is required")
	case c.BirthDate.IsZero() || !c.BirthDate.Before(now):
		return nil, domain.Validationf("birth date must be in the past")
	}

	main := strings.TrimSpace(input.MainPhone)
	if main == "" {
		return nil, domain.Validationf("main phone number is required")
	}
	c.Phones = []string{main}
	for _, phone := range input.ExtraPhones {
		phone = strings.TrimSpace(phone)
		if phone != "" && !slices.Contains(c.Phones, phone) {
			c.Phones = append(c.Phones, phone)
		}
	}
	return c, nil
}


// Login checks a registered customer's password.
func (s *AccountService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email, err := domain.NormalizeEmail(email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	customer, err := s.accounts.CustomerCredentials(ctx, email)
	if err != nil {
		return nil, err
	}
	if customer.Password != password {
		return nil, domain.ErrInvalidCredentials
	}

	return s.openSession(ctx, domain.Session{
		Kind:      domain.SessionCustomer,
		Email:     customer.Email,
		FirstName: customer.FirstName,
		LastName:  customer.LastName,
	})
}

func (s *AccountService) ManagerLogin(ctx context.Context, id int64, password string) (*domain.Session, error) {
	manager, stored, err := s.accounts.ManagerCredentials(ctx, id)
	if err != nil {
		return nil, err
	}
	if stored != password {
		return nil, domain.ErrInvalidCredentials
	}

	return s.openSession(ctx, domain.Session{
		Kind:      domain.SessionManager,
		ManagerID: manager.ID,
		FirstName: manager.FirstName,
		LastName:  manager.LastName,
	})
}

func (s *AccountService) openSession(ctx context.Context, session domain.Session) (*domain.Session, error) {
	session.Token = s.newToken()
	session.ExpiresAt = s.now().Add(s.sessionTTL)
	if err := s.sessions.SaveSession(ctx, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *AccountService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.DeleteSession(ctx, token)
}

func (s *AccountService) ResolveSession(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrInvalidCredentials
	}
	return s.sessions.GetSession(ctx, token)
}

func (s *AccountService) Profile(ctx context.Context, email string) (*domain.Customer, error) {
	return s.accounts.Profile(ctx, email)
}

// SeedManager makes sure the configured manager account exists.
func (s *AccountService) SeedManager(ctx context.Context, manager domain.Manager, password string) error {
	if manager.ID <= 0 || password == "" {
		return domain.Validationf("manager id and password are required")
	}
	return s.accounts.CreateManager(ctx, manager, password)
}

var _ AccountUseCase = (*AccountService)(nil)
