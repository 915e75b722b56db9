// Package accounts handles registration, authentication, and account lookup
// for the authorization gate.
//
// Core operations:
//   - Register: creates an active account with a bcrypt credential after
//     checking the age floor, legal acceptance, and email uniqueness
//   - Authenticate: email/password login issuing a signed session token,
//     with LOGIN_SUCCESS / LOGIN_FAIL audit records
//   - GetActive: resolves a token subject to an active account
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/usly-events/server/internal/audit"
	"github.com/usly-events/server/internal/auth"
	"github.com/usly-events/server/internal/metrics"
)

var (
	// ErrEmailTaken is returned when registering with an email that already has an account.
	ErrEmailTaken = errors.New("email is already taken")

	// ErrInvalidCredentials is returned when email/password authentication fails.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountInactive is returned for blocked or deleted accounts.
	ErrAccountInactive = errors.New("account is not active")

	// ErrAccountNotFound is returned when an account lookup fails.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAgeTooLow is returned when the date of birth is under the age floor.
	ErrAgeTooLow = errors.New("must be at least 16 years old")

	// ErrTermsRequired is returned when terms were not accepted at registration.
	ErrTermsRequired = errors.New("terms and privacy policy must be accepted")

	// ErrInvalidRole is returned for registration roles other than user or partner.
	ErrInvalidRole = errors.New("role must be user or partner")
)

const (
	// MinimumAge is the registration age floor in years.
	MinimumAge = 16

	// TermsVersion and PrivacyVersion are stamped on accounts at registration.
	TermsVersion   = "v1"
	PrivacyVersion = "v1"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusBlocked Status = "blocked"
	StatusDeleted Status = "deleted"
)

type Account struct {
	ID             int64
	Email          string
	PasswordHash   string
	DateOfBirth    time.Time
	TermsAccepted  *time.Time
	TermsVersion   string
	PrivacyVersion string
	Role           auth.Role
	Status         Status
	CreatedAt      time.Time
}

// Repository persists accounts. Lookups return ErrAccountNotFound for
// missing rows.
type Repository interface {
	Create(ctx context.Context, account Account) (Account, error)
	GetByEmail(ctx context.Context, email string) (Account, error)
	GetByID(ctx context.Context, id int64) (Account, error)
}

type Service struct {
	repo     Repository
	tokens   *auth.JWTManager
	recorder *audit.Recorder
	validate *validator.Validate
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(repo Repository, tokens *auth.JWTManager, recorder *audit.Recorder, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		tokens:   tokens,
		recorder: recorder,
		validate: validator.New(),
		logger:   logger.With().Str("component", "accounts").Logger(),
		now:      time.Now,
	}
}

type RegisterParams struct {
	Email       string `validate:"required,email"`
	Password    string `validate:"required,min=8,max=128"`
	DateOfBirth time.Time
	Role        string `validate:"required"`
	AcceptTerms bool
}

func (s *Service) Register(ctx context.Context, params RegisterParams, origin audit.Origin) (Account, error) {
	if err := s.validate.Struct(params); err != nil {
		return Account{}, err
	}

	role, ok := auth.ParseRole(params.Role)
	if !ok || role == auth.RoleAdmin {
		return Account{}, ErrInvalidRole
	}
	if !isAtLeast(params.DateOfBirth, MinimumAge, s.now()) {
		return Account{}, ErrAgeTooLow
	}
	if !params.AcceptTerms {
		return Account{}, ErrTermsRequired
	}

	email := NormalizeEmail(params.Email)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return Account{}, ErrEmailTaken
	} else if !errors.Is(err, ErrAccountNotFound) {
		return Account{}, fmt.Errorf("check email: %w", err)
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return Account{}, fmt.Errorf("hash password: %w", err)
	}

	accepted := s.now().UTC()
	account, err := s.repo.Create(ctx, Account{
		Email:          email,
		PasswordHash:   hash,
		DateOfBirth:    params.DateOfBirth,
		TermsAccepted:  &accepted,
		TermsVersion:   TermsVersion,
		PrivacyVersion: PrivacyVersion,
		Role:           role,
		Status:         StatusActive,
	})
	if err != nil {
		return Account{}, fmt.Errorf("create account: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		ActorID:   &account.ID,
		Action:    audit.ActionRegister,
		IP:        origin.IP,
		UserAgent: origin.UserAgent,
		Details:   fmt.Sprintf(`{"email":%q}`, email),
	})
	return account, nil
}

type LoginParams struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Authenticate verifies credentials and issues a session token. Failed
// attempts are audited as LOGIN_FAIL with a nil actor when the email is
// unknown.
func (s *Service) Authenticate(ctx context.Context, params LoginParams, origin audit.Origin) (Account, string, error) {
	if err := s.validate.Struct(params); err != nil {
		return Account{}, "", err
	}

	email := NormalizeEmail(params.Email)
	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			s.auditLogin(ctx, audit.ActionLoginFail, nil, origin, email)
			metrics.LoginAttempts.WithLabelValues("failure").Inc()
			return Account{}, "", ErrInvalidCredentials
		}
		return Account{}, "", fmt.Errorf("lookup account: %w", err)
	}

	if account.Status != StatusActive {
		return Account{}, "", ErrAccountInactive
	}

	if !auth.VerifyPassword(params.Password, account.PasswordHash) {
		s.auditLogin(ctx, audit.ActionLoginFail, &account.ID, origin, email)
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return Account{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(strconv.FormatInt(account.ID, 10))
	if err != nil {
		return Account{}, "", fmt.Errorf("issue token: %w", err)
	}

	s.auditLogin(ctx, audit.ActionLoginSuccess, &account.ID, origin, email)
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	return account, token, nil
}

func (s *Service) Logout(ctx context.Context, account Account, origin audit.Origin) {
	s.recorder.Record(ctx, audit.Entry{
		ActorID:   &account.ID,
		Action:    audit.ActionLogout,
		IP:        origin.IP,
		UserAgent: origin.UserAgent,
	})
}

// GetActive loads the account for a verified token subject. The token
// service has already authenticated the subject; this enforces that the
// account still exists and is active.
func (s *Service) GetActive(ctx context.Context, id int64) (Account, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, fmt.Errorf("load account: %w", err)
	}
	if account.Status != StatusActive {
		return Account{}, ErrAccountInactive
	}
	return account, nil
}

func (s *Service) auditLogin(ctx context.Context, action string, actorID *int64, origin audit.Origin, email string) {
	s.recorder.Record(ctx, audit.Entry{
		ActorID:   actorID,
		Action:    action,
		IP:        origin.IP,
		UserAgent: origin.UserAgent,
		Details:   fmt.Sprintf(`{"email":%q}`, email),
	})
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isAtLeast(dob time.Time, years int, today time.Time) bool {
	cutoff := today.AddDate(-years, 0, 0)
	return !dob.After(cutoff)
}
