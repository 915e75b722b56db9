package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/usly-events/server/internal/auth"
	"github.com/usly-events/server/internal/domain/accounts"
)

var _ accounts.Repository = (*AccountRepository)(nil)

type AccountRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *AccountRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func (r *AccountRepository) Create(ctx context.Context, account accounts.Account) (accounts.Account, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO accounts (email, password_hash, date_of_birth, terms_accepted_at, terms_version, privacy_version, role, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at
`,
		account.Email,
		account.PasswordHash,
		account.DateOfBirth,
		account.TermsAccepted,
		account.TermsVersion,
		account.PrivacyVersion,
		string(account.Role),
		string(account.Status),
	)
	if err := row.Scan(&account.ID, &account.CreatedAt); err != nil {
		if isUniqueViolation(err, "accounts_email_key") {
			return accounts.Account{}, accounts.ErrEmailTaken
		}
		return accounts.Account{}, fmt.Errorf("insert account: %w", err)
	}
	return account, nil
}

// ResetCredentials overwrites role, status and password hash in one
// statement. The seed command uses it to repair drifted dev accounts.
func (r *AccountRepository) ResetCredentials(ctx context.Context, id int64, role auth.Role, status accounts.Status, passwordHash string) error {
	tag, err := r.queryer().Exec(ctx, `
UPDATE accounts SET role = $2, status = $3, password_hash = $4 WHERE id = $1
`, id, string(role), string(status), passwordHash)
	if err != nil {
		return fmt.Errorf("reset credentials: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return accounts.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (accounts.Account, error) {
	return r.get(ctx, `WHERE email = $1`, email)
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (accounts.Account, error) {
	return r.get(ctx, `WHERE id = $1`, id)
}

func (r *AccountRepository) get(ctx context.Context, where string, arg any) (accounts.Account, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT id, email, password_hash, date_of_birth, terms_accepted_at, terms_version, privacy_version, role, status, created_at
  FROM accounts
 `+where+`
 LIMIT 1
`, arg)

	var (
		account accounts.Account
		role    string
		status  string
	)
	if err := row.Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.DateOfBirth,
		&account.TermsAccepted,
		&account.TermsVersion,
		&account.PrivacyVersion,
		&role,
		&status,
		&account.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return accounts.Account{}, accounts.ErrAccountNotFound
		}
		return accounts.Account{}, fmt.Errorf("select account: %w", err)
	}

	parsedRole, ok := auth.ParseRole(role)
	if !ok {
		return accounts.Account{}, fmt.Errorf("select account: unknown role %q", role)
	}
	account.Role = parsedRole
	account.Status = accounts.Status(status)
	return account, nil
}
