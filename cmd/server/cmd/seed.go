package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/usly-events/server/internal/auth"
	"github.com/usly-events/server/internal/domain/accounts"
	"github.com/usly-events/server/internal/storage/postgres"
)

// Development fixtures for local frontends and smoke tests.
var seedAccounts = []struct {
	email    string
	password string
	role     auth.Role
}{
	{"admin@usly.dev", "admin12345", auth.RoleAdmin},
	{"user@test.com", "test12345", auth.RoleUser},
	{"partner@test.com", "test12345", auth.RolePartner},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert development accounts",
	Long: `Insert the development accounts (admin, user, partner) used by local
frontends and smoke tests.

Running it again is safe: accounts that already exist are kept, and ones
that drifted (wrong role, inactive status, stale password hash) are
repaired in place.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed()
	},
}

func runSeed() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConnections, cfg.Database.MaxIdle)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return err
	}

	for _, seed := range seedAccounts {
		if err := ensureSeedAccount(ctx, repo.Accounts(), seed.email, seed.password, seed.role); err != nil {
			return fmt.Errorf("seed %s: %w", seed.email, err)
		}
	}
	return nil
}

// seedStore is the slice of the account repository the seeder needs.
type seedStore interface {
	Create(ctx context.Context, account accounts.Account) (accounts.Account, error)
	GetByEmail(ctx context.Context, email string) (accounts.Account, error)
	ResetCredentials(ctx context.Context, id int64, role auth.Role, status accounts.Status, passwordHash string) error
}

func ensureSeedAccount(ctx context.Context, repo seedStore, email, password string, role auth.Role) error {
	existing, err := repo.GetByEmail(ctx, email)
	if errors.Is(err, accounts.ErrAccountNotFound) {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		_, err = repo.Create(ctx, accounts.Account{
			Email:          email,
			PasswordHash:   hash,
			DateOfBirth:    time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
			TermsAccepted:  &now,
			TermsVersion:   accounts.TermsVersion,
			PrivacyVersion: accounts.PrivacyVersion,
			Role:           role,
			Status:         accounts.StatusActive,
		})
		if err != nil {
			return err
		}
		fmt.Printf("created %s (%s)\n", email, role)
		return nil
	}
	if err != nil {
		return err
	}

	if existing.Role == role && existing.Status == accounts.StatusActive && auth.VerifyPassword(password, existing.PasswordHash) {
		fmt.Printf("%s already seeded\n", email)
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := repo.ResetCredentials(ctx, existing.ID, role, accounts.StatusActive, hash); err != nil {
		return err
	}
	fmt.Printf("repaired %s (%s)\n", email, role)
	return nil
}
