package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/usly-events/server/internal/domain/profiles"
)

var _ profiles.Repository = (*ProfileRepository)(nil)

type ProfileRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *ProfileRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func (r *ProfileRepository) GetUserProfile(ctx context.Context, userID int64) (profiles.UserProfile, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT user_id, display_name, bio, city, interests, avatar_url, age_min, age_max, updated_at
  FROM user_profiles
 WHERE user_id = $1
`, userID)

	var profile profiles.UserProfile
	if err := row.Scan(
		&profile.UserID,
		&profile.DisplayName,
		&profile.Bio,
		&profile.City,
		&profile.Interests,
		&profile.AvatarURL,
		&profile.AgeMin,
		&profile.AgeMax,
		&profile.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profiles.UserProfile{}, profiles.ErrNotFound
		}
		return profiles.UserProfile{}, fmt.Errorf("select user profile: %w", err)
	}
	return profile, nil
}

func (r *ProfileRepository) UpsertUserProfile(ctx context.Context, profile profiles.UserProfile) (profiles.UserProfile, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO user_profiles (user_id, display_name, bio, city, interests, avatar_url, age_min, age_max, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
ON CONFLICT (user_id) DO UPDATE
   SET display_name = EXCLUDED.display_name,
       bio = EXCLUDED.bio,
       city = EXCLUDED.city,
       interests = EXCLUDED.interests,
       avatar_url = EXCLUDED.avatar_url,
       age_min = EXCLUDED.age_min,
       age_max = EXCLUDED.age_max,
       updated_at = now()
RETURNING updated_at
`,
		profile.UserID,
		profile.DisplayName,
		profile.Bio,
		profile.City,
		profile.Interests,
		profile.AvatarURL,
		profile.AgeMin,
		profile.AgeMax,
	)
	if err := row.Scan(&profile.UpdatedAt); err != nil {
		return profiles.UserProfile{}, fmt.Errorf("upsert user profile: %w", err)
	}
	return profile, nil
}

func (r *ProfileRepository) GetPartnerProfile(ctx context.Context, userID int64) (profiles.PartnerProfile, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT user_id, company_name, city, website, contact_email, logo_url, description, updated_at
  FROM partner_profiles
 WHERE user_id = $1
`, userID)

	var profile profiles.PartnerProfile
	if err := row.Scan(
		&profile.UserID,
		&profile.CompanyName,
		&profile.City,
		&profile.Website,
		&profile.ContactEmail,
		&profile.LogoURL,
		&profile.Description,
		&profile.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profiles.PartnerProfile{}, profiles.ErrNotFound
		}
		return profiles.PartnerProfile{}, fmt.Errorf("select partner profile: %w", err)
	}
	return profile, nil
}

func (r *ProfileRepository) UpsertPartnerProfile(ctx context.Context, profile profiles.PartnerProfile) (profiles.PartnerProfile, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO partner_profiles (user_id, company_name, city, website, contact_email, logo_url, description, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())
ON CONFLICT (user_id) DO UPDATE
   SET company_name = EXCLUDED.company_name,
       city = EXCLUDED.city,
       website = EXCLUDED.website,
       contact_email = EXCLUDED.contact_email,
       logo_url = EXCLUDED.logo_url,
       description = EXCLUDED.description,
       updated_at = now()
RETURNING updated_at
`,
		profile.UserID,
		profile.CompanyName,
		profile.City,
		profile.Website,
		profile.ContactEmail,
		profile.LogoURL,
		profile.Description,
	)
	if err := row.Scan(&profile.UpdatedAt); err != nil {
		return profiles.PartnerProfile{}, fmt.Errorf("upsert partner profile: %w", err)
	}
	return profile, nil
}
