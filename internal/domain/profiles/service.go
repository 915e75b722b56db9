package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type Repository interface {
	GetUserProfile(ctx context.Context, userID int64) (UserProfile, error)
	UpsertUserProfile(ctx context.Context, profile UserProfile) (UserProfile, error)
	GetPartnerProfile(ctx context.Context, userID int64) (PartnerProfile, error)
	UpsertPartnerProfile(ctx context.Context, profile PartnerProfile) (PartnerProfile, error)
}

type Service struct {
	repo     Repository
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(),
		logger:   logger.With().Str("component", "profiles").Logger(),
	}
}

// GetUser returns the user's profile, or an empty one if none was ever
// saved. Nothing is written on read.
func (s *Service) GetUser(ctx context.Context, userID int64) (UserProfile, error) {
	profile, err := s.repo.GetUserProfile(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return UserProfile{UserID: userID}, nil
	}
	if err != nil {
		return UserProfile{}, fmt.Errorf("get user profile: %w", err)
	}
	return profile, nil
}

type UserPatch struct {
	DisplayName *string   `validate:"omitempty,min=1,max=80"`
	Bio         *string   `validate:"omitempty,max=300"`
	City        *string   `validate:"omitempty,min=1,max=80"`
	Interests   *[]string `validate:"omitempty,max=20,dive,min=1,max=40"`
	AvatarURL   *string   `validate:"omitempty,url,max=500"`
	AgeMin      *int32    `validate:"omitempty,gte=16,lte=120"`
	AgeMax      *int32    `validate:"omitempty,gte=16,lte=120"`
}

// UpdateUser merges patch into the stored profile and saves it. The age
// preference window is checked on the merged state, so setting only
// age_min still has to respect a stored age_max.
func (s *Service) UpdateUser(ctx context.Context, userID int64, patch UserPatch) (UserProfile, error) {
	if err := s.validate.Struct(patch); err != nil {
		return UserProfile{}, err
	}

	profile, err := s.GetUser(ctx, userID)
	if err != nil {
		return UserProfile{}, err
	}

	if patch.DisplayName != nil {
		profile.DisplayName = patch.DisplayName
	}
	if patch.Bio != nil {
		profile.Bio = patch.Bio
	}
	if patch.City != nil {
		profile.City = patch.City
	}
	if patch.Interests != nil {
		profile.Interests = *patch.Interests
	}
	if patch.AvatarURL != nil {
		profile.AvatarURL = patch.AvatarURL
	}
	if patch.AgeMin != nil {
		profile.AgeMin = patch.AgeMin
	}
	if patch.AgeMax != nil {
		profile.AgeMax = patch.AgeMax
	}
	if profile.AgeMin != nil && profile.AgeMax != nil && *profile.AgeMin > *profile.AgeMax {
		return UserProfile{}, ErrInvalidAgeRange
	}

	saved, err := s.repo.UpsertUserProfile(ctx, profile)
	if err != nil {
		return UserProfile{}, fmt.Errorf("save user profile: %w", err)
	}
	return saved, nil
}

// GetPartner mirrors GetUser for partner accounts.
func (s *Service) GetPartner(ctx context.Context, userID int64) (PartnerProfile, error) {
	profile, err := s.repo.GetPartnerProfile(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return PartnerProfile{UserID: userID}, nil
	}
	if err != nil {
		return PartnerProfile{}, fmt.Errorf("get partner profile: %w", err)
	}
	return profile, nil
}

type PartnerPatch struct {
	CompanyName  *string `validate:"omitempty,min=2,max=120"`
	City         *string `validate:"omitempty,min=1,max=80"`
	Website      *string `validate:"omitempty,url,max=500"`
	ContactEmail *string `validate:"omitempty,email"`
	LogoURL      *string `validate:"omitempty,url,max=500"`
	Description  *string `validate:"omitempty,max=2000"`
}

func (s *Service) UpdatePartner(ctx context.Context, userID int64, patch PartnerPatch) (PartnerProfile, error) {
	if err := s.validate.Struct(patch); err != nil {
		return PartnerProfile{}, err
	}

	profile, err := s.GetPartner(ctx, userID)
	if err != nil {
		return PartnerProfile{}, err
	}

	if patch.CompanyName != nil {
		profile.CompanyName = patch.CompanyName
	}
	if patch.City != nil {
		profile.City = patch.City
	}
	if patch.Website != nil {
		profile.Website = patch.Website
	}
	if patch.ContactEmail != nil {
		profile.ContactEmail = patch.ContactEmail
	}
	if patch.LogoURL != nil {
		profile.LogoURL = patch.LogoURL
	}
	if patch.Description != nil {
		profile.Description = patch.Description
	}

	saved, err := s.repo.UpsertPartnerProfile(ctx, profile)
	if err != nil {
		return PartnerProfile{}, fmt.Errorf("save partner profile: %w", err)
	}
	return saved, nil
}
