// Package profiles stores the optional self-description users and
// partners attach to their account. Profiles are created lazily: reading
// one that was never written yields an empty profile, not an error.
package profiles

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("profile not found")
	ErrInvalidAgeRange = errors.New("minimum age preference above maximum")
)

type UserProfile struct {
	UserID      int64
	DisplayName *string
	Bio         *string
	City        *string
	Interests   []string
	AvatarURL   *string
	AgeMin      *int32
	AgeMax      *int32
	UpdatedAt   time.Time
}

type PartnerProfile struct {
	UserID       int64
	CompanyName  *string
	City         *string
	Website      *string
	ContactEmail *string
	LogoURL      *string
	Description  *string
	UpdatedAt    time.Time
}
