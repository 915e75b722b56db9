package handlers

import (
	"time"

	"github.com/usly-events/server/internal/domain/accounts"
	"github.com/usly-events/server/internal/domain/events"
	"github.com/usly-events/server/internal/domain/profiles"
	"github.com/usly-events/server/internal/domain/signups"
)

type pricingPayload struct {
	Type        string  `json:"type"`
	PriceFixed  *int64  `json:"price_fixed,omitempty"`
	PriceMin    *int64  `json:"price_min,omitempty"`
	PriceMax    *int64  `json:"price_max,omitempty"`
	PaymentLink *string `json:"payment_link,omitempty"`
}

type eventPayload struct {
	ID          int64          `json:"id"`
	OwnerID     int64          `json:"owner_id"`
	Title       string         `json:"title"`
	Description *string        `json:"description,omitempty"`
	City        string         `json:"city"`
	StartAt     time.Time      `json:"start_at"`
	EndAt       time.Time      `json:"end_at"`
	Capacity    *int32         `json:"capacity,omitempty"`
	Status      string         `json:"status"`
	Pricing     pricingPayload `json:"pricing"`
	CoverURL    *string        `json:"cover_url,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func toEventPayload(event events.Event) eventPayload {
	return eventPayload{
		ID:          event.ID,
		OwnerID:     event.OwnerID,
		Title:       event.Title,
		Description: event.Description,
		City:        event.City,
		StartAt:     event.StartAt.UTC(),
		EndAt:       event.EndAt.UTC(),
		Capacity:    event.Capacity,
		Status:      string(event.Status),
		Pricing: pricingPayload{
			Type:        string(event.Pricing.Type),
			PriceFixed:  event.Pricing.Fixed,
			PriceMin:    event.Pricing.Min,
			PriceMax:    event.Pricing.Max,
			PaymentLink: event.Pricing.PaymentLink,
		},
		CoverURL:  event.CoverURL,
		CreatedAt: event.CreatedAt.UTC(),
		UpdatedAt: event.UpdatedAt.UTC(),
	}
}

func toEventPayloads(items []events.Event) []eventPayload {
	payloads := make([]eventPayload, 0, len(items))
	for _, event := range items {
		payloads = append(payloads, toEventPayload(event))
	}
	return payloads
}

type listPayload struct {
	Items  any   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

type accountPayload struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Status      string    `json:"status"`
	DateOfBirth string    `json:"date_of_birth"`
	CreatedAt   time.Time `json:"created_at"`
}

func toAccountPayload(account accounts.Account) accountPayload {
	return accountPayload{
		ID:          account.ID,
		Email:       account.Email,
		Role:        string(account.Role),
		Status:      string(account.Status),
		DateOfBirth: account.DateOfBirth.Format("2006-01-02"),
		CreatedAt:   account.CreatedAt.UTC(),
	}
}

type userProfilePayload struct {
	UserID      int64    `json:"user_id"`
	DisplayName *string  `json:"display_name,omitempty"`
	Bio         *string  `json:"bio,omitempty"`
	City        *string  `json:"city,omitempty"`
	Interests   []string `json:"interests"`
	AvatarURL   *string  `json:"avatar_url,omitempty"`
	AgeMin      *int32   `json:"age_min,omitempty"`
	AgeMax      *int32   `json:"age_max,omitempty"`
}

func toUserProfilePayload(profile profiles.UserProfile) userProfilePayload {
	interests := profile.Interests
	if interests == nil {
		interests = []string{}
	}
	return userProfilePayload{
		UserID:      profile.UserID,
		DisplayName: profile.DisplayName,
		Bio:         profile.Bio,
		City:        profile.City,
		Interests:   interests,
		AvatarURL:   profile.AvatarURL,
		AgeMin:      profile.AgeMin,
		AgeMax:      profile.AgeMax,
	}
}

type partnerProfilePayload struct {
	UserID       int64   `json:"user_id"`
	CompanyName  *string `json:"company_name,omitempty"`
	City         *string `json:"city,omitempty"`
	Website      *string `json:"website,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty"`
	LogoURL      *string `json:"logo_url,omitempty"`
	Description  *string `json:"description,omitempty"`
}

func toPartnerProfilePayload(profile profiles.PartnerProfile) partnerProfilePayload {
	return partnerProfilePayload{
		UserID:       profile.UserID,
		CompanyName:  profile.CompanyName,
		City:         profile.City,
		Website:      profile.Website,
		ContactEmail: profile.ContactEmail,
		LogoURL:      profile.LogoURL,
		Description:  profile.Description,
	}
}

type userSignupPayload struct {
	JoinedAt time.Time    `json:"joined_at"`
	Event    eventPayload `json:"event"`
}

func toUserSignupPayloads(items []signups.UserSignup) []userSignupPayload {
	payloads := make([]userSignupPayload, 0, len(items))
	for _, item := range items {
		payloads = append(payloads, userSignupPayload{
			JoinedAt: item.Signup.CreatedAt.UTC(),
			Event:    toEventPayload(item.Event),
		})
	}
	return payloads
}

type participantPayload struct {
	UserID   int64     `json:"user_id"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joined_at"`
}

func toParticipantPayloads(items []signups.Participant) []participantPayload {
	payloads := make([]participantPayload, 0, len(items))
	for _, item := range items {
		payloads = append(payloads, participantPayload{
			UserID:   item.UserID,
			Email:    item.Email,
			JoinedAt: item.JoinedAt.UTC(),
		})
	}
	return payloads
}

type statsPayload struct {
	EventID   int64  `json:"event_id"`
	Capacity  *int32 `json:"capacity,omitempty"`
	Confirmed int64  `json:"confirmed"`
	Remaining *int64 `json:"remaining,omitempty"`
}

func toStatsPayload(stats signups.Stats) statsPayload {
	return statsPayload{
		EventID:   stats.EventID,
		Capacity:  stats.Capacity,
		Confirmed: stats.Confirmed,
		Remaining: stats.Remaining,
	}
}
