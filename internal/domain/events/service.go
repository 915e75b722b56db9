package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type Service struct {
	repo     Repository
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(),
		logger:   logger.With().Str("component", "events").Logger(),
	}
}

type CreateParams struct {
	Title       string  `validate:"required,min=3,max=120"`
	Description *string `validate:"omitempty,max=2000"`
	City        string  `validate:"required,min=2,max=80"`
	StartAt     time.Time
	EndAt       time.Time
	Capacity    *int32
	CoverURL    *string `validate:"omitempty,max=500"`
	Pricing     Pricing
}

// Create persists a new event for ownerID. Events always start in draft;
// date and pricing invariants are checked before anything is stored.
func (s *Service) Create(ctx context.Context, ownerID int64, params CreateParams) (Event, error) {
	if err := s.validate.StructExcept(params, "Pricing"); err != nil {
		return Event{}, err
	}

	start := params.StartAt.UTC()
	end := params.EndAt.UTC()
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return Event{}, ErrInvalidDates
	}
	if err := validateCapacity(params.Capacity); err != nil {
		return Event{}, err
	}
	if err := params.Pricing.Validate(); err != nil {
		return Event{}, err
	}
	if err := s.validatePaymentLink(params.Pricing.PaymentLink); err != nil {
		return Event{}, err
	}

	event, err := s.repo.Create(ctx, Event{
		OwnerID:     ownerID,
		Title:       params.Title,
		Description: params.Description,
		City:        params.City,
		StartAt:     start,
		EndAt:       end,
		Capacity:    params.Capacity,
		Status:      StatusDraft,
		Pricing:     params.Pricing,
		CoverURL:    params.CoverURL,
	})
	if err != nil {
		return Event{}, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

type Patch struct {
	Title       *string
	Description *string
	City        *string
	StartAt     *time.Time
	EndAt       *time.Time
	Capacity    *int32
	CoverURL    *string

	PricingType *PricingType
	PriceFixed  *int64
	PriceMin    *int64
	PriceMax    *int64
	PaymentLink *string
}

func (p Patch) touchesPricingFields() bool {
	return p.PriceFixed != nil || p.PriceMin != nil || p.PriceMax != nil || p.PaymentLink != nil
}

// Update applies patch to the stored event. Date and pricing rules are
// re-checked against the merged state, so patching only end_at is still
// validated against the stored start_at. Changing pricing replaces the
// whole descriptor: the new mode's fields come from the patch alone, which
// keeps leftover fields from a previous mode out of the row.
func (s *Service) Update(ctx context.Context, eventID, requesterID int64, patch Patch) (Event, error) {
	event, err := s.ownedEvent(ctx, eventID, requesterID)
	if err != nil {
		return Event{}, err
	}
	if event.Status == StatusArchived {
		return Event{}, ErrEventArchived
	}

	if patch.Title != nil {
		event.Title = *patch.Title
	}
	if patch.Description != nil {
		event.Description = patch.Description
	}
	if patch.City != nil {
		event.City = *patch.City
	}
	if patch.StartAt != nil {
		start := patch.StartAt.UTC()
		event.StartAt = start
	}
	if patch.EndAt != nil {
		end := patch.EndAt.UTC()
		event.EndAt = end
	}
	if patch.Capacity != nil {
		event.Capacity = patch.Capacity
	}
	if patch.CoverURL != nil {
		event.CoverURL = patch.CoverURL
	}

	if err := s.validate.StructExcept(CreateParams{
		Title:       event.Title,
		Description: event.Description,
		City:        event.City,
		CoverURL:    event.CoverURL,
	}, "Pricing"); err != nil {
		return Event{}, err
	}
	if !event.StartAt.Before(event.EndAt) {
		return Event{}, ErrInvalidDates
	}
	if err := validateCapacity(event.Capacity); err != nil {
		return Event{}, err
	}

	switch {
	case patch.PricingType != nil:
		pricing := Pricing{
			Type:        *patch.PricingType,
			Fixed:       patch.PriceFixed,
			Min:         patch.PriceMin,
			Max:         patch.PriceMax,
			PaymentLink: patch.PaymentLink,
		}
		if err := pricing.Validate(); err != nil {
			return Event{}, err
		}
		if err := s.validatePaymentLink(pricing.PaymentLink); err != nil {
			return Event{}, err
		}
		event.Pricing = pricing
	case patch.touchesPricingFields():
		return Event{}, ErrPricingTypeRequired
	}

	updated, err := s.repo.Update(ctx, event)
	if err != nil {
		return Event{}, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

// Publish moves a draft event to published.
func (s *Service) Publish(ctx context.Context, eventID, requesterID int64) (Event, error) {
	return s.transition(ctx, eventID, requesterID, StatusPublished)
}

// Archive moves a published event to archived.
func (s *Service) Archive(ctx context.Context, eventID, requesterID int64) (Event, error) {
	return s.transition(ctx, eventID, requesterID, StatusArchived)
}

func (s *Service) transition(ctx context.Context, eventID, requesterID int64, next Status) (Event, error) {
	event, err := s.ownedEvent(ctx, eventID, requesterID)
	if err != nil {
		return Event{}, err
	}
	if !event.Status.CanTransitionTo(next) {
		return Event{}, ErrInvalidTransition
	}

	event.Status = next
	updated, err := s.repo.Update(ctx, event)
	if err != nil {
		return Event{}, fmt.Errorf("transition event: %w", err)
	}
	s.logger.Info().
		Int64("event_id", event.ID).
		Str("status", string(next)).
		Msg("event transitioned")
	return updated, nil
}

// Delete removes an owned event in any state; signups go with it.
func (s *Service) Delete(ctx context.Context, eventID, requesterID int64) error {
	if _, err := s.ownedEvent(ctx, eventID, requesterID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// GetPublished returns a published event by id. Draft and archived events
// are not visible publicly and read as not found.
func (s *Service) GetPublished(ctx context.Context, eventID int64) (Event, error) {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return Event{}, err
	}
	if event.Status != StatusPublished {
		return Event{}, ErrNotFound
	}
	return event, nil
}

// GetOwned returns any event owned by requesterID, regardless of state.
func (s *Service) GetOwned(ctx context.Context, eventID, requesterID int64) (Event, error) {
	return s.ownedEvent(ctx, eventID, requesterID)
}

func (s *Service) ListPublished(ctx context.Context, city string, day *time.Time, page Pagination) (ListResult, error) {
	return s.repo.List(ctx, Filters{Status: StatusPublished, City: city, Day: day}, page.Clamp())
}

func (s *Service) ListOwned(ctx context.Context, ownerID int64, filters Filters, page Pagination) (ListResult, error) {
	filters.OwnerID = &ownerID
	return s.repo.List(ctx, filters, page.Clamp())
}

func (s *Service) ownedEvent(ctx context.Context, eventID, requesterID int64) (Event, error) {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Event{}, ErrNotFound
		}
		return Event{}, fmt.Errorf("load event: %w", err)
	}
	if event.OwnerID != requesterID {
		return Event{}, ErrNotOwner
	}
	return event, nil
}

func (s *Service) validatePaymentLink(link *string) error {
	if link == nil {
		return nil
	}
	return s.validate.Var(*link, "url,max=500")
}

func validateCapacity(capacity *int32) error {
	if capacity == nil {
		return nil
	}
	if *capacity < 1 || *capacity > 100000 {
		return ErrInvalidCapacity
	}
	return nil
}
