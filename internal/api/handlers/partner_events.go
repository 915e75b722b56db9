package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/usly-events/server/internal/api/respond"
	"github.com/usly-events/server/internal/domain/accounts"
	"github.com/usly-events/server/internal/domain/events"
	"github.com/usly-events/server/internal/domain/signups"
)

// PartnerEventsHandler serves event management for partner accounts. Every
// route behind it is gated on the partner role; ownership is checked per
// event in the services.
type PartnerEventsHandler struct {
	Events  *events.Service
	Signups *signups.Service
}

func NewPartnerEventsHandler(eventsService *events.Service, signupsService *signups.Service) *PartnerEventsHandler {
	return &PartnerEventsHandler{Events: eventsService, Signups: signupsService}
}

type eventRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	City        string  `json:"city"`
	StartAt     string  `json:"start_at"`
	EndAt       string  `json:"end_at"`
	Capacity    *int32  `json:"capacity"`
	CoverURL    *string `json:"cover_url"`

	PricingType *string `json:"pricing_type"`
	PriceFixed  *int64  `json:"price_fixed"`
	PriceMin    *int64  `json:"price_min"`
	PriceMax    *int64  `json:"price_max"`
	PaymentLink *string `json:"payment_link"`
}

func (h *PartnerEventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	account, ok := mustAccount(w, r)
	if !ok {
		return
	}

	var req eventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	startAt, err := parseTimestamp(req.StartAt)
	if err != nil {
		writeTimestampError(w, r, "start_at", err)
		return
	}
	endAt, err := parseTimestamp(req.EndAt)
	if err != nil {
		writeTimestampError(w, r, "end_at", err)
		return
	}

	pricing := events.Pricing{
		Fixed:       req.PriceFixed,
		Min:         req.PriceMin,
		Max:         req.PriceMax,
		PaymentLink: req.PaymentLink,
	}
	if req.PricingType != nil {
		pricing.Type = events.PricingType(*req.PricingType)
	}

	event, err := h.Events.Create(r.Context(), account.ID, events.CreateParams{
		Title:       req.Title,
		Description: req.Description,
		City:        req.City,
		StartAt:     startAt,
		EndAt:       endAt,
		Capacity:    req.Capacity,
		CoverURL:    req.CoverURL,
		Pricing:     pricing,
	})
	if err != nil {
		writeEventError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toEventPayload(event))
}

func (h *PartnerEventsHandler) List(w http.ResponseWriter, r *http.Request) {
	account, ok := mustAccount(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	page := parsePagination(query)

	var filters events.Filters
	if raw := query.Get("status"); raw != "" {
		status, valid := events.ParseStatus(raw)
		if !valid {
			respond.Error(w, r, http.StatusUnprocessableEntity, respond.CodeValidationError, nil,
				respond.WithMessage("status must be draft, published or archived"))
			return
		}
		filters.Status = status
	}

	result, err := h.Events.ListOwned(r.Context(), account.ID, filters, page)
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, respond.CodeInternalError, err)
		return
	}

	respond.JSON(w, http.StatusOK, listPayload{
		Items:  toEventPayloads(result.Events),
		Total:  result.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

func (h *PartnerEventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, id, ok := h.eventRequestContext(w, r)
	if !ok {
		return
	}

	event, err := h.Events.GetOwned(r.Context(), id, account.ID)
	if err != nil {
		writeEventError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toEventPayload(event))
}

func (h *PartnerEventsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	account, id, ok := h.eventRequestContext(w, r)
	if !ok {
		return
	}

	var req eventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patch := events.Patch{
		Description: req.Description,
		Capacity:    req.Capacity,
		CoverURL:    req.CoverURL,
		PriceFixed:  req.PriceFixed,
		PriceMin:    req.PriceMin,
		PriceMax:    req.PriceMax,
		PaymentLink: req.PaymentLink,
	}
	if req.Title != "" {
		patch.Title = &req.Title
	}
	if req.City != "" {
		patch.City = &req.City
	}
	if req.StartAt != "" {
		startAt, err := parseTimestamp(req.StartAt)
		if err != nil {
			writeTimestampError(w, r, "start_at", err)
			return
		}
		patch.StartAt = &startAt
	}
	if req.EndAt != "" {
		endAt, err := parseTimestamp(req.EndAt)
		if err != nil {
			writeTimestampError(w, r, "end_at", err)
			return
		}
		patch.EndAt = &endAt
	}
	if req.PricingType != nil {
		pricingType := events.PricingType(*req.PricingType)
		patch.PricingType = &pricingType
	}

	event, err := h.Events.Update(r.Context(), id, account.ID, patch)
	if err != nil {
		writeEventError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toEventPayload(event))
}

func (h *PartnerEventsHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Events.Publish)
}

func (h *PartnerEventsHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Events.Archive)
}

func (h *PartnerEventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	account, id, ok := h.eventRequestContext(w, r)
	if !ok {
		return
	}

	if err := h.Events.Delete(r.Context(), id, account.ID); err != nil {
		writeEventError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PartnerEventsHandler) Participants(w http.ResponseWriter, r *http.Request) {
	account, id, ok := h.eventRequestContext(w, r)
	if !ok {
		return
	}

	page := parsePagination(r.URL.Query())
	participants, total, err := h.Signups.Participants(r.Context(), id, account.ID, page)
	if err != nil {
		writeEventError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, listPayload{
		Items:  toParticipantPayloads(participants),
		Total:  total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

func (h *PartnerEventsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	account, id, ok := h.eventRequestContext(w, r)
	if !ok {
		return
	}

	stats, err := h.Signups.Stats(r.Context(), id, account.ID)
	if err != nil {
		writeEventError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toStatsPayload(stats))
}

func (h *PartnerEventsHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, eventID, requesterID int64) (events.Event, error)) {
	account, id, ok := h.eventRequestContext(w, r)
	if !ok {
		return
	}

	event, err := op(r.Context(), id, account.ID)
	if err != nil {
		writeEventError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toEventPayload(event))
}

func (h *PartnerEventsHandler) eventRequestContext(w http.ResponseWriter, r *http.Request) (accounts.Account, int64, bool) {
	account, ok := mustAccount(w, r)
	if !ok {
		return accounts.Account{}, 0, false
	}
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, http.StatusNotFound, respond.CodeEventNotFound, err)
		return accounts.Account{}, 0, false
	}
	return account, id, true
}

// parseTimestamp requires an RFC 3339 timestamp with an explicit offset;
// values are normalized to UTC on the way in.
func parseTimestamp(value string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}

func writeTimestampError(w http.ResponseWriter, r *http.Request, field string, err error) {
	respond.Error(w, r, http.StatusUnprocessableEntity, respond.CodeValidationError, err,
		respond.WithMessage(field+" must be an RFC 3339 timestamp with offset"))
}

func writeEventError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs validator.ValidationErrors
	switch {
	case errors.As(err, &fieldErrs):
		writeValidationError(w, r, err)
	case errors.Is(err, events.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, respond.CodeEventNotFound, err)
	case errors.Is(err, events.ErrNotOwner):
		respond.Error(w, r, http.StatusForbidden, respond.CodeForbiddenNotOwner, err)
	case errors.Is(err, events.ErrInvalidTransition):
		respond.Error(w, r, http.StatusConflict, respond.CodeInvalidStatusTransition, err)
	case errors.Is(err, events.ErrEventArchived):
		respond.Error(w, r, http.StatusConflict, respond.CodeEventArchived, err)
	case errors.Is(err, events.ErrInvalidDates):
		respond.Error(w, r, http.StatusUnprocessableEntity, respond.CodeInvalidEventDates, err)
	case errors.Is(err, events.ErrInvalidCapacity):
		respond.Error(w, r, http.StatusUnprocessableEntity, respond.CodeInvalidCapacity, err)
	default:
		writePricingError(w, r, err)
	}
}

func writePricingError(w http.ResponseWriter, r *http.Request, err error) {
	code, matched := pricingCode(err)
	if matched {
		respond.Error(w, r, http.StatusUnprocessableEntity, code, err)
		return
	}
	respond.Error(w, r, http.StatusInternalServerError, respond.CodeInternalError, err)
}

func pricingCode(err error) (string, bool) {
	switch {
	case errors.Is(err, events.ErrInvalidPricingType):
		return respond.CodeInvalidPricingType, true
	case errors.Is(err, events.ErrPricingTypeRequired):
		return respond.CodePricingTypeRequired, true
	case errors.Is(err, events.ErrFreeMustNotHavePricing):
		return respond.CodeFreeMustNotHavePricing, true
	case errors.Is(err, events.ErrPaidFixedRequiresPrice):
		return respond.CodePaidFixedRequiresPrice, true
	case errors.Is(err, events.ErrPaidFixedMustNotHaveRange):
		return respond.CodePaidFixedMustNotHaveRange, true
	case errors.Is(err, events.ErrPaidRangeRequiresMinMax):
		return respond.CodePaidRangeRequiresMinMax, true
	case errors.Is(err, events.ErrPaidRangeMinAboveMax):
		return respond.CodePaidRangeMinAboveMax, true
	case errors.Is(err, events.ErrPaidRangeMustNotHaveFixed):
		return respond.CodePaidRangeMustNotHaveFixed, true
	case errors.Is(err, events.ErrPaidRequiresPaymentLink):
		return respond.CodePaidRequiresPaymentLink, true
	case errors.Is(err, events.ErrPriceNotPositive):
		return respond.CodePriceNotPositive, true
	default:
		return "", false
	}
}
