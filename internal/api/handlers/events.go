package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/usly-events/server/internal/api/respond"
	"github.com/usly-events/server/internal/audit"
	"github.com/usly-events/server/internal/domain/events"
	"github.com/usly-events/server/internal/domain/signups"
)

// EventsHandler serves the public event catalog and the signup endpoints.
type EventsHandler struct {
	Events  *events.Service
	Signups *signups.Service
}

func NewEventsHandler(eventsService *events.Service, signupsService *signups.Service) *EventsHandler {
	return &EventsHandler{Events: eventsService, Signups: signupsService}
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := parsePagination(query)

	var day *time.Time
	if raw := query.Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respond.Error(w, r, http.StatusUnprocessableEntity, respond.CodeValidationError, err,
				respond.WithMessage("date must be YYYY-MM-DD"))
			return
		}
		day = &parsed
	}

	result, err := h.Events.ListPublished(r.Context(), query.Get("city"), day, page)
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

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, http.StatusNotFound, respond.CodeEventNotFound, err)
		return
	}

	event, err := h.Events.GetPublished(r.Context(), id)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			respond.Error(w, r, http.StatusNotFound, respond.CodeEventNotFound, err)
			return
		}
		respond.Error(w, r, http.StatusInternalServerError, respond.CodeInternalError, err)
		return
	}

	respond.JSON(w, http.StatusOK, toEventPayload(event))
}

func (h *EventsHandler) Join(w http.ResponseWriter, r *http.Request) {
	account, ok := mustAccount(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, http.StatusNotFound, respond.CodeEventNotFound, err)
		return
	}

	if err := h.Signups.Join(r.Context(), id, account.ID, audit.OriginFromRequest(r)); err != nil {
		writeSignupError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, map[string]any{"event_id": id, "joined": true})
}

func (h *EventsHandler) Leave(w http.ResponseWriter, r *http.Request) {
	account, ok := mustAccount(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, http.StatusNotFound, respond.CodeEventNotFound, err)
		return
	}

	if err := h.Signups.Leave(r.Context(), id, account.ID, audit.OriginFromRequest(r)); err != nil {
		writeSignupError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"event_id": id, "joined": false})
}

// MySignups lists the caller's signups together with their events.
func (h *EventsHandler) MySignups(w http.ResponseWriter, r *http.Request) {
	account, ok := mustAccount(w, r)
	if !ok {
		return
	}

	page := parsePagination(r.URL.Query())
	items, total, err := h.Signups.ListForUser(r.Context(), account.ID, r.URL.Query().Get("sort"), page)
	if err != nil {
		writeSignupError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, listPayload{
		Items:  toUserSignupPayloads(items),
		Total:  total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

func writeSignupError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, signups.ErrEventNotFound):
		respond.Error(w, r, http.StatusNotFound, respond.CodeEventNotFound, err)
	case errors.Is(err, signups.ErrEventNotPublished):
		respond.Error(w, r, http.StatusConflict, respond.CodeEventNotPublished, err)
	case errors.Is(err, signups.ErrEventFull):
		respond.Error(w, r, http.StatusConflict, respond.CodeEventFull, err)
	case errors.Is(err, signups.ErrAlreadyJoined):
		respond.Error(w, r, http.StatusConflict, respond.CodeAlreadyJoined, err)
	case errors.Is(err, signups.ErrNotJoined):
		respond.Error(w, r, http.StatusConflict, respond.CodeNotJoined, err)
	case errors.Is(err, signups.ErrInvalidSort):
		respond.Error(w, r, http.StatusUnprocessableEntity, respond.CodeInvalidSort, err)
	default:
		respond.Error(w, r, http.StatusInternalServerError, respond.CodeInternalError, err)
	}
}
