package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/usly-events/server/internal/auth"
	"github.com/usly-events/server/internal/domain/accounts"
)

var partner = accounts.Account{ID: 1, Email: "venue@example.com", Role: auth.RolePartner, Status: accounts.StatusActive}

const createEventBody = `{
	"title": "Harbor run club",
	"city": "Hamburg",
	"start_at": "2026-10-01T18:00:00+02:00",
	"end_at": "2026-10-01T20:00:00+02:00",
	"capacity": 30,
	"pricing_type": "free"
}`

func partnerRequest(method, target, body string, account accounts.Account) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if id, ok := strings.CutPrefix(target, "/api/v1/partners/events/"); ok {
		id, _, _ = strings.Cut(id, "/")
		req.SetPathValue("id", id)
	}
	return asAccount(req, account)
}

func createEvent(t *testing.T, env *env, account accounts.Account) int64 {
	t.Helper()
	rec := httptest.NewRecorder()
	env.partnerHandler.Create(rec, partnerRequest(http.MethodPost, "/api/v1/partners/events", createEventBody, account))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	return int64(data["id"].(float64))
}

func TestCreateStartsAsDraft(t *testing.T) {
	env := newEnv(t)

	rec := httptest.NewRecorder()
	env.partnerHandler.Create(rec, partnerRequest(http.MethodPost, "/api/v1/partners/events", createEventBody, partner))

	require.Equal(t, http.StatusCreated, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	require.Equal(t, "draft", data["status"])

	// Offsets are normalized to UTC on the way in.
	require.Equal(t, "2026-10-01T16:00:00Z", data["start_at"])
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{
			name:     "missing offset",
			body:     `{"title":"Run","city":"Hamburg","start_at":"2026-10-01T18:00:00","end_at":"2026-10-01T20:00:00+02:00","pricing_type":"free"}`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "VALIDATION_ERROR",
		},
		{
			name:     "end before start",
			body:     `{"title":"Harbor run","city":"Hamburg","start_at":"2026-10-01T20:00:00+02:00","end_at":"2026-10-01T18:00:00+02:00","pricing_type":"free"}`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "INVALID_EVENT_DATES",
		},
		{
			name:     "zero capacity",
			body:     `{"title":"Harbor run","city":"Hamburg","start_at":"2026-10-01T18:00:00+02:00","end_at":"2026-10-01T20:00:00+02:00","capacity":0,"pricing_type":"free"}`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "INVALID_CAPACITY",
		},
		{
			name:     "free with price",
			body:     `{"title":"Harbor run","city":"Hamburg","start_at":"2026-10-01T18:00:00+02:00","end_at":"2026-10-01T20:00:00+02:00","pricing_type":"free","price_fixed":500}`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "FREE_EVENT_MUST_NOT_HAVE_PRICES_OR_LINK",
		},
		{
			name:     "paid without payment link",
			body:     `{"title":"Harbor run","city":"Hamburg","start_at":"2026-10-01T18:00:00+02:00","end_at":"2026-10-01T20:00:00+02:00","pricing_type":"paid_fixed","price_fixed":500}`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "PAID_EVENT_REQUIRES_PAYMENT_LINK",
		},
		{
			name:     "range min above max",
			body:     `{"title":"Harbor run","city":"Hamburg","start_at":"2026-10-01T18:00:00+02:00","end_at":"2026-10-01T20:00:00+02:00","pricing_type":"paid_range","price_min":900,"price_max":500,"payment_link":"https://pay.example.com/run"}`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "PAID_RANGE_MIN_MUST_BE_LTE_MAX",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(t)
			rec := httptest.NewRecorder()
			env.partnerHandler.Create(rec, partnerRequest(http.MethodPost, "/api/v1/partners/events", tt.body, partner))
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			require.Equal(t, tt.wantErr, errorCode(t, rec))
		})
	}
}

func TestPatchPriceWithoutType(t *testing.T) {
	env := newEnv(t)
	createEvent(t, env, partner)

	rec := httptest.NewRecorder()
	env.partnerHandler.Patch(rec, partnerRequest(http.MethodPatch, "/api/v1/partners/events/1", `{"price_fixed":500}`, partner))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "PRICING_TYPE_REQUIRED", errorCode(t, rec))
}

func TestPatchReplacesPricing(t *testing.T) {
	env := newEnv(t)
	createEvent(t, env, partner)

	body := `{"pricing_type":"paid_fixed","price_fixed":1500,"payment_link":"https://pay.example.com/run"}`
	rec := httptest.NewRecorder()
	env.partnerHandler.Patch(rec, partnerRequest(http.MethodPatch, "/api/v1/partners/events/1", body, partner))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	pricing := data["pricing"].(map[string]any)
	require.Equal(t, "paid_fixed", pricing["type"])
	require.Equal(t, float64(1500), pricing["price_fixed"])
}

func TestPatchNotOwner(t *testing.T) {
	env := newEnv(t)
	createEvent(t, env, partner)

	other := accounts.Account{ID: 2, Role: auth.RolePartner, Status: accounts.StatusActive}
	rec := httptest.NewRecorder()
	env.partnerHandler.Patch(rec, partnerRequest(http.MethodPatch, "/api/v1/partners/events/1", `{"title":"Mine now"}`, other))

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "FORBIDDEN_NOT_OWNER", errorCode(t, rec))
}

func TestPublishThenArchive(t *testing.T) {
	env := newEnv(t)
	createEvent(t, env, partner)

	rec := httptest.NewRecorder()
	env.partnerHandler.Publish(rec, partnerRequest(http.MethodPost, "/api/v1/partners/events/1/publish", "", partner))
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	require.Equal(t, "published", data["status"])

	rec = httptest.NewRecorder()
	env.partnerHandler.Archive(rec, partnerRequest(http.MethodPost, "/api/v1/partners/events/1/archive", "", partner))
	require.Equal(t, http.StatusOK, rec.Code)
	data = decodeEnvelope(t, rec)["data"].(map[string]any)
	require.Equal(t, "archived", data["status"])
}

func TestArchiveDraftRejected(t *testing.T) {
	env := newEnv(t)
	createEvent(t, env, partner)

	rec := httptest.NewRecorder()
	env.partnerHandler.Archive(rec, partnerRequest(http.MethodPost, "/api/v1/partners/events/1/archive", "", partner))

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "INVALID_STATUS_TRANSITION", errorCode(t, rec))
}

func TestDoublePublishRejected(t *testing.T) {
	env := newEnv(t)
	createEvent(t, env, partner)

	rec := httptest.NewRecorder()
	env.partnerHandler.Publish(rec, partnerRequest(http.MethodPost, "/api/v1/partners/events/1/publish", "", partner))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	env.partnerHandler.Publish(rec, partnerRequest(http.MethodPost, "/api/v1/partners/events/1/publish", "", partner))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "INVALID_STATUS_TRANSITION", errorCode(t, rec))
}

func TestPatchArchivedRejected(t *testing.T) {
	env := newEnv(t)
	id := createEvent(t, env, partner)

	event, err := env.events.Publish(context.Background(), id, partner.ID)
	require.NoError(t, err)
	_, err = env.events.Archive(context.Background(), event.ID, partner.ID)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	env.partnerHandler.Patch(rec, partnerRequest(http.MethodPatch, "/api/v1/partners/events/1", `{"title":"Too late"}`, partner))

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "EVENT_ARCHIVED", errorCode(t, rec))
}

func TestDeleteEvent(t *testing.T) {
	env := newEnv(t)
	createEvent(t, env, partner)

	rec := httptest.NewRecorder()
	env.partnerHandler.Delete(rec, partnerRequest(http.MethodDelete, "/api/v1/partners/events/1", "", partner))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	env.partnerHandler.Get(rec, partnerRequest(http.MethodGet, "/api/v1/partners/events/1", "", partner))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListOwnedFiltersByStatus(t *testing.T) {
	env := newEnv(t)
	createEvent(t, env, partner)
	id := createEvent(t, env, partner)
	_, err := env.events.Publish(context.Background(), id, partner.ID)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	env.partnerHandler.List(rec, asAccount(httptest.NewRequest(http.MethodGet, "/api/v1/partners/events?status=draft", nil), partner))

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	require.Equal(t, float64(1), data["total"])
}

func TestListOwnedRejectsUnknownStatus(t *testing.T) {
	env := newEnv(t)

	rec := httptest.NewRecorder()
	env.partnerHandler.List(rec, asAccount(httptest.NewRequest(http.MethodGet, "/api/v1/partners/events?status=cancelled", nil), partner))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}

func TestStatsOwnerOnly(t *testing.T) {
	env := newEnv(t)
	id := createEvent(t, env, partner)
	_, err := env.events.Publish(context.Background(), id, partner.ID)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	env.eventsHandler.Join(rec, joinRequest("1", attendee))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	env.partnerHandler.Stats(rec, partnerRequest(http.MethodGet, "/api/v1/partners/events/1/stats", "", partner))
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	require.Equal(t, float64(1), data["confirmed"])
	require.Equal(t, float64(29), data["remaining"])

	other := accounts.Account{ID: 2, Role: auth.RolePartner, Status: accounts.StatusActive}
	rec = httptest.NewRecorder()
	env.partnerHandler.Stats(rec, partnerRequest(http.MethodGet, "/api/v1/partners/events/1/stats", "", other))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "FORBIDDEN_NOT_OWNER", errorCode(t, rec))
}

func TestParticipantsListing(t *testing.T) {
	env := newEnv(t)
	id := createEvent(t, env, partner)
	_, err := env.events.Publish(context.Background(), id, partner.ID)
	require.NoError(t, err)

	env.ledger.emails[attendee.ID] = attendee.Email
	rec := httptest.NewRecorder()
	env.eventsHandler.Join(rec, joinRequest("1", attendee))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	env.partnerHandler.Participants(rec, partnerRequest(http.MethodGet, "/api/v1/partners/events/1/participants", "", partner))

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	items := data["items"].([]any)
	require.Len(t, items, 1)
	require.Equal(t, attendee.Email, items[0].(map[string]any)["email"])
}
