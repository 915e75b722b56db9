package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/usly-events/server/internal/audit"
	"github.com/usly-events/server/internal/auth"
	"github.com/usly-events/server/internal/domain/accounts"
)

type fakeAccountRepo struct {
	byID map[int64]accounts.Account
}

func (r *fakeAccountRepo) Create(_ context.Context, account accounts.Account) (accounts.Account, error) {
	return account, nil
}

func (r *fakeAccountRepo) GetByEmail(_ context.Context, _ string) (accounts.Account, error) {
	return accounts.Account{}, accounts.ErrAccountNotFound
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id int64) (accounts.Account, error) {
	account, ok := r.byID[id]
	if !ok {
		return accounts.Account{}, accounts.ErrAccountNotFound
	}
	return account, nil
}

type auditSink struct {
	entries []audit.Entry
}

func (s *auditSink) Insert(_ context.Context, entry audit.Entry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func okHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, ok := AccountFromContext(r.Context())
		require.True(t, ok)
		require.NotZero(t, account.ID)
		w.WriteHeader(http.StatusOK)
	})
}

func setup(t *testing.T, expiry time.Duration) (*auth.JWTManager, *accounts.Service, *auditSink) {
	t.Helper()
	tokens := auth.NewJWTManager("test-secret", expiry, "usly")
	sink := &auditSink{}
	recorder := audit.NewRecorder(sink, zerolog.Nop())
	repo := &fakeAccountRepo{byID: map[int64]accounts.Account{
		42: {ID: 42, Email: "u@example.com", Role: auth.RoleUser, Status: accounts.StatusActive},
		43: {ID: 43, Email: "b@example.com", Role: auth.RoleUser, Status: accounts.StatusBlocked},
	}}
	svc := accounts.NewService(repo, tokens, recorder, zerolog.Nop())
	return tokens, svc, sink
}

func TestAuthAcceptsValidToken(t *testing.T) {
	tokens, svc, sink := setup(t, time.Hour)
	recorder := audit.NewRecorder(sink, zerolog.Nop())
	handler := Auth(tokens, svc, recorder)(okHandler(t))

	token, err := tokens.Generate("42")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRejectsMissingAndGarbageTokens(t *testing.T) {
	tokens, svc, sink := setup(t, time.Hour)
	recorder := audit.NewRecorder(sink, zerolog.Nop())
	handler := Auth(tokens, svc, recorder)(okHandler(t))

	for _, header := range []string{"", "Bearer not-a-token", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestAuthExpiredTokenIsAudited(t *testing.T) {
	tokens, svc, sink := setup(t, -time.Minute)
	recorder := audit.NewRecorder(sink, zerolog.Nop())
	handler := Auth(tokens, svc, recorder)(okHandler(t))

	token, err := tokens.Generate("42")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.RemoteAddr = "198.51.100.7:4411"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "TOKEN_EXPIRED", body["error"].(map[string]any)["code"])

	require.Len(t, sink.entries, 1)
	entry := sink.entries[0]
	require.Equal(t, audit.ActionTokenExpired, entry.Action)
	require.NotNil(t, entry.ActorID)
	require.Equal(t, int64(42), *entry.ActorID)
	require.Equal(t, "198.51.100.7", entry.IP)
}

func TestAuthBlockedAccount(t *testing.T) {
	tokens, svc, sink := setup(t, time.Hour)
	recorder := audit.NewRecorder(sink, zerolog.Nop())
	handler := Auth(tokens, svc, recorder)(okHandler(t))

	token, err := tokens.Generate("43")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	serve := func(account *accounts.Account, roles ...auth.Role) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if account != nil {
			req = req.WithContext(context.WithValue(req.Context(), accountKey, *account))
		}
		rec := httptest.NewRecorder()
		RequireRole(roles...)(next).ServeHTTP(rec, req)
		return rec.Code
	}

	partner := &accounts.Account{ID: 1, Role: auth.RolePartner}
	user := &accounts.Account{ID: 2, Role: auth.RoleUser}
	admin := &accounts.Account{ID: 3, Role: auth.RoleAdmin}

	require.Equal(t, http.StatusOK, serve(partner, auth.RolePartner))
	require.Equal(t, http.StatusForbidden, serve(user, auth.RolePartner))
	// admin has no implicit access to partner-only routes
	require.Equal(t, http.StatusForbidden, serve(admin, auth.RolePartner))
	require.Equal(t, http.StatusOK, serve(admin, auth.RolePartner, auth.RoleAdmin))
	require.Equal(t, http.StatusUnauthorized, serve(nil, auth.RolePartner))
}
