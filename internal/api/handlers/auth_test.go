package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/usly-events/server/internal/audit"
	"github.com/usly-events/server/internal/auth"
	"github.com/usly-events/server/internal/domain/accounts"
)

func registerBody(email string) string {
	return `{"email":"` + email + `","password":"correct-horse-9","date_of_birth":"1990-04-02","role":"user","accept_terms":true}`
}

func doRegister(t *testing.T, env *env, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	env.authHandler.Register(rec, req)
	return rec
}

func TestRegisterThenLogin(t *testing.T) {
	env := newEnv(t)

	rec := doRegister(t, env, registerBody("Anna@Example.com"))
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]any)
	require.Equal(t, "anna@example.com", data["email"])
	require.Equal(t, "user", data["role"])

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"anna@example.com","password":"correct-horse-9"}`))
	rec = httptest.NewRecorder()
	env.authHandler.Login(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	body = decodeEnvelope(t, rec)
	data = body["data"].(map[string]any)
	require.NotEmpty(t, data["token"])

	var sawSuccess bool
	for _, entry := range env.sink.entries {
		if entry.Action == audit.ActionLoginSuccess {
			sawSuccess = true
		}
	}
	require.True(t, sawSuccess, "login success was not audited")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newEnv(t)

	rec := doRegister(t, env, registerBody("dup@example.com"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRegister(t, env, registerBody("dup@example.com"))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "EMAIL_ALREADY_EXISTS", errorCode(t, rec))
}

func TestRegisterRejections(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{
			name:     "underage",
			body:     `{"email":"kid@example.com","password":"correct-horse-9","date_of_birth":"2015-01-01","role":"user","accept_terms":true}`,
			wantCode: http.StatusForbidden,
			wantErr:  "AGE_TOO_LOW",
		},
		{
			name:     "terms not accepted",
			body:     `{"email":"later@example.com","password":"correct-horse-9","date_of_birth":"1990-04-02","role":"user","accept_terms":false}`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "TERMS_REQUIRED",
		},
		{
			name:     "admin role not self-assignable",
			body:     `{"email":"boss@example.com","password":"correct-horse-9","date_of_birth":"1990-04-02","role":"admin","accept_terms":true}`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "VALIDATION_ERROR",
		},
		{
			name:     "malformed date",
			body:     `{"email":"d@example.com","password":"correct-horse-9","date_of_birth":"02.04.1990","role":"user","accept_terms":true}`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "VALIDATION_ERROR",
		},
		{
			name:     "short password",
			body:     `{"email":"p@example.com","password":"short","date_of_birth":"1990-04-02","role":"user","accept_terms":true}`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(t)
			rec := doRegister(t, env, tt.body)
			require.Equal(t, tt.wantCode, rec.Code)
			require.Equal(t, tt.wantErr, errorCode(t, rec))
		})
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := newEnv(t)
	doRegister(t, env, registerBody("anna@example.com"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"anna@example.com","password":"not-the-password"}`))
	rec := httptest.NewRecorder()
	env.authHandler.Login(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "INVALID_CREDENTIALS", errorCode(t, rec))

	var sawFail bool
	for _, entry := range env.sink.entries {
		if entry.Action == audit.ActionLoginFail {
			sawFail = true
		}
	}
	require.True(t, sawFail, "failed login was not audited")
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	env := newEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"nobody@example.com","password":"whatever-long"}`))
	rec := httptest.NewRecorder()
	env.authHandler.Login(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "INVALID_CREDENTIALS", errorCode(t, rec))
}

func TestLogoutAudited(t *testing.T) {
	env := newEnv(t)
	account := accounts.Account{ID: 7, Email: "anna@example.com", Role: auth.RoleUser, Status: accounts.StatusActive}

	req := asAccount(httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil), account)
	rec := httptest.NewRecorder()
	env.authHandler.Logout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.sink.entries, 1)
	require.Equal(t, audit.ActionLogout, env.sink.entries[0].Action)
	require.Equal(t, int64(7), *env.sink.entries[0].ActorID)
}

func TestMe(t *testing.T) {
	env := newEnv(t)
	account := accounts.Account{
		ID:          7,
		Email:       "anna@example.com",
		DateOfBirth: time.Date(1990, 4, 2, 0, 0, 0, 0, time.UTC),
		Role:        auth.RoleUser,
		Status:      accounts.StatusActive,
	}

	req := asAccount(httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil), account)
	rec := httptest.NewRecorder()
	env.authHandler.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	require.Equal(t, "anna@example.com", data["email"])
	require.Equal(t, "1990-04-02", data["date_of_birth"])
}
